package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/lumenfi/route-optimizer/internal/common"
	"github.com/lumenfi/route-optimizer/internal/config"
	"github.com/lumenfi/route-optimizer/internal/http"
	"github.com/lumenfi/route-optimizer/internal/services/router"
)

func main() {
	common.InitRuntime()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.EngineConfig{},
	)

	dic, err := container.New(
		conf,

		&router.Engine{},
		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("runtime stopped with error")
	}

	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop cleanly")
	}
}

package config

import (
	"errors"
	"strconv"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

type EngineConfig struct {
	// ProtocolFeeRate is the fractional protocol fee applied on the input
	// notional (0.0025 = 25 bps).
	ProtocolFeeRate float64

	// FeeCapUSD caps the protocol fee in USD. 0 disables the cap.
	FeeCapUSD float64

	// BridgeFeeRate and BridgeFeeMinUSD price cross-chain legs.
	BridgeFeeRate   float64
	BridgeFeeMinUSD float64

	// CacheTTLSeconds is how long a computed route set stays servable.
	CacheTTLSeconds int

	// DBPath is the path to the BoltDB file for pool persistence.
	// Default: "./data/route-optimizer.db"
	DBPath string

	// PersistenceEnabled controls whether pool snapshots are persisted and
	// reloaded on startup. Default: true
	PersistenceEnabled bool
}

func (c *EngineConfig) Key() string {
	return ENGINE_CONFIG_KEY
}

func (c *EngineConfig) Load() error {
	c.ProtocolFeeRate = getEnvFloat("ENGINE_PROTOCOL_FEE_RATE", 0.0025)
	c.FeeCapUSD = getEnvFloat("ENGINE_FEE_CAP_USD", 50)
	c.BridgeFeeRate = getEnvFloat("ENGINE_BRIDGE_FEE_RATE", 0.0004)
	c.BridgeFeeMinUSD = getEnvFloat("ENGINE_BRIDGE_FEE_MIN_USD", 2)
	c.CacheTTLSeconds = common.GetEnvOrDefaultInt("ENGINE_CACHE_TTL_SECONDS", 300)
	c.DBPath = common.GetEnvOrDefault("ENGINE_DB_PATH", "./data/route-optimizer.db")
	c.PersistenceEnabled = common.GetEnvOrDefault("ENGINE_PERSISTENCE_ENABLED", "true") == "true"
	return c.Validate()
}

func (c *EngineConfig) Validate() error {
	if c.ProtocolFeeRate < 0 || c.ProtocolFeeRate >= 1 {
		return errors.New("protocol fee rate must be in [0,1)")
	}
	if c.CacheTTLSeconds <= 0 {
		return errors.New("cache ttl must be positive")
	}
	return nil
}

func (c *EngineConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := common.GetEnvOrDefault(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

package http

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenfi/route-optimizer/internal/http/httputil"
	"github.com/lumenfi/route-optimizer/internal/services/router"
)

type StatsHandler struct {
	engine *router.Engine
}

func NewStatsHandler(engine *router.Engine) *StatsHandler {
	return &StatsHandler{engine: engine}
}

func (h *StatsHandler) Root() string {
	return "/stats"
}

func (h *StatsHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getStats)
}

type StatsResponse struct {
	Graph       interface{} `json:"graph"`
	Performance interface{} `json:"performance"`
}

func (h *StatsHandler) getStats(c *gin.Context) {
	httputil.Success(c, StatsResponse{
		Graph:       h.engine.GetGraphStats(),
		Performance: h.engine.GetPerformanceStats(),
	})
}

package http

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenfi/route-optimizer/internal/domain"
	"github.com/lumenfi/route-optimizer/internal/http/httputil"
	"github.com/lumenfi/route-optimizer/internal/services/router"
)

type GraphHandler struct {
	engine *router.Engine
}

func NewGraphHandler(engine *router.Engine) *GraphHandler {
	return &GraphHandler{engine: engine}
}

func (h *GraphHandler) Root() string {
	return "/graph"
}

func (h *GraphHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/stats", h.getStats)
	admin.POST("/pools", h.updatePools)
}

type UpdatePoolsRequest struct {
	Pools []*domain.LiquidityPool `json:"pools" binding:"required"`
}

type UpdatePoolsResponse struct {
	Accepted int    `json:"accepted"`
	Rejected string `json:"rejected,omitempty"`
}

// updatePools merges a pool snapshot batch. Invalid pools are reported but do
// not block valid ones from applying.
func (h *GraphHandler) updatePools(c *gin.Context) {
	var req UpdatePoolsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}
	if len(req.Pools) == 0 {
		httputil.BadRequest(c, "empty pool batch")
		return
	}

	resp := UpdatePoolsResponse{Accepted: len(req.Pools)}
	if err := h.engine.UpdateGraph(req.Pools); err != nil {
		resp.Rejected = err.Error()
	}
	httputil.Success(c, resp)
}

func (h *GraphHandler) getStats(c *gin.Context) {
	httputil.Success(c, h.engine.GetGraphStats())
}

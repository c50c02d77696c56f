package http

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumenfi/route-optimizer/internal/domain"
	"github.com/lumenfi/route-optimizer/internal/http/httputil"
	"github.com/lumenfi/route-optimizer/internal/services/router"
)

type PathHandler struct {
	engine *router.Engine
}

func NewPathHandler(engine *router.Engine) *PathHandler {
	return &PathHandler{engine: engine}
}

func (h *PathHandler) Root() string {
	return "/paths"
}

func (h *PathHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.findPaths)
}

// PathRequest carries the search parameters. Token IDs use the
// "chainID:address" form.
type PathRequest struct {
	From      string  `form:"from" binding:"required"`
	To        string  `form:"to" binding:"required"`
	AmountUSD float64 `form:"amountUsd" binding:"required"`

	MaxHops          int     `form:"maxHops"`
	MaxPaths         int     `form:"maxPaths"`
	Algorithm        string  `form:"algorithm"`
	OptimizeFor      string  `form:"optimizeFor"`
	MinLiquidityUSD  float64 `form:"minLiquidityUsd"`
	MaxSlippagePct   float64 `form:"maxSlippagePct"`
	IncludeArbitrage bool    `form:"includeArbitrage"`
	TimeoutMs        int     `form:"timeoutMs"`
}

type PathResponse struct {
	From    string                      `json:"from"`
	To      string                      `json:"to"`
	Results []*domain.PathfindingResult `json:"results"`
}

func (h *PathHandler) findPaths(c *gin.Context) {
	var req PathRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	from := domain.TokenID(req.From)
	to := domain.TokenID(req.To)
	if _, _, err := domain.ParseTokenID(from); err != nil {
		httputil.BadRequest(c, "invalid from token: "+err.Error())
		return
	}
	if _, _, err := domain.ParseTokenID(to); err != nil {
		httputil.BadRequest(c, "invalid to token: "+err.Error())
		return
	}

	opts := domain.PathOptions{
		MaxHops:          req.MaxHops,
		MaxPaths:         req.MaxPaths,
		Algorithm:        domain.Algorithm(req.Algorithm),
		OptimizeFor:      domain.Objective(req.OptimizeFor),
		MinLiquidityUSD:  req.MinLiquidityUSD,
		MaxSlippagePct:   req.MaxSlippagePct,
		IncludeArbitrage: req.IncludeArbitrage,
		Timeout:          time.Duration(req.TimeoutMs) * time.Millisecond,
	}

	results, err := h.engine.FindOptimalPaths(c.Request.Context(), from, to, req.AmountUSD, opts)
	if err != nil {
		switch {
		case errors.Is(err, router.ErrSameToken), errors.Is(err, router.ErrInvalidAmount):
			httputil.BadRequest(c, err.Error())
		case errors.Is(err, router.ErrUnknownToken):
			httputil.NotFound(c, err.Error())
		default:
			var timeout *router.TimeoutError
			if errors.As(err, &timeout) {
				httputil.GatewayTimeout(c, err.Error())
				return
			}
			httputil.InternalError(c, err.Error())
		}
		return
	}
	if len(results) == 0 {
		httputil.NotFound(c, "no route found")
		return
	}

	httputil.Success(c, PathResponse{From: req.From, To: req.To, Results: results})
}

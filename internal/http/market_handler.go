package http

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenfi/route-optimizer/internal/domain"
	"github.com/lumenfi/route-optimizer/internal/http/httputil"
	"github.com/lumenfi/route-optimizer/internal/services/router"
)

type MarketHandler struct {
	engine *router.Engine
}

func NewMarketHandler(engine *router.Engine) *MarketHandler {
	return &MarketHandler{engine: engine}
}

func (h *MarketHandler) Root() string {
	return "/market"
}

func (h *MarketHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	admin.POST("", h.updateFeed)
}

type MarketUpdateRequest struct {
	Prices     map[string]float64 `json:"prices,omitempty"`     // tokenID -> USD
	Volatility map[string]float64 `json:"volatility,omitempty"` // tokenID -> 0..1
	Gas        map[uint64]float64 `json:"gas,omitempty"`        // chainID -> multiplier
	Slippage   map[string]float64 `json:"slippage,omitempty"`   // poolAddress -> pct
}

func (h *MarketHandler) updateFeed(c *gin.Context) {
	feed := h.engine.MarketFeed()
	if feed == nil {
		httputil.BadRequest(c, "market data comes from an external provider")
		return
	}

	var req MarketUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	for id, price := range req.Prices {
		feed.SetPrice(domain.TokenID(id), price)
	}
	for id, vol := range req.Volatility {
		feed.SetVolatility(domain.TokenID(id), vol)
	}
	for chainID, mult := range req.Gas {
		feed.SetGasMultiplier(chainID, mult)
	}
	for pool, slip := range req.Slippage {
		feed.SetPoolSlippage(pool, slip)
	}

	httputil.Success(c, gin.H{"pricedTokens": feed.PriceCount()})
}

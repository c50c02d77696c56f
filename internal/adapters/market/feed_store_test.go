package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

func TestFeedStoreRoundTrip(t *testing.T) {
	s := NewFeedStore()
	ctx := context.Background()
	id := domain.MakeTokenID(1, "0xaaa")

	s.SetPrice(id, 1.25)
	s.SetVolatility(id, 0.3)
	s.SetGasMultiplier(1, 2.5)
	s.SetPoolSlippage("0xpool", 0.8)

	price, err := s.TokenPriceUSD(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, price, 1e-12)

	vol, err := s.Volatility(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, vol, 1e-12)

	gas, err := s.GasPriceMultiplier(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, gas, 1e-12)

	slip, err := s.HistoricalSlippagePct(ctx, "0xpool")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, slip, 1e-12)

	assert.Equal(t, 1, s.PriceCount())
}

func TestFeedStoreDefaults(t *testing.T) {
	s := NewFeedStore()
	ctx := context.Background()

	price, err := s.TokenPriceUSD(ctx, domain.MakeTokenID(1, "0xunknown"))
	require.NoError(t, err)
	assert.Zero(t, price)

	gas, err := s.GasPriceMultiplier(ctx, 42)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, gas, 1e-12, "gas multiplier defaults to 1")
}

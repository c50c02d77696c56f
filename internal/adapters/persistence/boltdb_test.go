package persistence

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

func samplePool() *domain.LiquidityPool {
	return &domain.LiquidityPool{
		Address: "0xpool1",
		Dex:     "alpha",
		Kind:    domain.PoolConstantProduct,
		ChainID: 1,
		TokenA:  domain.Token{Address: "0xaaa", Symbol: "AAA", Decimals: 18, ChainID: 1},
		TokenB:  domain.Token{Address: "0xbbb", Symbol: "BBB", Decimals: 6, ChainID: 1},
		// Larger than uint64 to exercise the decimal-string round trip.
		ReserveA:     new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18)),
		ReserveB:     big.NewInt(2_000_000_000_000),
		LiquidityUSD: 4_000_000,
		FeeBps:       30,
		GasUSD:       1.2,
		Reliability:  98,
	}
}

func TestStoredPoolRoundTrip(t *testing.T) {
	pool := samplePool()

	restored, err := storedToPool(poolToStored(pool))
	require.NoError(t, err)

	assert.Equal(t, pool.Address, restored.Address)
	assert.Equal(t, pool.Kind, restored.Kind)
	assert.Equal(t, pool.TokenA, restored.TokenA)
	assert.Zero(t, pool.ReserveA.Cmp(restored.ReserveA))
	assert.Zero(t, pool.ReserveB.Cmp(restored.ReserveB))
	assert.InDelta(t, pool.LiquidityUSD, restored.LiquidityUSD, 1e-9)
}

func TestStoredPoolRejectsBadReserve(t *testing.T) {
	stored := poolToStored(samplePool())
	stored.ReserveA = "not-a-number"

	_, err := storedToPool(stored)
	assert.Error(t, err)
}

func TestStorageSaveAndLoad(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pools.db")
	s, err := NewStorage(dbPath)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SavePoolBatch([]*domain.LiquidityPool{samplePool()}))

	count, err := s.GetPoolCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	pools, err := s.LoadAllPools()
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, "0xpool1", pools[0].Address)
}

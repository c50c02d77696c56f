package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeTokenID(t *testing.T) {
	id := MakeTokenID(1, "0xA0B86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	assert.Equal(t, TokenID("1:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"), id)
	assert.Equal(t, uint64(1), id.ChainID())
}

func TestParseTokenID(t *testing.T) {
	chainID, addr, err := ParseTokenID(TokenID("137:0xdeadbeef"))
	require.NoError(t, err)
	assert.Equal(t, uint64(137), chainID)
	assert.Equal(t, "0xdeadbeef", addr)

	for _, bad := range []TokenID{"", "noseparator", ":0xabc", "x:0xabc", "1:"} {
		_, _, err := ParseTokenID(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestTokenValidate(t *testing.T) {
	ok := Token{Address: "0xabc", Symbol: "ABC", Decimals: 18, ChainID: 1}
	assert.NoError(t, ok.Validate())

	missing := ok
	missing.Address = ""
	assert.Error(t, missing.Validate())

	noChain := ok
	noChain.ChainID = 0
	assert.Error(t, noChain.Validate())
}

func TestIsStablecoin(t *testing.T) {
	assert.True(t, IsStablecoin("USDC"))
	assert.True(t, IsStablecoin("usdt"))
	assert.False(t, IsStablecoin("WETH"))
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenID uniquely identifies a token on a specific chain ("chainID:address").
// Addresses are normalized to lower case so EVM checksummed and plain forms
// resolve to the same node.
type TokenID string

func MakeTokenID(chainID uint64, address string) TokenID {
	return TokenID(strconv.FormatUint(chainID, 10) + ":" + strings.ToLower(address))
}

// ParseTokenID splits a TokenID back into chain id and address.
func ParseTokenID(id TokenID) (uint64, string, error) {
	raw := string(id)
	sep := strings.IndexByte(raw, ':')
	if sep <= 0 || sep == len(raw)-1 {
		return 0, "", fmt.Errorf("malformed token id %q", raw)
	}
	chainID, err := strconv.ParseUint(raw[:sep], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed chain id in token id %q: %w", raw, err)
	}
	return chainID, raw[sep+1:], nil
}

func (id TokenID) ChainID() uint64 {
	chainID, _, _ := ParseTokenID(id)
	return chainID
}

// Token is the chain-qualified asset identity. Immutable once a graph node
// references it.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	ChainID  uint64 `json:"chainId"`
}

func (t Token) ID() TokenID {
	return MakeTokenID(t.ChainID, t.Address)
}

func (t Token) Validate() error {
	if t.Address == "" {
		return fmt.Errorf("token missing address")
	}
	if t.ChainID == 0 {
		return fmt.Errorf("token %s missing chain id", t.Address)
	}
	return nil
}

// Stablecoin symbols used for routing bias. Kept as a set for O(1) checks.
var StablecoinSymbols = map[string]struct{}{
	"USDC": {}, "USDT": {}, "DAI": {}, "FRAX": {}, "LUSD": {}, "USDE": {}, "TUSD": {},
}

func IsStablecoin(symbol string) bool {
	_, ok := StablecoinSymbols[strings.ToUpper(symbol)]
	return ok
}

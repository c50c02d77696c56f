package persistence

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

const (
	PoolsBucket = "pools"

	DefaultDBPath = "./data/route-optimizer.db"
)

// StoredPool is the durable form of a pool snapshot. Reserves are decimal
// strings so arbitrary token supplies round-trip exactly.
type StoredPool struct {
	Address string `json:"address"`
	Dex     string `json:"dex"`
	Kind    uint8  `json:"kind"`
	ChainID uint64 `json:"chainId"`

	TokenA domain.Token `json:"tokenA"`
	TokenB domain.Token `json:"tokenB"`

	ReserveA   string  `json:"reserveA,omitempty"`
	ReserveB   string  `json:"reserveB,omitempty"`
	SpotRateAB float64 `json:"spotRateAB,omitempty"`

	LiquidityUSD float64 `json:"liquidityUsd"`
	VolumeUSD24h float64 `json:"volumeUsd24h"`
	FeeBps       float64 `json:"feeBps"`
	GasUSD       float64 `json:"gasUsd"`
	Reliability  float64 `json:"reliability"`
	APY          float64 `json:"apy,omitempty"`
	StablePair   bool    `json:"stablePair,omitempty"`

	TokenATVLUSD   float64 `json:"tokenATvlUsd,omitempty"`
	TokenBTVLUSD   float64 `json:"tokenBTvlUsd,omitempty"`
	TokenAPriceUSD float64 `json:"tokenAPriceUsd,omitempty"`
	TokenBPriceUSD float64 `json:"tokenBPriceUsd,omitempty"`
}

// Storage persists pool snapshots so the engine warm-starts with the last
// known graph instead of an empty one.
type Storage struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[storage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) SavePool(pool *domain.LiquidityPool) error {
	data, err := sonic.Marshal(poolToStored(pool))
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}

	return s.db.Set(PoolsBucket, []byte(pool.Address), data)
}

func (s *Storage) SavePoolBatch(pools []*domain.LiquidityPool) error {
	if len(pools) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, pool := range pools {
		data, err := sonic.Marshal(poolToStored(pool))
		if err != nil {
			return fmt.Errorf("failed to marshal pool %s: %w", pool.Address, err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(PoolsBucket),
			Key:    []byte(pool.Address),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add pool %s to batch: %w", pool.Address, err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(pools)).Msg("[storage] FAILED to execute batch")
		return err
	}

	log.Info().Int("count", len(pools)).Msg("[storage] saved pool batch")
	return nil
}

func (s *Storage) LoadAllPools() ([]*domain.LiquidityPool, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	pools := make([]*domain.LiquidityPool, 0, len(data))
	failed := 0

	for address, value := range data {
		var stored StoredPool
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Error().Str("address", address).Err(err).Msg("[storage] failed to unmarshal pool, skipping")
			failed++
			continue
		}

		pool, err := storedToPool(&stored)
		if err != nil {
			log.Error().Str("address", address).Err(err).Msg("[storage] failed to convert stored pool, skipping")
			failed++
			continue
		}

		pools = append(pools, pool)
	}

	if failed > 0 {
		log.Error().
			Int("total_in_db", len(data)).
			Int("loaded", len(pools)).
			Int("failed", failed).
			Msg("[storage] pool loading completed with errors")
	} else {
		log.Info().
			Int("total_in_db", len(data)).
			Int("loaded", len(pools)).
			Msg("[storage] pool loading completed successfully")
	}

	return pools, nil
}

func (s *Storage) GetPoolCount() (int, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func poolToStored(pool *domain.LiquidityPool) *StoredPool {
	stored := &StoredPool{
		Address:        pool.Address,
		Dex:            pool.Dex,
		Kind:           uint8(pool.Kind),
		ChainID:        pool.ChainID,
		TokenA:         pool.TokenA,
		TokenB:         pool.TokenB,
		SpotRateAB:     pool.SpotRateAB,
		LiquidityUSD:   pool.LiquidityUSD,
		VolumeUSD24h:   pool.VolumeUSD24h,
		FeeBps:         pool.FeeBps,
		GasUSD:         pool.GasUSD,
		Reliability:    pool.Reliability,
		APY:            pool.APY,
		StablePair:     pool.StablePair,
		TokenATVLUSD:   pool.TokenATVLUSD,
		TokenBTVLUSD:   pool.TokenBTVLUSD,
		TokenAPriceUSD: pool.TokenAPriceUSD,
		TokenBPriceUSD: pool.TokenBPriceUSD,
	}
	if pool.ReserveA != nil {
		stored.ReserveA = pool.ReserveA.String()
	}
	if pool.ReserveB != nil {
		stored.ReserveB = pool.ReserveB.String()
	}
	return stored
}

func storedToPool(stored *StoredPool) (*domain.LiquidityPool, error) {
	pool := &domain.LiquidityPool{
		Address:        stored.Address,
		Dex:            stored.Dex,
		Kind:           domain.PoolKind(stored.Kind),
		ChainID:        stored.ChainID,
		TokenA:         stored.TokenA,
		TokenB:         stored.TokenB,
		SpotRateAB:     stored.SpotRateAB,
		LiquidityUSD:   stored.LiquidityUSD,
		VolumeUSD24h:   stored.VolumeUSD24h,
		FeeBps:         stored.FeeBps,
		GasUSD:         stored.GasUSD,
		Reliability:    stored.Reliability,
		APY:            stored.APY,
		StablePair:     stored.StablePair,
		TokenATVLUSD:   stored.TokenATVLUSD,
		TokenBTVLUSD:   stored.TokenBTVLUSD,
		TokenAPriceUSD: stored.TokenAPriceUSD,
		TokenBPriceUSD: stored.TokenBPriceUSD,
	}

	if stored.ReserveA != "" {
		r, ok := new(big.Int).SetString(stored.ReserveA, 10)
		if !ok {
			return nil, fmt.Errorf("pool %s has invalid reserveA %q", stored.Address, stored.ReserveA)
		}
		pool.ReserveA = r
	}
	if stored.ReserveB != "" {
		r, ok := new(big.Int).SetString(stored.ReserveB, 10)
		if !ok {
			return nil, fmt.Errorf("pool %s has invalid reserveB %q", stored.Address, stored.ReserveB)
		}
		pool.ReserveB = r
	}

	if err := pool.Validate(); err != nil {
		return nil, err
	}
	return pool, nil
}

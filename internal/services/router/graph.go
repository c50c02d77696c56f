package router

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lumenfi/route-optimizer/internal/domain"
	"github.com/lumenfi/route-optimizer/internal/metrics"
)

// MaxEdgesPerPair caps parallel edges kept per (from,to) pair, best liquidity
// first. Parallel edges per DEX below the cap are preserved, never deduplicated.
const MaxEdgesPerPair = 8

// edgeKey makes pool re-submission idempotent: one edge per (from,to,dex).
type edgeKey struct {
	from domain.TokenID
	to   domain.TokenID
	dex  string
}

// Snapshot is an immutable view of the graph. Every search call operates over
// exactly one Snapshot; updates swap in a fresh one atomically so no reader
// observes a torn state.
type Snapshot struct {
	nodes        map[domain.TokenID]*domain.GraphNode
	outEdges     map[domain.TokenID][]*domain.GraphEdge
	adj          map[domain.TokenID]map[domain.TokenID][]*domain.GraphEdge
	edges        []*domain.GraphEdge
	nodeIDs      []domain.TokenID
	pools        int
	edgesDropped int
	takenAt      time.Time
}

func (s *Snapshot) Node(id domain.TokenID) *domain.GraphNode { return s.nodes[id] }
func (s *Snapshot) HasNode(id domain.TokenID) bool           { _, ok := s.nodes[id]; return ok }
func (s *Snapshot) NodeCount() int                           { return len(s.nodes) }
func (s *Snapshot) EdgeCount() int                           { return len(s.edges) }
func (s *Snapshot) Edges() []*domain.GraphEdge               { return s.edges }
func (s *Snapshot) NodeIDs() []domain.TokenID                { return s.nodeIDs }

// OutEdges returns all directed edges leaving a node.
func (s *Snapshot) OutEdges(id domain.TokenID) []*domain.GraphEdge {
	return s.outEdges[id]
}

// Neighbors returns adjacent node ids, O(1) amortized via the adjacency index.
func (s *Snapshot) Neighbors(id domain.TokenID) []domain.TokenID {
	neighbors := s.adj[id]
	if len(neighbors) == 0 {
		return nil
	}
	out := make([]domain.TokenID, 0, len(neighbors))
	for to := range neighbors {
		out = append(out, to)
	}
	return out
}

// EdgesBetween returns the parallel edges from one node to another.
func (s *Snapshot) EdgesBetween(from, to domain.TokenID) []*domain.GraphEdge {
	if neighbors, ok := s.adj[from]; ok {
		return neighbors[to]
	}
	return nil
}

// Graph owns the token nodes and DEX edges. Writes take the mutex and rebuild
// an immutable snapshot; reads are lock-free through atomic.Value.
type Graph struct {
	mu sync.Mutex

	snapshot atomic.Value // *Snapshot

	nodes      map[domain.TokenID]*domain.GraphNode
	edges      map[edgeKey]*domain.GraphEdge
	pools      map[string]struct{}
	lastUpdate time.Time
}

func NewGraph() *Graph {
	g := &Graph{
		nodes: make(map[domain.TokenID]*domain.GraphNode),
		edges: make(map[edgeKey]*domain.GraphEdge),
		pools: make(map[string]struct{}),
	}
	g.snapshot.Store(emptySnapshot())
	return g
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		nodes:    make(map[domain.TokenID]*domain.GraphNode),
		outEdges: make(map[domain.TokenID][]*domain.GraphEdge),
		adj:      make(map[domain.TokenID]map[domain.TokenID][]*domain.GraphEdge),
		takenAt:  time.Now(),
	}
}

// Snapshot returns the current immutable graph view.
func (g *Graph) Snapshot() *Snapshot {
	return g.snapshot.Load().(*Snapshot)
}

// UpdateGraph applies a batch of pool snapshots: endpoint nodes are resolved
// or created, and one edge per direction per (pair,dex) is inserted or
// refreshed. Re-submitting an identical batch never duplicates edges.
// Invalid pools are skipped; their errors are joined into the return value
// while valid pools still apply. Parallel edges past MaxEdgesPerPair are
// excluded from the published snapshot, lowest liquidity first; the drop
// count is reported in Stats.
func (g *Graph) UpdateGraph(pools []*domain.LiquidityPool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error
	applied := 0
	for _, pool := range pools {
		if pool == nil {
			continue
		}
		if err := pool.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		g.upsertPoolLocked(pool)
		applied++
	}

	if applied > 0 {
		g.lastUpdate = time.Now()
		g.rebuildSnapshotLocked()
		metrics.PoolUpdates.Add(float64(applied))
	}
	if len(errs) > 0 {
		log.Warn().Int("rejected", len(errs)).Int("applied", applied).Msg("graph update rejected malformed pools")
		return errors.Join(errs...)
	}
	return nil
}

// Reset drops every node and edge. The only path that deletes nodes.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = make(map[domain.TokenID]*domain.GraphNode)
	g.edges = make(map[edgeKey]*domain.GraphEdge)
	g.pools = make(map[string]struct{})
	g.rebuildSnapshotLocked()
}

// GetNeighbors returns adjacent node ids from the current snapshot.
func (g *Graph) GetNeighbors(id domain.TokenID) []domain.TokenID {
	return g.Snapshot().Neighbors(id)
}

// Stats reports node/edge/pool counts and average out-degree.
func (g *Graph) Stats() domain.GraphStats {
	snap := g.Snapshot()
	stats := domain.GraphStats{
		Nodes:        snap.NodeCount(),
		Edges:        snap.EdgeCount(),
		EdgesDropped: snap.edgesDropped,
		Pools:        snap.pools,
		LastUpdate:   snap.takenAt,
	}
	if stats.Nodes > 0 {
		stats.AvgOutDegree = float64(stats.Edges) / float64(stats.Nodes)
	}
	return stats
}

// upsertPoolLocked resolves both endpoint nodes and refreshes the two
// directed edges for the pool. Must be called with mu held.
func (g *Graph) upsertPoolLocked(pool *domain.LiquidityPool) {
	g.upsertNodeLocked(pool.TokenA, pool.TokenATVLUSD, pool.TokenAPriceUSD, pool.VolumeUSD24h)
	g.upsertNodeLocked(pool.TokenB, pool.TokenBTVLUSD, pool.TokenBPriceUSD, pool.VolumeUSD24h)
	g.pools[pool.Address] = struct{}{}

	forward := edgeFromPool(pool, true)
	backward := edgeFromPool(pool, false)
	g.edges[edgeKey{forward.From, forward.To, forward.Dex}] = forward
	g.edges[edgeKey{backward.From, backward.To, backward.Dex}] = backward
}

// upsertNodeLocked creates the node on first reference and refreshes market
// metadata on later ones. Refreshes replace the node value so snapshots stay
// immutable for concurrent readers.
func (g *Graph) upsertNodeLocked(token domain.Token, tvlUSD, priceUSD, volumeUSD float64) {
	id := token.ID()
	prev := g.nodes[id]
	node := &domain.GraphNode{Token: token, UpdatedAt: time.Now()}
	if prev != nil {
		*node = *prev
		node.UpdatedAt = time.Now()
	}
	if tvlUSD > 0 {
		node.TVLUSD = tvlUSD
	}
	if priceUSD > 0 {
		node.PriceUSD = priceUSD
	}
	if volumeUSD > 0 {
		node.VolumeUSD24h = volumeUSD
	}
	g.nodes[id] = node
}

func edgeFromPool(pool *domain.LiquidityPool, aToB bool) *domain.GraphEdge {
	edge := &domain.GraphEdge{
		PoolAddress:  pool.Address,
		Dex:          pool.Dex,
		Kind:         pool.Kind,
		ChainID:      pool.ChainID,
		FeeBps:       pool.FeeBps,
		GasUSD:       pool.GasUSD,
		LiquidityUSD: pool.LiquidityUSD,
		Reliability:  pool.Reliability,
		APY:          pool.APY,
		StablePair:   pool.StablePair,
	}
	if aToB {
		edge.From, edge.To = pool.TokenA.ID(), pool.TokenB.ID()
		edge.ReserveIn, edge.ReserveOut = pool.ReserveA, pool.ReserveB
		edge.DecimalsIn, edge.DecimalsOut = pool.TokenA.Decimals, pool.TokenB.Decimals
		edge.SpotRate = pool.SpotRateAB
	} else {
		edge.From, edge.To = pool.TokenB.ID(), pool.TokenA.ID()
		edge.ReserveIn, edge.ReserveOut = pool.ReserveB, pool.ReserveA
		edge.DecimalsIn, edge.DecimalsOut = pool.TokenB.Decimals, pool.TokenA.Decimals
		if pool.SpotRateAB > 0 {
			edge.SpotRate = 1 / pool.SpotRateAB
		}
	}
	edge.BindSource()
	return edge
}

// rebuildSnapshotLocked builds and atomically publishes a fresh immutable
// snapshot. Must be called with mu held.
func (g *Graph) rebuildSnapshotLocked() {
	metrics.GraphSnapshotRebuilds.Inc()

	snap := &Snapshot{
		nodes:    make(map[domain.TokenID]*domain.GraphNode, len(g.nodes)),
		outEdges: make(map[domain.TokenID][]*domain.GraphEdge, len(g.nodes)),
		adj:      make(map[domain.TokenID]map[domain.TokenID][]*domain.GraphEdge, len(g.nodes)),
		edges:    make([]*domain.GraphEdge, 0, len(g.edges)),
		nodeIDs:  make([]domain.TokenID, 0, len(g.nodes)),
		pools:    len(g.pools),
		takenAt:  time.Now(),
	}

	for id, node := range g.nodes {
		snap.nodes[id] = node
		snap.nodeIDs = append(snap.nodeIDs, id)
	}

	for _, edge := range g.edges {
		if snap.adj[edge.From] == nil {
			snap.adj[edge.From] = make(map[domain.TokenID][]*domain.GraphEdge)
		}
		snap.adj[edge.From][edge.To] = append(snap.adj[edge.From][edge.To], edge)
	}

	// Rank parallel edges by liquidity and cap per pair, then flatten into
	// the out-edge index and the flat edge list the relaxation searches use.
	for from, neighbors := range snap.adj {
		for to, edges := range neighbors {
			sort.Slice(edges, func(i, j int) bool {
				return edges[i].LiquidityUSD > edges[j].LiquidityUSD
			})
			if len(edges) > MaxEdgesPerPair {
				snap.edgesDropped += len(edges) - MaxEdgesPerPair
				edges = edges[:MaxEdgesPerPair]
				neighbors[to] = edges
			}
			snap.outEdges[from] = append(snap.outEdges[from], edges...)
			snap.edges = append(snap.edges, edges...)
		}
	}

	g.snapshot.Store(snap)
	metrics.NodeCount.Set(float64(len(snap.nodes)))
	metrics.EdgeCount.Set(float64(len(snap.edges)))
}

// checkIntegrity verifies that both endpoints of an edge exist in the
// snapshot. A failure is a programming error surfaced as GraphIntegrityError.
func (s *Snapshot) checkIntegrity(edge *domain.GraphEdge) error {
	if !s.HasNode(edge.From) {
		return &GraphIntegrityError{PoolAddress: edge.PoolAddress, Missing: edge.From}
	}
	if !s.HasNode(edge.To) {
		return &GraphIntegrityError{PoolAddress: edge.PoolAddress, Missing: edge.To}
	}
	return nil
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("graph{nodes=%d edges=%d pools=%d}", len(s.nodes), len(s.edges), s.pools)
}

package route

import (
	"container/heap"
	"fmt"
	"math/rand"
	"sync"

	"shiptrack/internal/geo"
	"shiptrack/internal/models"
)

const (
	// DefaultStepDeg is the grid step of the lazily generated movement
	// graph, in degrees.
	DefaultStepDeg = 1.0

	// DefaultArrivalKm accepts a node as the destination once it is within
	// this great-circle distance of the target. Exact coordinate equality
	// would never terminate under grid quantization.
	DefaultArrivalKm = 1.0

	// DefaultMaxExpansions bounds the search against pathological cost
	// sequences; the grid itself is unbounded.
	DefaultMaxExpansions = 500000
)

// CostFunc prices one grid edge. The default is a random cost simulating
// dynamic traversal conditions, which makes the search a randomized-cost
// uniform-cost search: repeated calls may return different routes.
type CostFunc func(from, to geo.Coordinate) float64

// RandomCost returns a seeded CostFunc drawing integer costs in [1, 10].
// Safe for concurrent use.
func RandomCost(seed int64) CostFunc {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))
	return func(_, _ geo.Coordinate) float64 {
		mu.Lock()
		defer mu.Unlock()
		return float64(rng.Intn(10) + 1)
	}
}

// Engine computes port-to-port sea routes. It holds no mutable state
// beyond the cost function, so invocations may run concurrently.
type Engine struct {
	oracle        *geo.Oracle
	cost          CostFunc
	stepDeg       float64
	arrivalKm     float64
	maxExpansions int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCost replaces the edge cost function.
func WithCost(cost CostFunc) Option {
	return func(e *Engine) { e.cost = cost }
}

// WithStep sets the grid step in degrees.
func WithStep(deg float64) Option {
	return func(e *Engine) { e.stepDeg = deg }
}

// WithArrivalThreshold sets the arrival distance in kilometers.
func WithArrivalThreshold(km float64) Option {
	return func(e *Engine) { e.arrivalKm = km }
}

// WithMaxExpansions bounds the number of nodes the search may expand.
func WithMaxExpansions(n int) Option {
	return func(e *Engine) { e.maxExpansions = n }
}

// NewEngine creates a route engine that filters grid moves through the
// given oracle.
func NewEngine(oracle *geo.Oracle, opts ...Option) *Engine {
	e := &Engine{
		oracle:        oracle,
		cost:          RandomCost(0),
		stepDeg:       DefaultStepDeg,
		arrivalKm:     DefaultArrivalKm,
		maxExpansions: DefaultMaxExpansions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Find computes a route between two named ports. An unknown port name
// fails with ErrInvalidInput; an unreachable destination returns an empty
// path, which is a normal outcome, not an error.
func (e *Engine) Find(start, end string) ([]geo.Coordinate, error) {
	from, ok := ports[start]
	if !ok {
		return nil, fmt.Errorf("%w: unknown port %q", models.ErrInvalidInput, start)
	}
	to, ok := ports[end]
	if !ok {
		return nil, fmt.Errorf("%w: unknown port %q", models.ErrInvalidInput, end)
	}
	return e.Search(from, to), nil
}

// gridKey addresses a node by whole grid steps from the start coordinate,
// avoiding float comparisons in the visited set.
type gridKey struct {
	i, j int
}

type searchNode struct {
	key   gridKey
	coord geo.Coordinate
	cost  float64
	path  []geo.Coordinate
}

// Search runs a cost-ordered expansion from start towards end over the
// lazily generated movement grid: each popped node spawns the four
// cardinal neighbors one step away, minus those the oracle rejects. Nodes
// are marked visited when popped, so each grid cell is expanded at most
// once. Returns the empty path when the frontier empties or the expansion
// bound is hit.
func (e *Engine) Search(start, end geo.Coordinate) []geo.Coordinate {
	pq := &frontier{}
	heap.Init(pq)
	heap.Push(pq, &searchNode{coord: start})

	// The grid is anchored at the start, so its points can sit up to a
	// full cell away from the target; an arrival radius smaller than one
	// cell would never be satisfied. 111 km approximates one degree.
	arrivalKm := e.arrivalKm
	if cellKm := e.stepDeg * 111.0; cellKm > arrivalKm {
		arrivalKm = cellKm
	}

	visited := make(map[gridKey]bool)

	for expansions := 0; pq.Len() > 0 && expansions < e.maxExpansions; expansions++ {
		node := heap.Pop(pq).(*searchNode)

		if visited[node.key] {
			continue
		}
		visited[node.key] = true

		path := make([]geo.Coordinate, len(node.path)+1)
		copy(path, node.path)
		path[len(node.path)] = node.coord

		if geo.HaversineKm(node.coord, end) < arrivalKm {
			return path
		}

		for _, next := range e.neighbors(start, node.key) {
			if visited[next.key] {
				continue
			}
			next.cost = node.cost + e.cost(node.coord, next.coord)
			next.path = path
			heap.Push(pq, next)
		}
	}

	return nil
}

// neighbors generates the four cardinal moves from a grid cell, keeping
// only navigable ones.
func (e *Engine) neighbors(origin geo.Coordinate, key gridKey) []*searchNode {
	moves := []gridKey{
		{key.i + 1, key.j},
		{key.i - 1, key.j},
		{key.i, key.j + 1},
		{key.i, key.j - 1},
	}

	result := make([]*searchNode, 0, len(moves))
	for _, k := range moves {
		coord := geo.Coordinate{
			Lat: origin.Lat + float64(k.i)*e.stepDeg,
			Lon: origin.Lon + float64(k.j)*e.stepDeg,
		}
		if !e.oracle.Navigable(coord.Lat, coord.Lon) {
			continue
		}
		result = append(result, &searchNode{key: k, coord: coord})
	}
	return result
}

// frontier is a min-heap of search nodes ordered by accumulated cost, with
// the grid key as a tie-break for deterministic expansion order under a
// deterministic cost function.
type frontier []*searchNode

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	if f[i].key.i != f[j].key.i {
		return f[i].key.i < f[j].key.i
	}
	return f[i].key.j < f[j].key.j
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x interface{}) {
	*f = append(*f, x.(*searchNode))
}

func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	node := old[n-1]
	*f = old[0 : n-1]
	return node
}

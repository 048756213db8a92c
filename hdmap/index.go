package hdmap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/paulmach/orb"

	"github.com/driveframe/storyteller/model"
)

// ErrMapNotLoaded is returned by queries against an index that holds no map
// yet. Callers must not treat it as "no junction here".
var ErrMapNotLoaded = errors.New("hdmap: map not loaded")

// Region is a mapped junction area: an identifier, the junction kind, and
// the boundary polygon in the local map frame.
type Region struct {
	ID      string
	Kind    model.JunctionKind
	Polygon orb.Polygon
}

// Index is an in-memory, thread-safe spatial index over junction regions.
// It is read-mostly: the map is loaded once and queried every cycle.
type Index struct {
	mu sync.RWMutex

	// regions by kind, then by ID.
	regions map[model.JunctionKind]map[string]*indexedRegion
	loaded  bool
}

// indexedRegion caches the closed outer ring and the distinct vertex count
// so queries don't re-derive them per point.
type indexedRegion struct {
	id          string
	ring        orb.Ring
	vertexCount int
}

// NewIndex constructs an empty index. Queries fail with ErrMapNotLoaded
// until at least one region has been added.
func NewIndex() *Index {
	return &Index{
		regions: map[model.JunctionKind]map[string]*indexedRegion{
			model.JunctionKindJunction:    {},
			model.JunctionKindPNCJunction: {},
		},
	}
}

// AddRegion adds a junction region. It returns an error for an empty ID, an
// unknown kind, or a duplicate ID within the same kind. Degenerate polygons
// (fewer than 3 distinct vertices) are stored as-is; queries report their
// vertex count and callers decide whether to reject the match.
func (ix *Index) AddRegion(r *Region) error {
	if r == nil {
		return fmt.Errorf("hdmap: nil region")
	}
	if r.ID == "" {
		return fmt.Errorf("hdmap: region with empty id")
	}
	if r.Kind != model.JunctionKindJunction && r.Kind != model.JunctionKindPNCJunction {
		return fmt.Errorf("hdmap: region %q has unsupported kind %v", r.ID, r.Kind)
	}

	var outer orb.Ring
	if len(r.Polygon) > 0 {
		outer = r.Polygon[0]
	}
	vertices := distinctVertexCount(outer)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	byID := ix.regions[r.Kind]
	if _, exists := byID[r.ID]; exists {
		return fmt.Errorf("hdmap: region with ID %q already exists for kind %v", r.ID, r.Kind)
	}
	byID[r.ID] = &indexedRegion{
		id:          r.ID,
		ring:        closedRing(outer),
		vertexCount: vertices,
	}
	ix.loaded = true
	return nil
}

// RegionCount returns the number of stored regions of the given kind.
func (ix *Index) RegionCount(kind model.JunctionKind) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.regions[kind])
}

// FindNearestRegion returns the nearest region of the given kind within
// radius of point, or nil when none qualifies. A point inside a region is
// at distance 0, so a zero radius still finds containing regions. Ties on
// distance are broken by lexicographic region ID so the result is
// deterministic.
func (ix *Index) FindNearestRegion(point orb.Point, radius float64, kind model.JunctionKind) (*model.RegionMatch, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.loaded {
		return nil, ErrMapNotLoaded
	}
	if radius < 0 {
		return nil, fmt.Errorf("hdmap: negative search radius %v", radius)
	}

	var (
		best     *indexedRegion
		bestDist float64
	)
	for _, r := range ix.regions[kind] {
		d := distanceToRing(point, r.ring)
		if d > radius {
			continue
		}
		if best == nil || d < bestDist || (d == bestDist && r.id < best.id) {
			best = r
			bestDist = d
		}
	}
	if best == nil {
		return nil, nil
	}
	return &model.RegionMatch{ID: best.id, VertexCount: best.vertexCount}, nil
}

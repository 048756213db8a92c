package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/paulmach/orb"

	"github.com/driveframe/storyteller/model"
)

// ErrTrajectoryNotReady is returned when the planning trajectory is missing
// or has no path points. The cycle is skipped; published state is left
// untouched.
var ErrTrajectoryNotReady = errors.New("core: planning trajectory not ready")

// minPolygonVertices is the smallest boundary a junction region may have.
// Anything below this is a degenerate map entry and is treated as no match.
const minPolygonVertices = 3

// MapIndex is the narrow slice of the HD map the scanner needs: the nearest
// region of one kind within a radius of a point. nil means no region
// qualifies; an error means the map could not answer and must not be read
// as a negative match.
type MapIndex interface {
	FindNearestRegion(point orb.Point, radius float64, kind model.JunctionKind) (*model.RegionMatch, error)
}

// QueryRecorder counts map-index queries by kind and result. Implemented by
// the observability collector; nil disables recording.
type QueryRecorder interface {
	RecordMapQuery(kind, result string)
}

// Scanner walks a trajectory's path points in order, within a bounded
// look-ahead distance, and reports the first junction the path enters.
//
// A single physical area can satisfy both junction definitions at once.
// Once the finer PNC definition has claimed a point, the scanner remembers
// the id of the plain junction overlapping it so that a later cycle, where
// the scanned window no longer starts inside the PNC region, does not
// re-report the same area as a fresh plain-junction event.
type Scanner struct {
	index        MapIndex
	searchRadius float64
	lookahead    float64
	metrics      QueryRecorder

	mu sync.Mutex
	// overlappingJunctionID is a single-slot memory, not a set: only the
	// most recent overlapping pair is tracked. Cleared whenever a scanned
	// point matches neither kind.
	overlappingJunctionID string
}

// NewScanner constructs a scanner. searchRadius bounds each map query;
// lookahead bounds the scanned arc-length from the trajectory start.
// metrics may be nil.
func NewScanner(index MapIndex, searchRadius, lookahead float64, metrics QueryRecorder) *Scanner {
	return &Scanner{
		index:        index,
		searchRadius: searchRadius,
		lookahead:    lookahead,
		metrics:      metrics,
	}
}

// Scan walks the trajectory and returns the nearest qualifying junction.
//
// The outcome's Distance is -1 when nothing qualifies within the look-ahead
// window, 0 when the first path point already sits inside a junction, and
// otherwise the arc-length offset from the trajectory start to the first
// qualifying point. Map-index failures propagate; they are never folded
// into a "no junction" outcome.
func (sc *Scanner) Scan(trajectory *model.Trajectory) (model.ScanOutcome, error) {
	if trajectory.Empty() {
		return model.ScanOutcome{}, ErrTrajectoryNotReady
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	outcome := model.ScanOutcome{Kind: model.JunctionKindNone, Distance: -1}
	sStart := trajectory.Points[0].S
	for _, point := range trajectory.Points {
		// Strict greater-than: a point exactly at the look-ahead boundary
		// is still evaluated.
		if point.S > sStart+sc.lookahead {
			break
		}
		junctionID, junctionFound, err := sc.matchAt(point.Point(), model.JunctionKindJunction)
		if err != nil {
			return model.ScanOutcome{}, err
		}
		pncJunctionID, pncFound, err := sc.matchAt(point.Point(), model.JunctionKindPNCJunction)
		if err != nil {
			return model.ScanOutcome{}, err
		}

		if pncFound {
			// In a PNC junction, possibly overlapping a plain junction.
			outcome = model.ScanOutcome{
				JunctionID: pncJunctionID,
				Kind:       model.JunctionKindPNCJunction,
				Distance:   point.S - sStart,
			}
			if junctionFound {
				sc.overlappingJunctionID = junctionID
			} else {
				sc.overlappingJunctionID = ""
			}
			break
		} else if junctionFound {
			if junctionID != sc.overlappingJunctionID {
				// Not the plain half of an already-claimed overlapping pair.
				outcome = model.ScanOutcome{
					JunctionID: junctionID,
					Kind:       model.JunctionKindJunction,
					Distance:   point.S - sStart,
				}
			}
			break
		}
		sc.overlappingJunctionID = ""
	}
	return outcome, nil
}

// matchAt queries the map index for the nearest region of the given kind
// and applies the degenerate-polygon rejection.
func (sc *Scanner) matchAt(p orb.Point, kind model.JunctionKind) (string, bool, error) {
	match, err := sc.index.FindNearestRegion(p, sc.searchRadius, kind)
	if err != nil {
		sc.recordQuery(kind, "error")
		return "", false, fmt.Errorf("core: map query for %v failed: %w", kind, err)
	}
	if match == nil {
		sc.recordQuery(kind, "miss")
		return "", false, nil
	}
	if match.VertexCount < minPolygonVertices {
		sc.recordQuery(kind, "degenerate")
		return "", false, nil
	}
	sc.recordQuery(kind, "match")
	return match.ID, true, nil
}

func (sc *Scanner) recordQuery(kind model.JunctionKind, result string) {
	if sc.metrics == nil {
		return
	}
	sc.metrics.RecordMapQuery(strings.ToLower(kind.String()), result)
}

// OverlappingJunctionID returns the current overlap memory. Exposed so
// tests can inspect suppression state directly.
func (sc *Scanner) OverlappingJunctionID() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.overlappingJunctionID
}

// SetOverlappingJunctionID seeds the overlap memory. Exposed so tests can
// drive the suppression path without a preparatory scan.
func (sc *Scanner) SetOverlappingJunctionID(id string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.overlappingJunctionID = id
}

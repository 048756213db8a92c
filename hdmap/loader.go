package hdmap

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"

	"github.com/driveframe/storyteller/model"
)

// MapSummary is a small summary of what was loaded from JSON. It's mainly
// useful for logging from main().
type MapSummary struct {
	JunctionIDs    []string
	PNCJunctionIDs []string
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type mapJSON struct {
	Junctions    []regionJSON `json:"junctions"`
	PNCJunctions []regionJSON `json:"pnc_junctions"`
}

type regionJSON struct {
	ID string `json:"id"`
	// Polygon lists boundary vertices as [x, y] pairs. The closing
	// repetition of the first vertex is optional.
	Polygon [][2]float64 `json:"polygon"`
}

// LoadMap reads a JSON junction map from r, populates the Index, and
// returns a summary of what was loaded. It fails on JSON errors, empty IDs,
// and duplicate IDs; polygon degeneracy is left to query-time handling.
func LoadMap(ix *Index, r io.Reader) (*MapSummary, error) {
	if ix == nil {
		return nil, fmt.Errorf("LoadMap: index is nil")
	}

	var payload mapJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadMap: decode failed: %w", err)
	}

	summary := &MapSummary{
		JunctionIDs:    make([]string, 0, len(payload.Junctions)),
		PNCJunctionIDs: make([]string, 0, len(payload.PNCJunctions)),
	}

	for _, js := range payload.Junctions {
		if err := ix.AddRegion(&Region{
			ID:      js.ID,
			Kind:    model.JunctionKindJunction,
			Polygon: polygonFromJSON(js.Polygon),
		}); err != nil {
			return nil, fmt.Errorf("LoadMap: junction %q: %w", js.ID, err)
		}
		summary.JunctionIDs = append(summary.JunctionIDs, js.ID)
	}

	for _, js := range payload.PNCJunctions {
		if err := ix.AddRegion(&Region{
			ID:      js.ID,
			Kind:    model.JunctionKindPNCJunction,
			Polygon: polygonFromJSON(js.Polygon),
		}); err != nil {
			return nil, fmt.Errorf("LoadMap: pnc_junction %q: %w", js.ID, err)
		}
		summary.PNCJunctionIDs = append(summary.PNCJunctionIDs, js.ID)
	}

	return summary, nil
}

func polygonFromJSON(vertices [][2]float64) orb.Polygon {
	if len(vertices) == 0 {
		return nil
	}
	ring := make(orb.Ring, 0, len(vertices))
	for _, v := range vertices {
		ring = append(ring, orb.Point{v[0], v[1]})
	}
	return orb.Polygon{ring}
}

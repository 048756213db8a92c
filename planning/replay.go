package planning

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/driveframe/storyteller/model"
)

// replay JSON shapes – unexported so the file format can evolve.
type replayJSON struct {
	Cycles []trajectoryJSON `json:"cycles"`
}

type trajectoryJSON struct {
	// Points lists path points as [x, y, s] triples.
	Points [][3]float64 `json:"points"`
}

// LoadReplay reads a JSON replay file: one trajectory per cycle, each an
// ordered list of [x, y, s] path points. An empty points list is preserved
// as an empty trajectory so not-ready cycles can be replayed too.
func LoadReplay(r io.Reader) ([]*model.Trajectory, error) {
	var payload replayJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadReplay: decode failed: %w", err)
	}

	cycles := make([]*model.Trajectory, 0, len(payload.Cycles))
	for i, tj := range payload.Cycles {
		points := make([]model.PathPoint, 0, len(tj.Points))
		var prevS float64
		for j, p := range tj.Points {
			if j > 0 && p[2] < prevS {
				return nil, fmt.Errorf("LoadReplay: cycle %d point %d: arc-length decreases (%v after %v)", i, j, p[2], prevS)
			}
			prevS = p[2]
			points = append(points, model.PathPoint{X: p[0], Y: p[1], S: p[2]})
		}
		cycles = append(cycles, &model.Trajectory{Points: points})
	}
	return cycles, nil
}

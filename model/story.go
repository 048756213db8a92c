package model

// JunctionKind distinguishes the two mapped junction concepts. A PNC
// junction is the finer planning/control region; it may spatially overlap
// a plain junction and wins whenever both match at the same point.
type JunctionKind int

const (
	JunctionKindNone JunctionKind = iota
	JunctionKindJunction
	JunctionKindPNCJunction
)

func (k JunctionKind) String() string {
	switch k {
	case JunctionKindJunction:
		return "JUNCTION"
	case JunctionKindPNCJunction:
		return "PNC_JUNCTION"
	default:
		return "NONE"
	}
}

// RegionMatch is the result of a single map-index query: the identifier of
// the nearest region of the requested kind plus the vertex count of its
// boundary polygon. Callers reject matches with fewer than 3 vertices.
type RegionMatch struct {
	ID          string
	VertexCount int
}

// ScanOutcome summarises one proximity scan over a trajectory.
//
// Distance is -1 when no junction qualifies, 0 when the trajectory already
// starts inside one, and otherwise the positive arc-length offset from the
// trajectory start to the first qualifying point.
type ScanOutcome struct {
	JunctionID string
	Kind       JunctionKind
	Distance   float64
}

// CloseToJunction is the story record published while the vehicle is near
// or inside a junction. At most one record is active at a time.
type CloseToJunction struct {
	ID       string
	Kind     JunctionKind
	Distance float64
}

package model

import "github.com/paulmach/orb"

// PathPoint is a single sample of a planned path: a position in the local
// map frame plus the arc-length travelled from the start of the trajectory.
type PathPoint struct {
	X float64
	Y float64
	S float64 // arc-length from the trajectory start, metres
}

// Point returns the planar position of the path point.
func (p PathPoint) Point() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Trajectory is the planning output for one control cycle: an ordered
// sequence of path points with monotonically increasing arc-length.
// Trajectories are read-only once published.
type Trajectory struct {
	Points []PathPoint
}

// Empty reports whether the trajectory carries no path points.
func (t *Trajectory) Empty() bool {
	return t == nil || len(t.Points) == 0
}

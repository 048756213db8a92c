package hdmap

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// closedRing returns a copy of ring that repeats the first vertex at the
// end, as orb's containment tests expect. Empty rings pass through.
func closedRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 || ring.Closed() {
		return ring
	}
	closed := make(orb.Ring, 0, len(ring)+1)
	closed = append(closed, ring...)
	closed = append(closed, ring[0])
	return closed
}

// distinctVertexCount counts boundary vertices, ignoring the closing
// repetition of the first vertex if present.
func distinctVertexCount(ring orb.Ring) int {
	n := len(ring)
	if n > 1 && ring.Closed() {
		n--
	}
	return n
}

// distanceToRing returns 0 when the point lies inside or on the ring and
// otherwise the planar distance from the point to the nearest boundary
// segment. Rings with fewer than 2 vertices reduce to point distance.
func distanceToRing(point orb.Point, ring orb.Ring) float64 {
	switch len(ring) {
	case 0:
		return math.Inf(1) // a region with no boundary can never match
	case 1:
		return planar.Distance(point, ring[0])
	}
	if planar.RingContains(ring, point) {
		return 0
	}
	best := planar.Distance(point, ring[0])
	for i := 1; i < len(ring); i++ {
		if d := distanceToSegment(point, ring[i-1], ring[i]); d < best {
			best = d
		}
	}
	return best
}

// distanceToSegment returns the distance from p to the segment a-b. The
// closest point is found by projecting p onto the segment and clamping the
// parameter to [0, 1].
func distanceToSegment(p, a, b orb.Point) float64 {
	vx := b[0] - a[0]
	vy := b[1] - a[1]
	den := vx*vx + vy*vy
	if den == 0 {
		return planar.Distance(p, a)
	}
	t := ((p[0]-a[0])*vx + (p[1]-a[1])*vy) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := orb.Point{a[0] + vx*t, a[1] + vy*t}
	return planar.Distance(p, closest)
}

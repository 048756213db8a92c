package hdmap

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/driveframe/storyteller/model"
)

func square(id string, kind model.JunctionKind, minX, minY, maxX, maxY float64) *Region {
	return &Region{
		ID:   id,
		Kind: kind,
		Polygon: orb.Polygon{{
			{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY},
		}},
	}
}

func TestFindNearestRegionNotLoaded(t *testing.T) {
	ix := NewIndex()
	_, err := ix.FindNearestRegion(orb.Point{0, 0}, 10, model.JunctionKindJunction)
	if !errors.Is(err, ErrMapNotLoaded) {
		t.Fatalf("err = %v, want ErrMapNotLoaded", err)
	}
}

func TestFindNearestRegionContainment(t *testing.T) {
	ix := NewIndex()
	if err := ix.AddRegion(square("j1", model.JunctionKindJunction, 0, 0, 10, 10)); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}

	// A contained point is at distance 0, so even a zero radius finds it.
	match, err := ix.FindNearestRegion(orb.Point{5, 5}, 0, model.JunctionKindJunction)
	if err != nil {
		t.Fatalf("FindNearestRegion: %v", err)
	}
	if match == nil || match.ID != "j1" {
		t.Fatalf("match = %+v, want j1", match)
	}
	if match.VertexCount != 4 {
		t.Fatalf("vertex count = %d, want 4", match.VertexCount)
	}

	// A point outside the region is not found at zero radius.
	match, err = ix.FindNearestRegion(orb.Point{12, 5}, 0, model.JunctionKindJunction)
	if err != nil {
		t.Fatalf("FindNearestRegion: %v", err)
	}
	if match != nil {
		t.Fatalf("match = %+v, want nil outside region at radius 0", match)
	}
}

func TestFindNearestRegionWithinRadius(t *testing.T) {
	ix := NewIndex()
	if err := ix.AddRegion(square("near", model.JunctionKindJunction, 10, -5, 20, 5)); err != nil {
		t.Fatalf("AddRegion(near): %v", err)
	}
	if err := ix.AddRegion(square("far", model.JunctionKindJunction, 30, -5, 40, 5)); err != nil {
		t.Fatalf("AddRegion(far): %v", err)
	}

	// Both are within 50; the nearer one wins.
	match, err := ix.FindNearestRegion(orb.Point{0, 0}, 50, model.JunctionKindJunction)
	if err != nil {
		t.Fatalf("FindNearestRegion: %v", err)
	}
	if match == nil || match.ID != "near" {
		t.Fatalf("match = %+v, want near", match)
	}

	// Radius 15 excludes the far region but keeps the near one (10 away).
	match, err = ix.FindNearestRegion(orb.Point{0, 0}, 15, model.JunctionKindJunction)
	if err != nil {
		t.Fatalf("FindNearestRegion: %v", err)
	}
	if match == nil || match.ID != "near" {
		t.Fatalf("match = %+v, want near within radius 15", match)
	}

	// Radius 5 excludes both.
	match, err = ix.FindNearestRegion(orb.Point{0, 0}, 5, model.JunctionKindJunction)
	if err != nil {
		t.Fatalf("FindNearestRegion: %v", err)
	}
	if match != nil {
		t.Fatalf("match = %+v, want nil with radius 5", match)
	}
}

func TestFindNearestRegionDeterministicTieBreak(t *testing.T) {
	ix := NewIndex()
	// Two identical squares, both at distance 0 from the query point.
	if err := ix.AddRegion(square("b-junction", model.JunctionKindJunction, 0, 0, 10, 10)); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}
	if err := ix.AddRegion(square("a-junction", model.JunctionKindJunction, 0, 0, 10, 10)); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}

	for i := 0; i < 10; i++ {
		match, err := ix.FindNearestRegion(orb.Point{5, 5}, 1, model.JunctionKindJunction)
		if err != nil {
			t.Fatalf("FindNearestRegion: %v", err)
		}
		if match == nil || match.ID != "a-junction" {
			t.Fatalf("match = %+v, want a-junction (lexicographic tie-break)", match)
		}
	}
}

func TestFindNearestRegionKindsAreSeparate(t *testing.T) {
	ix := NewIndex()
	if err := ix.AddRegion(square("j1", model.JunctionKindJunction, 0, 0, 10, 10)); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}

	match, err := ix.FindNearestRegion(orb.Point{5, 5}, 10, model.JunctionKindPNCJunction)
	if err != nil {
		t.Fatalf("FindNearestRegion: %v", err)
	}
	if match != nil {
		t.Fatalf("match = %+v, want nil for the other kind", match)
	}
}

func TestDegenerateRegionReportsVertexCount(t *testing.T) {
	ix := NewIndex()
	if err := ix.AddRegion(&Region{
		ID:      "line",
		Kind:    model.JunctionKindPNCJunction,
		Polygon: orb.Polygon{{{0, 0}, {10, 0}}},
	}); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}

	// The index reports the degenerate match; rejecting it is the
	// caller's decision.
	match, err := ix.FindNearestRegion(orb.Point{5, 0}, 1, model.JunctionKindPNCJunction)
	if err != nil {
		t.Fatalf("FindNearestRegion: %v", err)
	}
	if match == nil || match.VertexCount != 2 {
		t.Fatalf("match = %+v, want 2-vertex match", match)
	}
}

func TestAddRegionClosedRingVertexCount(t *testing.T) {
	ix := NewIndex()
	// Closed ring: the repeated first vertex must not inflate the count.
	if err := ix.AddRegion(&Region{
		ID:      "closed",
		Kind:    model.JunctionKindJunction,
		Polygon: orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}},
	}); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}

	match, err := ix.FindNearestRegion(orb.Point{5, 5}, 0, model.JunctionKindJunction)
	if err != nil {
		t.Fatalf("FindNearestRegion: %v", err)
	}
	if match == nil || match.VertexCount != 4 {
		t.Fatalf("match = %+v, want vertex count 4", match)
	}
}

func TestAddRegionValidation(t *testing.T) {
	ix := NewIndex()
	if err := ix.AddRegion(&Region{ID: "", Kind: model.JunctionKindJunction}); err == nil {
		t.Fatalf("empty ID should fail")
	}
	if err := ix.AddRegion(&Region{ID: "x", Kind: model.JunctionKindNone}); err == nil {
		t.Fatalf("kind NONE should fail")
	}
	if err := ix.AddRegion(square("dup", model.JunctionKindJunction, 0, 0, 1, 1)); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}
	if err := ix.AddRegion(square("dup", model.JunctionKindJunction, 0, 0, 1, 1)); err == nil {
		t.Fatalf("duplicate ID should fail")
	}
	// Same ID under the other kind is allowed; they are distinct entities.
	if err := ix.AddRegion(square("dup", model.JunctionKindPNCJunction, 0, 0, 1, 1)); err != nil {
		t.Fatalf("AddRegion same ID other kind: %v", err)
	}
}

func TestFindNearestRegionNegativeRadius(t *testing.T) {
	ix := NewIndex()
	if err := ix.AddRegion(square("j1", model.JunctionKindJunction, 0, 0, 1, 1)); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}
	if _, err := ix.FindNearestRegion(orb.Point{0, 0}, -1, model.JunctionKindJunction); err == nil {
		t.Fatalf("negative radius should fail")
	}
}

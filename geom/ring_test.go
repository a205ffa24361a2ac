package geom

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestMergeLines(t *testing.T) {
	l1 := orb.LineString{{0, 0}, {1, 0}, {1, 1}}
	l2 := orb.LineString{{1, 1}, {0, 1}, {0, 0}}

	result := mergeLines([]orb.LineString{l1, l2})
	if len(result) != 1 {
		t.Fatal(result)
	}
	expected := orb.LineString{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	if !result[0].Equal(expected) {
		t.Fatalf("%v != %v", result[0], expected)
	}
	if len(l1) != 3 {
		t.Fatal("input modified", l1)
	}
}

func TestMergeLinesReverseEndpoints(t *testing.T) {
	l1 := orb.LineString{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	l2 := orb.LineString{{6, 6}, {5, 5}, {4, 4}}
	l3 := orb.LineString{{1, 1}, {7, 7}, {6, 6}}

	result := mergeLines([]orb.LineString{l1, l2, l3})
	if len(result) != 1 {
		t.Fatal(result)
	}
	if !closedLine(result[0]) {
		t.Fatal("not closed", result[0])
	}
	if len(result[0]) != 8 {
		t.Fatal(result[0])
	}
}

func TestMergeLinesJoinsBothEnds(t *testing.T) {
	l1 := orb.LineString{{0, 0}, {1, 0}}
	l2 := orb.LineString{{2, 0}, {3, 0}}
	l3 := orb.LineString{{1, 0}, {2, 0}}

	result := mergeLines([]orb.LineString{l1, l2, l3})
	if len(result) != 1 {
		t.Fatal(result)
	}
	expected := orb.LineString{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	if !result[0].Equal(expected) {
		t.Fatalf("%v != %v", result[0], expected)
	}
}

func TestCloseRingsDropsOpen(t *testing.T) {
	open := orb.LineString{{0, 0}, {1, 0}, {1, 1}}
	a := orb.LineString{{5, 5}, {6, 5}, {6, 6}}
	b := orb.LineString{{6, 6}, {5, 6}, {5, 5}}

	rings := closeRings([]orb.LineString{open, a, b})
	if len(rings) != 1 {
		t.Fatal(rings)
	}
	if rings[0][0] != (orb.Point{5, 5}) {
		t.Fatal(rings[0])
	}
}

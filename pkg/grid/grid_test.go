package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestFromMaskValidation verifies the construction error paths
func TestFromMaskValidation(t *testing.T) {
	if _, err := FromMask(2, 2, make([]bool, 3)); err == nil {
		t.Error("expected error for mask/dimension mismatch")
	}
	if _, err := FromMask(-1, 2, nil); err == nil {
		t.Error("expected error for negative height")
	}
	if _, err := FromMask(0, 0, nil); err != nil {
		t.Errorf("empty grid should be legal, got %v", err)
	}
}

// TestMembership verifies foreground queries, including the defined
// out-of-range behavior
func TestMembership(t *testing.T) {
	g, err := FromMask(2, 3, []bool{
		true, false, true,
		false, true, false,
	})
	if err != nil {
		t.Fatalf("FromMask: %v", err)
	}

	testCases := []struct {
		coord    Coordinate
		expected bool
	}{
		{Coordinate{0, 0}, true},
		{Coordinate{0, 1}, false},
		{Coordinate{0, 2}, true},
		{Coordinate{1, 1}, true},
		{Coordinate{1, 2}, false},
		// Out-of-range is background, never an error
		{Coordinate{-1, 0}, false},
		{Coordinate{0, -1}, false},
		{Coordinate{2, 0}, false},
		{Coordinate{0, 3}, false},
		{Coordinate{100, 100}, false},
	}

	for _, tc := range testCases {
		if got := g.IsForeground(tc.coord); got != tc.expected {
			t.Errorf("IsForeground(%v): expected %v, got %v", tc.coord, tc.expected, got)
		}
	}

	if g.ForegroundCount() != 3 {
		t.Errorf("ForegroundCount: expected 3, got %d", g.ForegroundCount())
	}
}

// TestForegroundOrder verifies the row-major enumeration contract and that
// the sequence is restartable
func TestForegroundOrder(t *testing.T) {
	g, err := FromFunc(3, 3, func(row, col int) bool {
		return (row+col)%2 == 0
	})
	if err != nil {
		t.Fatalf("FromFunc: %v", err)
	}

	want := []Coordinate{
		{0, 0}, {0, 2},
		{1, 1},
		{2, 0}, {2, 2},
	}

	collect := func() []Coordinate {
		var coords []Coordinate
		for c := range g.Foreground() {
			coords = append(coords, c)
		}
		return coords
	}

	first := collect()
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("foreground order mismatch (-want +got):\n%s", diff)
	}

	// Iterating again must yield the same sequence
	second := collect()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("sequence not restartable (-first +second):\n%s", diff)
	}
}

// TestForegroundEarlyStop verifies that a consumer can stop mid-iteration
func TestForegroundEarlyStop(t *testing.T) {
	g, err := FromFunc(4, 4, func(row, col int) bool { return true })
	if err != nil {
		t.Fatalf("FromFunc: %v", err)
	}

	count := 0
	for range g.Foreground() {
		count++
		if count == 5 {
			break
		}
	}
	if count != 5 {
		t.Errorf("expected 5 yields before break, got %d", count)
	}
}

// TestNeighbors verifies the neighborhood helpers are bounds-independent
func TestNeighbors(t *testing.T) {
	n8 := Neighbors8(Coordinate{0, 0})
	if len(n8) != 8 {
		t.Fatalf("expected 8 neighbors, got %d", len(n8))
	}

	seen := make(map[Coordinate]struct{})
	for _, n := range n8 {
		if n == (Coordinate{0, 0}) {
			t.Error("Neighbors8 must not include the center pixel")
		}
		if dr, dc := abs(n.Row), abs(n.Col); dr > 1 || dc > 1 {
			t.Errorf("neighbor %v is not adjacent to the origin", n)
		}
		seen[n] = struct{}{}
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 distinct neighbors, got %d", len(seen))
	}

	n4 := Neighbors4(Coordinate{2, 2})
	for _, n := range n4 {
		if abs(n.Row-2)+abs(n.Col-2) != 1 {
			t.Errorf("orthogonal neighbor %v is not at Manhattan distance 1", n)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

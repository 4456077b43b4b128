package guidance

import (
	"strings"
	"testing"
)

func TestClockPosition(t *testing.T) {
	tests := []struct {
		angle    float64
		expected int
	}{
		{0, 12},
		{360, 12},
		{90, 3},
		{180, 6},
		{270, 9},
		{30, 1},
		{29, 1},
		{31, 1},
		// Ties at sector midpoints resolve to the clockwise neighbor.
		{15, 1},
		{45, 2},
		{345, 12},
		// Just under a midpoint rounds back.
		{14.9, 12},
		{344.9, 11},
		// Out-of-range angles normalize.
		{-90, 9},
		{450, 3},
	}

	for _, tt := range tests {
		if got := ClockPosition(tt.angle); got != tt.expected {
			t.Errorf("ClockPosition(%v) = %d, expected %d", tt.angle, got, tt.expected)
		}
	}
}

func TestPhraseDeterministic(t *testing.T) {
	o := Offset{AngleDegrees: 60, Distance: DistanceFar}
	first := Phrase(o)
	for i := 0; i < 5; i++ {
		if got := Phrase(o); got != first {
			t.Fatalf("Phrase not deterministic: %q vs %q", first, got)
		}
	}
	if !strings.Contains(first, "2 o'clock") {
		t.Errorf("Expected 2 o'clock direction, got %q", first)
	}
	if !strings.Contains(first, "a bit further") {
		t.Errorf("Expected far qualifier, got %q", first)
	}
}

func TestPhraseNearQualifier(t *testing.T) {
	got := Phrase(Offset{AngleDegrees: 90, Distance: DistanceNear})
	if !strings.Contains(got, "3 o'clock") || !strings.Contains(got, "close") {
		t.Errorf("Unexpected near phrase: %q", got)
	}
}

func TestReached(t *testing.T) {
	tests := []struct {
		name     string
		offset   Offset
		tol      float64
		expected bool
	}{
		{"dead ahead and near", Offset{0, DistanceNear}, 30, true},
		{"full circle and near", Offset{360, DistanceNear}, 30, true},
		{"within tolerance clockwise", Offset{25, DistanceNear}, 30, true},
		{"within tolerance counterclockwise", Offset{340, DistanceNear}, 30, true},
		{"outside tolerance", Offset{90, DistanceNear}, 30, false},
		{"aligned but far", Offset{0, DistanceFar}, 30, false},
		{"exactly on tolerance", Offset{30, DistanceNear}, 30, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reached(tt.offset, tt.tol); got != tt.expected {
				t.Errorf("Reached(%+v, %v) = %v, expected %v", tt.offset, tt.tol, got, tt.expected)
			}
		})
	}
}

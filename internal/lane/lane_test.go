package lane

import (
	"errors"
	"testing"
)

func TestParseLane(t *testing.T) {
	tests := []struct {
		in   string
		want Lane
		err  bool
	}{
		{"east", East, false},
		{" West ", West, false},
		{"E", East, false},
		{"north", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLane(tt.in)
		if tt.err {
			if !errors.Is(err, ErrUnknownLane) {
				t.Errorf("ParseLane(%q) err = %v, want ErrUnknownLane", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLane(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestGeometryRanges(t *testing.T) {
	g := Geometry{StationDistance: 10, LaneLength: 60, LaneWidth: 20, MinSeparation: 5, RouteLength: 100}

	lo, hi := g.DrawRange(East)
	if lo != 11 || hi != 69 {
		t.Errorf("East DrawRange = [%v, %v], want [11, 69]", lo, hi)
	}
	lo, hi = g.DrawRange(West)
	if lo != 71 || hi != 129 {
		t.Errorf("West DrawRange = [%v, %v], want [71, 129]", lo, hi)
	}
	if b := g.OuterBoundary(East); b != 30 {
		t.Errorf("East OuterBoundary = %v, want 30", b)
	}
	if b := g.OuterBoundary(West); b != 50 {
		t.Errorf("West OuterBoundary = %v, want 50", b)
	}
	if g.EntryX(West) != 100 || g.Heading(West) != -1 || g.Heading(East) != 1 {
		t.Error("unexpected West entry or headings")
	}
}

func TestGeometryValidate(t *testing.T) {
	if err := DefaultGeometry().Validate(); err != nil {
		t.Fatalf("default geometry invalid: %v", err)
	}
	g := DefaultGeometry()
	g.LaneWidth = 0
	if err := g.Validate(); err == nil {
		t.Error("zero lane width accepted")
	}
}

func TestNewStateIsEmpty(t *testing.T) {
	s := NewState()
	if !s.Empty() || s.LastY != NoShip {
		t.Errorf("NewState() = %+v, want empty", s)
	}
}

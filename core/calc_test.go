package core

import "testing"

func TestCalculateDeterminism(t *testing.T) {
	m := map[string]float64{"a": 1.5, "b": 1.25, "c": 2.0}
	b := map[string]int{"x": 5}
	first := Calculate(100, m, b)
	for i := 0; i < 100; i++ {
		if got := Calculate(100, m, b); got != first {
			t.Fatalf("run %d: got %d, want %d", i, got, first)
		}
	}
}

func TestCalculateCommutativeMultipliers(t *testing.T) {
	a := Calculate(100, map[string]float64{"a": 1.5, "b": 2.0}, nil)
	b := Calculate(100, map[string]float64{"b": 2.0, "a": 1.5}, nil)
	if a != b {
		t.Fatalf("order changed result: %d vs %d", a, b)
	}
	if a != 300 {
		t.Fatalf("got %d, want 300", a)
	}
}

func TestCalculateRounding(t *testing.T) {
	if got := Calculate(10, map[string]float64{"x": 1.5}, nil); got != 15 {
		t.Fatalf("10*1.5 = %d, want 15", got)
	}
	if got := Calculate(10, map[string]float64{"x": 1.05}, map[string]int{"y": 5}); got != 16 {
		t.Fatalf("round(10*1.05)+5 = %d, want 16", got)
	}
	// ties round away from zero
	if got := Calculate(1, map[string]float64{"x": 2.5}, nil); got != 3 {
		t.Fatalf("round(2.5) = %d, want 3", got)
	}
}

func TestCalculateEmptyMapsAndFloor(t *testing.T) {
	if got := Calculate(25, nil, nil); got != 25 {
		t.Fatalf("empty maps: got %d, want 25", got)
	}
	if got := Calculate(10, map[string]float64{"x": -2.0}, nil); got != 0 {
		t.Fatalf("negative total must floor at 0, got %d", got)
	}
}

func TestScoreComponentsAward(t *testing.T) {
	comps := ScoreComponents{
		BasePoints:  50,
		Multipliers: map[string]float64{MultFoundingCrew: 1.5},
		Bonuses:     map[string]int{BonusAttendees: 50},
	}
	award := comps.Award()
	if award.Points != 125 {
		t.Fatalf("got %d, want 125", award.Points)
	}
	if award.Breakdown.BasePoints != 50 {
		t.Fatalf("breakdown lost base points")
	}
}

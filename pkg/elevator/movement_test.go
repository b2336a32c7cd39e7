package elevator

import (
	"slices"
	"testing"
)

// fixedSource always returns the same coin value. Its identifiers are all
// zero, so only use it where ids do not matter.
type fixedSource struct{ f float64 }

func (s fixedSource) Float64() float64 { return s.f }

func (s fixedSource) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestSortTargetFloors_LOOK(t *testing.T) {
	tests := []struct {
		name    string
		current int
		dir     Direction
		targets []int
		want    []int
	}{
		{"empty", 5, DirUp, nil, nil},
		{"idle nearest first", 5, DirIdle, []int{8, 4, 2}, []int{4, 8, 2}},
		{"up sweep then return", 5, DirUp, []int{2, 9, 7, 5, 9}, []int{5, 7, 9, 2}},
		{"down sweep then return", 5, DirDown, []int{8, 1, 3, 6}, []int{3, 1, 6, 8}},
		{"duplicates removed", 1, DirIdle, []int{3, 3, 3}, []int{3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SortTargetFloors(tc.current, tc.dir, tc.targets)
			if !slices.Equal(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSortTargetFloors_DoesNotModifyInput(t *testing.T) {
	in := []int{9, 2, 6}
	_ = SortTargetFloors(5, DirUp, in)
	if !slices.Equal(in, []int{9, 2, 6}) {
		t.Errorf("Expected input untouched, got %v", in)
	}
}

func TestDeriveDirection(t *testing.T) {
	tests := []struct {
		current int
		dir     Direction
		sorted  []int
		want    Direction
	}{
		{5, DirUp, nil, DirIdle},
		{5, DirIdle, []int{8}, DirUp},
		{5, DirUp, []int{3}, DirDown},
		{5, DirUp, []int{5, 8}, DirUp},
		{5, DirUp, []int{5, 2}, DirIdle},
		{5, DirDown, []int{5, 2}, DirDown},
		{5, DirIdle, []int{5, 9}, DirIdle},
	}

	for _, tc := range tests {
		if got := DeriveDirection(tc.current, tc.dir, tc.sorted); got != tc.want {
			t.Errorf("DeriveDirection(%d, %s, %v): Expected %s, got %s", tc.current, tc.dir, tc.sorted, tc.want, got)
		}
	}
}

func newTestElevator(floor int, targets ...int) Elevator {
	return Elevator{
		ID:            "E1",
		CurrentFloor:  floor,
		Direction:     DirIdle,
		LastDirection: DirIdle,
		DoorState:     DoorClosed,
		TargetFloors:  targets,
	}
}

func TestStepMovement_Power(t *testing.T) {
	// Scenario 1: far target -> two-floor jump
	e := stepMovement(newTestElevator(1, 5), 10, ModePower, fixedSource{})
	if e.CurrentFloor != 3 {
		t.Errorf("Scenario 1 failed: Expected floor 3, got %d", e.CurrentFloor)
	}
	if e.Direction != DirUp || e.LastDirection != DirUp {
		t.Errorf("Scenario 1 failed: Expected direction up, got %s/%s", e.Direction, e.LastDirection)
	}
	if e.Stats.PowerConsumed != 4 || e.Stats.TotalTravelTime != 1 {
		t.Errorf("Scenario 1 failed: Expected power 4 travel 1, got %v/%d", e.Stats.PowerConsumed, e.Stats.TotalTravelTime)
	}

	// Scenario 2: adjacent target -> no overshoot
	e = stepMovement(newTestElevator(1, 2), 10, ModePower, fixedSource{})
	if e.CurrentFloor != 2 {
		t.Errorf("Scenario 2 failed: Expected floor 2, got %d", e.CurrentFloor)
	}
	if e.Direction != DirIdle {
		t.Errorf("Scenario 2 failed: Expected idle on arrival, got %s", e.Direction)
	}

	// Scenario 3: jumping down toward the bottom floor
	e = stepMovement(newTestElevator(4, 1), 10, ModePower, fixedSource{})
	if e.CurrentFloor != 2 || e.Direction != DirDown {
		t.Errorf("Scenario 3 failed: Expected floor 2 heading down, got %d %s", e.CurrentFloor, e.Direction)
	}
}

func TestStepMovement_Eco(t *testing.T) {
	// Coin says wait: heading is set but the car holds position.
	e := stepMovement(newTestElevator(1, 4), 10, ModeEco, fixedSource{f: 0.9})
	if e.CurrentFloor != 1 {
		t.Errorf("Expected eco wait tick to hold floor 1, got %d", e.CurrentFloor)
	}
	if e.Stats.TotalTravelTime != 1 || e.Stats.PowerConsumed != 0 {
		t.Errorf("Expected travel 1 power 0 on wait tick, got %d/%v", e.Stats.TotalTravelTime, e.Stats.PowerConsumed)
	}
	if e.Direction != DirUp {
		t.Errorf("Expected direction up while waiting, got %s", e.Direction)
	}

	// Coin says move.
	e = stepMovement(newTestElevator(1, 4), 10, ModeEco, fixedSource{f: 0.1})
	if e.CurrentFloor != 2 || e.Stats.PowerConsumed != 0.5 {
		t.Errorf("Expected floor 2 with power 0.5, got %d/%v", e.CurrentFloor, e.Stats.PowerConsumed)
	}
}

func TestStepMovement_Normal(t *testing.T) {
	e := stepMovement(newTestElevator(6, 2), 10, ModeNormal, fixedSource{})
	if e.CurrentFloor != 5 || e.Direction != DirDown {
		t.Errorf("Expected floor 5 heading down, got %d %s", e.CurrentFloor, e.Direction)
	}
	if e.Stats.PowerConsumed != 1 {
		t.Errorf("Expected power 1, got %v", e.Stats.PowerConsumed)
	}

	// No targets: the car idles and nothing is charged.
	e = newTestElevator(3)
	e.Direction = DirUp
	e = stepMovement(e, 10, ModeNormal, fixedSource{})
	if e.Direction != DirIdle || e.Stats.TotalTravelTime != 0 {
		t.Errorf("Expected idle with no travel, got %s/%d", e.Direction, e.Stats.TotalTravelTime)
	}
	if e.LastDirection != DirIdle {
		t.Errorf("Expected lastDirection untouched, got %s", e.LastDirection)
	}
}

package elevator

import (
	"slices"
	"testing"
)

func doorConfig() BuildingConfig {
	cfg := DefaultConfig()
	cfg.DoorOpenTicks = 3
	return cfg
}

func carCall(floor int, elevatorID string) Request {
	return Request{ID: "R-car", Kind: KindCar, Floor: floor, AssignedElevatorID: elevatorID}
}

func hallCall(floor int, dir Direction, elevatorID string) Request {
	return Request{ID: "R-hall", Kind: KindHall, Floor: floor, Direction: dir, AssignedElevatorID: elevatorID}
}

func TestStepDoor_Transitions(t *testing.T) {
	cfg := doorConfig()

	// Closed at the head target -> Opening
	e := newTestElevator(4, 4, 7)
	e = stepDoor(e, nil, cfg)
	if e.DoorState != DoorOpening {
		t.Errorf("Expected opening at head target, got %s", e.DoorState)
	}
	if e.Stats.PowerConsumed != 1 {
		t.Errorf("Expected door power 1, got %v", e.Stats.PowerConsumed)
	}

	// Opening -> Open: timer armed, floor dropped from targets
	e.Direction = DirUp
	e = stepDoor(e, nil, cfg)
	if e.DoorState != DoorOpen || e.DoorOpenTicksRemaining != 3 {
		t.Errorf("Expected open with 3 ticks, got %s/%d", e.DoorState, e.DoorOpenTicksRemaining)
	}
	if !slices.Equal(e.TargetFloors, []int{7}) {
		t.Errorf("Expected targets [7], got %v", e.TargetFloors)
	}
	if e.Direction != DirUp {
		t.Errorf("Expected heading kept with targets ahead, got %s", e.Direction)
	}

	// Open counts down without power
	power := e.Stats.PowerConsumed
	for want := 2; want >= 0; want-- {
		e = stepDoor(e, nil, cfg)
		if e.DoorState != DoorOpen || e.DoorOpenTicksRemaining != want {
			t.Errorf("Expected open with %d ticks, got %s/%d", want, e.DoorState, e.DoorOpenTicksRemaining)
		}
	}
	if e.Stats.PowerConsumed != power {
		t.Errorf("Expected no power while open, got %v", e.Stats.PowerConsumed-power)
	}

	// Open, expired -> Closing -> Closed
	e = stepDoor(e, nil, cfg)
	if e.DoorState != DoorClosing {
		t.Errorf("Expected closing, got %s", e.DoorState)
	}
	e = stepDoor(e, nil, cfg)
	if e.DoorState != DoorClosed {
		t.Errorf("Expected closed, got %s", e.DoorState)
	}
}

func TestStepDoor_ClosedStaysClosed(t *testing.T) {
	e := stepDoor(newTestElevator(2, 6), nil, doorConfig())
	if e.DoorState != DoorClosed || e.Stats.PowerConsumed != 0 {
		t.Errorf("Expected closed with no power, got %s/%v", e.DoorState, e.Stats.PowerConsumed)
	}
}

func TestStepDoor_EndOfRunGoesIdle(t *testing.T) {
	e := newTestElevator(5, 5, 2)
	e.Direction = DirUp
	e.DoorState = DoorOpening
	e = stepDoor(e, nil, doorConfig())
	if e.Direction != DirIdle {
		t.Errorf("Expected idle at end of run, got %s", e.Direction)
	}
}

func TestStepDoor_HoverHoldsOpen(t *testing.T) {
	e := newTestElevator(3)
	e.DoorState = DoorOpen
	e.IsHovered = true

	for range 20 {
		e = stepDoor(e, nil, doorConfig())
	}
	if e.DoorState != DoorOpen || e.DoorOpenTicksRemaining != 0 {
		t.Errorf("Expected held open with frozen timer, got %s/%d", e.DoorState, e.DoorOpenTicksRemaining)
	}

	e.IsHovered = false
	e = stepDoor(e, nil, doorConfig())
	if e.DoorState != DoorClosing {
		t.Errorf("Expected closing after release, got %s", e.DoorState)
	}
}

func TestStepDoor_NewCallExtendsOpen(t *testing.T) {
	e := newTestElevator(3)
	e.DoorState = DoorOpen

	e = stepDoor(e, []Request{carCall(3, "E1")}, doorConfig())
	if e.DoorState != DoorOpen || e.DoorOpenTicksRemaining != 3 {
		t.Errorf("Expected timer reset to 3, got %s/%d", e.DoorState, e.DoorOpenTicksRemaining)
	}

	// A target for this floor pushed while open is absorbed the same way.
	e = newTestElevator(3, 3)
	e.DoorState = DoorOpen
	e = stepDoor(e, nil, doorConfig())
	if e.DoorOpenTicksRemaining != 3 || len(e.TargetFloors) != 0 {
		t.Errorf("Expected absorbed target and reset timer, got %d %v", e.DoorOpenTicksRemaining, e.TargetFloors)
	}
}

func TestStepDoor_ClosingReopens(t *testing.T) {
	e := newTestElevator(3)
	e.DoorState = DoorClosing
	e = stepDoor(e, []Request{carCall(3, "E1")}, doorConfig())
	if e.DoorState != DoorOpening {
		t.Errorf("Expected re-open for waiting rider, got %s", e.DoorState)
	}

	// An opposite-direction rider does not stop a car with work ahead.
	e = newTestElevator(3, 8)
	e.Direction = DirUp
	e.DoorState = DoorClosing
	e = stepDoor(e, []Request{hallCall(3, DirDown, "E1")}, doorConfig())
	if e.DoorState != DoorClosed {
		t.Errorf("Expected closed past incompatible call, got %s", e.DoorState)
	}
}

package elevator

import (
	"github.com/samber/lo"
)

// stepDoor manages the Door State Machine for one tick.
// Transitions: Closed -> Opening -> Open -> Closing -> Closed
// bound holds the pending and active requests assigned to this car.
func stepDoor(e Elevator, bound []Request, cfg BuildingConfig) Elevator {
	unit := cfg.Mode.PowerUnit()
	waiting := hasServiceableRequest(e, bound)

	switch e.DoorState {
	case DoorClosed:
		head, ok := e.HeadTarget()
		if (ok && head == e.CurrentFloor) || waiting {
			e.DoorState = DoorOpening
			e.Stats.PowerConsumed += unit
		}

	case DoorOpening:
		// [State Transition] Opening -> Open
		e.DoorState = DoorOpen
		e.DoorOpenTicksRemaining = cfg.DoorOpenTicks
		e.TargetFloors = removeFloor(e.TargetFloors, e.CurrentFloor)
		e.Direction = settleDirection(e)
		e.Stats.PowerConsumed += unit

	case DoorOpen:
		absorbed := lo.Contains(e.TargetFloors, e.CurrentFloor)
		e.TargetFloors = removeFloor(e.TargetFloors, e.CurrentFloor)

		switch {
		case e.IsHovered:
			// Held open from outside; the timer stays frozen.
		case e.DoorOpenTicksRemaining > 0:
			e.DoorOpenTicksRemaining--
		case absorbed || waiting:
			// Someone called this floor while the doors were open.
			e.DoorOpenTicksRemaining = cfg.DoorOpenTicks
		default:
			// [State Transition] Open -> Closing
			e.DoorState = DoorClosing
			e.Stats.PowerConsumed += unit
		}

	case DoorClosing:
		head, ok := e.HeadTarget()
		if waiting || (ok && head == e.CurrentFloor) {
			// 닫히다가 다시 열림 (Reopen)
			e.DoorState = DoorOpening
		} else {
			e.DoorState = DoorClosed
		}
		e.Stats.PowerConsumed += unit
	}
	return e
}

// settleDirection keeps the heading at a stop only while targets remain
// ahead; otherwise the car has reached the end of its run.
func settleDirection(e Elevator) Direction {
	if e.Direction != DirIdle && e.HasTargetAhead(e.Direction) {
		return e.Direction
	}
	return DirIdle
}

func hasServiceableRequest(e Elevator, bound []Request) bool {
	return lo.ContainsBy(bound, func(r Request) bool {
		return canServe(e, r)
	})
}

func removeFloor(floors []int, floor int) []int {
	return lo.Filter(floors, func(f int, _ int) bool {
		return f != floor
	})
}

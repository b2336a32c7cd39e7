package elevator

import (
	"slices"

	"github.com/samber/lo"
)

// AddRequest queues a hall call and journals it. Calls outside the building
// or without an up/down direction leave the state unchanged.
func AddRequest(s SimulationState, call HallCall, rng Source) SimulationState {
	if !s.validFloor(call.Floor) || (call.Direction != DirUp && call.Direction != DirDown) {
		return s
	}

	next := s.Clone()
	r := Request{
		ID:            newID(rng, "R-"),
		Kind:          KindHall,
		Floor:         call.Floor,
		Direction:     call.Direction,
		CreatedAtTick: next.ClockTick,
	}
	next.PendingRequests = append(next.PendingRequests, r)
	next.SystemLogs = prependLogs(next.SystemLogs, []SystemLogEntry{newRequestLog(r, next.ClockTick, rng)})
	return next
}

// ToggleCarRequest presses or un-presses a floor button inside a car.
// A floor the car already targets is cancelled together with its car call;
// otherwise a car call bound to the car becomes active right away.
func ToggleCarRequest(s SimulationState, elevatorID string, floor int, rng Source) SimulationState {
	idx := s.elevatorIndex(elevatorID)
	if idx < 0 || !s.validFloor(floor) {
		return s
	}

	next := s.Clone()
	e := &next.Elevators[idx]

	if slices.Contains(e.TargetFloors, floor) {
		e.TargetFloors = removeFloor(e.TargetFloors, floor)
		keep := func(r Request, _ int) bool {
			return !(r.Kind == KindCar && r.AssignedElevatorID == elevatorID && r.Floor == floor)
		}
		next.ActiveRequests = lo.Filter(next.ActiveRequests, keep)
		next.PendingRequests = lo.Filter(next.PendingRequests, keep)
		return next
	}

	r := Request{
		ID:                 newID(rng, "R-"),
		Kind:               KindCar,
		Floor:              floor,
		CreatedAtTick:      next.ClockTick,
		AssignedElevatorID: elevatorID,
	}
	e.TargetFloors = SortTargetFloors(e.CurrentFloor, e.Direction, append(e.TargetFloors, floor))
	next.ActiveRequests = append(next.ActiveRequests, r)
	next.SystemLogs = prependLogs(next.SystemLogs, []SystemLogEntry{newRequestLog(r, next.ClockTick, rng)})
	return next
}

// SetElevatorHover sets the external hold on a car's doors.
func SetElevatorHover(s SimulationState, elevatorID string, hovered bool) SimulationState {
	idx := s.elevatorIndex(elevatorID)
	if idx < 0 {
		return s
	}
	next := s.Clone()
	next.Elevators[idx].IsHovered = hovered
	return next
}

// Tick advances the building by one discrete step:
// Dispatch -> per car Door then Movement -> Completion & Metrics -> travel log -> system log.
// Each car's update depends only on the post-dispatch snapshot, never on
// another car's update in the same tick.
func Tick(prev SimulationState, cfg BuildingConfig, rng Source) SimulationState {
	s := prev.Clone()
	s.ClockTick++
	if s.Floors == 0 {
		s.Floors = cfg.Floors
	}

	dispatch(&s, cfg.Mode)

	bound := make(map[string][]Request, len(s.Elevators))
	for _, r := range slices.Concat(s.PendingRequests, s.ActiveRequests) {
		if r.Assigned() {
			bound[r.AssignedElevatorID] = append(bound[r.AssignedElevatorID], r)
		}
	}

	updated := make([]Elevator, len(s.Elevators))
	for i, e := range s.Elevators {
		wasClosed := e.DoorState == DoorClosed
		e = stepDoor(e, bound[e.ID], cfg)
		if wasClosed && e.DoorState == DoorClosed {
			e = stepMovement(e, s.Floors, cfg.Mode, rng)
		}
		updated[i] = e
	}
	s.Elevators = updated

	completeRequests(&s)
	s.Metrics = ComputeMetrics(s.CompletedRequests, s.ClockTick)

	if s.TravelLog == nil {
		s.TravelLog = make(map[string][]int, len(s.Elevators))
	}
	appendTravel(s.TravelLog, prev.Elevators, s.Elevators)
	s.SystemLogs = prependLogs(s.SystemLogs, diffElevators(prev.Elevators, s.Elevators, s.ClockTick, rng))
	return s
}

package elevator

import (
	"github.com/samber/lo"
)

// DisqualifyingCost marks an elevator that must not take a request.
const DisqualifyingCost = 1000

const (
	ecoPiggybackBonus     = 50
	normalCompatibleBonus = 1
)

// Compatible reports whether a car can take a hall call without breaking its
// current sweep: it is idle, or it is moving toward the floor in the rider's
// direction. Car calls are always compatible.
func Compatible(e Elevator, r Request) bool {
	if r.Direction == "" || e.Direction == DirIdle {
		return true
	}
	movingToward := (e.Direction == DirUp && r.Floor >= e.CurrentFloor) ||
		(e.Direction == DirDown && r.Floor <= e.CurrentFloor)
	return movingToward && e.Direction == r.Direction
}

// Cost scores assigning r to e under the given mode. Lower is better; any
// score at or above DisqualifyingCost means the car cannot take the call.
func Cost(e Elevator, r Request, mode OperationMode) int {
	cost := abs(e.CurrentFloor - r.Floor)
	if r.Direction == "" || e.Direction == DirIdle {
		return cost
	}
	if !Compatible(e, r) {
		return cost + DisqualifyingCost
	}
	if mode == ModeEco {
		return cost - ecoPiggybackBonus
	}
	return cost - normalCompatibleBonus
}

// chooseElevator returns the index of the cheapest car for r, or -1 when the
// request should stay pending. Ties go to the first car in id order.
func chooseElevator(elevators []Elevator, r Request, mode OperationMode, exclude string) int {
	best, bestCost := -1, 0
	for i, e := range elevators {
		if e.ID == exclude {
			continue
		}
		c := Cost(e, r, mode)
		if best < 0 || c < bestCost {
			best, bestCost = i, c
		}
	}
	if best < 0 || bestCost >= DisqualifyingCost {
		return -1
	}

	// Eco: do not wake an idle car while another one is already working.
	if mode == ModeEco && elevators[best].Direction == DirIdle {
		chosen := elevators[best].ID
		if lo.ContainsBy(elevators, func(e Elevator) bool { return e.ID != chosen && e.Busy() }) {
			return -1
		}
	}
	return best
}

// dispatch runs the assignment phase of a tick on s (already a private copy).
func dispatch(s *SimulationState, mode OperationMode) {
	pending := rebuildTargets(s)

	assign := func(r Request, idx int) {
		e := &s.Elevators[idx]
		r.AssignedElevatorID = e.ID
		e.TargetFloors = SortTargetFloors(e.CurrentFloor, e.Direction, append(e.TargetFloors, r.Floor))
		s.ActiveRequests = append(s.ActiveRequests, r)
	}

	taken := make(map[int]bool)
	if mode == ModeNormal {
		if up, down, ok := dualDirectionFloor(s.Elevators, pending); ok {
			if i := chooseElevator(s.Elevators, pending[up], mode, ""); i >= 0 {
				assign(pending[up], i)
				taken[up] = true
				if j := chooseElevator(s.Elevators, pending[down], mode, s.Elevators[i].ID); j >= 0 {
					assign(pending[down], j)
					taken[down] = true
				}
			}
		}
	}

	remaining := make([]Request, 0, len(pending))
	for k, r := range pending {
		if taken[k] {
			continue
		}
		i := chooseElevator(s.Elevators, r, mode, "")
		if i < 0 {
			remaining = append(remaining, r)
			continue
		}
		assign(r, i)
	}
	s.PendingRequests = remaining
}

// rebuildTargets re-derives every car's targets from the requests bound to it
// and returns the requests still waiting for a dispatch decision.
// 활성 요청으로부터 목표 층을 다시 구성합니다.
func rebuildTargets(s *SimulationState) []Request {
	var unassigned []Request
	active := make([]Request, 0, len(s.ActiveRequests)+len(s.PendingRequests))

	for _, r := range s.ActiveRequests {
		if s.elevatorIndex(r.AssignedElevatorID) < 0 {
			// Orphaned; demote rather than drop.
			r.AssignedElevatorID = ""
			unassigned = append(unassigned, r)
			continue
		}
		active = append(active, r)
	}
	for _, r := range s.PendingRequests {
		if r.Assigned() {
			if s.elevatorIndex(r.AssignedElevatorID) >= 0 {
				active = append(active, r)
				continue
			}
			r.AssignedElevatorID = ""
		}
		unassigned = append(unassigned, r)
	}

	for i := range s.Elevators {
		e := &s.Elevators[i]
		bound := lo.Filter(active, func(r Request, _ int) bool { return r.AssignedElevatorID == e.ID })
		e.TargetFloors = lo.Uniq(lo.Map(bound, func(r Request, _ int) int { return r.Floor }))

		// A call the car cannot serve where it stands is dropped from the
		// targets so the car can leave; it comes back once the car departs.
		here := lo.Filter(bound, func(r Request, _ int) bool { return r.Floor == e.CurrentFloor })
		if len(here) > 0 && !hasServiceableRequest(*e, here) {
			e.TargetFloors = removeFloor(e.TargetFloors, e.CurrentFloor)
		}
		e.TargetFloors = SortTargetFloors(e.CurrentFloor, e.Direction, e.TargetFloors)
	}

	s.ActiveRequests = active
	return unassigned
}

// dualDirectionFloor finds the floor where riders wait in both directions and
// idle capacity exists to send them separate cars. Only the floor with the
// oldest combined wait is returned, as indexes into pending.
func dualDirectionFloor(elevators []Elevator, pending []Request) (up, down int, ok bool) {
	free := lo.CountBy(elevators, func(e Elevator) bool {
		return e.Direction == DirIdle && len(e.TargetFloors) == 0
	})
	if free < 2 {
		return -1, -1, false
	}

	type pair struct{ up, down int }
	var order []int
	byFloor := make(map[int]*pair)
	for k, r := range pending {
		if r.Kind != KindHall || r.Assigned() {
			continue
		}
		p, seen := byFloor[r.Floor]
		if !seen {
			p = &pair{up: -1, down: -1}
			byFloor[r.Floor] = p
			order = append(order, r.Floor)
		}
		switch {
		case r.Direction == DirUp && p.up < 0:
			p.up = k
		case r.Direction == DirDown && p.down < 0:
			p.down = k
		}
	}

	up, down = -1, -1
	bestAge := 0
	for _, f := range order {
		p := byFloor[f]
		if p.up < 0 || p.down < 0 {
			continue
		}
		age := pending[p.up].CreatedAtTick + pending[p.down].CreatedAtTick
		if !ok || age < bestAge {
			up, down, bestAge, ok = p.up, p.down, age, true
		}
	}
	return up, down, ok
}

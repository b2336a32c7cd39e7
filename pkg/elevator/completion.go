package elevator

import (
	"github.com/samber/lo"
)

// canServe applies the direction-compatibility rule for a car standing at the
// request's floor. Car calls and idle cars always qualify; otherwise the car
// must be heading the same way, or be at the end of its run (nothing left
// ahead) so it can turn around for the opposite-direction rider.
func canServe(e Elevator, r Request) bool {
	if e.CurrentFloor != r.Floor {
		return false
	}
	switch {
	case r.Direction == "":
		return true
	case e.Direction == DirIdle:
		return true
	case e.Direction == r.Direction:
		return true
	}
	return !e.HasTargetAhead(e.Direction)
}

// completeRequests moves every active request served this tick into the
// completed history. Requests passed over stay active for the next tick.
func completeRequests(s *SimulationState) {
	stillActive := make([]Request, 0, len(s.ActiveRequests))
	for _, r := range s.ActiveRequests {
		i := s.elevatorIndex(r.AssignedElevatorID)
		if i < 0 {
			stillActive = append(stillActive, r)
			continue
		}
		e := &s.Elevators[i]
		if e.DoorState != DoorOpen || !canServe(*e, r) {
			stillActive = append(stillActive, r)
			continue
		}

		r.CompletedAtTick = s.ClockTick
		if r.Direction != "" {
			// Show the rider's direction while parked at the stop.
			e.LastDirection = r.Direction
		}
		s.CompletedRequests = append(s.CompletedRequests, r)
	}
	s.ActiveRequests = stillActive
}

// ComputeMetrics derives wait statistics from the full completed set.
func ComputeMetrics(completed []Request, clockTick int) Metrics {
	if len(completed) == 0 {
		return Metrics{}
	}
	total := lo.SumBy(completed, func(r Request) int { return r.WaitTicks() })
	maxWait := lo.Max(lo.Map(completed, func(r Request, _ int) int { return r.WaitTicks() }))

	m := Metrics{
		TotalRequests: len(completed),
		AvgWaitTime:   float64(total) / float64(len(completed)),
		MaxWaitTime:   maxWait,
	}
	if clockTick > 0 {
		m.Throughput = float64(len(completed)) * 100 / float64(clockTick)
	}
	return m
}

package elevator

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/tiendc/go-deepcopy"
	"github.com/zeebo/xxh3"
)

// Clone returns a copy of the state. Every core operation edits a clone
// and hands it back, so callers may keep and share older snapshots freely.
// The completed history and the journal are append/prepend only, so the clone
// shares their elements and clips capacity; the next append reallocates.
func (s SimulationState) Clone() SimulationState {
	completed, journal := s.CompletedRequests, s.SystemLogs
	s.CompletedRequests, s.SystemLogs = nil, nil

	var out SimulationState
	if err := deepcopy.Copy(&out, &s); err != nil {
		// Plain value types only; a failure here is a programming error.
		panic(fmt.Sprintf("clone simulation state: %v", err))
	}
	out.CompletedRequests = slices.Clip(completed)
	out.SystemLogs = slices.Clip(journal)
	return out
}

// Digest fingerprints a snapshot. Two runs fed the same inputs and the same
// seeded Source produce the same digest tick for tick.
func Digest(s SimulationState) uint64 {
	b, err := json.Marshal(s)
	if err != nil {
		return 0
	}
	return xxh3.Hash(b)
}

// CreateInitialState builds idle elevators E1..En at floor 1 with closed doors,
// empty queues, zeroed metrics and a travel log seeded with the start floor.
func CreateInitialState(cfg BuildingConfig) SimulationState {
	elevators := make([]Elevator, 0, cfg.Elevators)
	travelLog := make(map[string][]int, cfg.Elevators)
	for i := range cfg.Elevators {
		e := Elevator{
			ID:            fmt.Sprintf("E%d", i+1),
			CurrentFloor:  1,
			Direction:     DirIdle,
			LastDirection: DirIdle,
			DoorState:     DoorClosed,
			TargetFloors:  []int{},
		}
		elevators = append(elevators, e)
		travelLog[e.ID] = []int{e.CurrentFloor}
	}

	return SimulationState{
		ClockTick:         0,
		Floors:            cfg.Floors,
		Elevators:         elevators,
		PendingRequests:   []Request{},
		ActiveRequests:    []Request{},
		CompletedRequests: []Request{},
		TravelLog:         travelLog,
		SystemLogs:        []SystemLogEntry{},
	}
}

package elevator

import (
	"testing"
)

func TestClone_Independent(t *testing.T) {
	s := CreateInitialState(DefaultConfig())
	s.Elevators[0].TargetFloors = []int{4, 7}
	s.TravelLog["E1"] = append(s.TravelLog["E1"], 2)
	s.CompletedRequests = make([]Request, 1, 4)
	s.CompletedRequests[0] = Request{ID: "R-1", Floor: 3, CompletedAtTick: 5}
	s.SystemLogs = make([]SystemLogEntry, 1, 4)
	s.SystemLogs[0] = SystemLogEntry{ID: "L-1", Tick: 5}

	c := s.Clone()
	c.Elevators[0].TargetFloors[0] = 9
	c.Elevators[0].CurrentFloor = 6
	c.TravelLog["E1"][0] = 8
	c.CompletedRequests = append(c.CompletedRequests, Request{ID: "R-2"})
	c.SystemLogs = append(c.SystemLogs, SystemLogEntry{ID: "L-2"})

	if s.Elevators[0].TargetFloors[0] != 4 || s.Elevators[0].CurrentFloor != 1 {
		t.Errorf("Expected original elevator untouched, got %+v", s.Elevators[0])
	}
	if s.TravelLog["E1"][0] != 1 {
		t.Errorf("Expected original travel log untouched, got %v", s.TravelLog["E1"])
	}

	// Appends on the clone must not land in the original's spare capacity.
	if spare := s.CompletedRequests[:2]; spare[1].ID != "" {
		t.Errorf("Expected clone append to reallocate history, original backing saw %q", spare[1].ID)
	}
	if spare := s.SystemLogs[:2]; spare[1].ID != "" {
		t.Errorf("Expected clone append to reallocate journal, original backing saw %q", spare[1].ID)
	}
	if len(s.CompletedRequests) != 1 || len(s.SystemLogs) != 1 {
		t.Errorf("Expected original lengths 1/1, got %d/%d", len(s.CompletedRequests), len(s.SystemLogs))
	}
	if len(c.CompletedRequests) != 2 || c.CompletedRequests[0].ID != "R-1" {
		t.Errorf("Expected clone to keep history and append, got %+v", c.CompletedRequests)
	}
}

func TestClone_KeepsEmptySlices(t *testing.T) {
	c := CreateInitialState(DefaultConfig()).Clone()
	if c.CompletedRequests == nil || c.SystemLogs == nil {
		t.Error("Expected empty history and journal to stay non-nil")
	}
}

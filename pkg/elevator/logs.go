package elevator

import (
	"fmt"
	"slices"

	"github.com/elliotchance/orderedmap/v2"
)

// MaxSystemLogs bounds the journal; older entries fall off the end.
const MaxSystemLogs = 500

// LogKind represents the category of a system log entry.
// LogKind는 시스템 로그 항목의 카테고리를 나타냅니다.
type LogKind string

const (
	LogRequest  LogKind = "request"
	LogMovement LogKind = "movement"
	LogDoor     LogKind = "door"
)

// RequestLog carries detail for request events.
type RequestLog struct {
	RequestID  string      `json:"requestId"`
	Kind       RequestKind `json:"type"`
	Floor      int         `json:"floor"`
	Direction  Direction   `json:"direction,omitempty"`
	ElevatorID string      `json:"elevatorId,omitempty"`
}

// MovementLog carries detail for floor changes and stops.
type MovementLog struct {
	ElevatorID string    `json:"elevatorId"`
	FromFloor  int       `json:"fromFloor"`
	ToFloor    int       `json:"toFloor"`
	Direction  Direction `json:"direction"`
	Stopped    bool      `json:"stopped,omitempty"`
}

// DoorLog carries detail for door transitions.
type DoorLog struct {
	ElevatorID string    `json:"elevatorId"`
	Floor      int       `json:"floor"`
	From       DoorState `json:"from"`
	To         DoorState `json:"to"`
}

// SystemLogEntry is one journal record. Exactly one of Request, Movement or
// Door is set, matching Kind.
type SystemLogEntry struct {
	ID       string       `json:"id"`
	Tick     int          `json:"tick"`
	Kind     LogKind      `json:"type"`
	Summary  string       `json:"summary"`
	Request  *RequestLog  `json:"request,omitempty"`
	Movement *MovementLog `json:"movement,omitempty"`
	Door     *DoorLog     `json:"door,omitempty"`
}

// Fields renders the entry's payload in a stable key order.
func (l SystemLogEntry) Fields() *orderedmap.OrderedMap[string, any] {
	m := orderedmap.NewOrderedMap[string, any]()
	m.Set("tick", l.Tick)
	m.Set("kind", string(l.Kind))
	switch {
	case l.Request != nil:
		m.Set("request_id", l.Request.RequestID)
		m.Set("request_type", string(l.Request.Kind))
		m.Set("floor", l.Request.Floor)
		if l.Request.Direction != "" {
			m.Set("direction", string(l.Request.Direction))
		}
		if l.Request.ElevatorID != "" {
			m.Set("elevator", l.Request.ElevatorID)
		}
	case l.Movement != nil:
		m.Set("elevator", l.Movement.ElevatorID)
		m.Set("from", l.Movement.FromFloor)
		m.Set("to", l.Movement.ToFloor)
		m.Set("direction", string(l.Movement.Direction))
		m.Set("stopped", l.Movement.Stopped)
	case l.Door != nil:
		m.Set("elevator", l.Door.ElevatorID)
		m.Set("floor", l.Door.Floor)
		m.Set("from", string(l.Door.From))
		m.Set("to", string(l.Door.To))
	}
	return m
}

func newRequestLog(r Request, tick int, rng Source) SystemLogEntry {
	summary := fmt.Sprintf("Hall call at floor %d (%s)", r.Floor, r.Direction)
	if r.Kind == KindCar {
		summary = fmt.Sprintf("Car call to floor %d in %s", r.Floor, r.AssignedElevatorID)
	}
	return SystemLogEntry{
		ID:      newID(rng, "L-"),
		Tick:    tick,
		Kind:    LogRequest,
		Summary: summary,
		Request: &RequestLog{
			RequestID:  r.ID,
			Kind:       r.Kind,
			Floor:      r.Floor,
			Direction:  r.Direction,
			ElevatorID: r.AssignedElevatorID,
		},
	}
}

// diffElevators emits movement and door entries for what changed between two
// snapshots of the same cars, in elevator order.
func diffElevators(prev, next []Elevator, tick int, rng Source) []SystemLogEntry {
	var out []SystemLogEntry
	for i := range next {
		if i >= len(prev) {
			break
		}
		p, n := prev[i], next[i]

		if p.CurrentFloor != n.CurrentFloor {
			out = append(out, SystemLogEntry{
				ID:      newID(rng, "L-"),
				Tick:    tick,
				Kind:    LogMovement,
				Summary: fmt.Sprintf("%s moved %s from floor %d to %d", n.ID, n.LastDirection, p.CurrentFloor, n.CurrentFloor),
				Movement: &MovementLog{
					ElevatorID: n.ID,
					FromFloor:  p.CurrentFloor,
					ToFloor:    n.CurrentFloor,
					Direction:  n.LastDirection,
				},
			})
		}
		// A car goes idle on the tick it lands on its last target, so an
		// arrival journals the move and then the stop.
		if n.Direction == DirIdle && (p.Direction != DirIdle || p.CurrentFloor != n.CurrentFloor) {
			heading := p.Direction
			if heading == DirIdle {
				heading = n.LastDirection
			}
			out = append(out, SystemLogEntry{
				ID:      newID(rng, "L-"),
				Tick:    tick,
				Kind:    LogMovement,
				Summary: fmt.Sprintf("%s stopped at floor %d", n.ID, n.CurrentFloor),
				Movement: &MovementLog{
					ElevatorID: n.ID,
					FromFloor:  n.CurrentFloor,
					ToFloor:    n.CurrentFloor,
					Direction:  heading,
					Stopped:    true,
				},
			})
		}

		if p.DoorState != n.DoorState {
			out = append(out, SystemLogEntry{
				ID:      newID(rng, "L-"),
				Tick:    tick,
				Kind:    LogDoor,
				Summary: fmt.Sprintf("%s door %s -> %s at floor %d", n.ID, p.DoorState, n.DoorState, n.CurrentFloor),
				Door: &DoorLog{
					ElevatorID: n.ID,
					Floor:      n.CurrentFloor,
					From:       p.DoorState,
					To:         n.DoorState,
				},
			})
		}
	}
	return out
}

// prependLogs puts entries in front of the journal, newest first, and trims
// it to MaxSystemLogs.
func prependLogs(journal, entries []SystemLogEntry) []SystemLogEntry {
	if len(entries) == 0 {
		return journal
	}
	fresh := slices.Clone(entries)
	slices.Reverse(fresh)
	out := append(fresh, journal...)
	if len(out) > MaxSystemLogs {
		out = out[:MaxSystemLogs]
	}
	return out
}

// appendTravel records the floors each car reached this tick, skipping a
// repeat of the previous entry.
func appendTravel(travel map[string][]int, prev, next []Elevator) {
	for i := range next {
		if i >= len(prev) || prev[i].CurrentFloor == next[i].CurrentFloor {
			continue
		}
		id := next[i].ID
		seq := travel[id]
		if len(seq) > 0 && seq[len(seq)-1] == next[i].CurrentFloor {
			continue
		}
		travel[id] = append(seq, next[i].CurrentFloor)
	}
}

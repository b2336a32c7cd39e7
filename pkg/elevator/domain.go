package elevator

import (
	"fmt"
)

// --- Domain Entities & Value Objects ---

// Direction indicates the vertical movement vector.
// Direction은 수직 이동 벡터를 나타냅니다.
type Direction string

const (
	DirUp   Direction = "up"
	DirDown Direction = "down"
	DirIdle Direction = "idle"
)

// DoorState represents the physical state of the door.
// DoorState는 문의 물리 상태를 나타냅니다.
type DoorState string

const (
	DoorClosed  DoorState = "closed"
	DoorOpening DoorState = "opening"
	DoorOpen    DoorState = "open"
	DoorClosing DoorState = "closing"
)

// OperationMode defines the dispatch and speed policy of the building.
// OperationMode는 건물 전체의 배차 및 속도 정책을 정의합니다.
type OperationMode string

const (
	ModeEco    OperationMode = "eco"    // 절전: 운행 중인 엘리베이터에 합승, 절반 속도
	ModeNormal OperationMode = "normal" // 기본
	ModePower  OperationMode = "power"  // 고속: 한 틱에 최대 2개 층 이동
)

// PowerUnit is the energy charged per floor moved and per door transition.
func (m OperationMode) PowerUnit() float64 {
	switch m {
	case ModeEco:
		return 0.5
	case ModePower:
		return 2
	}
	return 1
}

// RequestKind distinguishes calls made from a floor and calls made inside a car.
type RequestKind string

const (
	KindHall RequestKind = "hall"
	KindCar  RequestKind = "car"
)

// BuildingConfig holds the immutable parameters of one simulation run.
// BuildingConfig는 시뮬레이션 실행 동안 변경되지 않습니다.
type BuildingConfig struct {
	Floors         int           `json:"floors" toml:"floors"`
	Elevators      int           `json:"elevators" toml:"elevators"`
	TickDurationMs int           `json:"tickDurationMs" toml:"tick_duration_ms"` // 표시 전용
	DoorOpenTicks  int           `json:"doorOpenTicks" toml:"door_open_ticks"`
	Mode           OperationMode `json:"mode" toml:"mode"`
}

// DefaultConfig returns a 10-floor, 3-car building in normal mode.
func DefaultConfig() BuildingConfig {
	return BuildingConfig{
		Floors:         10,
		Elevators:      3,
		TickDurationMs: 500,
		DoorOpenTicks:  2,
		Mode:           ModeNormal,
	}
}

// Validate rejects configurations the core cannot run (Fail Fast).
// 잘못된 설정이 감지되면 즉시 에러를 반환합니다.
func (c BuildingConfig) Validate() error {
	if c.Floors < 2 {
		return fmt.Errorf("invalid config: floors (%d) must be at least 2", c.Floors)
	}
	if c.Elevators < 1 {
		return fmt.Errorf("invalid config: elevators (%d) must be at least 1", c.Elevators)
	}
	if c.DoorOpenTicks < 1 {
		return fmt.Errorf("invalid config: doorOpenTicks (%d) must be at least 1", c.DoorOpenTicks)
	}
	if c.TickDurationMs < 1 {
		return fmt.Errorf("invalid config: tickDurationMs (%d) must be positive", c.TickDurationMs)
	}
	switch c.Mode {
	case ModeEco, ModeNormal, ModePower:
	default:
		return fmt.Errorf("invalid config: unknown mode %q", c.Mode)
	}
	return nil
}

// ElevatorStats accumulates per-car usage.
type ElevatorStats struct {
	TotalTravelTime int     `json:"totalTravelTime"` // ticks spent moving or waiting to move
	PowerConsumed   float64 `json:"powerConsumed"`
}

// Elevator is one car in the bank.
// Direction is the movement direction and may go idle mid-route;
// LastDirection only latches non-idle directions for display.
type Elevator struct {
	ID                     string        `json:"id"`
	CurrentFloor           int           `json:"currentFloor"`
	Direction              Direction     `json:"direction"`
	LastDirection          Direction     `json:"lastDirection"`
	DoorState              DoorState     `json:"doorState"`
	DoorOpenTicksRemaining int           `json:"doorOpenTicksRemaining"`
	IsHovered              bool          `json:"isHovered"`
	TargetFloors           []int         `json:"targetFloors"`
	Stats                  ElevatorStats `json:"stats"`
}

// Busy reports whether the car is moving or still has somewhere to go.
func (e Elevator) Busy() bool {
	return e.Direction != DirIdle || len(e.TargetFloors) > 0
}

// HeadTarget returns the next floor in LOOK order.
func (e Elevator) HeadTarget() (int, bool) {
	if len(e.TargetFloors) == 0 {
		return 0, false
	}
	return e.TargetFloors[0], true
}

// HasTargetAhead reports whether any target lies strictly beyond the current
// floor in the given direction.
func (e Elevator) HasTargetAhead(dir Direction) bool {
	for _, f := range e.TargetFloors {
		if dir == DirUp && f > e.CurrentFloor {
			return true
		}
		if dir == DirDown && f < e.CurrentFloor {
			return true
		}
	}
	return false
}

// Request is a hall call or a car call. Hall calls always carry a direction,
// car calls never do. CompletedAtTick is zero until the request is served;
// service can only happen on tick 1 or later.
type Request struct {
	ID                 string      `json:"id"`
	Kind               RequestKind `json:"type"`
	Floor              int         `json:"floor"`
	Direction          Direction   `json:"direction,omitempty"`
	CreatedAtTick      int         `json:"createdAtTick"`
	AssignedElevatorID string      `json:"assignedElevatorId,omitempty"`
	CompletedAtTick    int         `json:"completedAtTick,omitempty"`
}

// Assigned reports whether a dispatch decision has bound the request.
func (r Request) Assigned() bool {
	return r.AssignedElevatorID != ""
}

// Completed reports whether the request has been served.
func (r Request) Completed() bool {
	return r.CompletedAtTick > 0
}

// WaitTicks is the number of ticks between creation and service.
func (r Request) WaitTicks() int {
	return r.CompletedAtTick - r.CreatedAtTick
}

// HallCall is the input to AddRequest.
type HallCall struct {
	Floor     int       `json:"floor"`
	Direction Direction `json:"direction"`
}

// Metrics are derived from the completed requests and never patched incrementally.
type Metrics struct {
	TotalRequests int     `json:"totalRequests"`
	AvgWaitTime   float64 `json:"avgWaitTime"`
	MaxWaitTime   int     `json:"maxWaitTime"`
	Throughput    float64 `json:"throughput"` // completed requests per 100 ticks
}

// SimulationState is a value snapshot of the whole building.
// 모든 연산은 입력 상태를 변경하지 않고 새 상태를 반환합니다.
type SimulationState struct {
	ClockTick         int              `json:"clockTick"`
	Floors            int              `json:"floors"`
	Elevators         []Elevator       `json:"elevators"`
	PendingRequests   []Request        `json:"pendingRequests"`
	ActiveRequests    []Request        `json:"activeRequests"`
	CompletedRequests []Request        `json:"completedRequests"`
	Metrics           Metrics          `json:"metrics"`
	TravelLog         map[string][]int `json:"travelLog"`
	SystemLogs        []SystemLogEntry `json:"systemLogs"`
	Running           bool             `json:"running"`
}

// elevatorIndex returns the slice index of the elevator with the given id, or -1.
func (s SimulationState) elevatorIndex(id string) int {
	for i := range s.Elevators {
		if s.Elevators[i].ID == id {
			return i
		}
	}
	return -1
}

// Elevator looks up a car by id.
func (s SimulationState) Elevator(id string) (Elevator, bool) {
	i := s.elevatorIndex(id)
	if i < 0 {
		return Elevator{}, false
	}
	return s.Elevators[i], true
}

func (s SimulationState) validFloor(floor int) bool {
	return floor >= 1 && floor <= s.Floors
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Package elevator implements a deterministic, tick-based multi-elevator building simulator.
// 이 패키지는 틱 기반의 결정적(Deterministic) 다중 엘리베이터 시뮬레이터를 구현합니다.
// 코어는 순수 함수(Tick)이며, Simulator가 타이머로 코어를 구동합니다.
package elevator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// EventType represents the category of a simulator event.
// EventType는 시뮬레이터 이벤트의 카테고리를 나타냅니다.
type EventType string

const (
	EventTick          EventType = "Tick"
	EventLog           EventType = "Log"
	EventReset         EventType = "Reset"
	EventRunningChange EventType = "RunningChange"
)

// Event carries the state change information.
// Event는 시스템 내에서 발생한 상태 변화 정보를 담고 있습니다.
type Event struct {
	Type      EventType
	Payload   interface{}
	Timestamp time.Time
}

// Simulator is the tick driver around the pure core.
// Simulator의 모든 상태 변경은 Mutex로 보호되며, 변경 사항은 Event 채널로 전파됩니다.
type Simulator struct {
	mu     sync.RWMutex
	config BuildingConfig

	// --- State (가변 상태) ---
	state SimulationState
	rng   Source

	// --- Loop Control ---
	wake chan struct{} // Run 루프에 설정 변경(틱 주기)을 알림

	// --- Observability ---
	logger            *slog.Logger
	eventCh           chan Event // 외부 통신용 이벤트 채널
	droppedEventCount uint64     // 버퍼 오버플로우로 버려진 이벤트 수
}

// NewSimulator validates the configuration and builds a paused simulator.
// 잘못된 설정이 감지되면 즉시 에러를 반환합니다 (Fail Fast).
func NewSimulator(cfg BuildingConfig, rng Source) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewSource(time.Now().UnixNano())
	}

	s := &Simulator{
		config:  cfg,
		state:   CreateInitialState(cfg),
		rng:     rng,
		wake:    make(chan struct{}, 1),
		eventCh: make(chan Event, 1000),
		logger:  slog.Default().With("component", "simulator"),
	}

	s.logger.Info("Simulator initialized",
		"floors", cfg.Floors,
		"elevators", cfg.Elevators,
		"mode", cfg.Mode,
		"tick_ms", cfg.TickDurationMs,
	)
	return s, nil
}

// WithLogger replaces the simulator's logger.
func (s *Simulator) WithLogger(l *slog.Logger) *Simulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = l
	return s
}

// Config returns the active building configuration.
func (s *Simulator) Config() BuildingConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Snapshot returns the current state. The value is never modified afterwards.
// Snapshot은 현재 상태를 안전하게 반환합니다.
func (s *Simulator) Snapshot() SimulationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Running reports whether Run is advancing the clock.
func (s *Simulator) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Running
}

// DroppedEventCount returns diagnostic metric for channel health.
// DroppedEventCount는 버퍼 오버플로우로 버려진 이벤트 수를 안전하게 반환합니다.
func (s *Simulator) DroppedEventCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.droppedEventCount
}

// Events returns the read-only channel for state change notifications.
// Events는 상태 변경 알림을 위한 읽기 전용 채널을 반환합니다.
func (s *Simulator) Events() <-chan Event {
	return s.eventCh
}

// publishEvent sends an event to the channel without blocking logic.
// 채널이 가득 차면 이벤트를 버리고 메트릭을 증가시킵니다 (System Stability).
func (s *Simulator) publishEvent(eventType EventType, payload interface{}) {
	event := Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	select {
	case s.eventCh <- event:
	default:
		s.droppedEventCount++
		// Log rarely to avoid disk I/O flooding
		if s.droppedEventCount%100 == 1 {
			s.logger.Error("Event Channel Saturated", "dropped", s.droppedEventCount, "type", eventType)
		}
	}
}

// setState swaps in a new snapshot and journals the log entries it added.
func (s *Simulator) setState(next SimulationState) {
	added := newLogEntries(s.state.SystemLogs, next.SystemLogs)
	s.state = next

	// Oldest first so the journal reads in order.
	for i := len(added) - 1; i >= 0; i-- {
		entry := added[i]
		attrs := make([]any, 0, 16)
		for el := entry.Fields().Front(); el != nil; el = el.Next() {
			attrs = append(attrs, el.Key, el.Value)
		}
		s.logger.Debug(entry.Summary, attrs...)
		s.publishEvent(EventLog, entry)
	}
}

// newLogEntries returns the entries at the head of next that are not in prev.
func newLogEntries(prev, next []SystemLogEntry) []SystemLogEntry {
	if len(prev) == 0 {
		return next
	}
	head := prev[0].ID
	for i, e := range next {
		if e.ID == head {
			return next[:i]
		}
	}
	return next
}

// Start resumes ticking.
func (s *Simulator) Start() {
	s.setRunning(true)
}

// Pause stops ticking without touching the state.
func (s *Simulator) Pause() {
	s.setRunning(false)
}

func (s *Simulator) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Running == running {
		return
	}
	next := s.state.Clone()
	next.Running = running
	s.state = next

	s.logger.Info("Running state changed", "running", running, "tick", next.ClockTick)
	s.publishEvent(EventRunningChange, running)
}

// Reset replaces the configuration and starts over from a fresh state.
// Reset은 새 설정으로 시뮬레이션 상태를 초기화합니다.
func (s *Simulator) Reset(cfg BuildingConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("Resetting simulation", "floors", cfg.Floors, "elevators", cfg.Elevators, "mode", cfg.Mode)
	s.config = cfg
	s.state = CreateInitialState(cfg)
	s.publishEvent(EventReset, s.state)

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Step advances exactly one tick regardless of the running flag.
func (s *Simulator) Step() SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
	return s.state
}

func (s *Simulator) step() {
	next := Tick(s.state, s.config, s.rng)
	s.setState(next)
	s.publishEvent(EventTick, next)
}

// AddHallCall registers a hall call.
// 유효하지 않은 층이나 방향은 거부됩니다.
func (s *Simulator) AddHallCall(floor int, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if floor < 1 || floor > s.config.Floors {
		s.logger.Warn("AddHallCall failed: floor out of range", "floor", floor, "max", s.config.Floors)
		return fmt.Errorf("floor %d out of range", floor)
	}
	if dir != DirUp && dir != DirDown {
		s.logger.Warn("AddHallCall failed: invalid direction", "direction", dir)
		return fmt.Errorf("invalid hall call direction %q", dir)
	}
	s.setState(AddRequest(s.state, HallCall{Floor: floor, Direction: dir}, s.rng))
	return nil
}

// ToggleCarCall presses or cancels a floor button inside a car.
func (s *Simulator) ToggleCarCall(elevatorID string, floor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Elevator(elevatorID); !ok {
		return fmt.Errorf("unknown elevator %q", elevatorID)
	}
	if floor < 1 || floor > s.config.Floors {
		s.logger.Warn("ToggleCarCall failed: floor out of range", "floor", floor, "max", s.config.Floors)
		return fmt.Errorf("floor %d out of range", floor)
	}
	s.setState(ToggleCarRequest(s.state, elevatorID, floor, s.rng))
	return nil
}

// SetHover holds (or releases) a car's doors.
func (s *Simulator) SetHover(elevatorID string, hovered bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Elevator(elevatorID); !ok {
		return fmt.Errorf("unknown elevator %q", elevatorID)
	}
	s.state = SetElevatorHover(s.state, elevatorID, hovered)
	s.logger.Debug("Hover changed", "elevator", elevatorID, "hovered", hovered)
	return nil
}

func (s *Simulator) tickInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.config.TickDurationMs) * time.Millisecond
}

// Run executes the main event loop.
// It advances the core once per configured tick while running.
// Run은 시뮬레이터의 메인 이벤트 루프를 실행합니다.
func (s *Simulator) Run(ctx context.Context) error {
	s.mu.RLock()
	logger := s.logger
	s.mu.RUnlock()
	logger.Info("Simulator Engine Started")

	interval := s.tickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Engine Stopping (Context Cancelled)")
			return ctx.Err()

		case <-s.wake:
			// Tick cadence may have changed with the new config.
			if next := s.tickInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}

		case <-ticker.C:
			s.mu.Lock()
			if s.state.Running {
				s.step()
			}
			s.mu.Unlock()
		}
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go-elevator-bank-simulator/pkg/elevator"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Message types
// 메시지 타입 정의
type ClientMessage struct {
	Action     string                   `json:"action"`
	Config     *elevator.BuildingConfig `json:"config,omitempty"`
	Floor      int                      `json:"floor,omitempty"`
	Direction  elevator.Direction       `json:"direction,omitempty"`
	ElevatorID string                   `json:"elevatorId,omitempty"`
	Hovered    bool                     `json:"hovered,omitempty"`
}

type ServerMessage struct {
	Type      string                    `json:"type"`
	Digest    uint64                    `json:"digest,omitempty"`
	State     *elevator.SimulationState `json:"state,omitempty"`
	Entry     *elevator.SystemLogEntry  `json:"entry,omitempty"`
	Error     string                    `json:"error,omitempty"`
	Timestamp string                    `json:"timestamp,omitempty"`
}

// SimulationSession manages a WebSocket connection with a simulator instance
// SimulationSession은 시뮬레이터 인스턴스와의 WebSocket 연결을 관리합니다.
type SimulationSession struct {
	app    *AppConfig
	conn   *websocket.Conn
	sim    *elevator.Simulator
	logger *slog.Logger

	mu      sync.Mutex // 액션 처리 직렬화
	writeMu sync.Mutex // WebSocket 쓰기 직렬화
	done    chan struct{}
	cancel  context.CancelFunc

	lastDigest uint64
}

func NewSimulationSession(app *AppConfig, conn *websocket.Conn) *SimulationSession {
	return &SimulationSession{
		app:    app,
		conn:   conn,
		done:   make(chan struct{}),
		logger: slog.Default().With("session", uuid.NewString()),
	}
}

func (s *SimulationSession) HandleMessages() {
	s.logger.Info("Session started", "remote_addr", s.conn.RemoteAddr())
	defer func() {
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
		_ = s.conn.Close()
		s.logger.Info("Session ended", "remote_addr", s.conn.RemoteAddr())
	}()
	defer s.recoverPanic("HandleMessages")

	// Every session starts with the building from the process config.
	s.mu.Lock()
	s.initSimulator(&s.app.Building)
	s.mu.Unlock()

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("WebSocket read error", "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.logger.Warn("Failed to parse message", "error", err)
			continue
		}

		s.handleAction(msg)
	}
}

// recoverPanic reports a panic to Sentry with the session tagged, then lets
// the deferred cleanup close the connection.
func (s *SimulationSession) recoverPanic(where string) {
	if err := recover(); err != nil {
		s.logger.Error("Session panic", "where", where, "panic", err)
		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("where", where)
			scope.SetTag("remote_addr", s.conn.RemoteAddr().String())
		})
		hub.Recover(fmt.Errorf("%v", err))
		hub.Flush(5 * time.Second)
	}
}

func (s *SimulationSession) handleAction(msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Action received", "action", msg.Action, "payload", msg)

	if msg.Action == "init" {
		s.initSimulator(msg.Config)
		return
	}
	if s.sim == nil {
		s.sendError(errors.New("simulation not initialized"))
		return
	}

	var err error
	switch msg.Action {
	case "start":
		s.sim.Start()
	case "pause":
		s.sim.Pause()
	case "reset":
		cfg := s.sim.Config()
		if msg.Config != nil {
			cfg = *msg.Config
		}
		err = s.sim.Reset(cfg)
	case "step":
		s.sim.Step()
	case "addHall":
		err = s.sim.AddHallCall(msg.Floor, msg.Direction)
	case "toggleCar":
		err = s.sim.ToggleCarCall(msg.ElevatorID, msg.Floor)
	case "hover":
		err = s.sim.SetHover(msg.ElevatorID, msg.Hovered)
	case "getState":
		s.lastDigest = 0
	default:
		err = fmt.Errorf("unknown action %q", msg.Action)
	}

	if err != nil {
		s.logger.Warn("Action failed", "action", msg.Action, "error", err)
		s.sendError(err)
	}
	s.sendState()
}

func (s *SimulationSession) initSimulator(cfg *elevator.BuildingConfig) {
	if cfg == nil {
		s.logger.Warn("No config provided for init")
		s.sendError(errors.New("init requires a config"))
		return
	}

	var rng elevator.Source
	if s.app.SeedProvided {
		rng = elevator.NewSource(s.app.Seed)
	}
	sim, err := elevator.NewSimulator(*cfg, rng)
	if err != nil {
		s.logger.Error("Failed to initialize simulator", "error", err)
		s.sendError(err)
		return
	}

	// Stop existing simulator if any
	if s.cancel != nil {
		s.cancel()
	}
	s.sim = sim.WithLogger(s.logger)
	s.lastDigest = 0

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// Subscribe to events
	// 이벤트 구독
	go s.eventListener(ctx, sim)

	go func() {
		defer sentry.Recover()
		if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("Simulator run error", "error", err)
		}
	}()

	s.logger.Info("Simulator initialized", "floors", cfg.Floors, "elevators", cfg.Elevators, "mode", cfg.Mode)

	// Send initial state
	s.sendState()
}

func (s *SimulationSession) eventListener(ctx context.Context, sim *elevator.Simulator) {
	defer s.recoverPanic("eventListener")

	eventCh := sim.Events()
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			switch event.Type {
			case elevator.EventLog:
				if entry, ok := event.Payload.(elevator.SystemLogEntry); ok {
					s.writeJSON(ServerMessage{Type: "log", Entry: &entry, Timestamp: event.Timestamp.Format("15:04:05")})
				}
			case elevator.EventTick, elevator.EventReset, elevator.EventRunningChange:
				s.mu.Lock()
				s.sendState()
				s.mu.Unlock()
			}
		}
	}
}

// sendState pushes the snapshot unless the client already has it.
// Callers hold s.mu.
func (s *SimulationSession) sendState() {
	if s.sim == nil {
		return
	}

	state := s.sim.Snapshot()
	digest := elevator.Digest(state)
	if digest == s.lastDigest {
		return
	}
	s.lastDigest = digest

	s.writeJSON(ServerMessage{
		Type:      "state",
		Digest:    digest,
		State:     &state,
		Timestamp: time.Now().Format("15:04:05"),
	})
}

func (s *SimulationSession) sendError(err error) {
	s.writeJSON(ServerMessage{Type: "error", Error: err.Error()})
}

func (s *SimulationSession) writeJSON(msg ServerMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Error("Failed to write JSON message", "error", err)
	}
}

func newHandler(app *AppConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("WebSocket upgrade failed", "error", err)
			return
		}

		session := NewSimulationSession(app, conn)
		session.HandleMessages()
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	initLogger(cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			slog.Error("Sentry initialization failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if cfg.StatsAddr != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(cfg.StatsAddr))
		mgr := statsview.New()
		go mgr.Start()
		slog.Info("Stats viewer enabled", "addr", cfg.StatsAddr)
	}

	addr := ":" + cfg.Port
	slog.Info("Starting elevator simulation server", "addr", addr,
		"floors", cfg.Building.Floors, "elevators", cfg.Building.Elevators, "mode", cfg.Building.Mode)

	if err := http.ListenAndServe(addr, newHandler(cfg)); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"go-elevator-bank-simulator/pkg/elevator"

	"github.com/pelletier/go-toml"
)

// AppConfig holds process-level settings read from the environment.
// AppConfig는 환경 변수에서 읽은 프로세스 설정입니다.
type AppConfig struct {
	Port         string
	ConfigPath   string // 건물 설정 TOML 파일 경로 (선택)
	SentryDSN    string
	StatsAddr    string // statsview 주소, 비어 있으면 비활성화
	LogLevel     slog.Level
	Seed         int64
	SeedProvided bool
	Building     elevator.BuildingConfig
}

// buildingFile mirrors the TOML layout:
//
//	[building]
//	floors = 12
//	elevators = 4
//	tick_duration_ms = 400
//	door_open_ticks = 2
//	mode = "eco"
type buildingFile struct {
	Building elevator.BuildingConfig `toml:"building"`
}

func loadConfig() (*AppConfig, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cfg := &AppConfig{
		Port:       port,
		ConfigPath: os.Getenv("ELEVATOR_CONFIG"),
		SentryDSN:  os.Getenv("SENTRY_DSN"),
		StatsAddr:  os.Getenv("STATSVIEW_ADDR"),
		LogLevel:   parseLevel(os.Getenv("LOG_LEVEL")),
		Building:   elevator.DefaultConfig(),
	}

	if raw := os.Getenv("SIM_SEED"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse SIM_SEED: %w", err)
		}
		cfg.Seed, cfg.SeedProvided = seed, true
	}

	if cfg.ConfigPath != "" {
		b, err := loadBuildingFile(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Building = b
	}
	return cfg, nil
}

// loadBuildingFile reads a building config, filling unset keys from the defaults.
func loadBuildingFile(path string) (elevator.BuildingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return elevator.BuildingConfig{}, fmt.Errorf("read building config: %w", err)
	}

	var file buildingFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return elevator.BuildingConfig{}, fmt.Errorf("parse building config %s: %w", path, err)
	}
	b := withDefaults(file.Building)
	if err := b.Validate(); err != nil {
		return elevator.BuildingConfig{}, fmt.Errorf("building config %s: %w", path, err)
	}
	return b, nil
}

func withDefaults(b elevator.BuildingConfig) elevator.BuildingConfig {
	def := elevator.DefaultConfig()
	if b.Floors == 0 {
		b.Floors = def.Floors
	}
	if b.Elevators == 0 {
		b.Elevators = def.Elevators
	}
	if b.TickDurationMs == 0 {
		b.TickDurationMs = def.TickDurationMs
	}
	if b.DoorOpenTicks == 0 {
		b.DoorOpenTicks = def.DoorOpenTicks
	}
	if b.Mode == "" {
		b.Mode = def.Mode
	}
	return b
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// initLogger sets up global logging configuration with compact time format.
func initLogger(level slog.Level) {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("15:04:05"))
				}
			}
			return a
		},
	})
	slog.SetDefault(slog.New(handler))
}

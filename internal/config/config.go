// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config is the service configuration
type Config struct {
	ServerPort      string
	FrameSource     string
	SimBPM          float64
	NATSURL         string
	FrameSubject    string
	ResultSubject   string
	AcquireTimeout  time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ResultRetention time.Duration
	RegionWidth     int
	RegionHeight    int
	TraceWidth      int
	TraceDir        string
	LogLevel        slog.Level
}

// Load reads the configuration from environment variables
func Load() Config {
	return Config{
		ServerPort:      GetEnv("SERVER_PORT", "8080"),
		FrameSource:     strings.ToLower(GetEnv("FRAME_SOURCE", "sim")),
		SimBPM:          GetEnvAsFloat("SIM_BPM", 72),
		NATSURL:         GetEnv("NATS_URL", "nats://127.0.0.1:4222"),
		FrameSubject:    GetEnv("FRAME_SUBJECT", "ppg.frames"),
		ResultSubject:   GetEnv("RESULT_SUBJECT", ""),
		AcquireTimeout:  GetEnvAsDuration("ACQUIRE_TIMEOUT", 10*time.Second),
		RedisAddr:       GetEnv("REDIS_ADDR", ""),
		RedisPassword:   GetEnv("REDIS_PASSWORD", ""),
		RedisDB:         GetEnvAsInt("REDIS_DB", 0),
		ResultRetention: time.Duration(GetEnvAsInt("RESULT_RETENTION_HOURS", 24)) * time.Hour,
		RegionWidth:     GetEnvAsInt("REGION_WIDTH", 100),
		RegionHeight:    GetEnvAsInt("REGION_HEIGHT", 100),
		TraceWidth:      GetEnvAsInt("TRACE_WIDTH", 300),
		TraceDir:        GetEnv("TRACE_DIR", ""),
		LogLevel:        GetEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// GetEnv returns the variable or defaultValue when unset
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvAsInt returns the variable as int
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return defaultValue
	}
	return value
}

// GetEnvAsFloat returns the variable as float64
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var value float64
	if _, err := fmt.Sscanf(valueStr, "%f", &value); err != nil {
		return defaultValue
	}
	return value
}

// GetEnvAsDuration returns the variable parsed by time.ParseDuration
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return d
}

// GetEnvAsLevel returns the variable as a log level (debug, info, warn, error)
func GetEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(valueStr)); err != nil {
		return defaultValue
	}
	return level
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/paca/jungsi/backend/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		wantLevel zerolog.Level
	}{
		{
			name: "debug level",
			cfg: &config.Config{
				Env:       "development",
				LogLevel:  "debug",
				LogFormat: "json",
			},
			wantLevel: zerolog.DebugLevel,
		},
		{
			name: "info level",
			cfg: &config.Config{
				Env:       "production",
				LogLevel:  "info",
				LogFormat: "json",
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name: "warn level",
			cfg: &config.Config{
				Env:       "staging",
				LogLevel:  "warn",
				LogFormat: "json",
			},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name: "error level",
			cfg: &config.Config{
				Env:       "production",
				LogLevel:  "error",
				LogFormat: "json",
			},
			wantLevel: zerolog.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.cfg)
			if logger == nil {
				t.Fatal("Expected logger to be created")
			}

			// Verify global level is set
			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("Expected global level %v, got %v", tt.wantLevel, zerolog.GlobalLevel())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"invalid", zerolog.InfoLevel}, // Default
		{"", zerolog.InfoLevel},        // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer

	// Set global level to debug to capture all logs
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	// Create logger with custom output
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{
			name: "debug",
			logFunc: func() {
				logger.Debug("debug message")
			},
			wantMsg:   "debug message",
			wantLevel: "debug",
		},
		{
			name: "info",
			logFunc: func() {
				logger.Info("info message")
			},
			wantMsg:   "info message",
			wantLevel: "info",
		},
		{
			name: "warn",
			logFunc: func() {
				logger.Warn("warn message")
			},
			wantMsg:   "warn message",
			wantLevel: "warn",
		},
		{
			name: "error",
			logFunc: func() {
				logger.Error("error message")
			},
			wantMsg:   "error message",
			wantLevel: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("Failed to parse log output: %v", err)
			}

			if logEntry["level"] != tt.wantLevel {
				t.Errorf("Expected level %q, got %q", tt.wantLevel, logEntry["level"])
			}

			if logEntry["message"] != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, logEntry["message"])
			}
		})
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer

	// Set global level to debug to capture all logs
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	fields := map[string]interface{}{
		"univ_name": "한국체육대학교",
		"dept_name": "체육학과",
		"total":     874.5,
	}

	enrichedLogger := logger.WithFields(fields)
	enrichedLogger.Info("score calculated")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	if logEntry["univ_name"] != "한국체육대학교" {
		t.Errorf("Expected univ_name field, got %v", logEntry["univ_name"])
	}

	if logEntry["total"] != float64(874.5) {
		t.Errorf("Expected total to be 874.5, got %v", logEntry["total"])
	}
}

func TestWithDept(t *testing.T) {
	var buf bytes.Buffer

	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	logger.WithDept(412).Info("formula loaded")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	if logEntry["dept_id"] != float64(412) {
		t.Errorf("Expected dept_id to be 412, got %v", logEntry["dept_id"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	testErr := errors.New("formula config not found")
	enrichedLogger := logger.WithError(testErr)
	enrichedLogger.Error("calculation aborted")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	if logEntry["error"] != "formula config not found" {
		t.Errorf("Expected error field, got %v", logEntry["error"])
	}

	if logEntry["message"] != "calculation aborted" {
		t.Errorf("Expected message 'calculation aborted', got %v", logEntry["message"])
	}
}

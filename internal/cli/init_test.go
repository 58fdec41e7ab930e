package cli

import (
	"path/filepath"
	"testing"
	"time"

	"salesplot/internal/log"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level     string
		component string
	}{
		{"debug", log.ComponentApp},
		{"WARN", log.ComponentImport},
		{"", log.ComponentApp},
		{"chatty", log.ComponentApp},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := SetupLogger(tt.level, tt.component)
			if logger == nil {
				t.Fatal("SetupLogger returned nil")
			}
			if logger.Component() != tt.component {
				t.Errorf("Component() = %q, want %q", logger.Component(), tt.component)
			}
		})
	}
}

func TestInitSQLite(t *testing.T) {
	logger := SetupLogger("error", log.ComponentStorage)
	repo := InitSQLite(logger, filepath.Join(t.TempDir(), "nested", "sales.db"))
	defer repo.Close()

	if repo == nil {
		t.Fatal("InitSQLite returned nil")
	}
}

func TestShutdownContext_Stop(t *testing.T) {
	ctx, stop := ShutdownContext(SetupLogger("error", log.ComponentApp))

	select {
	case <-ctx.Done():
		t.Fatal("context should not be done before stop")
	default:
	}

	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be done after stop")
	}
}

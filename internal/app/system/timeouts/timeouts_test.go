package timeouts_test

import (
	"testing"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{
		Ping: 500 * time.Millisecond,
		Long: time.Minute,
	})

	if got := timeouts.Ping(); got != 500*time.Millisecond {
		t.Errorf("Ping() = %v", got)
	}
	if got := timeouts.Long(); got != time.Minute {
		t.Errorf("Long() = %v", got)
	}

	// Zero values leave the current settings alone.
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("Short() = %v, want default %v", got, timeouts.DefaultShort)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", got, timeouts.DefaultMedium)
	}
}

func TestReset(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: time.Hour})
	timeouts.Reset()

	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("Ping() after Reset = %v, want %v", got, timeouts.DefaultPing)
	}
}

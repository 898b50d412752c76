package costs

import (
	"testing"
	"time"
)

func TestCalculateSessionCosts(t *testing.T) {
	tests := []struct {
		name  string
		usage SessionUsage
		want  SessionCosts
	}{
		{
			name: "two minutes of server recognition",
			usage: SessionUsage{
				Recording:         2 * time.Minute,
				ServerRecognition: 2 * time.Minute,
				Classifications:   6,
			},
			// STT: 2 * 0.77 = 1.54 cents
			want: SessionCosts{STTCostCents: 1.54, TotalCostCents: 1.54},
		},
		{
			name: "client recognition is free",
			usage: SessionUsage{
				Recording:       5 * time.Minute,
				Classifications: 12,
			},
			want: SessionCosts{},
		},
		{
			name: "short entry keeps fractions",
			usage: SessionUsage{
				Recording:         30 * time.Second,
				ServerRecognition: 30 * time.Second,
			},
			// STT: 0.5 * 0.77 = 0.385 cents
			want: SessionCosts{STTCostCents: 0.385, TotalCostCents: 0.385},
		},
		{
			name:  "empty session",
			usage: SessionUsage{},
			want:  SessionCosts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSessionCosts(tt.usage)
			if got != tt.want {
				t.Errorf("CalculateSessionCosts() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMeter(c *fakeClock) *Meter { return &Meter{now: c.now} }

func TestMeter(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	m := newTestMeter(clock)

	// Client recording: 1 minute, not billed.
	m.StartRecording(false)
	clock.advance(time.Minute)
	m.StopRecording()

	// Idle time between recordings is not counted.
	clock.advance(10 * time.Minute)

	// Server recording: 2 minutes. A second start is a no-op.
	m.StartRecording(true)
	clock.advance(time.Minute)
	m.StartRecording(false)
	clock.advance(time.Minute)
	m.StopRecording()
	m.StopRecording()

	m.Classified()
	m.Classified()

	u := m.Usage()
	if u.Recording != 3*time.Minute {
		t.Errorf("Recording = %v, want 3m", u.Recording)
	}
	if u.ServerRecognition != 2*time.Minute {
		t.Errorf("ServerRecognition = %v, want 2m", u.ServerRecognition)
	}
	if u.Classifications != 2 {
		t.Errorf("Classifications = %d, want 2", u.Classifications)
	}
}

func TestMeter_UsageIncludesOpenRecording(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	m := newTestMeter(clock)

	m.StartRecording(true)
	clock.advance(90 * time.Second)

	u := m.Usage()
	if u.ServerRecognition != 90*time.Second {
		t.Errorf("ServerRecognition = %v, want 1m30s", u.ServerRecognition)
	}

	// Usage does not close the recording.
	clock.advance(30 * time.Second)
	m.StopRecording()
	if got := m.Usage().Recording; got != 2*time.Minute {
		t.Errorf("Recording = %v, want 2m", got)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_COST_FLOAT", "1.25")
	if got := getEnvFloat("TEST_COST_FLOAT", 0.5); got != 1.25 {
		t.Errorf("getEnvFloat() = %v, want 1.25", got)
	}
	t.Setenv("TEST_COST_FLOAT", "cheap")
	if got := getEnvFloat("TEST_COST_FLOAT", 0.5); got != 0.5 {
		t.Errorf("getEnvFloat() = %v, want default 0.5", got)
	}
}

// Package costs meters what a journaling session spent on paid services.
package costs

import (
	"math"
	"os"
	"strconv"
	"time"
)

// Pricing constants (in cents per unit for precision).
// These can be overridden via environment variables.
var (
	// DeepgramCentsPerMinute is the cost per minute for Deepgram Nova streaming STT.
	// Default: $0.0077/min = 0.77 cents/min
	DeepgramCentsPerMinute = getEnvFloat("COST_DEEPGRAM_CENTS_PER_MIN", 0.77)
)

// SessionUsage is the raw usage of one session.
type SessionUsage struct {
	Recording         time.Duration // Total time spent recording, any engine
	ServerRecognition time.Duration // Audio streamed to the server-side recognizer
	Classifications   int           // Requests sent to the emotion model
}

// SessionCosts contains the calculated costs for a session in cents.
// Fractions are kept because a short journal entry costs well under a cent.
type SessionCosts struct {
	STTCostCents   float64
	TotalCostCents float64
}

// CalculateSessionCosts computes the costs for a session based on usage.
// Client-side recognition runs on the user's device and is free here.
func CalculateSessionCosts(u SessionUsage) SessionCosts {
	sttCents := u.ServerRecognition.Minutes() * DeepgramCentsPerMinute
	if sttCents < 0 {
		sttCents = 0
	}
	sttCents = roundTo(sttCents, 4)
	return SessionCosts{
		STTCostCents:   sttCents,
		TotalCostCents: sttCents,
	}
}

// Meter accumulates usage while a session runs. It is not safe for
// concurrent use; the session's goroutine owns it.
type Meter struct {
	now func() time.Time

	usage       SessionUsage
	startedAt   time.Time
	serverAudio bool
}

// NewMeter creates a meter on the wall clock.
func NewMeter() *Meter {
	return &Meter{now: time.Now}
}

// StartRecording marks the beginning of a recording. server reports whether
// audio goes to the server-side recognizer.
func (m *Meter) StartRecording(server bool) {
	if !m.startedAt.IsZero() {
		return
	}
	m.startedAt = m.now()
	m.serverAudio = server
}

// StopRecording closes the open recording, if any.
func (m *Meter) StopRecording() {
	if m.startedAt.IsZero() {
		return
	}
	d := m.now().Sub(m.startedAt)
	m.usage.Recording += d
	if m.serverAudio {
		m.usage.ServerRecognition += d
	}
	m.startedAt = time.Time{}
	m.serverAudio = false
}

// Classified counts one classification request.
func (m *Meter) Classified() {
	m.usage.Classifications++
}

// Usage returns the usage so far, including a recording still in progress.
func (m *Meter) Usage() SessionUsage {
	u := m.usage
	if !m.startedAt.IsZero() {
		d := m.now().Sub(m.startedAt)
		u.Recording += d
		if m.serverAudio {
			u.ServerRecognition += d
		}
	}
	return u
}

func roundTo(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

// getEnvFloat returns an environment variable as float64, or the default if not set.
func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

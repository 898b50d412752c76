package eventlog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventType represents the type of session event
type EventType string

const (
	EventSessionStarted           EventType = "session_started"
	EventRecordingStarted         EventType = "recording_started"
	EventRecordingStopped         EventType = "recording_stopped"
	EventRecognitionFinal         EventType = "recognition_final"
	EventRecognitionFailed        EventType = "recognition_failed"
	EventCapabilityUnavailable    EventType = "capability_unavailable"
	EventClassificationDispatched EventType = "classification_dispatched"
	EventClassificationCompleted  EventType = "classification_completed"
	EventClassificationFailed     EventType = "classification_failed"
	EventClassificationStale      EventType = "classification_stale"
	EventEntrySaved               EventType = "entry_saved"
	EventTranscriptCleared        EventType = "transcript_cleared"
	EventSessionEnded             EventType = "session_ended"
)

// Recorder accepts session events without blocking the caller.
type Recorder interface {
	LogAsync(sessionID string, eventType EventType, data map[string]any)
}

// Logger provides async event logging to the database
type Logger struct {
	db *pgxpool.Pool
	wg sync.WaitGroup
}

// New creates a new event logger
func New(db *pgxpool.Pool) *Logger {
	return &Logger{db: db}
}

// Log writes an event to the database synchronously
func (l *Logger) Log(ctx context.Context, sessionID string, eventType EventType, data map[string]any) error {
	if l.db == nil || sessionID == "" {
		return nil // Silently skip if no DB or session ID
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		dataJSON = []byte("{}")
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO session_events (session_id, event_type, event_data)
		VALUES ($1, $2, $3)
	`, sessionID, string(eventType), dataJSON)

	return err
}

// LogAsync logs an event without blocking the caller
func (l *Logger) LogAsync(sessionID string, eventType EventType, data map[string]any) {
	if l.db == nil || sessionID == "" {
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.Log(ctx, sessionID, eventType, data)
	}()
}

// Flush waits for pending async writes, up to the context deadline.
func (l *Logger) Flush(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

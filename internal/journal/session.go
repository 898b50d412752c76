// Package journal runs one client's journaling session: recording state,
// the live transcript, background classification and saving entries.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lukasbauer/echojournal/internal/classify"
	"github.com/lukasbauer/echojournal/internal/costs"
	"github.com/lukasbauer/echojournal/internal/eventlog"
	"github.com/lukasbauer/echojournal/internal/mood"
	"github.com/lukasbauer/echojournal/internal/store"
	"github.com/lukasbauer/echojournal/internal/stt"
	"github.com/lukasbauer/echojournal/internal/transcript"
	"github.com/sirupsen/logrus"
)

var (
	// ErrCapabilityUnavailable means the requested recognition engine cannot
	// run here. Recording does not start.
	ErrCapabilityUnavailable = errors.New("speech recognition unavailable")
	// ErrRecognitionFailure means the recognizer failed mid-recording.
	ErrRecognitionFailure = errors.New("speech recognition failed")
)

const saveTimeout = 5 * time.Second

// Config wires a session to its collaborators. Classifier and Entries are
// required; everything else is optional.
type Config struct {
	SessionID  string
	Owner      string
	Classifier classify.Classifier
	QueueSize  int
	Render     mood.Options
	Entries    store.Entries
	Events     eventlog.Recorder
	Recognizer stt.Factory // nil disables EngineServer
	Hub        *sentry.Hub
	Logger     logrus.FieldLogger
}

// Session is the single control path of one connected client. Every method
// must be called from the goroutine running Run, or before Run starts.
type Session struct {
	cfg    Config
	logger logrus.FieldLogger
	send   Sender

	acc   *transcript.Accumulator
	ch    *classify.Channel
	meter *costs.Meter

	recording bool
	engine    Engine
	rec       stt.Client

	result    *classify.Output
	rendering *mood.Rendering
}

// NewSession creates a session that reports to send.
func NewSession(cfg Config, send Sender) *Session {
	if cfg.Hub == nil {
		cfg.Hub = sentry.CurrentHub()
	}
	logger := cfg.Logger.WithFields(logrus.Fields{
		"component":  "session",
		"session_id": cfg.SessionID,
	})
	s := &Session{
		cfg:    cfg,
		logger: logger,
		send:   send,
		ch:     classify.NewChannel(cfg.Classifier, cfg.QueueSize, logger),
		meter:  costs.NewMeter(),
	}
	s.acc = transcript.New(transcript.DispatchFunc(s.dispatch))
	return s
}

// Run processes client messages, recognizer output and classification
// responses until ctx ends or inbound is closed.
func (s *Session) Run(ctx context.Context, inbound <-chan Inbound) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.ch.Start(ctx)
	defer s.close()

	s.event(eventlog.EventSessionStarted, map[string]any{"owner": s.cfg.Owner})
	s.logger.Info("session started")

	for {
		var results <-chan stt.TranscriptResult
		var recErrs <-chan error
		if s.rec != nil {
			results = s.rec.Results()
			recErrs = s.rec.Errors()
		}

		select {
		case <-ctx.Done():
			return

		case msg, ok := <-inbound:
			if !ok {
				return
			}
			s.Handle(ctx, msg)

		case r, ok := <-results:
			if !ok {
				s.rec = nil
				continue
			}
			s.Recognition([]transcript.Segment{{Text: r.Text, IsFinal: r.IsFinal}})

		case err, ok := <-recErrs:
			if ok {
				s.RecognitionError(err)
			}

		case resp, ok := <-s.ch.Responses():
			if !ok {
				return
			}
			s.Classification(resp)
		}
	}
}

// Handle applies one client message.
func (s *Session) Handle(ctx context.Context, msg Inbound) {
	switch msg.Type {
	case MsgStart:
		_ = s.Start(ctx, msg.Engine)
	case MsgStop:
		s.Stop()
	case MsgRecognition:
		if s.rec != nil {
			s.logger.Debug("ignoring client recognition while server engine is active")
			return
		}
		s.Recognition(msg.Results)
	case MsgRecognitionError:
		reason := msg.Error
		if reason == "" {
			reason = "unknown error"
		}
		s.RecognitionError(errors.New(reason))
	case MsgAudio:
		if s.rec == nil {
			return
		}
		if err := s.rec.StreamAudio(ctx, msg.Audio); err != nil {
			s.RecognitionError(err)
		}
	case MsgSave:
		_ = s.Save(ctx)
	case MsgClear:
		s.Clear()
	default:
		s.push(Outbound{Type: MsgError, Error: &ErrorView{
			Kind:    KindBadRequest,
			Message: fmt.Sprintf("unknown message type %q", msg.Type),
		}})
	}
}

// Start begins recording with the given engine. Starting while already
// recording is a no-op.
func (s *Session) Start(ctx context.Context, engine Engine) error {
	if s.recording {
		return nil
	}
	if engine == "" {
		engine = EngineClient
	}

	switch engine {
	case EngineClient:
	case EngineServer:
		if s.cfg.Recognizer == nil {
			return s.unavailable(stt.ErrUnavailable)
		}
		rec, err := s.cfg.Recognizer(ctx)
		if errors.Is(err, stt.ErrUnavailable) {
			return s.unavailable(err)
		}
		if err != nil {
			s.RecognitionError(err)
			return fmt.Errorf("%w: %v", ErrRecognitionFailure, err)
		}
		s.rec = rec
	default:
		s.push(Outbound{Type: MsgError, Error: &ErrorView{
			Kind:    KindBadRequest,
			Message: fmt.Sprintf("unknown engine %q", engine),
		}})
		return fmt.Errorf("unknown engine %q", engine)
	}

	s.recording = true
	s.engine = engine
	s.meter.StartRecording(engine == EngineServer)
	s.pushRecording()
	s.event(eventlog.EventRecordingStarted, map[string]any{"engine": string(engine)})
	s.logger.WithField("engine", engine).Info("recording started")
	return nil
}

func (s *Session) unavailable(cause error) error {
	err := fmt.Errorf("%w: %v", ErrCapabilityUnavailable, cause)
	s.logger.WithError(cause).Warn("recognition engine unavailable")
	s.event(eventlog.EventCapabilityUnavailable, map[string]any{"error": cause.Error()})
	s.push(Outbound{Type: MsgError, Error: &ErrorView{
		Kind:    KindCapabilityUnavailable,
		Message: "speech recognition is not available",
		Fatal:   true,
	}})
	return err
}

// Stop ends recording. The transcript is kept.
func (s *Session) Stop() {
	if !s.recording {
		return
	}
	s.stopRecognizer()
	s.recording = false
	s.meter.StopRecording()
	s.pushRecording()
	s.event(eventlog.EventRecordingStopped, nil)
	s.logger.Info("recording stopped")
}

func (s *Session) stopRecognizer() {
	if s.rec == nil {
		return
	}
	if err := s.rec.Close(); err != nil {
		s.logger.WithError(err).Debug("closing recognizer")
	}
	s.rec = nil
}

// Recognition merges one recognition event into the transcript.
func (s *Session) Recognition(segments []transcript.Segment) {
	upd := s.acc.OnRecognitionEvent(segments)
	s.push(Outbound{Type: MsgTranscript, Transcript: &TranscriptView{
		Displayed: upd.Displayed,
		Finalized: upd.Finalized,
		Interim:   upd.Interim,
	}})
	if upd.Dispatched {
		s.event(eventlog.EventRecognitionFinal, map[string]any{"length": len(upd.Finalized)})
	}
}

func (s *Session) dispatch(text string) {
	seq, ok := s.ch.Send(text)
	if !ok {
		return
	}
	s.meter.Classified()
	s.event(eventlog.EventClassificationDispatched, map[string]any{"seq": seq, "length": len(text)})
}

// RecognitionError aborts recording. The finalized transcript is kept.
func (s *Session) RecognitionError(cause error) {
	err := fmt.Errorf("%w: %v", ErrRecognitionFailure, cause)
	s.logger.WithError(cause).Warn("recognition failed")
	s.cfg.Hub.CaptureException(err)
	s.event(eventlog.EventRecognitionFailed, map[string]any{"error": cause.Error()})

	s.stopRecognizer()
	wasRecording := s.recording
	s.recording = false
	s.meter.StopRecording()

	s.push(Outbound{Type: MsgError, Error: &ErrorView{
		Kind:    KindRecognitionFailure,
		Message: cause.Error(),
		Fatal:   true,
	}})
	if wasRecording {
		s.pushRecording()
	}
}

// Classification applies a classifier response. Responses to anything but
// the latest request are dropped. A failed classification keeps the
// previous result on screen.
func (s *Session) Classification(resp classify.Response) {
	log := s.logger.WithField("seq", resp.Seq)
	if !s.ch.Current(resp) {
		log.WithField("latest", s.ch.Latest()).Debug("dropping stale classification")
		s.event(eventlog.EventClassificationStale, map[string]any{"seq": resp.Seq})
		return
	}

	if err := resp.Err(); err != nil {
		log.WithError(err).Warn("classification failed")
		s.cfg.Hub.CaptureException(err)
		s.event(eventlog.EventClassificationFailed, map[string]any{"seq": resp.Seq, "error": resp.Error})
		s.push(Outbound{Type: MsgError, Error: &ErrorView{
			Kind:    KindClassificationFailure,
			Message: resp.Error,
		}})
		return
	}

	out := *resp.Output
	r := mood.Render(out.All, s.cfg.Render)
	s.result = &out
	s.rendering = &r

	s.push(Outbound{Type: MsgAnalysis, Analysis: &Analysis{Seq: resp.Seq, Result: out, Rendering: r}})
	s.event(eventlog.EventClassificationCompleted, map[string]any{
		"seq":       resp.Seq,
		"top":       out.Top.Label,
		"score":     out.Top.Score,
		"sentiment": string(out.Sentiment),
	})
}

// Save persists the displayed transcript with the held sentiment and resets
// the session. A blank transcript saves nothing. On a store error the
// transcript is kept so the client can retry.
func (s *Session) Save(ctx context.Context) error {
	text := strings.TrimSpace(s.acc.Displayed())
	if text == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	entry, err := s.cfg.Entries.InsertEntry(ctx, store.Entry{
		Owner:     s.cfg.Owner,
		Text:      text,
		Sentiment: string(s.Sentiment()),
	})
	if err != nil {
		s.logger.WithError(err).Error("save entry failed")
		s.cfg.Hub.CaptureException(err)
		s.push(Outbound{Type: MsgError, Error: &ErrorView{
			Kind:    KindSaveFailure,
			Message: "could not save entry",
		}})
		return fmt.Errorf("save entry: %w", err)
	}

	s.reset()
	s.push(Outbound{Type: MsgSaved, Entry: &entry})
	s.event(eventlog.EventEntrySaved, map[string]any{"entry_id": entry.ID, "sentiment": entry.Sentiment})
	s.logger.WithField("entry_id", entry.ID).Info("entry saved")
	return nil
}

// Clear discards the transcript and the held result.
func (s *Session) Clear() {
	s.reset()
	s.push(Outbound{Type: MsgCleared})
	s.event(eventlog.EventTranscriptCleared, nil)
}

// reset empties the transcript and the held result, and makes every
// in-flight classification stale so it cannot repopulate the session.
func (s *Session) reset() {
	s.acc.Reset()
	s.result = nil
	s.rendering = nil
	s.ch.Invalidate()
}

// Sentiment returns the held sentiment, or neutral when nothing is held.
func (s *Session) Sentiment() classify.Sentiment {
	if s.result == nil {
		return classify.Neutral
	}
	return s.result.Sentiment
}

// Result returns the held classification and its rendering, if any.
func (s *Session) Result() (*classify.Output, *mood.Rendering) {
	return s.result, s.rendering
}

// Recording reports whether the session is recording.
func (s *Session) Recording() bool { return s.recording }

// Transcript returns the displayed transcript.
func (s *Session) Transcript() string { return s.acc.Displayed() }

// Usage returns what the session has consumed so far.
func (s *Session) Usage() costs.SessionUsage { return s.meter.Usage() }

func (s *Session) close() {
	s.stopRecognizer()
	s.recording = false
	s.meter.StopRecording()
	s.ch.Close()

	usage := s.meter.Usage()
	spent := costs.CalculateSessionCosts(usage)
	s.event(eventlog.EventSessionEnded, map[string]any{
		"recording_seconds":          usage.Recording.Seconds(),
		"server_recognition_seconds": usage.ServerRecognition.Seconds(),
		"classifications":            usage.Classifications,
		"stt_cost_cents":             spent.STTCostCents,
	})
	s.logger.WithFields(logrus.Fields{
		"classifications": usage.Classifications,
		"cost_cents":      spent.TotalCostCents,
	}).Info("session ended")
}

func (s *Session) pushRecording() {
	recording := s.recording
	s.push(Outbound{Type: MsgRecording, Recording: &recording})
}

func (s *Session) push(m Outbound) {
	if err := s.send.Send(m); err != nil {
		s.logger.WithError(err).WithField("type", m.Type).Debug("send to client failed")
	}
}

func (s *Session) event(t eventlog.EventType, data map[string]any) {
	if s.cfg.Events == nil {
		return
	}
	s.cfg.Events.LogAsync(s.cfg.SessionID, t, data)
}

package classify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lukasbauer/echojournal/internal/mood"
	"github.com/sirupsen/logrus"
)

// Model scores a transcript. Implementations must be safe for concurrent use;
// one Model serves every session in the process.
type Model interface {
	Classify(ctx context.Context, text string) ([]mood.Mood, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, text string) ([]mood.Mood, error)

// Classify calls f(ctx, text).
func (f ModelFunc) Classify(ctx context.Context, text string) ([]mood.Mood, error) {
	return f(ctx, text)
}

// Loader performs the one-time, possibly slow, model initialization.
type Loader func(ctx context.Context) (Model, error)

// Classifier answers classification requests. It never returns a Go error:
// failures come back as StatusError responses.
type Classifier interface {
	Classify(ctx context.Context, req Request) Response
}

// Service is the process-scoped classifier. The model is loaded on the first
// request and reused for the lifetime of the process; a failed load is
// retried by the next request.
type Service struct {
	loader Loader
	logger logrus.FieldLogger

	mu    sync.Mutex // guards model and serializes loading
	model Model

	loads atomic.Int64
}

// NewService creates a service that loads its model lazily.
func NewService(loader Loader, logger logrus.FieldLogger) *Service {
	return &Service{
		loader: loader,
		logger: logger.WithField("component", "classify"),
	}
}

// Loaded reports whether the model has been initialized.
func (s *Service) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model != nil
}

// Loads returns how many times the loader has been invoked.
func (s *Service) Loads() int64 {
	return s.loads.Load()
}

// Warm loads the model ahead of the first request.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.ensureModel(ctx)
	return err
}

func (s *Service) ensureModel(ctx context.Context) (Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model != nil {
		return s.model, nil
	}

	s.loads.Add(1)
	start := time.Now()
	m, err := s.loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("load model: loader returned no model")
	}
	s.model = m
	s.logger.WithField("duration", time.Since(start)).Info("classifier model loaded")
	return m, nil
}

// Classify runs one request through the model. A panicking model is reported
// as an error response.
func (s *Service) Classify(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Failed(req.Seq, fmt.Errorf("model panic: %v", r))
		}
	}()

	m, err := s.ensureModel(ctx)
	if err != nil {
		return Failed(req.Seq, err)
	}

	scores, err := m.Classify(ctx, req.Text)
	if err != nil {
		return Failed(req.Seq, err)
	}
	return Complete(req.Seq, NewOutput(scores))
}

type timeoutClassifier struct {
	next    Classifier
	timeout time.Duration
}

// WithTimeout bounds each request to d. A zero or negative d returns c
// unchanged, so requests run until the model answers.
func WithTimeout(c Classifier, d time.Duration) Classifier {
	if d <= 0 {
		return c
	}
	return timeoutClassifier{next: c, timeout: d}
}

func (t timeoutClassifier) Classify(ctx context.Context, req Request) Response {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Classify(ctx, req)
}

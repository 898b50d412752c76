package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lukasbauer/echojournal/internal/classify"
	"github.com/lukasbauer/echojournal/internal/eventlog"
	"github.com/lukasbauer/echojournal/internal/mood"
	"github.com/lukasbauer/echojournal/internal/store"
	"github.com/lukasbauer/echojournal/internal/stt"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	// JWT Authentication. Empty secret means every request is anonymous.
	JWTSecret string

	// Mood rendering defaults
	Render mood.Options

	// Classification
	ClassifyTimeout time.Duration // 0 = wait for the model
	QueueSize       int

	// Server-side recognition; nil disables the server engine
	Recognizer stt.Factory
}

// Deps are the process-wide collaborators shared by every request.
type Deps struct {
	Entries    store.Entries
	Events     eventlog.Recorder
	Classifier classify.Classifier
	Sessions   *SessionRegistry
}

type Router struct {
	cfg        RouterConfig
	logger     logrus.FieldLogger
	entries    store.Entries
	events     eventlog.Recorder
	classifier classify.Classifier
	sessions   *SessionRegistry
	mux        *http.ServeMux
}

func NewRouter(cfg RouterConfig, logger logrus.FieldLogger, deps Deps) http.Handler {
	if deps.Sessions == nil {
		deps.Sessions = NewSessionRegistry()
	}
	r := &Router{
		cfg:        cfg,
		logger:     logger.WithField("component", "http"),
		entries:    deps.Entries,
		events:     deps.Events,
		classifier: classify.WithTimeout(deps.Classifier, cfg.ClassifyTimeout),
		sessions:   deps.Sessions,
		mux:        http.NewServeMux(),
	}

	r.routes()
	return withSentryRecovery(withCORS(r.mux))
}

func (r *Router) routes() {
	// Health check
	r.mux.HandleFunc("GET /healthz", r.handleHealthz)

	// Live journaling session
	r.mux.HandleFunc("GET /session", r.withAuth(r.handleSession))

	// Saved entries
	r.mux.HandleFunc("GET /api/entries", r.withAuth(r.handleListEntries))
	r.mux.HandleFunc("DELETE /api/entries/{id}", r.withAuth(r.handleDeleteEntry))

	// Stateless mood helpers
	r.mux.HandleFunc("POST /api/render", r.handleRender)
	r.mux.HandleFunc("GET /api/palette", r.handlePalette)
}

func (r *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// captureError sends an error to Sentry with request context
func captureError(req *http.Request, err error, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetExtra("message", msg)
		sentry.CaptureException(err)
	})
}

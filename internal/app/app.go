package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukasbauer/echojournal/internal/classify"
	"github.com/lukasbauer/echojournal/internal/eventlog"
	"github.com/lukasbauer/echojournal/internal/httpapi"
	"github.com/lukasbauer/echojournal/internal/llm"
	"github.com/lukasbauer/echojournal/internal/mood"
	"github.com/lukasbauer/echojournal/internal/store"
	"github.com/lukasbauer/echojournal/internal/stt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type App struct {
	cfg        Config
	logger     logrus.FieldLogger
	db         *pgxpool.Pool
	rdb        *redis.Client
	entries    store.Entries
	eventLog   *eventlog.Logger
	classifier *classify.Service
	httpClient *http.Client // Shared HTTP client for the remote emotion models
}

// New wires the process-wide dependencies. Postgres and Redis are optional:
// without DATABASE_URL entries live in memory, and without REDIS_URL model
// scores are not cached.
func New(cfg Config, logger logrus.FieldLogger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{
		cfg:    cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}

	if cfg.DatabaseURL != "" {
		db, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, err
		}
		s := store.New(db)
		if cfg.AutoMigrate {
			if err := s.Migrate(ctx); err != nil {
				db.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		a.db = db
		a.entries = s
	} else {
		logger.Warn("DATABASE_URL not set, journal entries are kept in memory")
		a.entries = store.NewMemory()
	}
	a.eventLog = eventlog.New(a.db)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.rdb = rdb
	}

	a.classifier = classify.NewService(a.loader(), logger)
	return a, nil
}

// loader picks the model backend named by CLASSIFIER. Remote backends are
// wrapped in the Redis score cache when one is configured.
func (a *App) loader() classify.Loader {
	cached := func(m classify.Model) classify.Model {
		if a.rdb == nil {
			return m
		}
		return classify.NewCache(m, a.rdb, classify.CacheConfig{TTL: a.cfg.CacheTTL}, a.logger)
	}

	switch a.cfg.Classifier {
	case ClassifierHTTP:
		warm := classify.HTTPLoader(classify.NewHTTPModel(a.cfg.EmotionServiceURL, a.httpClient))
		return func(ctx context.Context) (classify.Model, error) {
			m, err := warm(ctx)
			if err != nil {
				return nil, err
			}
			return cached(m), nil
		}
	case ClassifierOpenAI:
		var scorer llm.EmotionScorer
		if a.cfg.OpenAIAPIKey != "" {
			scorer = llm.NewOpenAIClient(llm.OpenAIConfig{
				APIKey:     a.cfg.OpenAIAPIKey,
				Model:      a.cfg.OpenAIModel,
				HTTPClient: a.httpClient,
			})
		}
		load := classify.ScorerLoader(scorer)
		return func(ctx context.Context) (classify.Model, error) {
			m, err := load(ctx)
			if err != nil {
				return nil, err
			}
			return cached(m), nil
		}
	default:
		return func(context.Context) (classify.Model, error) {
			return classify.NewLexicon(), nil
		}
	}
}

// RenderOptions are the configured mood rendering defaults.
func (a *App) RenderOptions() mood.Options {
	return mood.Options{
		DominanceThreshold: a.cfg.DominanceThreshold,
		TopK:               a.cfg.BlendTopK,
		Direction:          a.cfg.GradientDirection,
	}
}

// Recognizer returns the server-side speech factory, or nil when no
// Deepgram key is configured.
func (a *App) Recognizer() stt.Factory {
	if a.cfg.DeepgramAPIKey == "" {
		return nil
	}
	return stt.DeepgramFactory(stt.DeepgramConfig{
		APIKey:         a.cfg.DeepgramAPIKey,
		Model:          a.cfg.DeepgramModel,
		Language:       a.cfg.DeepgramLanguage,
		Encoding:       a.cfg.DeepgramEncoding,
		SampleRate:     a.cfg.DeepgramSampleRate,
		Channels:       1,
		Punctuate:      true,
		InterimResults: true,
		Endpointing:    a.cfg.STTEndpointingMs,
	}, a.logger)
}

// Warm loads the emotion model ahead of the first session.
func (a *App) Warm(ctx context.Context) error {
	return a.classifier.Warm(ctx)
}

// Classify runs one transcript through the configured model, outside any
// session.
func (a *App) Classify(ctx context.Context, text string) (classify.Output, error) {
	c := classify.WithTimeout(a.classifier, a.cfg.ClassifyTimeout)
	resp := c.Classify(ctx, classify.Request{Text: text})
	if err := resp.Err(); err != nil {
		return classify.Output{}, err
	}
	return *resp.Output, nil
}

func (a *App) Router(sessions *httpapi.SessionRegistry) http.Handler {
	routerCfg := httpapi.RouterConfig{
		JWTSecret:       a.cfg.JWTSecret,
		Render:          a.RenderOptions(),
		ClassifyTimeout: a.cfg.ClassifyTimeout,
		QueueSize:       a.cfg.QueueSize,
		Recognizer:      a.Recognizer(),
	}
	return httpapi.NewRouter(routerCfg, a.logger, httpapi.Deps{
		Entries:    a.entries,
		Events:     a.eventLog,
		Classifier: a.classifier,
		Sessions:   sessions,
	})
}

// Flush waits for pending session event writes.
func (a *App) Flush(ctx context.Context) {
	a.eventLog.Flush(ctx)
}

func (a *App) Close() error {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

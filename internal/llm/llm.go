package llm

import (
	"context"
	"errors"

	"github.com/lukasbauer/echojournal/internal/mood"
)

// ErrNoScorer is returned when an LLM classifier is selected without an API key.
var ErrNoScorer = errors.New("llm: no emotion scorer configured")

// EmotionScorer scores a journal transcript against the emotion taxonomy.
type EmotionScorer interface {
	// ScoreEmotions returns one score in [0,1] per emotion label. Order is
	// not guaranteed; callers rank the result themselves.
	ScoreEmotions(ctx context.Context, text string) ([]mood.Mood, error)
}

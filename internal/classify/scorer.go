package classify

import (
	"context"

	"github.com/lukasbauer/echojournal/internal/llm"
)

// ScorerLoader serves an LLM emotion scorer as the model. Remote chat models
// need no warmup, so the loader only checks that a scorer was configured.
func ScorerLoader(s llm.EmotionScorer) Loader {
	return func(context.Context) (Model, error) {
		if s == nil {
			return nil, llm.ErrNoScorer
		}
		return ModelFunc(s.ScoreEmotions), nil
	}
}

package llm

import "strings"

// EmotionLabels is the GoEmotions taxonomy the scoring prompt asks for.
var EmotionLabels = []string{
	"admiration", "amusement", "anger", "annoyance", "approval", "caring",
	"confusion", "curiosity", "desire", "disappointment", "disapproval",
	"disgust", "embarrassment", "excitement", "fear", "gratitude", "grief",
	"joy", "love", "nervousness", "optimism", "pride", "realization",
	"relief", "remorse", "sadness", "surprise", "neutral",
}

// SystemPromptEmotions is the default system prompt for emotion scoring.
const SystemPromptEmotions = `You score spoken journal entries for emotion.

The text is a raw speech transcript: no punctuation guarantees, filler words, repeated phrases.
Judge the speaker's own emotional state, not the topic they talk about.

RULES:
- Use only labels from the allowed list.
- Scores are independent probabilities between 0 and 1 (multi-label), they do not need to sum to 1.
- Include every label with a score of at least 0.01.
- If nothing stands out, give "neutral" the highest score.`

// scoringPrompt builds the user message that asks for JSON scores.
func scoringPrompt(text string) string {
	return `Allowed labels: ` + strings.Join(EmotionLabels, ", ") + `

Transcript:
"""
` + text + `
"""

Respond ONLY with JSON in this exact shape:
{"emotions": [{"label": "joy", "score": 0.82}, {"label": "neutral", "score": 0.10}]}`
}

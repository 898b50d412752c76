package classify

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/lukasbauer/echojournal/internal/mood"
)

type weightedKeyword struct {
	keyword string
	weight  float64
}

// Lexicon is an offline model that scores text by weighted keyword hits.
// It needs no initialization and is used when no remote model is configured.
type Lexicon struct {
	patterns map[string][]weightedKeyword
	labels   []string // sorted keys of patterns, for deterministic output
}

// NewLexicon creates a lexicon model with the built-in English keywords.
func NewLexicon() *Lexicon {
	patterns := defaultLexicon()
	labels := make([]string, 0, len(patterns))
	for label := range patterns {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return &Lexicon{patterns: patterns, labels: labels}
}

func defaultLexicon() map[string][]weightedKeyword {
	return map[string][]weightedKeyword{
		"joy": {
			{"happy", 0.5}, {"wonderful", 0.5}, {"great", 0.4}, {"amazing", 0.5},
			{"excellent", 0.4}, {"good", 0.3}, {"best", 0.3}, {"glad", 0.4}, {"fun", 0.3},
		},
		"love": {
			{"love", 0.6}, {"adore", 0.5}, {"loved", 0.5},
		},
		"gratitude": {
			{"grateful", 0.6}, {"thankful", 0.6}, {"thank you", 0.5}, {"thanks", 0.4},
			{"appreciate", 0.5},
		},
		"optimism": {
			{"hope", 0.4}, {"hopeful", 0.5}, {"looking forward", 0.5}, {"progress", 0.3},
			{"coming together", 0.4},
		},
		"excitement": {
			{"excited", 0.6}, {"can't wait", 0.5}, {"thrilled", 0.6},
		},
		"curiosity": {
			{"wonder", 0.4}, {"curious", 0.5}, {"ponder", 0.4}, {"consider", 0.3},
		},
		"realization": {
			{"realize", 0.5}, {"understand", 0.4}, {"think", 0.3}, {"reflect", 0.4},
			{"feel", 0.2},
		},
		"sadness": {
			{"sad", 0.6}, {"lonely", 0.5}, {"miss", 0.4}, {"cry", 0.5}, {"down", 0.3},
			{"tired", 0.3},
		},
		"anger": {
			{"angry", 0.6}, {"furious", 0.6}, {"hate", 0.5}, {"mad", 0.4},
		},
		"annoyance": {
			{"annoyed", 0.5}, {"annoying", 0.5}, {"frustrated", 0.5}, {"ugh", 0.4},
		},
		"fear": {
			{"afraid", 0.6}, {"scared", 0.6}, {"worried", 0.5}, {"anxious", 0.5},
			{"nervous", 0.4},
		},
		"surprise": {
			{"surprised", 0.6}, {"unexpected", 0.5}, {"wow", 0.4},
		},
		"caring": {
			{"care", 0.4}, {"support", 0.4}, {"help", 0.3},
		},
	}
}

// Classify scores every label that has at least one keyword hit, capped at 1,
// plus a neutral score that shrinks as the other evidence grows. With no hits
// the result is neutral at 1.
func (l *Lexicon) Classify(_ context.Context, text string) ([]mood.Mood, error) {
	normalized := " " + strings.Join(tokenize(text), " ") + " "

	var out []mood.Mood
	var total float64
	for _, label := range l.labels {
		var score float64
		for _, kw := range l.patterns[label] {
			if strings.Contains(normalized, " "+kw.keyword+" ") {
				score += kw.weight
			}
		}
		if score > 0 {
			score = math.Min(1, score)
			total += score
			out = append(out, mood.Mood{Label: label, Score: score})
		}
	}
	out = append(out, mood.Mood{Label: "neutral", Score: 1 / (1 + total)})
	return out, nil
}

// tokenize lowercases text and splits it on anything that is not a letter,
// digit or apostrophe.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

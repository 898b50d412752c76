package classify

import (
	"errors"
	"testing"

	"github.com/lukasbauer/echojournal/internal/mood"
)

func TestSentimentFor(t *testing.T) {
	tests := []struct {
		label string
		want  Sentiment
	}{
		{"joy", Positive},
		{"amusement", Positive},
		{"relief", Positive},
		{"admiration", Positive},
		{"approval", Positive},
		{"gratitude", Positive},
		{"love", Positive},
		{"optimism", Positive},
		{"Joy ", Positive},
		{"neutral", Neutral},
		{"sadness", Reflective},
		{"anger", Reflective},
		{"curiosity", Reflective},
		{"excitement", Reflective},
		{"", Reflective},
		{"not-a-label", Reflective},
	}

	for _, tt := range tests {
		if got := SentimentFor(tt.label); got != tt.want {
			t.Errorf("SentimentFor(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestParseSentiment(t *testing.T) {
	tests := map[string]Sentiment{
		"positive":   Positive,
		"neutral":    Neutral,
		"reflective": Reflective,
		"":           Neutral,
		"angry":      Neutral,
	}
	for in, want := range tests {
		if got := ParseSentiment(in); got != want {
			t.Errorf("ParseSentiment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewOutput_RanksDescending(t *testing.T) {
	scores := []mood.Mood{
		{Label: "neutral", Score: 0.1},
		{Label: "joy", Score: 0.7},
		{Label: "sadness", Score: 0.2},
	}

	out := NewOutput(scores)

	if out.Top.Label != "joy" || out.Top.Score != 0.7 {
		t.Errorf("Top = %+v, want joy 0.7", out.Top)
	}
	if out.Sentiment != Positive {
		t.Errorf("Sentiment = %q, want positive", out.Sentiment)
	}
	want := []string{"joy", "sadness", "neutral"}
	for i, m := range out.All {
		if m.Label != want[i] {
			t.Errorf("All[%d] = %q, want %q", i, m.Label, want[i])
		}
	}
	if scores[0].Label != "neutral" {
		t.Error("NewOutput should not reorder its input")
	}
}

func TestNewOutput_TiesKeepModelOrder(t *testing.T) {
	out := NewOutput([]mood.Mood{
		{Label: "sadness", Score: 0.5},
		{Label: "joy", Score: 0.5},
	})
	if out.Top.Label != "sadness" {
		t.Errorf("Top = %q, want first reported maximum sadness", out.Top.Label)
	}
	if out.Sentiment != Reflective {
		t.Errorf("Sentiment = %q, want reflective", out.Sentiment)
	}
}

func TestNewOutput_Empty(t *testing.T) {
	out := NewOutput(nil)
	if out.Top != (mood.Mood{}) {
		t.Errorf("Top = %+v, want zero mood", out.Top)
	}
	if len(out.All) != 0 {
		t.Errorf("All = %v, want empty", out.All)
	}
	if out.Sentiment != Reflective {
		t.Errorf("Sentiment = %q, want reflective", out.Sentiment)
	}
}

func TestResponseErr(t *testing.T) {
	ok := Complete(3, NewOutput([]mood.Mood{{Label: "joy", Score: 1}}))
	if err := ok.Err(); err != nil {
		t.Errorf("Complete().Err() = %v, want nil", err)
	}
	if ok.Seq != 3 || ok.Status != StatusComplete {
		t.Errorf("Complete() = %+v", ok)
	}

	failed := Failed(4, errors.New("model offline"))
	err := failed.Err()
	if !errors.Is(err, ErrClassificationFailure) {
		t.Fatalf("Failed().Err() = %v, want ErrClassificationFailure", err)
	}
	if err.Error() != "classification failed: model offline" {
		t.Errorf("Err().Error() = %q", err.Error())
	}

	bare := Failed(5, nil)
	if bare.Error != "unknown error" {
		t.Errorf("Failed(nil).Error = %q, want unknown error", bare.Error)
	}

	empty := Response{Status: StatusComplete}
	if !errors.Is(empty.Err(), ErrClassificationFailure) {
		t.Error("complete response without output should report a failure")
	}
}

// Package classify is the request/response boundary to the background
// emotion classifier: message shapes, the lazily loaded process-wide
// service, per-session request channels and the models behind them.
package classify

import (
	"errors"
	"sort"
	"strings"

	"github.com/lukasbauer/echojournal/internal/mood"
)

// ErrClassificationFailure marks a classifier that returned an error response.
var ErrClassificationFailure = errors.New("classification failed")

// Request asks for the classification of a transcript. Seq is assigned by
// the Channel and echoed back in the Response.
type Request struct {
	Seq  uint64 `json:"seq,omitempty"`
	Text string `json:"text"`
}

// Status is the outcome of a request.
type Status string

const (
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Sentiment is the coarse category shown next to a transcript.
type Sentiment string

const (
	Positive   Sentiment = "positive"
	Neutral    Sentiment = "neutral"
	Reflective Sentiment = "reflective"
)

var positiveLabels = map[string]bool{
	"joy":        true,
	"amusement":  true,
	"relief":     true,
	"admiration": true,
	"approval":   true,
	"gratitude":  true,
	"love":       true,
	"optimism":   true,
}

// SentimentFor maps a label to its category. Empty and unmapped labels are
// reflective.
func SentimentFor(label string) Sentiment {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return Reflective
	case positiveLabels[l]:
		return Positive
	case l == "neutral":
		return Neutral
	default:
		return Reflective
	}
}

// ParseSentiment validates a stored sentiment string, defaulting to Neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case Positive, Neutral, Reflective:
		return Sentiment(s)
	default:
		return Neutral
	}
}

// Output is a ranked classification. All is ordered descending by score and
// Top is its first element, or the zero Mood when All is empty.
type Output struct {
	Top       mood.Mood   `json:"top"`
	All       []mood.Mood `json:"all"`
	Sentiment Sentiment   `json:"sentiment"`
}

// NewOutput ranks raw scores. Ties keep the model's order, so Top is the first
// maximum the model reported. The input slice is not modified.
func NewOutput(scores []mood.Mood) Output {
	all := make([]mood.Mood, len(scores))
	copy(all, scores)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })

	var top mood.Mood
	if len(all) > 0 {
		top = all[0]
	}
	return Output{
		Top:       top,
		All:       all,
		Sentiment: SentimentFor(top.Label),
	}
}

// Response is either a completed Output or an error description.
type Response struct {
	Seq    uint64  `json:"seq,omitempty"`
	Status Status  `json:"status"`
	Output *Output `json:"output,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Complete builds a successful response.
func Complete(seq uint64, out Output) Response {
	return Response{Seq: seq, Status: StatusComplete, Output: &out}
}

// Failed builds an error response.
func Failed(seq uint64, err error) Response {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Response{Seq: seq, Status: StatusError, Error: msg}
}

// Err returns nil for completed responses and an error wrapping
// ErrClassificationFailure otherwise.
func (r Response) Err() error {
	if r.Status == StatusComplete && r.Output != nil {
		return nil
	}
	if r.Error == "" {
		return ErrClassificationFailure
	}
	return &failure{msg: r.Error}
}

type failure struct{ msg string }

func (f *failure) Error() string { return ErrClassificationFailure.Error() + ": " + f.msg }
func (f *failure) Unwrap() error { return ErrClassificationFailure }

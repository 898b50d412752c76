// Package transcript merges streaming speech recognition results into a
// stable transcript and decides when the transcript is ready to classify.
package transcript

import "strings"

// Segment is one recognition result. Only the first alternative of each
// engine result is carried.
type Segment struct {
	Text    string `json:"transcript"`
	IsFinal bool   `json:"isFinal"`
}

// Dispatcher receives the full finalized transcript whenever it grows.
type Dispatcher interface {
	Dispatch(text string)
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(text string)

// Dispatch calls f(text).
func (f DispatchFunc) Dispatch(text string) { f(text) }

// Update describes what one recognition event changed.
type Update struct {
	Displayed  string
	Finalized  string
	Interim    string
	Dispatched bool
}

// Accumulator holds the finalized transcript (append only) and the current
// interim text (replaced on every event). It is not safe for concurrent use:
// all calls must come from the single path that receives recognition events.
type Accumulator struct {
	finalized string
	interim   string
	displayed string
	dispatch  Dispatcher
}

// New creates an empty accumulator. A nil dispatcher drops dispatches.
func New(d Dispatcher) *Accumulator {
	return &Accumulator{dispatch: d}
}

// OnRecognitionEvent merges one event.
//
// Final segments are space-joined and appended to the finalized transcript,
// which is then dispatched in full. Interim-only events just replace the
// interim text and never dispatch, so classification does not fire on every
// partial result while someone is still talking.
func (a *Accumulator) OnRecognitionEvent(segments []Segment) Update {
	final, interim := partition(segments)

	if final != "" {
		a.finalized = strings.TrimSpace(a.finalized + " " + final)
		a.interim = ""
		a.displayed = a.finalized
		if a.dispatch != nil {
			a.dispatch.Dispatch(a.finalized)
		}
		return a.update(true)
	}

	a.interim = interim
	a.displayed = strings.TrimSpace(a.finalized + " " + a.interim)
	return a.update(false)
}

func (a *Accumulator) update(dispatched bool) Update {
	return Update{
		Displayed:  a.displayed,
		Finalized:  a.finalized,
		Interim:    a.interim,
		Dispatched: dispatched,
	}
}

// partition splits an event into its finalized portion (space-joined, blank
// segments skipped) and its interim portion (concatenated as delivered).
func partition(segments []Segment) (final, interim string) {
	var finals []string
	var b strings.Builder
	for _, s := range segments {
		if s.IsFinal {
			if t := strings.TrimSpace(s.Text); t != "" {
				finals = append(finals, t)
			}
			continue
		}
		b.WriteString(s.Text)
	}
	return strings.Join(finals, " "), b.String()
}

// Reset empties every buffer. Used on save and on clear.
func (a *Accumulator) Reset() {
	a.finalized = ""
	a.interim = ""
	a.displayed = ""
}

// Finalized returns the text the engine will not revise any more.
func (a *Accumulator) Finalized() string { return a.finalized }

// Interim returns the current tentative text.
func (a *Accumulator) Interim() string { return a.interim }

// Displayed returns the finalized text followed by the interim text.
func (a *Accumulator) Displayed() string { return a.displayed }

package journal

import (
	"github.com/lukasbauer/echojournal/internal/classify"
	"github.com/lukasbauer/echojournal/internal/mood"
	"github.com/lukasbauer/echojournal/internal/store"
	"github.com/lukasbauer/echojournal/internal/transcript"
)

// Engine selects where speech recognition runs.
type Engine string

const (
	// EngineClient means the browser recognizes speech and sends
	// recognition messages.
	EngineClient Engine = "client"
	// EngineServer means the browser streams audio frames and the server
	// recognizes them.
	EngineServer Engine = "server"
)

// Inbound message types.
const (
	MsgStart            = "start"
	MsgStop             = "stop"
	MsgRecognition      = "recognition"
	MsgRecognitionError = "recognition_error"
	MsgSave             = "save"
	MsgClear            = "clear"
	MsgAudio            = "audio"
)

// Outbound message types.
const (
	MsgTranscript = "transcript"
	MsgAnalysis   = "analysis"
	MsgRecording  = "recording"
	MsgError      = "error"
	MsgSaved      = "saved"
	MsgCleared    = "cleared"
)

// Inbound is a message from the client. Audio frames arrive as binary
// websocket messages and are delivered with Type MsgAudio.
type Inbound struct {
	Type    string               `json:"type"`
	Engine  Engine               `json:"engine,omitempty"`
	Results []transcript.Segment `json:"results,omitempty"`
	Error   string               `json:"error,omitempty"`
	Audio   []byte               `json:"-"`
}

// TranscriptView is what the client shows while recording.
type TranscriptView struct {
	Displayed string `json:"displayed"`
	Finalized string `json:"finalized"`
	Interim   string `json:"interim"`
}

// Analysis is the held classification and how to paint it.
type Analysis struct {
	Seq       uint64          `json:"seq"`
	Result    classify.Output `json:"result"`
	Rendering mood.Rendering  `json:"rendering"`
}

// ErrorView reports a failure to the client. Fatal errors stopped recording.
type ErrorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

// Error kinds.
const (
	KindCapabilityUnavailable = "capability_unavailable"
	KindRecognitionFailure    = "recognition_failure"
	KindClassificationFailure = "classification_failure"
	KindSaveFailure           = "save_failure"
	KindBadRequest            = "bad_request"
)

// Outbound is a message to the client. Exactly one payload field is set,
// matching Type.
type Outbound struct {
	Type       string          `json:"type"`
	Transcript *TranscriptView `json:"transcript,omitempty"`
	Analysis   *Analysis       `json:"analysis,omitempty"`
	Recording  *bool           `json:"recording,omitempty"`
	Error      *ErrorView      `json:"error,omitempty"`
	Entry      *store.Entry    `json:"entry,omitempty"`
}

// Sender delivers outbound messages to the client.
type Sender interface {
	Send(Outbound) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(Outbound) error

// Send calls f(m).
func (f SenderFunc) Send(m Outbound) error { return f(m) }

package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lukasbauer/echojournal/internal/mood"
)

// --- Emotion service (/detect) ---
type detectReq struct {
	Text string `json:"text"`
}

type detectResp struct {
	Emotions        []mood.Mood `json:"emotions"`
	DominantEmotion string      `json:"dominant_emotion"`
}

// HTTPModel calls a remote emotion detection service.
type HTTPModel struct {
	baseURL string
	c       *http.Client
}

// NewHTTPModel creates a client for the emotion service at baseURL. A nil
// client gets a default one.
func NewHTTPModel(baseURL string, c *http.Client) *HTTPModel {
	if c == nil {
		c = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPModel{baseURL: strings.TrimRight(baseURL, "/"), c: c}
}

// Classify posts the text to {baseURL}/detect.
func (h *HTTPModel) Classify(ctx context.Context, text string) ([]mood.Mood, error) {
	b, err := json.Marshal(detectReq{Text: text})
	if err != nil {
		return nil, fmt.Errorf("emotion marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/detect", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("emotion %s: %s", resp.Status, string(body))
	}

	var out detectResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("emotion decode: %w", err)
	}
	return out.Emotions, nil
}

// HTTPLoader returns a Loader that warms the remote model with a short
// request, so the first real transcript does not pay for the model load.
func HTTPLoader(m *HTTPModel) Loader {
	return func(ctx context.Context) (Model, error) {
		if _, err := m.Classify(ctx, "hello"); err != nil {
			return nil, fmt.Errorf("warm emotion service: %w", err)
		}
		return m, nil
	}
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/lukasbauer/echojournal/internal/mood"
)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIClient implements EmotionScorer using OpenAI's chat completions API.
type OpenAIClient struct {
	apiKey       string
	model        string
	apiURL       string
	systemPrompt string
	httpClient   *http.Client
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey       string
	Model        string // e.g., "gpt-4o-mini"
	APIURL       string // Optional override, mostly for tests
	SystemPrompt string // Optional custom system prompt
	HTTPClient   *http.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = openaiAPIURL
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = SystemPromptEmotions
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		model:        model,
		apiURL:       apiURL,
		systemPrompt: systemPrompt,
		httpClient:   httpClient,
	}
}

// SetSystemPrompt sets a custom system prompt for this client.
func (c *OpenAIClient) SetSystemPrompt(prompt string) {
	if prompt != "" {
		c.systemPrompt = prompt
	}
}

// GetSystemPrompt returns the current system prompt.
func (c *OpenAIClient) GetSystemPrompt() string {
	return c.systemPrompt
}

// chatRequest represents an OpenAI chat completion request.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse represents an OpenAI chat completion response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type emotionScores struct {
	Emotions []mood.Mood `json:"emotions"`
}

// ScoreEmotions asks the model for per-label scores of the transcript.
func (c *OpenAIClient) ScoreEmotions(ctx context.Context, text string) ([]mood.Mood, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: scoringPrompt(text)},
		},
		Temperature:    0.2,
		MaxTokens:      400,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OpenAI API error: %s - %s", resp.Status, string(respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return parseEmotionScores(chatResp.Choices[0].Message.Content)
}

// parseEmotionScores extracts scores from the model reply, tolerating a
// markdown code fence around the JSON. Labels outside the taxonomy are
// dropped and scores are clamped into [0,1].
func parseEmotionScores(content string) ([]mood.Mood, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var parsed emotionScores
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse emotion scores: %w (content: %s)", err, content)
	}

	allowed := make(map[string]bool, len(EmotionLabels))
	for _, l := range EmotionLabels {
		allowed[l] = true
	}

	out := make([]mood.Mood, 0, len(parsed.Emotions))
	seen := make(map[string]bool, len(parsed.Emotions))
	for _, e := range parsed.Emotions {
		label := strings.ToLower(strings.TrimSpace(e.Label))
		if !allowed[label] || seen[label] || math.IsNaN(e.Score) {
			continue
		}
		seen[label] = true
		out = append(out, mood.Mood{Label: label, Score: math.Max(0, math.Min(1, e.Score))})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable emotion scores in response (content: %s)", content)
	}
	return out, nil
}

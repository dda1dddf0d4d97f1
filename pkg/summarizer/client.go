package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-taskflow/pkg/config"
)

// SuggestedItem is one action item extracted from a transcript by the
// external summarizer. SuggestedOwner is a free-text speaker label with no
// canonical identity; resolution happens downstream.
type SuggestedItem struct {
	Description       string     `json:"description"`
	SuggestedOwner    string     `json:"suggested_owner"`
	Priority          string     `json:"priority"`
	SuggestedDeadline *time.Time `json:"suggested_deadline,omitempty"`
}

// Client extracts action items from raw transcript text. The remote call is
// opaque and may fail; retry policy belongs to the calling workflow.
type Client interface {
	Summarize(ctx context.Context, transcript string) ([]SuggestedItem, error)
}

// HTTPClient is a minimal client for the LLM summarization endpoint
type HTTPClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewHTTPClient creates a summarizer client using values from the provided
// config. Pass a nil config to fall back to environment variables.
func NewHTTPClient(cfg *config.SummarizerConfig) *HTTPClient {
	var apiKey, base, model string
	timeout := 60 * time.Second
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
		model = cfg.Model
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("SUMMARIZER_API_KEY")
	}
	if base == "" {
		base = os.Getenv("SUMMARIZER_BASE_URL")
		if base == "" {
			base = "https://api.groq.com/openai/v1"
		}
	}
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	return &HTTPClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(base, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// chatRequest is the shape for chat completion requests
type chatRequest struct {
	Model       string      `json:"model,omitempty"`
	Messages    interface{} `json:"messages,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

// chatResponse is a minimal response shape
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const extractPrompt = `Extract action items from the following meeting transcript.
Return ONLY a JSON array where each element has the fields:
"description", "suggested_owner" (the speaker name as it appears),
"priority" ("low", "medium" or "high") and optionally "suggested_deadline" (RFC 3339).

Transcript:

%s`

// Summarize sends the transcript to the LLM endpoint and parses the
// suggested action items out of the assistant content
func (c *HTTPClient) Summarize(ctx context.Context, transcript string) ([]SuggestedItem, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []map[string]string{{"role": "user", "content": fmt.Sprintf(extractPrompt, transcript)}},
		Temperature: 0.3,
		MaxTokens:   8000,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("summarizer returned status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, err
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("empty response from summarizer")
	}

	return parseItems(cr.Choices[0].Message.Content)
}

// parseItems tolerates models that wrap the JSON array in markdown fences
// or leading prose
func parseItems(content string) ([]SuggestedItem, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in summarizer response")
	}

	var items []SuggestedItem
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("failed to parse summarizer response: %w", err)
	}
	return items, nil
}

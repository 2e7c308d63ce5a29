package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// LLMSettings is forwarded to the backend with every request
type LLMSettings struct {
	Provider  string `json:"provider"`
	BaseURL   string `json:"baseUrl"`
	ModelID   string `json:"modelId"`
	APIKey    string `json:"apiKey"`
	ExaAPIKey string `json:"exaApiKey,omitempty"`
}

// StreamClient opens frame streams from the idea-generation backend
type StreamClient struct {
	endpoint   string
	settings   LLMSettings
	httpClient *http.Client
}

// NewStreamClient creates a client for the backend at endpoint
func NewStreamClient(endpoint string, settings LLMSettings, httpClient *http.Client) *StreamClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &StreamClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		settings:   settings,
		httpClient: httpClient,
	}
}

// OpenSearch starts an idea search for query
func (c *StreamClient) OpenSearch(ctx context.Context, query string) (io.ReadCloser, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	body := map[string]interface{}{
		"query":    query,
		"settings": c.settings,
	}
	return c.openStream(ctx, "/api/search", body, "Request failed")
}

// OpenDeepDive starts a deep dive on idea
func (c *StreamClient) OpenDeepDive(ctx context.Context, idea Idea, req DeepDiveRequest) (io.ReadCloser, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"idea":     idea,
		"request":  req,
		"settings": c.settings,
	}
	return c.openStream(ctx, "/api/idea-deepen", body, "Deep-dive request failed")
}

// chatDeepDive is the deep-dive context a brainstorm request carries
type chatDeepDive struct {
	Summary  string            `json:"summary"`
	Sections []chatDeepSection `json:"sections"`
	Sources  []string          `json:"sources"`
}

type chatDeepSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type chatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Chat sends the brainstorm conversation about idea and returns the
// assistant's reply with reasoning blocks removed. deepDive seeds the
// conversation when the idea has been researched and may be nil.
func (c *StreamClient) Chat(ctx context.Context, idea Idea, deepDive *DeepDiveResult, messages []ChatMessage) (string, error) {
	const path = "/api/idea-chat"
	if len(messages) == 0 {
		return "", fmt.Errorf("brainstorm conversation is empty")
	}

	var dive *chatDeepDive
	if deepDive != nil {
		dive = &chatDeepDive{Summary: deepDive.Summary, Sources: append([]string{}, deepDive.Sources...)}
		for _, section := range deepDive.Sections {
			dive.Sections = append(dive.Sections, chatDeepSection{Title: section.Title, Content: section.Content})
		}
	}
	turns := make([]chatTurn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, chatTurn{Role: msg.Role, Content: msg.Content})
	}
	body := map[string]interface{}{
		"idea":     idea,
		"deepDive": dive,
		"messages": turns,
		"settings": c.settings,
	}

	resp, err := c.post(ctx, path, body, "Brainstorm request failed")
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxChatResponse))
	if err != nil {
		if ctx.Err() != nil {
			return "", abortError(ctx)
		}
		return "", &TransportError{Op: path, Err: err}
	}
	reply := strings.TrimSpace(StripThinkTags(gjson.GetBytes(data, "reply").String()))
	if reply == "" {
		return "", &TransportError{Op: path, Status: resp.StatusCode, Err: errors.New("brainstorm response was empty")}
	}
	return reply, nil
}

const maxChatResponse = 4 << 20

func (c *StreamClient) openStream(ctx context.Context, path string, body interface{}, fallback string) (io.ReadCloser, error) {
	resp, err := c.post(ctx, path, body, fallback)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// post sends body as JSON and returns the response of a 2xx status. Other
// statuses become a TransportError carrying the backend's error message.
func (c *StreamClient) post(ctx context.Context, path string, body interface{}, fallback string) (*http.Response, error) {
	if c.settings.APIKey == "" {
		return nil, &TransportError{Op: path, Err: errors.New("LLM API key not configured (set llm.api_key or IDEASURGE_LLM__API_KEY)")}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, abortError(ctx)
		}
		return nil, &TransportError{Op: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		msg := gjson.GetBytes(data, "error").String()
		if msg == "" {
			msg = fallback
		}
		return nil, &TransportError{Op: path, Status: resp.StatusCode, Err: errors.New(msg)}
	}
	return resp, nil
}

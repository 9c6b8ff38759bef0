// Package ollama talks to the local inference service over its small HTTP
// contract: version probe, model list, chat completions.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Message is one chat turn in the wire format the backend expects.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	generateTimeout = 30 * time.Second
	probeTimeout    = 5 * time.Second

	defaultTemperature = 0.8
	defaultMaxTokens   = 500
)

// fallbackModels is tried in order when the configured model is missing
// from the backend's list.
var fallbackModels = []string{"llama3.2", "llama3.1", "llama3", "mistral", "qwen2.5"}

// Client owns the backend connection: model selection, health cache and
// the retrying generate call.
type Client struct {
	baseURL string
	model   string
	http    *http.Client

	health  *healthState
	limiter *adaptiveLimiter

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(time.Duration)
	rand  func() int64 // jitter in ms, [0,500)
}

// NewClient creates a Client pointed at baseURL with the configured model
// name. Model selection against /api/tags happens in SelectModel.
func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: generateTimeout},
		health:  newHealthState(),
		limiter: newAdaptiveLimiter(),
		sleep:   time.Sleep,
		rand:    jitterMS,
	}
}

// Model returns the model currently in use.
func (c *Client) Model() string { return c.model }

// SelectModel queries /api/tags and picks the model to use: the configured
// one if present, else the first fallback that is available, else the first
// available, else the configured name with a warning.
func (c *Client) SelectModel(ctx context.Context) {
	available, err := c.listModels(ctx)
	if err != nil {
		log.Printf("[GEN] could not list models, keeping %q: %v", c.model, err)
		return
	}
	if len(available) == 0 {
		log.Printf("[WARN] backend reports no models, keeping %q", c.model)
		return
	}
	have := make(map[string]bool, len(available))
	for _, name := range available {
		have[name] = true
		// "llama3.2:latest" should satisfy "llama3.2".
		if base, _, ok := strings.Cut(name, ":"); ok {
			have[base] = true
		}
	}
	if have[c.model] {
		log.Printf("[GEN] using configured model %q", c.model)
		return
	}
	for _, name := range fallbackModels {
		if have[name] {
			log.Printf("[WARN] model %q not available, falling back to %q", c.model, name)
			c.model = name
			return
		}
	}
	log.Printf("[WARN] model %q not available, using first available %q", c.model, available[0])
	c.model = available[0]
}

func (c *Client) listModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tags: status %d", resp.StatusCode)
	}

	var parsed struct {
		Models []struct {
			Name string `json:"name"`
			Size int64  `json:"size"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tags: decode: %w", err)
	}
	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// chat performs one POST /v1/chat/completions call and maps failures onto
// the error taxonomy.
func (c *Client) chat(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": defaultTemperature,
		"max_tokens":  defaultMaxTokens,
		"stream":      false,
	}
	body, _ := json.Marshal(payload)

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Category: CategoryOther, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &Error{Category: CategoryTimeout, Err: err}
		}
		return "", &Error{Category: CategoryUnavailable, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classifyStatus(resp.StatusCode, respBody)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Role    string `json:"role"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &Error{Category: CategoryMalformed, Err: fmt.Errorf("decode: %w", err)}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", &Error{Category: CategoryMalformed, Err: fmt.Errorf("no usable content in response")}
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

var modelNotFoundRe = regexp.MustCompile(`(?i)model.{0,40}not found`)

func classifyStatus(status int, body []byte) *Error {
	switch {
	case status == http.StatusNotFound || modelNotFoundRe.Match(body):
		return &Error{Category: CategoryModelNotFound, Err: fmt.Errorf("status %d: %s", status, preview(body))}
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway || status == http.StatusTooManyRequests:
		return &Error{Category: CategoryUnavailable, Err: fmt.Errorf("status %d", status)}
	case status >= 400 && status < 500:
		return &Error{Category: CategoryBadRequest, Err: fmt.Errorf("status %d: %s", status, preview(body))}
	default:
		return &Error{Category: CategoryOther, Err: fmt.Errorf("status %d", status)}
	}
}

func preview(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

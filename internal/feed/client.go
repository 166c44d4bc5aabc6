// Package feed talks to the generative-text upstream that produces the raw
// event payloads. The contract is natural language, not a schema: each query
// asks for zero or more "field1::field2::..." lines and the parser downstream
// is responsible for defending against prose around them.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	appLog "econboard/internal/log"
	"econboard/internal/metrics"
	"econboard/internal/model"
)

const userAgent = "econboard/0.1"

// Query identifies one of the four independent upstream queries
// (future/past x macro/corporate).
type Query struct {
	Category   model.Category
	Historical bool
}

// Name returns a stable label for logging and metrics.
func (q Query) Name() string {
	dir := "future"
	if q.Historical {
		dir = "past"
	}
	return string(q.Category) + "/" + dir
}

// Queries returns the four queries issued on every refresh.
func Queries() []Query {
	return []Query{
		{Category: model.CategoryMacro, Historical: false},
		{Category: model.CategoryMacro, Historical: true},
		{Category: model.CategoryCorporate, Historical: false},
		{Category: model.CategoryCorporate, Historical: true},
	}
}

// Result is the raw text returned for one query.
type Result struct {
	Query Query
	Text  string
}

// ClientConfig configures the upstream endpoint.
type ClientConfig struct {
	BaseURL string
	Model   string
	Key     string
	Timeout time.Duration
}

// Client issues chat-completion requests to the upstream. It is safe for
// concurrent use. There is no retry and no cache: a slow or failed query
// surfaces as a refresh error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	key        string
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		key:        cfg.Key,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Fetch sends a single prompt and returns the raw completion text.
func (c *Client) Fetch(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream returned %s: %s", resp.Status, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("malformed upstream response: %w", err)
	}
	if parsed.Error != nil {
		return "", errors.New("upstream error: " + parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("upstream response has no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// FetchAll issues the four queries concurrently and joins them
// all-or-nothing: a single failing query fails the entire refresh and no
// partial result is returned.
func (c *Client) FetchAll(ctx context.Context, now time.Time) ([]Result, error) {
	queries := Queries()
	results := make([]Result, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q Query) {
			defer wg.Done()

			start := time.Now()
			text, err := c.Fetch(ctx, BuildPrompt(q, now))
			metrics.FetchDuration.WithLabelValues(q.Name()).Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.FetchTotal.WithLabelValues(q.Name(), "error").Inc()
				appLog.Error("feed query failed", err, "query", q.Name())
				errs[i] = fmt.Errorf("query %s: %w", q.Name(), err)
				return
			}
			metrics.FetchTotal.WithLabelValues(q.Name(), "ok").Inc()
			appLog.Info("feed query completed", "query", q.Name(), "bytes", len(text))
			results[i] = Result{Query: q, Text: text}
		}(i, q)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

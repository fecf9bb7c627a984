// Package humanizer wraps the Rephrasy-style rewrite API that reworks
// LLM phrasing. Calls are rate limited to one per second and retried
// with exponential backoff before a failure is surfaced.
package humanizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	applogger "github.com/scribelab/paperforge/internal/logger"
)

// RetryBaseDelay is the unit for retry backoff. Tests override this to
// avoid real sleeps.
var RetryBaseDelay = time.Second

const (
	maxAttempts     = 3
	minBackoffUnits = 4
	maxBackoffUnits = 10
)

// Response is the rewrite result.
type Response struct {
	Text      string
	WordCount int
}

// Client talks to the humanizer API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *applogger.AppLogger
}

func NewClient(apiKey, baseURL string, logger *applogger.AppLogger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     logger,
	}
}

// Rewrite sends text through the rewrite API. Transient failures are
// retried up to three times; the error from the last attempt is
// returned when all of them fail.
func (c *Client) Rewrite(ctx context.Context, text string) (Response, error) {
	payload := map[string]any{
		"text":  text,
		"model": "undetectable",
		"words": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling humanizer request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			case <-time.After(backoff(attempt - 1)):
			}
		}

		resp, err := c.post(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		c.logger.Warn("humanizer request failed", "attempt", attempt, "error", err)
	}

	return Response{}, fmt.Errorf("humanizer failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("creating humanizer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("humanizer request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("reading humanizer response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return Response{}, fmt.Errorf("humanizer returned HTTP %d: %s", resp.StatusCode, apiErr.Error)
		}
		return Response{}, fmt.Errorf("humanizer returned HTTP %d", resp.StatusCode)
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return Response{}, fmt.Errorf("parsing humanizer response: %w", err)
	}

	// The rewritten text shows up under different keys depending on the
	// API version.
	text := firstStringField(data, "result", "output", "content")
	if text == "" {
		return Response{}, fmt.Errorf("humanizer response contains no rewritten text")
	}

	return Response{
		Text:      text,
		WordCount: len(strings.Fields(text)),
	}, nil
}

func firstStringField(data map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := data[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// backoff computes the wait before retry n, doubling per attempt and
// clamped to the 4..10 unit window.
func backoff(n int) time.Duration {
	units := 1 << (n - 1)
	if units < minBackoffUnits {
		units = minBackoffUnits
	}
	if units > maxBackoffUnits {
		units = maxBackoffUnits
	}
	return time.Duration(units) * RetryBaseDelay
}

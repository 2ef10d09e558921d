package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// maxRetries is the maximum number of retry attempts before giving up
	// and letting the registry spool the report.
	maxRetries = 3

	// baseRetryDelay is the base delay for exponential backoff between retries.
	baseRetryDelay = 2 * time.Second

	// slackTimeout is the HTTP request timeout for each send attempt.
	slackTimeout = 10 * time.Second
)

// Slack posts reports to a Slack incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewSlack creates a Slack channel. An empty webhook URL leaves the
// channel unconfigured.
func NewSlack(webhookURL string, logger *zap.Logger) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: slackTimeout},
		logger:     logger,
	}
}

// Name returns the channel identifier.
func (s *Slack) Name() string { return "slack" }

// Configured reports whether a webhook URL was resolved.
func (s *Slack) Configured() bool { return s.webhookURL != "" }

// Send posts the report body with retries and exponential backoff.
// A rate-limit response short-circuits the retry loop; the registry
// spools the report instead.
func (s *Slack) Send(ctx context.Context, rep Report) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * baseRetryDelay
			s.logger.Warn("Retrying Slack send",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := s.post(ctx, rep.Body)
		if err == nil {
			return nil
		}
		if isRateLimited(err) {
			return err
		}
		lastErr = err
		s.logger.Warn("Slack send failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return fmt.Errorf("all retries exhausted: %w", lastErr)
}

// post performs a single webhook POST.
func (s *Slack) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]any{
		"text":   text,
		"mrkdwn": true,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &rateLimitError{statusCode: resp.StatusCode}
	}
	return fmt.Errorf("slack returned %d", resp.StatusCode)
}

// rateLimitError indicates the server returned HTTP 429.
type rateLimitError struct {
	statusCode int
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited (%d)", e.statusCode)
}

// isRateLimited checks whether an error is a rate limit response.
func isRateLimited(err error) bool {
	_, ok := err.(*rateLimitError)
	return ok
}

// Package webhook delivers work order automation events to external HTTP
// endpoints. Receivers dedupe on the idempotency_key carried in the payload;
// redelivery after a crash can reissue an already-delivered request.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/template"
)

const (
	defaultTimeout = 30 * time.Second
	defaultDelay   = 1 * time.Second
)

// RetryConfig defines retry behavior for failed deliveries.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// Action posts a JSON envelope describing the dispatch to a configured URL.
// Server errors and network failures are retried; a 4xx response means the
// endpoint rejected the payload and retrying cannot change the outcome.
type Action struct {
	url     string
	method  string
	headers map[string]string
	retries RetryConfig
	client  *http.Client
}

func NewAction(config map[string]any) (*Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	rawURL, _ := config["url"].(string)
	if rawURL == "" {
		return nil, errors.New("missing required field 'url'")
	}

	action := &Action{
		url:     rawURL,
		method:  http.MethodPost,
		headers: make(map[string]string),
		retries: RetryConfig{Attempts: 1, Delay: defaultDelay},
	}

	if method, ok := config["method"].(string); ok && method != "" {
		action.method = strings.ToUpper(method)
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for key, value := range headers {
			if strVal, ok := value.(string); ok {
				action.headers[key] = strVal
			}
		}
	}

	timeout := defaultTimeout
	if v, ok := config["timeout"].(float64); ok && v >= 1 {
		timeout = time.Duration(v) * time.Second
	}

	if retries, ok := config["retries"].(map[string]any); ok {
		if attempts, ok := retries["attempts"].(float64); ok && attempts >= 1 {
			action.retries.Attempts = int(attempts)
		}

		if delay, ok := retries["delay"].(float64); ok && delay >= 0 {
			action.retries.Delay = time.Duration(delay) * time.Millisecond
		}
	}

	action.client = &http.Client{Timeout: timeout}

	return action, nil
}

func (a *Action) Execute(ctx context.Context, ictx models.InvocationContext, logger *slog.Logger) (models.ActionResult, error) {
	logger = logger.With("action_type", "webhook")

	url, err := a.render(a.url, ictx)
	if err != nil {
		return models.ActionResult{}, fmt.Errorf("failed to render url: %w", err)
	}

	headers := make(map[string]string, len(a.headers))

	for key, value := range a.headers {
		rendered, err := a.render(value, ictx)
		if err != nil {
			return models.ActionResult{}, fmt.Errorf("failed to render header %q: %w", key, err)
		}

		headers[key] = rendered
	}

	payload, err := json.Marshal(a.envelope(ictx))
	if err != nil {
		return models.ActionResult{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= a.retries.Attempts; attempt++ {
		if attempt > 1 {
			time.Sleep(a.retries.Delay)
		}

		status, err := a.deliver(ctx, url, headers, payload)
		if err == nil {
			logger.InfoContext(ctx, "Delivered webhook",
				"url", url,
				"status_code", status,
				"attempt", attempt,
			)

			return models.ActionResult{
				Detail: fmt.Sprintf("delivered webhook to %s (%d)", url, status),
				Output: map[string]any{
					"url":         url,
					"status_code": status,
					"attempts":    attempt,
				},
			}, nil
		}

		lastErr = err

		httpErr := &HTTPError{}
		if errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError {
			break
		}
	}

	return models.ActionResult{}, fmt.Errorf("webhook delivery to %s failed after %d attempts: %w", url, a.retries.Attempts, lastErr)
}

// envelope is the payload receivers get: the work order document plus the
// trigger that fired and the dispatch identity.
func (a *Action) envelope(ictx models.InvocationContext) map[string]any {
	return map[string]any{
		"tenant_id":  ictx.TenantID,
		"event":      ictx.Event,
		"work_order": ictx.Snapshot,
		"trigger": map[string]any{
			"id":   ictx.Trigger.ID,
			"name": ictx.Trigger.Name,
		},
		"occurred_at":     ictx.OccurredAt,
		"idempotency_key": ictx.IdempotencyKey,
	}
}

func (a *Action) render(input string, ictx models.InvocationContext) (string, error) {
	if !template.NeedsTemplating(input) {
		return input, nil
	}

	return template.RenderWithContext(input, ictx)
}

func (a *Action) deliver(ctx context.Context, url string, headers map[string]string, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, a.method, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	return resp.StatusCode, nil
}

// HTTPError carries the endpoint's status code so the retry loop can tell
// rejections from server failures.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

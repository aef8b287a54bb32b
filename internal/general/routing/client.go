// Package routing talks to the Google Maps Platform: Routes v2 for directions,
// Places (New) text search for destinations, and the Geocoding API for
// reverse geocoding.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trip-tracker/internal/general/config"
	"trip-tracker/internal/general/logger"
)

const maxErrorBody = 512

// StatusError is a non-2xx reply from a Maps endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client implements ports.PlaceSearcher, ports.RouteProvider and ports.Geocoder.
type Client struct {
	httpClient *http.Client
	cfg        config.RoutingConfig
	logger     *logger.Logger
	backoff    time.Duration
}

// NewClient builds a client. A nil httpClient uses one with cfg's timeout.
func NewClient(cfg config.RoutingConfig, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     log,
		backoff:    250 * time.Millisecond,
	}
}

type request struct {
	method  string
	url     string
	headers map[string]string
	body    any
}

// do sends req, retrying network failures, 429 and 5xx up to cfg.Retries
// times, and decodes a 2xx JSON body into out.
func (client *Client) do(ctx context.Context, action string, req request, out any) error {
	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= client.cfg.Retries; attempt++ {
		if attempt > 0 {
			client.logger.Error(ctx, "retry_attempted", "Retrying Maps request", lastErr,
				map[string]any{"call": action, "attempt": attempt})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(client.backoff * time.Duration(attempt)):
			}
		}

		var retry bool
		retry, lastErr = client.once(ctx, req, payload, out)
		if lastErr == nil || !retry || ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

// once performs a single attempt and reports whether a failure may be retried.
func (client *Client) once(ctx context.Context, req request, payload []byte, out any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, client.cfg.Timeout())
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.httpClient.Do(httpReq)
	if err != nil {
		return true, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
		return statusErr.retryable(), statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

func (client *Client) googHeaders(fieldMask string) map[string]string {
	return map[string]string{
		"X-Goog-Api-Key":   client.cfg.APIKey,
		"X-Goog-FieldMask": fieldMask,
	}
}

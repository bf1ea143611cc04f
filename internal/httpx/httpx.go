// Package httpx is the HTTP client shared by the OpenAI-compatible
// collaborators. Transport failures, 429 and 5xx responses are retried with
// exponential backoff; other statuses fail immediately.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// StatusError is a non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, strings.TrimSpace(e.Body))
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Client sends requests with retry.
type Client struct {
	HTTP            *http.Client
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration

	log zerolog.Logger
}

// New returns a client whose requests time out after timeout.
func New(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		HTTP:            &http.Client{Timeout: timeout},
		MaxTries:        4,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		log:             log,
	}
}

// RequestFunc builds a fresh request for each attempt.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// Do sends the request built by newReq and returns the response body of the
// first 2xx answer.
func (c *Client) Do(ctx context.Context, newReq RequestFunc) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialInterval
	b.MaxInterval = c.MaxInterval

	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		req, err := newReq(ctx)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, fmt.Errorf("http request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode/100 != 2 {
			serr := &StatusError{Status: resp.StatusCode, Body: truncate(string(body), 512)}
			if !serr.Retryable() {
				return nil, backoff.Permanent(serr)
			}
			return nil, serr
		}
		return body, nil
	}

	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("request failed, retrying")
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.MaxTries),
		backoff.WithNotify(notify),
	)
}

// PostJSON posts in as JSON with a bearer token and decodes the response
// into out.
func (c *Client) PostJSON(ctx context.Context, url, apiKey string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	body, err := c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Endpoint joins a base URL and a path.
func Endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.Status == code
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

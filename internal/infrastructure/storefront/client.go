package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

var (
	errNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("storefront API unavailable")
	ErrUnexpectedReply = errors.New("unexpected storefront API reply")
)

// StatusError is a non-2xx reply from the shop backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storefront API returned %d: %s", e.Code, e.Body)
}

type reply struct {
	status int
	body   []byte
}

// Client talks to the remote shop backend. All calls share one circuit
// breaker; an open breaker fails fast with ErrUnavailable.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[reply]
	logger     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	logger = logger.With().Str("component", "storefront-client").Logger()
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[reply](gobreaker.Settings{
		Name:        "storefront-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
		// Client errors mean the backend is up. A caller giving up says
		// nothing about the backend either.
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			return err == nil || errors.Is(err, errNotFound) || errors.Is(err, context.Canceled) ||
				(errors.As(err, &statusErr) && statusErr.Code < http.StatusInternalServerError)
		},
	})
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}

	res, err := c.breaker.Execute(func() (reply, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return reply{}, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return reply{}, fmt.Errorf("sending %s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return reply{}, fmt.Errorf("reading %s %s: %w", method, path, err)
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return reply{status: resp.StatusCode}, errNotFound
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return reply{status: resp.StatusCode}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}
		return reply{status: resp.StatusCode, body: data}, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return res.body, nil
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedReply, err)
	}
	return nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

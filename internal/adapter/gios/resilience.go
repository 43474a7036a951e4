package gios

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff between download attempts.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
	errBadBackoff  = errors.New("invalid backoff configuration")
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// download GETs url and returns the whole body. Transport failures, 429 and
// 5xx responses are retried with exponential backoff; other non-2xx statuses
// fail at once.
func download(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, backoff BackoffConfig, url string) ([]byte, error) {
	if backoff.MaxRetries < 0 || backoff.InitialInterval <= 0 {
		return nil, errBadBackoff
	}

	delay := backoff.InitialInterval
	maxDelay := backoff.MaxInterval
	if maxDelay <= 0 {
		maxDelay = delay << backoff.MaxRetries
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			return get(ctx, client, url)
		})
		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if errors.Is(err, errUnexpected) || attempt >= backoff.MaxRetries {
			return nil, err
		}

		if !retry.SleepWithContext(ctx, min(delay, maxDelay)) {
			return nil, ctx.Err()
		}
		delay = retry.NextBackoff(delay, maxDelay)
	}
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
)

// RetryConfig defines the retry behavior
type RetryConfig struct {
	MaxRetries         int
	InitialBackoff     time.Duration
	MaxBackoff         time.Duration
	JitterFraction     float64
	StatusCodesToRetry []int
}

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:         3,
		InitialBackoff:     1 * time.Second,
		MaxBackoff:         10 * time.Second,
		JitterFraction:     0.1,
		StatusCodesToRetry: []int{429, 503, 504},
	}
}

// RetryTransport is an http.RoundTripper that retries rate-limited and
// temporarily unavailable requests with exponential backoff.
type RetryTransport struct {
	config    RetryConfig
	transport http.RoundTripper
}

func NewRetryTransport(config RetryConfig, transport http.RoundTripper) *RetryTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &RetryTransport{
		config:    config,
		transport: transport,
	}
}

// RoundTrip implements http.RoundTripper interface with retry logic
func (rt *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	backoff := rt.config.InitialBackoff

	for attempt := 0; attempt <= rt.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := wait(req, backoff); err != nil {
				return nil, errors.WrapRPCConnectionFailed(err)
			}
		}

		attemptReq, err := rewind(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := rt.transport.RoundTrip(attemptReq)
		if err != nil {
			lastErr = err
			if attempt < rt.config.MaxRetries {
				logger.Logger.Debug("RoundTrip failed, will retry", "attempt", attempt+1, "error", err)
			}
			backoff = rt.nextBackoff(backoff)
			continue
		}

		if !rt.shouldRetry(resp.StatusCode) {
			return resp, nil
		}

		lastErr = fmt.Errorf("status code %d", resp.StatusCode)
		retryAfter := retryAfter(resp)

		logger.Logger.Warn("Rate limited or temporary failure, will retry",
			"attempt", attempt+1,
			"status_code", resp.StatusCode,
			"retry_after", retryAfter,
		)

		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if retryAfter > 0 {
			backoff = retryAfter
			if rt.config.MaxBackoff > 0 && backoff > rt.config.MaxBackoff {
				backoff = rt.config.MaxBackoff
			}
		} else {
			backoff = rt.nextBackoff(backoff)
		}
	}

	return nil, errors.WrapRPCConnectionFailed(lastErr)
}

// rewind returns a request whose body can be sent again.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.GetBody == nil {
		return req, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewinding request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func (rt *RetryTransport) shouldRetry(statusCode int) bool {
	for _, code := range rt.config.StatusCodesToRetry {
		if statusCode == code {
			return true
		}
	}
	return false
}

// retryAfter parses the Retry-After header in either seconds or HTTP-date
// form.
func retryAfter(resp *http.Response) time.Duration {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(value); err == nil {
		if dur := time.Until(t); dur > 0 {
			return dur
		}
	}

	return 0
}

func (rt *RetryTransport) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > rt.config.MaxBackoff {
		next = rt.config.MaxBackoff
	}

	// ±JitterFraction of the duration
	if rt.config.JitterFraction > 0 {
		jitterRange := int64(float64(next) * rt.config.JitterFraction)
		if jitterRange > 0 {
			next += time.Duration(rand.Int63n(jitterRange*2) - jitterRange)
		}
		if next < 0 {
			next = 0
		}
	}

	return next
}

func wait(req *http.Request, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-req.Context().Done():
		return req.Context().Err()
	}
}

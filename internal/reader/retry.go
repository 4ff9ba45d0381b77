package reader

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

type failureClass int

const (
	failureTimeout failureClass = iota
	failureRateLimit
	failureServer
	failureClient
)

// classify sorts a transport error into retryable and terminal classes.
// The SDK surfaces HTTP status in the error text, so unknown shapes are
// matched on the message with server-error as the safe default.
func classify(err error) failureClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"):
		return failureRateLimit
	case strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server error"):
		return failureServer
	case strings.Contains(msg, "status code: 4"):
		return failureClient
	default:
		return failureServer
	}
}

// retryable reports whether the failure is worth another attempt.
// Client errors and context cancellation are terminal.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch classify(err) {
	case failureTimeout, failureRateLimit, failureServer:
		return true
	default:
		return false
	}
}

// backoffWait sleeps for base doubled per attempt, or returns early
// when the context is cancelled.
func backoffWait(ctx context.Context, base time.Duration, attempt int) error {
	delay := base << attempt
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

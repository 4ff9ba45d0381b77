// Package reader extracts structured date payloads from document
// segments. Strategies run in priority order; any fallback past the
// first marks the result degraded so callers can see which path
// produced their answer.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vnexsus/datesift/domain"
)

var tracer = otel.Tracer("datesift")

// Strategy extracts one segment's payload.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, segment domain.Segment) (domain.BatchPayload, error)
}

// Result is the reader's output for one case: one payload per segment,
// in segment order.
type Result struct {
	Payloads       []domain.BatchPayload
	Strategy       string
	Degraded       bool
	DegradedReason string
}

// StrategyError reports that every configured strategy failed.
type StrategyError struct {
	Strategy string // last strategy tried
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("all reader strategies failed, last %q: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }

// Client runs the strategy chain over a case's segments with bounded
// concurrency.
type Client struct {
	strategies  []Strategy
	concurrency int
}

// New builds the strategy chain from configuration. A strategy that
// cannot be constructed (for example anthropic-extract without an API
// key) is skipped with a warning rather than failing the whole chain;
// at least one strategy must remain.
func New(cfg domain.ReaderConfig, keywords domain.KeywordConfig) (*Client, error) {
	var strategies []Strategy
	for _, name := range cfg.Strategies {
		switch name {
		case domain.StrategyAnthropic:
			s, err := newAnthropicStrategy(cfg)
			if err != nil {
				slog.Warn("reader strategy unavailable", "strategy", name, "error", err)
				continue
			}
			strategies = append(strategies, s)
		case domain.StrategyPatternScan:
			strategies = append(strategies, newPatternStrategy(cfg, keywords))
		default:
			return nil, fmt.Errorf("unknown reader strategy: %s", name)
		}
	}
	if len(strategies) == 0 {
		return nil, errors.New("no reader strategies available")
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Client{strategies: strategies, concurrency: concurrency}, nil
}

// NewWithStrategies builds a client with an explicit chain.
func NewWithStrategies(concurrency int, strategies ...Strategy) *Client {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Client{strategies: strategies, concurrency: concurrency}
}

// Read extracts payloads for every segment. A strategy must handle the
// whole case; if any segment fails the next strategy takes over from
// scratch. When the winning strategy is not the first, Degraded is set
// and DegradedReason names what failed before it.
func (c *Client) Read(ctx context.Context, segments []domain.Segment) (*Result, error) {
	if len(segments) == 0 {
		return &Result{}, nil
	}

	ctx, span := tracer.Start(ctx, "case.read",
		trace.WithAttributes(attribute.Int("segments", len(segments))),
	)
	defer span.End()

	var lastErr error
	var reason string
	for i, strategy := range c.strategies {
		payloads, err := c.extractAll(ctx, strategy, segments)
		if err == nil {
			result := &Result{Payloads: payloads, Strategy: strategy.Name()}
			span.SetAttributes(attribute.String("strategy", strategy.Name()))
			if i > 0 {
				result.Degraded = true
				result.DegradedReason = reason
				slog.Warn("reader degraded",
					"strategy", strategy.Name(),
					"reason", reason)
			}
			return result, nil
		}

		lastErr = err
		reason = fmt.Sprintf("%s: %v", strategy.Name(), err)
		slog.Warn("reader strategy failed", "strategy", strategy.Name(), "error", err)

		if ctx.Err() != nil {
			break
		}
	}
	last := c.strategies[len(c.strategies)-1].Name()
	return nil, &StrategyError{Strategy: last, Err: lastErr}
}

// extractAll fans the segments out under the concurrency bound and
// collects payloads positionally. The first failure wins; remaining
// segments are skipped.
func (c *Client) extractAll(ctx context.Context, strategy Strategy, segments []domain.Segment) ([]domain.BatchPayload, error) {
	payloads := make([]domain.BatchPayload, len(segments))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	sem := make(chan struct{}, c.concurrency)

	for i, segment := range segments {
		wg.Add(1)
		go func(idx int, seg domain.Segment) {
			defer wg.Done()

			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			payload, err := strategy.Extract(ctx, seg)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("segment %d: %w", seg.Index, err)
				}
				return
			}
			payloads[idx] = payload
		}(i, segment)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return payloads, nil
}

package reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/vnexsus/datesift/domain"
)

const systemPrompt = "You are a medical-record date extractor for insurance claim review. " +
	"You receive one segment of a Korean medical document and respond with strict JSON only, no prose."

const extractionSchema = `Return a JSON object with these collections (omit empty ones):
- "dates": generic medical dates [{"date","context","category","importance","confidence"}]
- "dateRanges": explicit ranges [{"start","end","kind","context","category","importance","confidence"}]; use "kind":"insurance-period" for policy coverage periods
- "insuranceDates": policy-related dates, same entry shape as "dates"
- "tableDates": dates found inside tables, same entry shape as "dates"
Dates must be formatted YYYY-MM-DD. Categories: insurance-enrollment, insurance-expiry, admission, discharge, surgery, exam, diagnosis, outpatient-visit, document-metadata, other. Importance: critical, high, medium, low.`

// AnthropicMessager is the slice of the SDK client the strategy needs.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// anthropicStrategy extracts payloads with the Messages API, retrying
// transient transport failures with exponential backoff.
type anthropicStrategy struct {
	messages  AnthropicMessager
	model     anthropic.Model
	maxTokens int64
	attempts  int
	backoff   time.Duration
	timeout   time.Duration
}

func newAnthropicStrategy(cfg domain.ReaderConfig) (*anthropicStrategy, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic API key not configured")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return newAnthropicStrategyWith(&client.Messages, cfg), nil
}

func newAnthropicStrategyWith(messages AnthropicMessager, cfg domain.ReaderConfig) *anthropicStrategy {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := time.Duration(cfg.BackoffBaseMs) * time.Millisecond
	if backoff <= 0 {
		backoff = time.Second
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &anthropicStrategy{
		messages:  messages,
		model:     anthropic.Model(cfg.Model),
		maxTokens: maxTokens,
		attempts:  attempts,
		backoff:   backoff,
		timeout:   timeout,
	}
}

func (s *anthropicStrategy) Name() string { return domain.StrategyAnthropic }

// Extract sends one segment through the Messages API and decodes the
// payload. Only transport failures classified as transient are retried;
// a malformed response fails the strategy so the chain can fall back.
func (s *anthropicStrategy) Extract(ctx context.Context, segment domain.Segment) (domain.BatchPayload, error) {
	prompt := fmt.Sprintf("%s\n\nSegment %d:\n%s", extractionSchema, segment.Index, segment.Text)

	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			if err := backoffWait(ctx, s.backoff, attempt-1); err != nil {
				return domain.BatchPayload{}, err
			}
		}

		raw, err := s.call(ctx, prompt)
		if err != nil {
			lastErr = err
			if retryable(err) {
				continue
			}
			return domain.BatchPayload{}, err
		}

		var payload domain.BatchPayload
		if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
			return domain.BatchPayload{}, fmt.Errorf("decode payload: %w", err)
		}
		return payload, nil
	}
	return domain.BatchPayload{}, fmt.Errorf("retries exhausted after %d attempts: %w", s.attempts, lastErr)
}

func (s *anthropicStrategy) call(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.messages.New(callCtx, anthropic.MessageNewParams{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

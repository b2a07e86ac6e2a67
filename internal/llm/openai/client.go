package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/booking-intake/internal/booking"
	"github.com/fleetdesk/booking-intake/internal/common"
	"github.com/fleetdesk/booking-intake/internal/llm"
)

// requestID tags oracle calls in logs. The pipeline run ID wins when the
// caller put one on the context.
func requestID(ctx context.Context) string {
	if rid := common.RunIDFromContext(ctx); rid != "" {
		return rid
	}
	if rid := common.RequestIDFromContext(ctx); rid != "" {
		return rid
	}
	return uuid.New().String()
}

// chatResponse is the slice of the chat/completions payload we care about.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// ClassifyBooking implements llm.BookingClassifier using text-only
// chat/completions in JSON mode.
func (c *Client) ClassifyBooking(ctx context.Context, req llm.ClassifyRequest) (llm.Classification, llm.Usage, error) {
	rid := requestID(ctx)
	start := time.Now()

	c.log.Info("llm.classify.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"source_type", req.SourceType,
		"text_len", len(req.Content),
	)

	schema := llm.BuildClassificationJSONSchema()
	content, usage, err := c.chat(ctx,
		llm.BuildClassifySystemPrompt(),
		llm.BuildClassifyUserPrompt(req),
		schema,
	)
	if err != nil {
		c.log.Error("llm.classify.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Classification{}, usage, err
	}

	payload, err := llm.ExtractJSONPayload(content)
	if err != nil {
		c.log.Error("llm.classify.payload_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Classification{}, usage, fmt.Errorf("%w: extract payload: %w", common.ErrMalformedOracleResponse, err)
	}

	if err := llm.ValidateJSONAgainstSchema(schema, payload); err != nil {
		// fall back to scraping the fields out of whatever came back
		if cls, lErr := llm.ParseClassificationLenient(payload); lErr == nil {
			c.log.Warn("llm.classify.lenient_parse_applied",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return cls, usage, nil
		}
		c.log.Error("llm.classify.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(payload),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Classification{}, usage, fmt.Errorf("%w: schema validation failed: %w", common.ErrMalformedOracleResponse, err)
	}

	var out llm.Classification
	if err := json.Unmarshal(payload, &out); err != nil {
		return llm.Classification{}, usage, fmt.Errorf("%w: unmarshal classification: %w", common.ErrMalformedOracleResponse, err)
	}

	c.log.Info("llm.classify.ok",
		"req_id", rid,
		"booking_type", out.BookingType,
		"booking_count", out.BookingCount,
		"confidence", out.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, usage, nil
}

// ExtractBookings implements llm.BookingExtractor.
func (c *Client) ExtractBookings(ctx context.Context, req llm.ExtractRequest) ([]booking.Record, llm.Usage, error) {
	rid := requestID(ctx)
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"multiple", req.Multiple,
		"expected_count", req.ExpectedCount,
		"text_len", len(req.Content),
	)

	schema := llm.BuildBookingRecordsJSONSchema()
	content, usage, err := c.chat(ctx,
		llm.BuildExtractSystemPrompt(req.Multiple),
		llm.BuildExtractUserPrompt(req),
		schema,
	)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, usage, err
	}

	payload, err := llm.ExtractJSONPayload(content)
	if err != nil {
		c.log.Error("llm.extract.payload_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, usage, fmt.Errorf("%w: extract payload: %w", common.ErrMalformedOracleResponse, err)
	}

	if err := llm.ValidateJSONAgainstSchema(schema, payload); err != nil {
		c.log.Warn("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		// best effort: decode whatever subset unmarshals cleanly
	}

	var envelope struct {
		Bookings []booking.Record `json:"bookings"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, usage, fmt.Errorf("%w: unmarshal bookings: %w", common.ErrMalformedOracleResponse, err)
	}
	for i := range envelope.Bookings {
		envelope.Bookings[i].Method = "oracle"
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"bookings", len(envelope.Bookings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return envelope.Bookings, usage, nil
}

// chat runs one JSON-mode completion and returns the message content plus
// token usage.
func (c *Client) chat(ctx context.Context, system, user string, schema map[string]any) (string, llm.Usage, error) {
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return "", llm.Usage{}, err
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", llm.Usage{}, fmt.Errorf("%w: decode openai response: %w", common.ErrMalformedOracleResponse, err)
	}
	usage := llm.Usage{
		PromptTokens:     cc.Usage.PromptTokens,
		CompletionTokens: cc.Usage.CompletionTokens,
	}
	if len(cc.Choices) == 0 {
		return "", usage, fmt.Errorf("%w: no choices in openai response", common.ErrMalformedOracleResponse)
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), usage, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: openai http error: %w", common.ErrOracleUnavailable, err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("%w: openai status %d: %s", common.ErrOracleUnavailable, resp.StatusCode, buf.String())
	}

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return buf.Bytes(), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

package pangea

import (
	"context"
	"encoding/json"
	"fmt"
)

// Span is one detected region in the submitted text. Offsets are
// character positions into exactly the text that was sent for detection,
// half-open [Start, End). The service is trusted to return non-overlapping
// spans; this is not validated here.
type Span struct {
	FieldType string  `json:"field_type"`
	Text      string  `json:"text"`
	Start     int     `json:"start"`
	End       int     `json:"end"`
	Score     float64 `json:"score"`
	Redacted  bool    `json:"redacted"`
}

// RedactResult carries the service's pre-redacted text, the per-span
// detection report, and the raw response for audit display.
type RedactResult struct {
	RedactedText string
	Spans        []Span
	Raw          json.RawMessage
}

type redactRequest struct {
	Text  string   `json:"text"`
	Rules []string `json:"rules,omitempty"`
	Debug bool     `json:"debug"`
}

type redactResult struct {
	RedactedText string `json:"redacted_text"`
	Count        int    `json:"count"`
	Report       *struct {
		RecognizerResults []Span `json:"recognizer_results"`
	} `json:"report"`
}

// Redact submits text for detection and redaction under the given rule
// set. The debug report is always requested; the pipeline needs per-span
// results, not just the pre-redacted text.
func (c *Client) Redact(ctx context.Context, text string, rules []string) (*RedactResult, error) {
	var res redactResult
	raw, err := c.post(ctx, "redact", "/v1/redact", redactRequest{Text: text, Rules: rules, Debug: true}, &res)
	if err != nil {
		return nil, fmt.Errorf("redact: %w", err)
	}

	out := &RedactResult{RedactedText: res.RedactedText, Raw: raw}
	if res.Report != nil {
		out.Spans = res.Report.RecognizerResults
	}
	return out, nil
}

// AuditJSON renders the raw service response indented for display. When
// pruned, the envelope summary and the pre-redacted text are dropped so
// the report shows detection data only.
func (r *RedactResult) AuditJSON(pruned bool) (string, error) {
	var doc map[string]any
	if err := json.Unmarshal(r.Raw, &doc); err != nil {
		return "", fmt.Errorf("parse redact response: %w", err)
	}
	if pruned {
		delete(doc, "summary")
		if result, ok := doc["result"].(map[string]any); ok {
			delete(result, "redacted_text")
		}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render redact report: %w", err)
	}
	return string(b), nil
}

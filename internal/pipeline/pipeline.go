// Package pipeline orchestrates the redact, complete, and annotate
// sequence for a single conversation turn.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/redactchat/internal/models"
	"github.com/raphaelgruber/redactchat/internal/pangea"
	"github.com/raphaelgruber/redactchat/internal/splice"
)

// MaliciousURLPlaceholder replaces URL spans whose domain verdict is
// malicious.
const MaliciousURLPlaceholder = "<MALICIOUS_URL>"

const fieldTypeURL = "URL"

// ErrEmptyMessage is returned when the user text is blank after
// trimming. Front ends re-prompt instead of spending a network round
// trip.
var ErrEmptyMessage = errors.New("message is empty")

// Redactor detects and masks sensitive spans in text.
type Redactor interface {
	Redact(ctx context.Context, text string, rules []string) (*pangea.RedactResult, error)
}

// ReputationChecker classifies a domain name.
type ReputationChecker interface {
	Reputation(ctx context.Context, domain string) (pangea.Verdict, error)
}

// Completer produces the assistant reply for a conversation history.
type Completer interface {
	Complete(ctx context.Context, history []models.Message) (models.Message, error)
}

// Pipeline runs one chat turn through input redaction, completion, and
// reply annotation. It keeps no per-turn state and is safe for
// concurrent use when its adapters are.
type Pipeline struct {
	redactor   Redactor
	reputation ReputationChecker
	completer  Completer
	logger     *slog.Logger
}

// New creates a pipeline over the given adapters.
func New(redactor Redactor, reputation ReputationChecker, completer Completer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		redactor:   redactor,
		reputation: reputation,
		completer:  completer,
		logger:     logger,
	}
}

// Turn is the full result of one processed turn.
type Turn struct {
	// SanitizedUser is the user message with sensitive fields already
	// masked by the redaction service; only this version is sent upstream
	// and recorded in the conversation.
	SanitizedUser string

	// Assistant is the raw model reply.
	Assistant models.Message

	// Annotated is the display-safe reply after placeholder substitution.
	Annotated string

	// RawUserReport and RawReplyReport are the indented JSON detection
	// reports for audit display.
	RawUserReport  string
	RawReplyReport string
}

// ProcessTurn runs one conversation turn. Any adapter failure aborts the
// turn; no retries, no partial results. Log lines carry a turn id, never
// message content.
func (p *Pipeline) ProcessTurn(ctx context.Context, userText string, prior models.Conversation, inputRules, outputRules []string) (*Turn, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, ErrEmptyMessage
	}

	started := time.Now()
	log := p.logger.With("turn_id", uuid.NewString())
	log.Info("processing turn", "prior_entries", len(prior))

	userRes, err := p.redactor.Redact(ctx, userText, inputRules)
	if err != nil {
		return nil, fmt.Errorf("redact user message: %w", err)
	}
	rawUser, err := userRes.AuditJSON(false)
	if err != nil {
		return nil, fmt.Errorf("render user redaction report: %w", err)
	}

	history := append(prior.Messages(), models.Message{Role: models.RoleUser, Content: userRes.RedactedText})
	assistant, err := p.completer.Complete(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	replyRes, err := p.redactor.Redact(ctx, assistant.Content, outputRules)
	if err != nil {
		return nil, fmt.Errorf("redact assistant reply: %w", err)
	}
	annotated, err := p.annotate(ctx, assistant.Content, replyRes.Spans)
	if err != nil {
		return nil, err
	}
	rawReply, err := replyRes.AuditJSON(true)
	if err != nil {
		return nil, fmt.Errorf("render reply redaction report: %w", err)
	}

	log.Info("turn complete", "duration", time.Since(started), "reply_spans", len(replyRes.Spans))

	return &Turn{
		SanitizedUser:  userRes.RedactedText,
		Assistant:      assistant,
		Annotated:      annotated,
		RawUserReport:  rawUser,
		RawReplyReport: rawReply,
	}, nil
}

// annotate resolves the detection report into placeholder edits over the
// original reply. URL spans stay visible unless the domain verdict is
// malicious, even when the service pre-redacted them; other spans get
// their field-type placeholder only when the service already redacted
// them. Reputation lookups run sequentially in span order.
func (p *Pipeline) annotate(ctx context.Context, content string, spans []pangea.Span) (string, error) {
	runes := []rune(content)
	var edits []splice.Edit

	for _, span := range spans {
		if span.FieldType == fieldTypeURL {
			if span.Start < 0 || span.End < span.Start || span.End > len(runes) {
				return "", fmt.Errorf("annotate: span [%d,%d) outside reply of length %d", span.Start, span.End, len(runes))
			}
			host := trimScheme(string(runes[span.Start:span.End]))
			verdict, err := p.reputation.Reputation(ctx, host)
			if err != nil {
				return "", fmt.Errorf("reputation for reply URL: %w", err)
			}
			if verdict == pangea.VerdictMalicious {
				edits = append(edits, splice.Edit{Start: span.Start, End: span.End, Replacement: MaliciousURLPlaceholder})
			}
			continue
		}

		if span.Redacted {
			edits = append(edits, splice.Edit{Start: span.Start, End: span.End, Replacement: "<" + span.FieldType + ">"})
		}
	}

	annotated, err := splice.Apply(content, edits)
	if err != nil {
		return "", fmt.Errorf("annotate reply: %w", err)
	}
	return annotated, nil
}

// trimScheme drops a leading http:// or https:// so the reputation
// service sees a bare host.
func trimScheme(u string) string {
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimPrefix(u, "https://")
}

// Package pipeline sequences one conversation turn: resolve the input
// modality, transcribe audio if present, generate the teacher reply, then (as
// a separately invoked second stage) synthesize speech for it. Stages are
// strictly sequential and every stage failure is converted to a status string
// at the boundary; nothing propagates to the caller as a fault.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/m0shaban/ai-virtual-teacher/internal/bus"
	"github.com/m0shaban/ai-virtual-teacher/internal/eventstore"
	"github.com/m0shaban/ai-virtual-teacher/internal/llm"
	"github.com/m0shaban/ai-virtual-teacher/internal/prompt"
	"github.com/m0shaban/ai-virtual-teacher/internal/protocol"
	"github.com/m0shaban/ai-virtual-teacher/internal/registry"
	"github.com/m0shaban/ai-virtual-teacher/internal/stt"
	"github.com/m0shaban/ai-virtual-teacher/internal/tts"
)

// Fixed placeholder recorded when audio cannot be understood.
const (
	audioErrorMarker = "(Audio error)"
	audioErrorReply  = "Could not understand the audio."
)

// Turn is one user/teacher exchange; immutable once appended.
type Turn struct {
	User  string `json:"user"`
	Reply string `json:"reply"`
}

// TurnInput carries everything a turn needs. Audio takes precedence over text
// when both are present.
type TurnInput struct {
	Samples    []float64
	SampleRate int
	Text       string
	Role       prompt.Role
	Language   prompt.Language
}

// TurnResult is returned as soon as the text reply exists, before synthesis.
type TurnResult struct {
	History []Turn
	Reply   string
	Status  string
}

// SpeechResult reports the second stage. Path is empty when no artifact was
// produced.
type SpeechResult struct {
	Status string
	Path   string
}

// Pipeline owns the conversation history of a single interactive session.
// Callers invoke one turn at a time; there is no internal locking.
type Pipeline struct {
	session     *llm.Session
	transcriber *stt.Adapter
	speaker     *tts.Speaker
	catalog     *registry.Catalog
	events      *bus.Client
	audit       *eventstore.Store
	sessionID   string
	history     []Turn
	logger      *slog.Logger

	turnsTotal  metric.Int64Counter
	stageErrors metric.Int64Counter
}

func New(session *llm.Session, transcriber *stt.Adapter, speaker *tts.Speaker, catalog *registry.Catalog, events *bus.Client, audit *eventstore.Store, logger *slog.Logger) *Pipeline {
	meter := otel.Meter("virtual-teacher/pipeline")
	turnsTotal, err := meter.Int64Counter("teacher.turns.total")
	if err != nil {
		logger.Warn("failed to create turns counter", slog.String("error", err.Error()))
	}
	stageErrors, err := meter.Int64Counter("teacher.stage.errors")
	if err != nil {
		logger.Warn("failed to create errors counter", slog.String("error", err.Error()))
	}
	return &Pipeline{
		session:     session,
		transcriber: transcriber,
		speaker:     speaker,
		catalog:     catalog,
		events:      events,
		audit:       audit,
		sessionID:   uuid.NewString(),
		logger:      logger.With(slog.String("component", "pipeline")),
		turnsTotal:  turnsTotal,
		stageErrors: stageErrors,
	}
}

// SessionID identifies this conversation in events and the audit log.
func (p *Pipeline) SessionID() string { return p.sessionID }

// History returns a copy of the recorded turns in insertion order.
func (p *Pipeline) History() []Turn {
	return append([]Turn(nil), p.history...)
}

// SwitchModel resolves a catalog label and re-points the generation session.
// On any failure the previously active endpoint stays in effect.
func (p *Pipeline) SwitchModel(ctx context.Context, label string) string {
	endpoint, err := p.catalog.Lookup(label)
	if err != nil {
		p.countError(ctx, "switch")
		return "Invalid model selection"
	}
	if err := p.session.SwitchEndpoint(label, endpoint); err != nil {
		p.countError(ctx, "switch")
		return fmt.Sprintf("Error updating model: %v", err)
	}
	p.events.Publish(protocol.SubjectModelSwitched, protocol.ModelSwitched{
		SessionID: p.sessionID,
		Label:     label,
		Model:     endpoint,
		Timestamp: time.Now().UTC(),
	})
	p.auditEvent(ctx, "model_switch", endpoint)
	return fmt.Sprintf("Model updated to: %s", endpoint)
}

// SubmitTurn runs the first stage. It returns the updated history and the
// reply text immediately so the caller can render text before audio exists.
func (p *Pipeline) SubmitTurn(ctx context.Context, in TurnInput) TurnResult {
	var question, source string

	switch {
	case len(in.Samples) > 0:
		text, err := p.transcriber.Transcribe(ctx, in.Samples, in.SampleRate)
		if errors.Is(err, stt.ErrUnavailable) {
			p.countError(ctx, "transcribe")
			return TurnResult{History: p.History(), Status: "Speech-to-text model not available"}
		}
		if err != nil {
			p.countError(ctx, "transcribe")
			p.history = append(p.history, Turn{User: audioErrorMarker, Reply: audioErrorReply})
			p.logger.Warn("transcription failed", slog.String("error", err.Error()))
			return TurnResult{History: p.History(), Status: fmt.Sprintf("Audio processing error: %v", err)}
		}
		question = strings.TrimSpace(text)
		source = "audio"
	case strings.TrimSpace(in.Text) != "":
		question = strings.TrimSpace(in.Text)
		source = "text"
	default:
		return TurnResult{History: p.History(), Status: "Please ask your question first."}
	}

	p.events.Publish(protocol.SubjectTurnTranscript, protocol.TurnTranscript{
		SessionID: p.sessionID,
		Text:      question,
		Source:    source,
		Timestamp: time.Now().UTC(),
	})

	reply, err := p.session.Generate(ctx, question, in.Role, in.Language)
	if err != nil {
		// The turn ends here; history stays unchanged so a failed call never
		// leaves a half-recorded exchange.
		p.countError(ctx, "generate")
		p.logger.Warn("generation failed", slog.String("error", err.Error()))
		return TurnResult{History: p.History(), Status: fmt.Sprintf("Error communicating with the model: %v", err)}
	}

	p.history = append(p.history, Turn{User: question, Reply: reply})

	p.events.Publish(protocol.SubjectTurnReply, protocol.TurnReply{
		SessionID: p.sessionID,
		Question:  question,
		Reply:     reply,
		Model:     p.session.Model(),
		Role:      string(in.Role),
		Language:  string(in.Language),
		Timestamp: time.Now().UTC(),
	})
	p.auditTurn(ctx, question, reply, in)
	if p.turnsTotal != nil {
		p.turnsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
	}

	return TurnResult{History: p.History(), Reply: reply, Status: "Text response generated"}
}

// SynthesizeReply runs the second stage. A synthesis failure never touches the
// already-recorded text reply.
func (p *Pipeline) SynthesizeReply(ctx context.Context, reply string, language prompt.Language) SpeechResult {
	if strings.TrimSpace(reply) == "" {
		return SpeechResult{Status: "Please generate a text response first."}
	}

	path, err := p.speaker.Synthesize(ctx, reply, language)
	if errors.Is(err, tts.ErrNoSpeech) {
		return SpeechResult{Status: "Please generate a text response first."}
	}
	if err != nil {
		p.countError(ctx, "synthesize")
		p.logger.Warn("synthesis failed", slog.String("error", err.Error()))
		return SpeechResult{Status: fmt.Sprintf("Audio generation failed: %v", err)}
	}

	p.events.Publish(protocol.SubjectTurnSpeech, protocol.TurnSpeech{
		SessionID: p.sessionID,
		Path:      path,
		Language:  string(language),
		Timestamp: time.Now().UTC(),
	})
	return SpeechResult{Status: "Audio generated successfully!", Path: path}
}

// Clear wipes the conversation history.
func (p *Pipeline) Clear() []Turn {
	p.history = nil
	return []Turn{}
}

func (p *Pipeline) auditTurn(ctx context.Context, question, reply string, in TurnInput) {
	if p.audit == nil {
		return
	}
	if err := p.audit.AppendSession(ctx, p.sessionID, p.session.Model()); err != nil {
		p.logger.Warn("audit session write failed", slog.String("error", err.Error()))
		return
	}
	err := p.audit.AppendTurn(ctx, eventstore.Turn{
		SessionID: p.sessionID,
		Question:  question,
		Reply:     reply,
		Model:     p.session.Model(),
		Role:      string(in.Role),
		Language:  string(in.Language),
	})
	if err != nil {
		p.logger.Warn("audit turn write failed", slog.String("error", err.Error()))
	}
}

func (p *Pipeline) auditEvent(ctx context.Context, eventType, detail string) {
	if p.audit == nil {
		return
	}
	if err := p.audit.AppendSession(ctx, p.sessionID, p.session.Model()); err != nil {
		p.logger.Warn("audit session write failed", slog.String("error", err.Error()))
		return
	}
	err := p.audit.AppendEvent(ctx, eventstore.Event{
		SessionID: p.sessionID,
		Type:      eventType,
		Detail:    detail,
	})
	if err != nil {
		p.logger.Warn("audit event write failed", slog.String("error", err.Error()))
	}
}

func (p *Pipeline) countError(ctx context.Context, stage string) {
	if p.stageErrors != nil {
		p.stageErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
}

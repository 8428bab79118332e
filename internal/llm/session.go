package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/m0shaban/ai-virtual-teacher/internal/config"
	"github.com/m0shaban/ai-virtual-teacher/internal/prompt"
)

// ErrBadEndpoint marks a model identifier the session refuses to switch to.
var ErrBadEndpoint = errors.New("invalid model endpoint")

const generateTimeout = 60 * time.Second

// FromConfig builds the generator selected by llm.mode.
func FromConfig(cfg config.LLMConfig, token string) (Generator, error) {
	switch cfg.Mode {
	case "mock":
		return NewMockGenerator(), nil
	case "hf":
		return NewHFGenerator(cfg.Endpoint, token), nil
	case "openai":
		return NewOpenAIGenerator(cfg.Endpoint, token), nil
	default:
		return nil, fmt.Errorf("unknown llm mode %q", cfg.Mode)
	}
}

// Session holds the single active model endpoint used by every generation call
// until the user switches it. One session serves one interactive user; callers
// must not switch the endpoint while a generation is in flight.
type Session struct {
	generator   Generator
	model       string
	label       string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

func NewSession(cfg config.LLMConfig, generator Generator, logger *slog.Logger) *Session {
	return &Session{
		generator:   generator,
		model:       cfg.DefaultModel,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger.With(slog.String("component", "llm-session")),
	}
}

// Model returns the currently active model identifier.
func (s *Session) Model() string { return s.model }

// Label returns the display label of the active model, if one was recorded.
func (s *Session) Label() string { return s.label }

// SwitchEndpoint replaces the active model. On a rejected identifier the
// previous endpoint stays active.
func (s *Session) SwitchEndpoint(label, endpoint string) error {
	if err := checkEndpoint(endpoint); err != nil {
		return err
	}
	s.model = endpoint
	s.label = label
	s.logger.Info("model switched", slog.String("model", endpoint))
	return nil
}

func checkEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return fmt.Errorf("%w: empty identifier", ErrBadEndpoint)
	}
	for _, r := range endpoint {
		if unicode.IsSpace(r) {
			return fmt.Errorf("%w: %q contains whitespace", ErrBadEndpoint, endpoint)
		}
	}
	return nil
}

// Generate wraps the question into the role/language prompt and issues one
// blocking generation call against the active endpoint. There are no retries;
// a failed call is terminal for the turn.
func (s *Session) Generate(ctx context.Context, question string, role prompt.Role, language prompt.Language) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.Generate(ctx, Request{
		Model:       s.model,
		Prompt:      prompt.Build(question, role, language),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate with %s: %w", s.model, err)
	}
	s.logger.Info("generation complete",
		slog.String("model", s.model),
		slog.Duration("latency", time.Since(start)))

	text = strings.TrimSpace(text)
	if text == "" {
		return "Sorry, I couldn't generate a response.", nil
	}
	return text, nil
}

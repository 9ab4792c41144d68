package advice

import (
	"context"
	"log/slog"
	"time"

	"fincoach/internal/amqp"
	"fincoach/internal/config"
	"fincoach/internal/core"
	"fincoach/internal/llm"
)

// ExpenseSource fetches a user's expense records.
type ExpenseSource interface {
	FetchAnnual(ctx context.Context, token string, year int) core.FetchResult
}

// Generator produces text from a prompt, reporting which provider
// answered and which ones failed along the way.
type Generator interface {
	Generate(ctx context.Context, p llm.Prompt) (text string, provider string, failures []llm.Failure)
}

// Toner restyles a response for a persona.
type Toner interface {
	Adjust(ctx context.Context, response string, persona core.Persona) string
}

// EventPublisher emits advice-turn events for the hosting platform.
type EventPublisher interface {
	PublishAdviceEvent(ctx context.Context, msg *amqp.AdviceEventMessage) error
}

// Request is one user turn.
type Request struct {
	SessionID string
	Message   string
	Token     string       // empty: no personalization
	Year      int          // zero: current year
	Persona   core.Persona // empty: classify from the message
}

// Response is the assistant's turn for a Request.
type Response struct {
	Text     string
	Persona  core.Persona
	Provider string // empty in rules mode or when the router fell back to guidance
}

// Service runs the advice pipeline for one turn at a time.
type Service struct {
	source ExpenseSource
	router Generator
	toner  Toner
	events EventPublisher // nil: event publishing disabled
	mode   string
}

func NewService(source ExpenseSource, router Generator, toner Toner, events EventPublisher, mode string) *Service {
	return &Service{
		source: source,
		router: router,
		toner:  toner,
		events: events,
		mode:   mode,
	}
}

// Respond handles one user message: classify the persona (unless
// pinned), fetch and summarize expense data when a token is present,
// compose the prompt, generate and restyle the answer. Every step
// degrades to usable text; Respond never fails.
func (s *Service) Respond(ctx context.Context, req Request) Response {
	start := time.Now()

	persona := req.Persona
	if persona == "" {
		persona = core.ClassifyPersona(req.Message)
	}

	summary := ""
	if req.Token != "" {
		result := s.source.FetchAnnual(ctx, req.Token, req.Year)
		if !result.Failed() {
			summary = core.Summarize(result)
		} else {
			slog.WarnContext(ctx, "Expense fetch failed, answering without personalization",
				"error", result.Err)
		}
	}

	var (
		text     string
		provider string
		failures []llm.Failure
	)
	if s.mode == config.ModeRules {
		text = RuleAdvise(req.Message, persona, summary)
	} else {
		prompt := Compose(req.Message, persona, summary)
		text, provider, failures = s.router.Generate(ctx, prompt)
		if provider != "" {
			text = s.toner.Adjust(ctx, text, persona)
		}
	}

	s.publishEvent(ctx, req, persona, provider, summary != "", len(failures), time.Since(start))

	slog.InfoContext(ctx, "Advice turn completed",
		"persona", persona,
		"provider", provider,
		"mode", s.mode,
		"personalized", summary != "",
		"fallbacks", len(failures),
		"duration_ms", time.Since(start).Milliseconds())

	return Response{Text: text, Persona: persona, Provider: provider}
}

// publishEvent is fire-and-forget: a broker problem must never break
// the chat turn.
func (s *Service) publishEvent(ctx context.Context, req Request, persona core.Persona, provider string, personalized bool, fallbacks int, duration time.Duration) {
	if s.events == nil {
		return
	}
	msg := amqp.NewAdviceEventMessage(req.SessionID, string(persona), provider, s.mode, personalized, fallbacks, duration)
	if err := s.events.PublishAdviceEvent(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Failed to publish advice event", "error", err)
	}
}

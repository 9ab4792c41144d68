package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fincoach/internal/core"
)

func TestToneAdjust(t *testing.T) {
	p := &fakeProvider{name: "toner", configured: true, text: "rewritten"}
	adj := NewToneAdjuster(p)

	got := adj.Adjust(context.Background(), "original", core.PersonaStudent)
	if got != "rewritten" {
		t.Errorf("got %q", got)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times", p.calls)
	}
}

func TestToneAdjustPrependsInstruction(t *testing.T) {
	var seen Prompt
	p := &capturingProvider{text: "ok response"}
	adj := NewToneAdjuster(p)
	adj.Adjust(context.Background(), "original text", core.PersonaProfessional)
	seen = p.prompt
	if !strings.HasSuffix(seen.User, "original text") {
		t.Errorf("prompt must end with the original response: %q", seen.User)
	}
	if !strings.Contains(seen.User, "formal") {
		t.Errorf("professional rewrite instruction missing: %q", seen.User)
	}
}

func TestToneAdjustFailureReturnsOriginal(t *testing.T) {
	p := &fakeProvider{name: "toner", configured: true, err: errors.New("down")}
	adj := NewToneAdjuster(p)
	if got := adj.Adjust(context.Background(), "original", core.PersonaGeneral); got != "original" {
		t.Errorf("got %q, want original", got)
	}
}

func TestToneAdjustUnconfiguredReturnsOriginal(t *testing.T) {
	p := &fakeProvider{name: "toner"}
	adj := NewToneAdjuster(p)
	if got := adj.Adjust(context.Background(), "original", core.PersonaGeneral); got != "original" {
		t.Errorf("got %q, want original", got)
	}
	if p.calls != 0 {
		t.Error("unconfigured provider must not be called")
	}
}

func TestToneAdjustNilProvider(t *testing.T) {
	adj := NewToneAdjuster(nil)
	if got := adj.Adjust(context.Background(), "original", core.PersonaStudent); got != "original" {
		t.Errorf("got %q, want original", got)
	}
}

type capturingProvider struct {
	prompt Prompt
	text   string
}

func (c *capturingProvider) Name() string     { return "capturing" }
func (c *capturingProvider) Configured() bool { return true }
func (c *capturingProvider) Generate(ctx context.Context, p Prompt) (string, error) {
	c.prompt = p
	return c.text, nil
}

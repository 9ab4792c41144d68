package advice

import (
	"strings"
	"testing"

	"fincoach/internal/core"
)

func TestComposeSelectsPersonaPrompt(t *testing.T) {
	cases := []struct {
		persona core.Persona
		marker  string
	}{
		{core.PersonaStudent, "specifically for students"},
		{core.PersonaProfessional, "specifically for working professionals"},
		{core.PersonaGeneral, "for both students and professionals"},
		{core.Persona("unknown"), "for both students and professionals"},
	}
	for _, c := range cases {
		p := Compose("how do I save?", c.persona, "")
		if !strings.Contains(p.System, c.marker) {
			t.Errorf("persona %q: system prompt missing %q", c.persona, c.marker)
		}
	}
}

func TestComposeSystemPromptsEndWithCallToAction(t *testing.T) {
	for persona, prompt := range systemPrompts {
		if !strings.Contains(prompt, "Would you like a summary, a downloadable guide, or help creating a plan now?") {
			t.Errorf("persona %q prompt missing the call-to-action line", persona)
		}
	}
}

func TestComposeWithoutSummary(t *testing.T) {
	p := Compose("how do I save?", core.PersonaGeneral, "")
	if p.User != "how do I save?" {
		t.Errorf("user segment = %q", p.User)
	}
}

func TestComposeLabelsExpenseContext(t *testing.T) {
	summary := "Total: ₹500.00"
	p := Compose("where am I overspending?", core.PersonaProfessional, summary)
	if !strings.Contains(p.User, "expense data context") {
		t.Errorf("user segment missing data label: %q", p.User)
	}
	if !strings.Contains(p.User, summary) {
		t.Errorf("user segment missing the summary: %q", p.User)
	}
	if !strings.Contains(p.User, "where am I overspending?") {
		t.Errorf("user segment missing the question: %q", p.User)
	}
	if strings.Contains(p.System, summary) {
		t.Error("summary must live in the user segment, not the system prompt")
	}
}

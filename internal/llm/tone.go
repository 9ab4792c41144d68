package llm

import (
	"context"
	"log/slog"
	"strings"

	"fincoach/internal/core"
)

// tonePrompts prefix a generated response with a persona-specific
// rewrite instruction.
var tonePrompts = map[core.Persona]string{
	core.PersonaStudent:      "Simplify this explanation and make it more educational and encouraging: ",
	core.PersonaProfessional: "Make this response more formal and include relevant business terminology: ",
	core.PersonaGeneral:      "Make this response conversational and helpful: ",
}

// ToneAdjuster restyles a response for the detected persona with one
// extra generation call. Failures are swallowed: the caller always
// gets a usable response back.
type ToneAdjuster struct {
	provider Provider
}

func NewToneAdjuster(provider Provider) *ToneAdjuster {
	return &ToneAdjuster{provider: provider}
}

// Adjust returns the restyled response, or the original unchanged when
// no tone-capable provider is configured or the rewrite fails.
func (t *ToneAdjuster) Adjust(ctx context.Context, response string, persona core.Persona) string {
	instruction, ok := tonePrompts[persona]
	if !ok || t.provider == nil || !t.provider.Configured() {
		return response
	}

	adjusted, err := t.provider.Generate(ctx, Prompt{User: instruction + response})
	if err != nil {
		slog.DebugContext(ctx, "Tone adjustment failed, keeping original response",
			"provider", t.provider.Name(), "error", err)
		return response
	}
	if strings.TrimSpace(adjusted) == "" {
		return response
	}
	return adjusted
}

package llm

import (
	"context"
	"log/slog"
)

// configGuidance is returned when every provider is unconfigured or
// failed. It tells the operator which keys to set instead of leaving
// the user with nothing.
const configGuidance = "I'm sorry, but all AI services are currently unavailable. " +
	"However, I can still help you with basic expense tracking and analysis. " +
	"Please make sure to configure your API keys in the .env file:\n" +
	"- HUGGINGFACE_TOKEN for Hugging Face AI responses (primary)\n" +
	"- GROQ_API_KEY for fast Groq AI responses (fallback)\n" +
	"- IBM_WATSONX_API_KEY for IBM watsonx fallback"

// Router tries providers in priority order and returns the first
// successful response.
type Router struct {
	providers []Provider
}

func NewRouter(providers ...Provider) *Router {
	return &Router{providers: providers}
}

// Generate walks the provider chain: unconfigured providers are
// skipped outright, runtime failures are logged and collected, and the
// next provider gets its turn. When the chain is exhausted the fixed
// configuration guidance is returned; Generate never fails.
//
// The returned provider name is empty when the guidance text was used.
func (r *Router) Generate(ctx context.Context, p Prompt) (text string, provider string, failures []Failure) {
	for _, prov := range r.providers {
		if !prov.Configured() {
			continue
		}
		out, err := prov.Generate(ctx, p)
		if err != nil {
			slog.WarnContext(ctx, "Provider failed, falling back",
				"provider", prov.Name(), "error", err)
			failures = append(failures, Failure{Provider: prov.Name(), Err: err})
			continue
		}
		return out, prov.Name(), failures
	}
	return configGuidance, "", failures
}

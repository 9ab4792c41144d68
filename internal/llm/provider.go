// Package llm contains the hosted text-generation provider adapters
// and the router that tries them in priority order. All adapters speak
// plain JSON over HTTPS; none of the three services ships a Go SDK.
package llm

import (
	"context"
	"strings"
)

// Prompt separates model instructions from the user-facing segment so
// chat-style providers can map them onto system/user roles and
// plain-completion providers can flatten them.
type Prompt struct {
	System string
	User   string
}

// Provider is a single hosted text-generation service.
type Provider interface {
	// Name identifies the provider in logs and diagnostics.
	Name() string
	// Configured reports whether a usable credential is present. An
	// unconfigured provider is skipped by the router without counting
	// as a runtime failure.
	Configured() bool
	// Generate returns plain generated text or an error.
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Failure records a runtime provider failure for diagnostics.
type Failure struct {
	Provider string
	Err      error
}

// credentialUsable reports whether a credential is real. Empty values
// and .env-template placeholders (your_..._here) leave the provider
// unconfigured, so the router skips it instead of burning a request.
func credentialUsable(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	return !(strings.HasPrefix(v, "your_") && strings.HasSuffix(v, "_here"))
}

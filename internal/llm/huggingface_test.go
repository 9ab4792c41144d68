package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExtractGenerated(t *testing.T) {
	prompt := "system stuff\n\nUser query: hi\n\nResponse (provide detailed, step-by-step guidance):"

	cases := []struct {
		name      string
		generated string
		want      string
	}{
		{
			name:      "echoed prompt stripped",
			generated: prompt + " Save 20% of your income every month.",
			want:      "Save 20% of your income every month.",
		},
		{
			name:      "delimiter emitted by model",
			generated: prompt + " preamble Response: Start with a weekly budget.",
			want:      "Start with a weekly budget.",
		},
		{
			name:      "no delimiter, no echo",
			generated: "no markers here at all, plain continuation text",
			want:      "no markers here at all, plain continuation text",
		},
		{
			name:      "end-of-text sentinel stripped",
			generated: prompt + " Track your expenses weekly.<|endoftext|>",
			want:      "Track your expenses weekly.",
		},
		{
			name:      "too short falls back to clarifying question",
			generated: prompt + " ok",
			want:      clarifyFallback,
		},
		{
			name:      "empty output falls back",
			generated: prompt,
			want:      clarifyFallback,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := extractGenerated(c.generated, prompt); got != c.want {
				t.Errorf("extractGenerated = %q, want %q", got, c.want)
			}
		})
	}
}

func TestExtractGeneratedStripsEchoedPromptWithoutDelimiter(t *testing.T) {
	prompt := "instructions without a trailing marker"
	generated := prompt + " and here is the actual answer text"
	got := extractGenerated(generated, prompt)
	if got != "and here is the actual answer text" {
		t.Errorf("extractGenerated = %q", got)
	}
}

func TestHuggingFaceGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf_tok" {
			t.Errorf("auth = %q", got)
		}
		w.Write([]byte(`[{"generated_text":"whatever Response: Budget first, invest second."}]`))
	}))
	defer srv.Close()

	h := NewHuggingFace("hf_tok", "test-model", srv.URL, 5*time.Second)
	got, err := h.Generate(context.Background(), Prompt{System: "sys", User: "how do I save?"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Budget first, invest second." {
		t.Errorf("got %q", got)
	}
}

func TestHuggingFaceGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model loading"}`))
	}))
	defer srv.Close()

	h := NewHuggingFace("hf_tok", "test-model", srv.URL, 5*time.Second)
	_, err := h.Generate(context.Background(), Prompt{User: "hi"})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("err = %v", err)
	}
}

func TestHuggingFaceConfigured(t *testing.T) {
	if NewHuggingFace("", "m", "http://x", time.Second).Configured() {
		t.Error("empty token must not be configured")
	}
	if NewHuggingFace("your_huggingface_token_here", "m", "http://x", time.Second).Configured() {
		t.Error("placeholder token must not be configured")
	}
	if !NewHuggingFace("tok", "m", "http://x", time.Second).Configured() {
		t.Error("token must be configured")
	}
}

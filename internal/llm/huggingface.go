package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Generation parameters for the Hugging Face Inference API. Fixed
// configuration, not user-tunable.
const (
	hfMaxNewTokens = 200
	hfTemperature  = 0.7

	// Generated text shorter than this is treated as a non-answer and
	// replaced with a clarifying question.
	minResponseLength = 10

	endOfTextToken    = "<|endoftext|>"
	responseDelimiter = "Response:"
)

// clarifyFallback is returned when the model produced nothing usable.
const clarifyFallback = "I'd be happy to help you with comprehensive financial guidance! 🎯\n\n" +
	"To provide you with the most personalized and detailed advice, could you please tell me:\n" +
	"• Are you a student or a working professional?\n" +
	"• What's your specific financial question or goal?\n" +
	"• Any details about your income or financial situation?\n\n" +
	"I'll then break down my response into clear, actionable steps just for you!"

// HuggingFace is the primary provider: a text-generation call against
// the hosted inference API for a causal LM.
type HuggingFace struct {
	token      string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func NewHuggingFace(token, model, baseURL string, timeout time.Duration) *HuggingFace {
	return &HuggingFace{
		token:   token,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

func (h *HuggingFace) Configured() bool { return credentialUsable(h.token) }

func (h *HuggingFace) Generate(ctx context.Context, p Prompt) (string, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	input := flattenForCompletion(p)
	body, err := json.Marshal(hfRequest{
		Inputs: input,
		Parameters: hfParameters{
			MaxNewTokens:   hfMaxNewTokens,
			Temperature:    hfTemperature,
			DoSample:       true,
			ReturnFullText: true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", h.baseURL, h.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference API status %d: %s", resp.StatusCode, snippet(raw))
	}

	var generations []hfGeneration
	if err := json.Unmarshal(raw, &generations); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(generations) == 0 {
		return "", fmt.Errorf("empty generation list")
	}

	return extractGenerated(generations[0].GeneratedText, input), nil
}

// flattenForCompletion renders a Prompt for a plain-completion model.
// The trailing "Response:" line doubles as the extraction delimiter.
func flattenForCompletion(p Prompt) string {
	return fmt.Sprintf("%s\n\nUser query: %s\n\nResponse (provide detailed, step-by-step guidance):",
		p.System, p.User)
}

// extractGenerated pulls the model's answer out of the raw completion.
// Causal LMs echo the prompt: prefer splitting on the "Response:"
// delimiter, otherwise strip the echoed prompt prefix. Too-short
// output is replaced by a canned clarifying question.
func extractGenerated(generated, prompt string) string {
	var text string
	if idx := strings.LastIndex(generated, responseDelimiter); idx >= 0 {
		text = generated[idx+len(responseDelimiter):]
	} else {
		text = strings.TrimPrefix(generated, prompt)
	}
	text = strings.ReplaceAll(text, endOfTextToken, "")
	text = strings.TrimSpace(text)

	if len(text) < minResponseLength {
		return clarifyFallback
	}
	return text
}

// snippet truncates an error body for inclusion in error messages.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

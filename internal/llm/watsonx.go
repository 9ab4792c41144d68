package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Generation parameters for watsonx.ai text generation (greedy
// decoding, as used for the enterprise Granite models).
const (
	watsonxMaxNewTokens      = 500
	watsonxMinNewTokens      = 1
	watsonxTemperature       = 0.7
	watsonxTopP              = 1.0
	watsonxRepetitionPenalty = 1.1
	watsonxAPIVersion        = "2023-05-29"

	// Refresh the IAM token this long before it actually expires.
	iamExpiryMargin = 60 * time.Second
)

// Watsonx is the second fallback and the tone-rewrite provider. The
// service authenticates with short-lived IAM access tokens exchanged
// for the account API key; the client caches the token until shortly
// before expiry.
type Watsonx struct {
	apiKey      string
	projectID   string
	model       string
	baseURL     string
	iamTokenURL string
	httpClient  *http.Client
	limiter     *rate.Limiter

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type watsonxRequest struct {
	ModelID    string            `json:"model_id"`
	Input      string            `json:"input"`
	Parameters watsonxParameters `json:"parameters"`
	ProjectID  string            `json:"project_id"`
}

type watsonxParameters struct {
	DecodingMethod    string  `json:"decoding_method"`
	MaxNewTokens      int     `json:"max_new_tokens"`
	MinNewTokens      int     `json:"min_new_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

type watsonxResponse struct {
	Results []struct {
		GeneratedText string `json:"generated_text"`
	} `json:"results"`
}

type iamTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func NewWatsonx(apiKey, projectID, model, baseURL, iamTokenURL string, timeout time.Duration) *Watsonx {
	return &Watsonx{
		apiKey:      apiKey,
		projectID:   projectID,
		model:       model,
		baseURL:     baseURL,
		iamTokenURL: iamTokenURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

func (w *Watsonx) Name() string { return "watsonx" }

func (w *Watsonx) Configured() bool { return credentialUsable(w.apiKey) && w.projectID != "" }

func (w *Watsonx) Generate(ctx context.Context, p Prompt) (string, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	token, err := w.iamToken(ctx)
	if err != nil {
		return "", fmt.Errorf("IAM token: %w", err)
	}

	input := p.User
	if p.System != "" {
		input = p.System + "\n\n" + p.User
	}

	body, err := json.Marshal(watsonxRequest{
		ModelID: w.model,
		Input:   input,
		Parameters: watsonxParameters{
			DecodingMethod:    "greedy",
			MaxNewTokens:      watsonxMaxNewTokens,
			MinNewTokens:      watsonxMinNewTokens,
			Temperature:       watsonxTemperature,
			TopP:              watsonxTopP,
			RepetitionPenalty: watsonxRepetitionPenalty,
		},
		ProjectID: w.projectID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	genURL := fmt.Sprintf("%s/ml/v1/text/generation?version=%s", w.baseURL, watsonxAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, genURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation status %d: %s", resp.StatusCode, snippet(raw))
	}

	var parsed watsonxResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Results) == 0 || strings.TrimSpace(parsed.Results[0].GeneratedText) == "" {
		return "", fmt.Errorf("empty generation")
	}
	return strings.TrimSpace(parsed.Results[0].GeneratedText), nil
}

// iamToken returns a cached IAM access token, exchanging the API key
// for a fresh one when the cached token is missing or near expiry.
func (w *Watsonx) iamToken(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.accessToken != "" && time.Now().Before(w.tokenExpiry) {
		return w.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ibm:params:oauth:grant-type:apikey")
	form.Set("apikey", w.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.iamTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token status %d: %s", resp.StatusCode, snippet(raw))
	}

	var parsed iamTokenResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}

	w.accessToken = parsed.AccessToken
	w.tokenExpiry = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - iamExpiryMargin)
	return w.accessToken, nil
}

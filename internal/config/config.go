package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Advice generation modes.
const (
	ModeLLM   = "llm"
	ModeRules = "rules"
)

type Config struct {
	// HTTP Server
	Port string

	// Expense backend
	BackendAPIURL string

	// Hugging Face Inference API (primary provider)
	HuggingFaceToken   string
	HuggingFaceModel   string
	HuggingFaceBaseURL string

	// Groq chat completions (first fallback)
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	// IBM watsonx.ai (second fallback, also used for tone rewrites)
	WatsonxAPIKey    string
	WatsonxURL       string
	WatsonxProjectID string
	WatsonxModel     string
	IAMTokenURL      string

	// AMQP chat-event publishing (disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Advice pipeline
	AdviceMode  string
	HTTPTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		BackendAPIURL: getEnv("BACKEND_API_URL", "http://localhost:5000"),

		HuggingFaceToken:   getEnv("HUGGINGFACE_TOKEN", ""),
		HuggingFaceModel:   getEnv("HF_MODEL", "microsoft/DialoGPT-small"),
		HuggingFaceBaseURL: getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),

		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqModel:   getEnv("GROQ_MODEL", "mixtral-8x7b-32768"),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai"),

		WatsonxAPIKey:    getEnv("IBM_WATSONX_API_KEY", ""),
		WatsonxURL:       getEnv("IBM_WATSONX_URL", "https://us-south.ml.cloud.ibm.com"),
		WatsonxProjectID: getEnv("IBM_WATSONX_PROJECT_ID", ""),
		WatsonxModel:     getEnv("IBM_WATSONX_MODEL", "ibm/granite-3b-code-instruct"),
		IAMTokenURL:      getEnv("IBM_IAM_TOKEN_URL", "https://iam.cloud.ibm.com/identity/token"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fincoach"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "chat_events"),

		AdviceMode:  getEnv("ADVICE_MODE", ModeLLM),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.AdviceMode != ModeLLM && c.AdviceMode != ModeRules {
		errors = append(errors, fmt.Sprintf("invalid advice mode '%s': must be '%s' or '%s'", c.AdviceMode, ModeLLM, ModeRules))
	}

	if err := validateHTTPURL("backend API URL", c.BackendAPIURL); err != nil {
		errors = append(errors, err.Error())
	}
	if c.HuggingFaceConfigured() {
		if err := validateHTTPURL("Hugging Face base URL", c.HuggingFaceBaseURL); err != nil {
			errors = append(errors, err.Error())
		}
	}
	if c.GroqConfigured() {
		if err := validateHTTPURL("Groq base URL", c.GroqBaseURL); err != nil {
			errors = append(errors, err.Error())
		}
	}
	if c.WatsonxConfigured() {
		if err := validateHTTPURL("watsonx URL", c.WatsonxURL); err != nil {
			errors = append(errors, err.Error())
		}
		if err := validateHTTPURL("IAM token URL", c.IAMTokenURL); err != nil {
			errors = append(errors, err.Error())
		}
		if c.WatsonxProjectID == "" {
			errors = append(errors, "IBM_WATSONX_PROJECT_ID is required when watsonx is configured")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	} else if c.HTTPTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at most 5 minutes", c.HTTPTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// HuggingFaceConfigured reports whether the primary provider has a
// usable credential. Placeholder values from a copied .env template
// (e.g. "your_huggingface_token_here") do not count.
func (c *Config) HuggingFaceConfigured() bool {
	return credentialSet(c.HuggingFaceToken)
}

func (c *Config) GroqConfigured() bool {
	return credentialSet(c.GroqAPIKey)
}

func (c *Config) WatsonxConfigured() bool {
	return credentialSet(c.WatsonxAPIKey)
}

func credentialSet(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	return !(strings.HasPrefix(v, "your_") && strings.HasSuffix(v, "_here"))
}

func validateHTTPURL(label, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s '%s': %v", label, raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid %s '%s': scheme must be http or https", label, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid %s '%s': missing host", label, raw)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

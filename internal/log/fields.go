package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldPersona    = "persona"
	FieldProvider   = "provider"
	FieldModel      = "model"
	FieldMode       = "mode"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentBackend = "backend"
	ComponentLLM     = "llm"
	ComponentAdvice  = "advice"
	ComponentSession = "session"
	ComponentAMQP    = "amqp"
	ComponentConfig  = "config"
)

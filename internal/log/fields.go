package log

// Common field names for structured logging
const (
	FieldComponent       = "component"
	FieldRequestID       = "request_id"
	FieldClientIP        = "client_ip"
	FieldMethod          = "method"
	FieldPath            = "path"
	FieldStatusCode      = "status_code"
	FieldDuration        = "duration_ms"
	FieldUserAgent       = "user_agent"
	FieldError           = "error"
	FieldErrorType       = "error_type"
	FieldOperation       = "operation"
	FieldTemplate        = "template"
	FieldBackend         = "backend"
	FieldModel           = "model"
	FieldPermissions     = "permissions"
	FieldDisclosedFields = "disclosed_fields"
	FieldSuggestions     = "suggestions"
	FieldReplyChars      = "reply_chars"
	FieldPromptChars     = "prompt_chars"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentSession  = "session"
	ComponentChat     = "chat"
	ComponentStorage  = "storage"
	ComponentGemini   = "gemini"
	ComponentAMQP     = "amqp"
	ComponentAudit    = "audit"
	ComponentTemplate = "template"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpImport   = "import"
	OpGenerate = "generate"
	OpParse    = "parse"
	OpRender   = "render"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeIO            = "io_error"
	ErrorTypeParse         = "parse_error"
	ErrorTypeExternal      = "external_service_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithChat adds the non-sensitive shape of a chat exchange.
func (f LogFields) WithChat(permissions []string, disclosed []string, suggestions, replyChars int) LogFields {
	f[FieldPermissions] = permissions
	f[FieldDisclosedFields] = disclosed
	f[FieldSuggestions] = suggestions
	f[FieldReplyChars] = replyChars
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}

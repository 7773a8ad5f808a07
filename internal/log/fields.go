package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUser       = "user"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldTab        = "tab"
	FieldView       = "view"
	FieldTxID       = "transaction_id"
	FieldTxType     = "transaction_type"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAnalytics = "analytics"
	ComponentMutation  = "mutation"
	ComponentCache     = "cache"
	ComponentStore     = "store"
	ComponentNotify    = "notify"
	ComponentWorker    = "worker"
	ComponentMirror    = "mirror"
)

// Operations defines standard operation names
const (
	OpFetch      = "fetch"
	OpAggregate  = "aggregate"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpInvalidate = "invalidate"
	OpPublish    = "publish"
	OpPush       = "push"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)

package log

// Common field names for structured logging. Every constant here has
// call sites; ad-hoc keys ("error", "signal", "exchange") stay
// literal.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status"
	FieldDuration   = "duration_ms"

	FieldUserID     = "user_id"
	FieldMealID     = "meal_id"
	FieldMealLabel  = "label"
	FieldMealDate   = "date"
	FieldPeriod     = "period"
	FieldPeriodMode = "period_mode"
	FieldCalories   = "calories"
	FieldBackend    = "backend"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentDashboard = "dashboard"
	ComponentAMQP      = "amqp"
)

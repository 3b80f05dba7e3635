package enum

// ── Websocket event types (printer rooms) ──

const (
	EventPrintSucceeded = "print.succeeded"
	EventPrintFailed    = "print.failed"
)

// ── Runtime environments (APP_ENV) ──

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

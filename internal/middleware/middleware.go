package middleware

// Context keys set by the middleware chain.
const (
	ContextKeyEmail     = "email"
	ContextKeyRequestID = "requestID"
)

// HeaderRequestID carries the request identifier in both directions.
const HeaderRequestID = "X-Request-ID"

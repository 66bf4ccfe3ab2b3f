package middlewares

// gin context keys; handlers go through the helpers instead of these.
const (
	CtxRequestID = "request_id"
	ctxUserKey   = "auth.user"
)

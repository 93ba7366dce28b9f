package domain

type CtxKey string

const (
	KeyRequestID CtxKey = "RequestID"
	KeyClientIP  CtxKey = "ClientIP"
	KeyUserAgent CtxKey = "UserAgent"
)

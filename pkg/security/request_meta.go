package security

import (
	"context"

	"institution-site-backend/internal/domain"
)

// RequestMeta identifies the HTTP request a security event belongs to
type RequestMeta struct {
	RequestID string
	IP        string
	UserAgent string
}

// WithRequestMeta stores request identification in ctx
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	ctx = context.WithValue(ctx, domain.KeyRequestID, meta.RequestID)
	ctx = context.WithValue(ctx, domain.KeyClientIP, meta.IP)
	return context.WithValue(ctx, domain.KeyUserAgent, meta.UserAgent)
}

// RequestMetaFromContext reads what WithRequestMeta stored; missing values are empty
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if ctx == nil {
		return RequestMeta{}
	}
	reqID, _ := ctx.Value(domain.KeyRequestID).(string)
	ip, _ := ctx.Value(domain.KeyClientIP).(string)
	ua, _ := ctx.Value(domain.KeyUserAgent).(string)
	return RequestMeta{RequestID: reqID, IP: ip, UserAgent: ua}
}

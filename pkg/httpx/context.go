package httpx

import "context"

type ctxKey string

const (
	CtxKeyMemberID       ctxKey = "member_id"
	CtxKeyMemberDetailID ctxKey = "member_detail_id"
)

// MemberIDFromContext returns the authenticated member id, if any.
func MemberIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyMemberID).(string)
	return v, ok
}

// MemberDetailIDFromContext returns the authenticated member detail id, if any.
func MemberDetailIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyMemberDetailID).(string)
	return v, ok
}

// ContextWithIdentity stamps the authenticated identity pair into the context
// for downstream handlers and the per-member rate limiter.
func ContextWithIdentity(ctx context.Context, memberID, memberDetailID string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyMemberID, memberID)
	return context.WithValue(ctx, CtxKeyMemberDetailID, memberDetailID)
}

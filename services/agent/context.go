package agent

import "context"

// RequestContext carries the per-request ids that tools need but that never
// appear in tool arguments: the LLM only sees the tool schemas, the ids come
// from the chat boundary.
type RequestContext struct {
	UserID       string
	SessionID    string
	DocumentID   string
	DeepCourseID string
}

type requestContextKey struct{}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom returns the request context bound to ctx, or a zero
// value when the chat boundary did not bind one.
func RequestContextFrom(ctx context.Context) RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(RequestContext)
	return rc
}

package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	sessionKey contextKey = "llm_session"
)

// WithPurpose labels the calls made with ctx, e.g. "quiz-gen".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithSessionID ties the calls made with ctx to a quiz session so that
// diagnostic events can be correlated.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// SessionIDFrom returns the session id, or "".
func SessionIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(sessionKey).(string)
	return v
}

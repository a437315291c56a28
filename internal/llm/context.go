package llm

import "context"

// Purposes label what a generation call was for on LLM events.
const (
	PurposeTopicGraph = "topic-graph"
	PurposeLesson     = "lesson"
)

type contextKey int

const (
	purposeKey contextKey = iota
	userKey
)

// WithPurpose labels calls made with ctx, e.g. PurposeLesson.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the purpose label on ctx, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// WithUser records the learner whose API key pays for calls made with ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserFrom returns the learner on ctx, or "" when unset.
func UserFrom(ctx context.Context) string {
	v, _ := ctx.Value(userKey).(string)
	return v
}

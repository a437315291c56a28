// Package apperrors defines the error kinds that cross the lifecycle boundary.
// Callers wrap these sentinels with context via fmt.Errorf("...: %w", ...) and
// classify with errors.Is or KindOf.
package apperrors

import (
	"context"
	"errors"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("not found")
	ErrAPIKeyMissing         = errors.New("api key missing")
	ErrUpstreamQuotaExceeded = errors.New("upstream quota exceeded")
	ErrUpstreamTimeout       = errors.New("upstream timeout")
	ErrUpstream              = errors.New("upstream failure")
	ErrMalformedResponse     = errors.New("malformed response")
	ErrSelfReference         = errors.New("self reference")
	ErrCrossSubject          = errors.New("cross subject")
	ErrCycleDetected         = errors.New("cycle detected")
	ErrValidation            = errors.New("validation error")
	ErrTopicLocked           = errors.New("topic locked")
)

// Kind is the stable machine-readable code of an error.
type Kind string

const (
	KindUnauthorized          Kind = "unauthorized"
	KindNotFound              Kind = "not_found"
	KindAPIKeyMissing         Kind = "api_key_missing"
	KindUpstreamQuotaExceeded Kind = "upstream_quota_exceeded"
	KindUpstreamTimeout       Kind = "upstream_timeout"
	KindUpstream              Kind = "upstream"
	KindMalformedResponse     Kind = "malformed_response"
	KindSelfReference         Kind = "self_reference"
	KindCrossSubject          Kind = "cross_subject"
	KindCycleDetected         Kind = "cycle_detected"
	KindValidation            Kind = "validation_error"
	KindTopicLocked           Kind = "topic_locked"
	KindCanceled              Kind = "canceled"
	KindInternal              Kind = "internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrUnauthorized, KindUnauthorized},
	{ErrNotFound, KindNotFound},
	{ErrAPIKeyMissing, KindAPIKeyMissing},
	{ErrUpstreamQuotaExceeded, KindUpstreamQuotaExceeded},
	{ErrUpstreamTimeout, KindUpstreamTimeout},
	{ErrMalformedResponse, KindMalformedResponse},
	{ErrUpstream, KindUpstream},
	{ErrSelfReference, KindSelfReference},
	{ErrCrossSubject, KindCrossSubject},
	{ErrCycleDetected, KindCycleDetected},
	{ErrValidation, KindValidation},
	{ErrTopicLocked, KindTopicLocked},
	{context.Canceled, KindCanceled},
}

// KindOf classifies err. Unknown errors (and nil) report KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// UserMessage returns a short human-readable summary for a kind, suitable for
// showing to end users in place of upstream error text.
func UserMessage(k Kind) string {
	switch k {
	case KindUnauthorized:
		return "Sign in to continue."
	case KindNotFound:
		return "Not found."
	case KindAPIKeyMissing:
		return "Add your API key in your profile to generate content."
	case KindUpstreamQuotaExceeded:
		return "The AI service is busy or rejected your key. Try again later."
	case KindUpstreamTimeout:
		return "The AI service took too long to respond. Try again later."
	case KindUpstream:
		return "The AI service failed. Try again later."
	case KindMalformedResponse:
		return "The AI service returned content we could not use. Try again."
	case KindSelfReference:
		return "A topic cannot be its own prerequisite."
	case KindCrossSubject:
		return "Topics must belong to the same subject."
	case KindCycleDetected:
		return "That prerequisite would create a cycle."
	case KindValidation:
		return "The request is invalid."
	case KindTopicLocked:
		return "Complete the prerequisites of this topic first."
	case KindCanceled:
		return "The request was canceled."
	default:
		return "Something went wrong."
	}
}

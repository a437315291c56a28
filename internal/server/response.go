package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnify/learnify/internal/apperrors"
)

// statusClientClosedRequest reports a request the client abandoned.
const statusClientClosedRequest = 499

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(k apperrors.Kind) int {
	switch k {
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindValidation, apperrors.KindSelfReference:
		return http.StatusBadRequest
	case apperrors.KindCrossSubject, apperrors.KindCycleDetected, apperrors.KindTopicLocked:
		return http.StatusConflict
	case apperrors.KindAPIKeyMissing:
		return http.StatusPreconditionFailed
	case apperrors.KindUpstreamQuotaExceeded:
		return http.StatusTooManyRequests
	case apperrors.KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case apperrors.KindMalformedResponse, apperrors.KindUpstream:
		return http.StatusBadGateway
	case apperrors.KindCanceled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Only the stable user message is
// sent; the underlying error is logged.
func (s *Server) respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", c.FullPath(), "kind", string(kind), "error", err)
	}
	c.AbortWithStatusJSON(status, errorEnvelope{
		Error: apiError{Code: string(kind), Message: apperrors.UserMessage(kind)},
	})
}

// badRequest reports an unparsable request body.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorEnvelope{
		Error: apiError{Code: string(apperrors.KindValidation), Message: msg},
	})
}

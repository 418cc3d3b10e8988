package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/jobboard/internal/authz"
	"github.com/geocoder89/jobboard/internal/domain/user"
	"github.com/geocoder89/jobboard/internal/http/middlewares"
	"github.com/geocoder89/jobboard/internal/service"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondServiceError maps a service error onto the error envelope.
// Anything unrecognised is answered as an internal error.
func RespondServiceError(ctx *gin.Context, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		fields := make([]FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, FieldError{
				Field:   f.Field,
				Rule:    f.Rule,
				Param:   f.Param,
				Message: validationMessage(f.Rule, f.Param),
			})
		}
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": fields})
	case errors.Is(err, authz.ErrUnauthenticated):
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		RespondForbidden(ctx, "You are not allowed to perform this action")
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
	case errors.Is(err, user.ErrDuplicateEmail):
		RespondConflict(ctx, "email_taken", "Email is already in use.")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, service.ErrConflict):
		RespondConflict(ctx, "conflict", "The request conflicts with the current state of the resource")
	default:
		RespondInternal(ctx, "Something went wrong")
	}
}

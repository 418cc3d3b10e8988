package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/geocoder89/jobboard/internal/actorctx"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("operation conflicts with current state")
	// ErrInternal hides persistence faults from callers; the cause is logged.
	ErrInternal = errors.New("internal failure")
)

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field+":"+f.Rule)
	}

	return "validation failed: " + strings.Join(names, ", ")
}

func internal(ctx context.Context, log *slog.Logger, op string, err error) error {
	attrs := []any{"op", op, "err", err}
	if id := actorctx.RequestIDFrom(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if id, ok := actorctx.UserIDFrom(ctx); ok {
		attrs = append(attrs, "actor_id", id)
	}

	log.ErrorContext(ctx, "persistence failure", attrs...)

	return ErrInternal
}

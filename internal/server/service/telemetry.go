package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"golf/internal/server/golf"
)

// IsDomainError reports whether err is a caller mistake rather than an
// infrastructure failure
func IsDomainError(err error) bool {
	var verr *golf.ValidationError
	var ferr *golf.FormatError
	return errors.As(err, &verr) || errors.As(err, &ferr) || errors.Is(err, ErrInstanceNotFound) ||
		errors.Is(err, ErrSubmissionNotFound)
}

// withTelemetry wraps a service operation with a span, metrics, logging and
// panic recovery
func withTelemetry[T any](
	s *Service,
	ctx context.Context,
	operation string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operation, trace.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("identifier", identifier),
	))
	defer span.End()

	start := time.Now()
	outcome := "ok"
	defer func() {
		s.metrics.observe(operation, outcome, time.Since(start))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operation, r)
			outcome = "error"
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				"operation", operation,
				"identifier", identifier,
				"error", err,
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var zero T
			result = zero
		}
	}()

	s.logger.DebugContext(ctx, "Operation triggered", "operation", operation, "identifier", identifier)

	result, err = op(ctx)
	switch {
	case err == nil:
	case IsDomainError(err):
		outcome = "rejected"
		s.logger.InfoContext(ctx, "Operation rejected",
			"operation", operation,
			"identifier", identifier,
			"reason", err.Error(),
		)
		span.SetAttributes(attribute.String("rejection", err.Error()))
	default:
		outcome = "error"
		err = fmt.Errorf("%s: %w", operation, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			"operation", operation,
			"identifier", identifier,
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

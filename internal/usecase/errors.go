package usecase

import (
	"errors"

	"go-maids-backend/internal/domain"
	"go-maids-backend/pkg/apperror"
)

// toAppError translates domain errors into HTTP-facing ones. Already
// translated errors pass through untouched.
func toAppError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound("Resource not found")
	case errors.Is(err, domain.ErrValidation):
		return apperror.BadRequest(err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		return apperror.Forbidden(err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperror.Conflict(err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		return apperror.Conflict("The record was modified by another request, please retry")
	default:
		return apperror.Internal(err)
	}
}

// Package validator adapts the shared go-playground validator to echo.Validator.
package validator

import (
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/validation"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New returns an echo validator backed by the process-wide rule set.
func New() *CustomValidator {
	return &CustomValidator{validate: validation.Default()}
}

// Validate reports failures as ErrValidationFailed with per-field details.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(validation.Describe(err))
	}

	return nil
}

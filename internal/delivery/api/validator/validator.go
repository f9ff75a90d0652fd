// Package validator adapts go-playground/validator and mold to echo.Validator.
package validator

import (
	"context"
	"fmt"
	"strings"

	domainerrors "authgate/internal/domain/errors"

	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// RequestValidator normalizes a bound request with its `mod` tags, then
// checks its `validate` tags.
type RequestValidator struct {
	validate *validator.Validate
	conform  *mold.Transformer
}

// New builds a RequestValidator.
func New() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		conform:  modifiers.New(),
	}
}

// Validate implements echo.Validator. i must be a pointer to a struct.
func (v *RequestValidator) Validate(i any) error {
	if err := v.conform.Struct(context.Background(), i); err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("malformed request"), err.Error())
	}

	if err := v.validate.Struct(i); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return domainerrors.ErrValidationFailed.WithDetails(describe(fieldErrs))
		}

		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	return nil
}

func describe(fieldErrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", strings.ToLower(fe.Field()), fe.Tag()))
	}

	return strings.Join(parts, "; ")
}

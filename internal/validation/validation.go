// Package validation holds the shared go-playground validator and its custom rules.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// BcryptMaxBytes is the longest input bcrypt accepts.
const BcryptMaxBytes = 72

var (
	once     sync.Once
	instance *validator.Validate
)

// Default returns the process-wide validator with the custom tags registered.
func Default() *validator.Validate {
	once.Do(func() {
		instance = New()
	})

	return instance
}

// New builds a validator that reports JSON field names and knows the bcryptmax tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}

		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= BcryptMaxBytes
	})

	return v
}

// Describe flattens validation failures into "field: rule" pairs.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+": "+describeTag(fe))
	}

	return strings.Join(parts, "; ")
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "bcryptmax":
		return "must be at most 72 bytes"
	default:
		return "failed " + fe.Tag()
	}
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}

	return ok
}

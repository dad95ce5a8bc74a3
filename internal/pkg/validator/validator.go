package validator

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance to avoid creating multiple instances
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Get returns the shared validator instance
func Get() *validator.Validate {
	return validate
}

// Struct validates s and flattens field failures into a field → rule map
func Struct(s interface{}) (map[string]any, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return details, err
}

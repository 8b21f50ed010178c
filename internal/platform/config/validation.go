package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator names fields by their koanf key, so problems read the same
// way the setting is written in yaml or as an APP_ variable.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return snake(f.Name)
		}

		return name
	})

	return v
}

// ValidationError lists every invalid setting, one problem per entry.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n  " + strings.Join(e.Problems, "\n  ")
}

// Validate reports every invalid field at once as a *ValidationError.
// Callers refuse to start on error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}

	return &ValidationError{Problems: problems}
}

// describe turns one failed rule into a sentence about the koanf key.
func describe(fe validator.FieldError) string {
	key := keyPath(fe.Namespace())
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		field, value, _ := strings.Cut(param, " ")
		return fmt.Sprintf("%s is required when %s is %s", key, snake(field), value)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", key, snake(param))
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", key, snake(param))
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, param)
	case "url":
		return key + " must be a valid URL"
	case "startswith":
		return fmt.Sprintf("%s must start with %q", key, param)
	default:
		return fmt.Sprintf("%s failed rule %q", key, fe.Tag())
	}
}

// keyPath drops the root struct from a namespace: "Config.sync.page_size"
// becomes "sync.page_size".
func keyPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}

// snake converts a Go field name to its koanf spelling, "InitialInterval"
// to "initial_interval".
func snake(name string) string {
	var b strings.Builder

	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}

			r = unicode.ToLower(r)
		}

		b.WriteRune(r)
	}

	return b.String()
}

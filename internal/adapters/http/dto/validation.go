package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// maxQuoteIDLength bounds ids accepted in paths.
const maxQuoteIDLength = 128

var (
	// ErrValidation wraps validator failures on a bound request.
	ErrValidation = errors.New("validation failed")

	// ErrBinding wraps JSON, query or path decoding failures.
	ErrBinding = errors.New("binding failed")
)

var validate = newValidator()

// newValidator names fields after the tag they were bound from, so error
// keys match what the client sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "form", "uri"} {
			name, _, _ := strings.Cut(f.Tag.Get(key), ",")

			switch name {
			case "-":
				return ""
			case "":
				continue
			default:
				return name
			}
		}

		return f.Name
	})

	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("quoteid", func(fl validator.FieldLevel) bool {
		return isQuoteID(fl.Field().String())
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// isQuoteID accepts printable ids without whitespace, up to maxQuoteIDLength
// bytes. Seeded, legacy and uuid ids all qualify.
func isQuoteID(id string) bool {
	if id == "" || len(id) > maxQuoteIDLength {
		return false
	}

	return strings.IndexFunc(id, func(r rune) bool {
		return unicode.IsSpace(r) || !unicode.IsPrint(r)
	}) < 0
}

// Validate checks v against its validate tags.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	return bind(c.ShouldBindJSON, v)
}

// BindQueryAndValidate decodes the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	return bind(c.ShouldBindQuery, v)
}

// BindURIAndValidate decodes path parameters into v and validates it.
func BindURIAndValidate(c *gin.Context, v any) error {
	return bind(c.ShouldBindUri, v)
}

func bind(decode func(any) error, v any) error {
	if err := decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// IsValidationError reports whether err carries field-level failures.
func IsValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

// ValidationErrors maps each failing field to a client-facing message.
// Errors from anything but the validator yield an empty map.
func ValidationErrors(err error) map[string]string {
	out := map[string]string{}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return out
	}

	for _, fe := range fieldErrs {
		out[fe.Field()] = describe(fe)
	}

	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "notblank":
		return "must not be blank"
	case "quoteid":
		return "must be a quote id"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return bound("at least", fe.Param(), fe.Kind())
	case "max":
		return bound("at most", fe.Param(), fe.Kind())
	default:
		return "failed validation: " + fe.Tag()
	}
}

// bound phrases a min or max rule; string limits count characters.
func bound(cmp, param string, kind reflect.Kind) string {
	if kind == reflect.String {
		return "must be " + cmp + " " + param + " characters"
	}

	return "must be " + cmp + " " + param
}

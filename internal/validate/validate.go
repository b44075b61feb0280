// Package validate checks user supplied scrape parameters.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Limits applied to scrape input.
const (
	MaxKeywords    = 500
	MaxDelay       = 30.0
	MaxContactsCap = 5000
)

// ScrapeForm is the user input for one scrape run.
type ScrapeForm struct {
	City        string   `validate:"notblank,max=80"`
	Region      string   `validate:"max=80"`
	Keywords    []string `validate:"required,min=1,max=500,dive,notblank,max=200"`
	Delay       float64  `validate:"gte=0,lte=30"`
	Contacts    bool
	MaxContacts int `validate:"gte=0,lte=5000"`
	Dedup       bool
}

// Error is a validation failure with a message fit for end users.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate validates a struct with the default validator and returns *Error
// on failure.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return &Error{Message: "invalid request"}
		}
		return &Error{Field: fieldName(verrs[0]), Message: ErrorMessage(err)}
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message.
func ErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	field := fieldName(fe)

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s allows at most %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		name = fe.StructField()
	}
	// dive errors report "Keywords[3]"; keep the index
	base, idx, _ := strings.Cut(name, "[")
	out := toSnakeCase(base)
	if idx != "" {
		out += "[" + idx
	}
	return out
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
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

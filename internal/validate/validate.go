package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Errors maps a JSON field name to a message that can be shown next to it.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks form inputs before anything reaches the network.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool { return IsPhone(fl.Field().String()) })
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool { return isLayout(fl.Field().String(), "2006-01-02") })
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool { return isLayout(fl.Field().String(), "15:04") })
	return &Validator{v: v}
}

// Struct validates s and returns Errors for field failures. Other errors (a
// nil or non-struct argument) are returned wrapped.
func (x *Validator) Struct(s any) error {
	err := x.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe)
		if _, seen := out[field]; !seen {
			out[field] = message(fe)
		}
	}
	return out
}

// fieldPath drops the struct name from the namespace: "PropertyInput.images[1]" -> "images[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "phone":
		return "Enter a valid phone number"
	case "date":
		return "Use the format YYYY-MM-DD"
	case "clock":
		return "Use the format HH:MM"
	case "url":
		return "Enter a valid URL"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return "Must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		return "Must be at most " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be " + fe.Param() + " or more"
	default:
		return "Invalid value"
	}
}

// IsPhone accepts local and international numbers: an optional leading +,
// digits with spaces, dashes or parentheses, and 10 to 15 digits in total.
func IsPhone(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}

func isLayout(s, layout string) bool {
	_, err := time.Parse(layout, strings.TrimSpace(s))
	return err == nil
}

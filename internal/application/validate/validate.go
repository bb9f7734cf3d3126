// Package validate turns go-playground/validator failures into form messages.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// Errors maps a field label to its first failure message.
type Errors map[string]string

// Error joins the messages in a stable order.
func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, m := range e {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// First returns one message for a single-line notice.
func (e Errors) First() string {
	msgs := make([]string, 0, len(e))
	for _, m := range e {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

// Struct validates s by its validate tags.
// PRE: s is a struct or pointer to struct
// POST: returns nil or Errors keyed by snake_case field name
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(Errors, len(ve))
	for _, fe := range ve {
		key := snake(fe.Field())
		if _, ok := out[key]; !ok {
			out[key] = fieldError(fe)
		}
	}
	return out
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a full URL (https://...)"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, strings.ToLower(label(fe.Param())))
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, strings.ToLower(label(fe.Param())))
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// snake converts "ContactEmail" to "contact_email".
func snake(field string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(field, "${1}_${2}"))
}

// label converts "ContactEmail" to "Contact email" and "FacebookURL" to "Facebook url".
func label(field string) string {
	words := strings.Split(snake(field), "_")
	s := strings.Join(words, " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

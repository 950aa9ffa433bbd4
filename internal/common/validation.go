package common

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s (got %v)", e.Field, e.Message, e.Value)
}

// Rule checks a field value and returns nil when it passes.
type Rule func(field string, value any) *FieldError

// Validator collects the field errors of one record.
type Validator struct {
	errs []FieldError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field applies rules to value, in order, keeping every failure.
func (v *Validator) Field(field string, value any, rules ...Rule) *Validator {
	for _, rule := range rules {
		if fe := rule(field, value); fe != nil {
			v.errs = append(v.errs, *fe)
		}
	}
	return v
}

// Error joins the failures under ErrValidation, or returns nil.
func (v *Validator) Error() error {
	if len(v.errs) == 0 {
		return nil
	}
	msgs := make([]string, len(v.errs))
	for i, fe := range v.errs {
		msgs[i] = fe.Error()
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func fail(field string, value any, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// Required rejects blank strings.
func Required(field string, value any) *FieldError {
	if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
		return nil
	}
	return fail(field, value, "is required")
}

// MaxLen bounds a string's length in runes.
func MaxLen(n int) Rule {
	return func(field string, value any) *FieldError {
		if s, _ := value.(string); utf8.RuneCountInString(s) > n {
			return fail(field, utf8.RuneCountInString(s), "must be at most %d characters", n)
		}
		return nil
	}
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// CurrencyCode accepts ISO 4217 style codes such as PEN.
func CurrencyCode(field string, value any) *FieldError {
	if s, _ := value.(string); currencyRe.MatchString(s) {
		return nil
	}
	return fail(field, value, "must be 3 uppercase letters")
}

func NonNegative(field string, value any) *FieldError {
	if f, ok := value.(float64); ok && f >= 0 {
		return nil
	}
	return fail(field, value, "must be a non-negative number")
}

// SourceURL accepts http(s) URLs and the file:// and pdf:// provenance schemes.
func SourceURL(field string, value any) *FieldError {
	s, _ := value.(string)
	u, err := url.Parse(strings.TrimSpace(s))
	if s == "" || err != nil {
		return fail(field, value, "must be a URL")
	}
	switch u.Scheme {
	case "http", "https", "file", "pdf":
		return nil
	}
	return fail(field, value, "must use http, https, file or pdf scheme")
}

func OneOf(allowed ...string) Rule {
	return func(field string, value any) *FieldError {
		s, _ := value.(string)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return fail(field, value, "must be one of %s", strings.Join(allowed, ", "))
	}
}

// Holds fails with msg unless ok.
func Holds(ok bool, msg string) Rule {
	return func(field string, value any) *FieldError {
		if ok {
			return nil
		}
		return fail(field, value, "%s", msg)
	}
}

// Package validation checks request input before a resource handler runs.
//
// Two rule sets exist. Rules inspect decoded JSON bodies field by field, in
// declaration order, using validator tags. FileRules inspect an uploaded file's
// presence, declared MIME type and byte length. Both report the first failure
// as an *Error, which the api layer renders as a 400 envelope.
package validation

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error reports the first input field that failed validation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Rule checks a single string field of a request body.
type Rule struct {
	Field string
	// Tag is a validator tag expression, e.g. "required" or "required,max=200".
	Tag     string
	Message string
	// Trim strips surrounding whitespace before the tag is evaluated.
	Trim bool
}

// Rules is an ordered rule set. The first failing rule wins.
type Rules []Rule

var validate = validator.New()

// RequiredString declares a field that must be a non-empty string.
func RequiredString(field, message string) Rule {
	if message == "" {
		message = defaultMessage(field)
	}
	return Rule{Field: field, Tag: "required", Message: message}
}

// RequiredTrimmed is RequiredString with whitespace-only values rejected.
func RequiredTrimmed(field, message string) Rule {
	r := RequiredString(field, message)
	r.Trim = true
	return r
}

// Check validates body against the rules and returns it unchanged on success.
// A missing field or a non-string value fails its rule.
func (rs Rules) Check(body map[string]any) (map[string]any, error) {
	for _, rule := range rs {
		raw, ok := body[rule.Field]
		s, isString := raw.(string)
		if !ok || !isString {
			return nil, rule.fail()
		}
		if rule.Trim {
			s = strings.TrimSpace(s)
		}
		if err := validate.Var(s, rule.Tag); err != nil {
			return nil, rule.fail()
		}
	}
	return body, nil
}

func (r Rule) fail() *Error {
	return &Error{Field: r.Field, Message: r.Message}
}

// DecodeJSON parses a JSON object body.
func DecodeJSON(r io.Reader) (map[string]any, error) {
	var body map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Message: "Request body is required"}
		}
		return nil, &Error{Message: "Malformed JSON in request body"}
	}
	if body == nil {
		return nil, &Error{Message: "Request body must be a JSON object"}
	}
	return body, nil
}

// String returns the string value of field, or "" when absent.
func String(body map[string]any, field string) string {
	s, _ := body[field].(string)
	return s
}

func defaultMessage(field string) string {
	if field == "" {
		return "Field is required"
	}
	return strings.ToUpper(field[:1]) + field[1:] + " is required"
}

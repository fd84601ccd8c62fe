package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrFieldRequired = errors.New("is required")
	ErrNotNumber     = errors.New("must be a number")
)

// FieldError names the form field that failed the submit check.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Field labels as shown on the form.
const (
	FieldName     = "name"
	FieldDuration = "duration_days"
	FieldPrice    = "price"
)

// Matches what a browser number input accepts: "12", "-3", ".5", "007", "1.5e3".
var numberPattern = regexp.MustCompile(`^(-?)(\d*)(?:\.(\d+))?([eE][+-]?\d+)?$`)

// Input runs the form-level checks (every field required, numeric fields
// number-shaped) and returns the request body. Values are otherwise
// forwarded as typed; range and uniqueness checks belong to the backend.
func (f Fields) Input() (Input, error) {
	name := f.Name
	if strings.TrimSpace(name) == "" {
		return Input{}, &FieldError{Field: FieldName, Err: ErrFieldRequired}
	}
	days, err := numberField(FieldDuration, f.DurationDays)
	if err != nil {
		return Input{}, err
	}
	price, err := numberField(FieldPrice, f.Price)
	if err != nil {
		return Input{}, err
	}
	return Input{Name: name, DurationDays: days, Price: price}, nil
}

func numberField(field, value string) (json.Number, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &FieldError{Field: field, Err: ErrFieldRequired}
	}
	n, ok := normalizeNumber(value)
	if !ok {
		return "", &FieldError{Field: field, Err: ErrNotNumber}
	}
	return n, nil
}

// normalizeNumber rewrites number-input text into a valid JSON number literal.
func normalizeNumber(value string) (json.Number, bool) {
	m := numberPattern.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	sign, whole, frac, exp := m[1], m[2], m[3], m[4]
	if whole == "" && frac == "" {
		return "", false
	}
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	out := sign + whole
	if frac != "" {
		out += "." + frac
	}
	return json.Number(out + exp), true
}

// IsNumericRune reports whether r may be typed into a numeric field.
func IsNumericRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		return true
	}
	return false
}

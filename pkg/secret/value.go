package secret

import (
	"fmt"
	"strings"
)

// Redacted is printed in place of any secret value
const Redacted = "[redacted]"

// Value holds a string which must never be rendered in plain text.
// All of the formatting and encoding interfaces return Redacted, the
// underlying string is only available through Reveal.
type Value struct {
	v *string
}

// New wraps s as a secret
func New(s string) Value {
	return Value{v: &s}
}

// Reveal returns the plain text value
func (s Value) Reveal() string {
	if s.v == nil {
		return ""
	}

	return *s.v
}

// IsEmpty returns true when the value was never set or is the empty string
func (s Value) IsEmpty() bool {
	return s.Reveal() == ""
}

// Map applies fn to the plain text and returns the result as a new secret
func (s Value) Map(fn func(string) string) Value {
	return New(fn(s.Reveal()))
}

// Cut slices the value around the first instance of sep, both halves
// remain secret.
func (s Value) Cut(sep string) (before, after Value, found bool) {
	b, a, found := strings.Cut(s.Reveal(), sep)
	return New(b), New(a), found
}

func (s Value) String() string {
	if s.IsEmpty() {
		return ""
	}

	return Redacted
}

func (s Value) GoString() string {
	return fmt.Sprintf("secret.Value(%q)", s.String())
}

// Format ensures verbs such as %v, %+v, %q and %x never leak the value
func (s Value) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('#') {
			fmt.Fprint(f, s.GoString())
			return
		}
		fmt.Fprint(f, s.String())
	case 'q':
		fmt.Fprintf(f, "%q", s.String())
	default:
		fmt.Fprint(f, s.String())
	}
}

func (s Value) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Value) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.String())), nil
}

// Redact replaces every occurrence of the given secrets in text
func Redact(text string, values ...Value) string {
	for _, v := range values {
		if v.IsEmpty() {
			continue
		}

		text = strings.ReplaceAll(text, v.Reveal(), Redacted)
	}

	return text
}

// RedactedError hides secret values in the message of the wrapped error
type RedactedError struct {
	Err    error
	values []Value
}

// RedactError wraps err so its message never contains any of values, nil
// stays nil
func RedactError(err error, values ...Value) error {
	if err == nil {
		return nil
	}

	return &RedactedError{Err: err, values: values}
}

func (e *RedactedError) Error() string {
	return Redact(e.Err.Error(), e.values...)
}

func (e *RedactedError) Unwrap() error {
	return e.Err
}

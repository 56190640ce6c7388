package dialect

import (
	"errors"
	"fmt"
)

// ErrInvalidIdentifier is returned when a table or column name is empty or
// contains characters outside [A-Za-z0-9_].
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Escape validates identifier and wraps it in open and close.
// Values are always bound as parameters; identifiers are the only text
// interpolated into generated statements, so this is the injection boundary.
func Escape(identifier, open, close string) (string, error) {
	if !Valid(identifier) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}
	return open + identifier + close, nil
}

// Valid reports whether identifier is non-empty and only holds [A-Za-z0-9_].
func Valid(identifier string) bool {
	if identifier == "" {
		return false
	}
	for i := 0; i < len(identifier); i++ {
		c := identifier[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}

package wire

import (
	"errors"
	"fmt"
)

// ErrFormat marks wire input that is not a valid document.
var ErrFormat = errors.New("invalid wire format")

func formatErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// FormatError wraps err as a format error.
func FormatError(err error) error {
	if err == nil || errors.Is(err, ErrFormat) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFormat, err)
}

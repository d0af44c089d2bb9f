package graph

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Error is the reconstructed form of any error value: only the kind and the
// message survive a round trip.
type Error struct {
	Name    string
	Message string
}

func NewError(name, message string) *Error {
	if name == "" {
		name = DefaultErrorName
	}
	return &Error{Name: name, Message: message}
}

func (e *Error) Error() string {
	if e.Name == "" || e.Name == DefaultErrorName {
		return e.Message
	}
	return e.Name + ": " + e.Message
}

func (e *Error) ErrorName() string {
	return e.Name
}

// DefaultErrorName is the kind given to errors that do not name themselves.
const DefaultErrorName = "Error"

type named interface {
	ErrorName() string
}

// ErrorParts splits err into the kind and message carried on the wire.
func ErrorParts(err error) (name, message string) {
	name = DefaultErrorName
	if n, ok := err.(named); ok && n.ErrorName() != "" {
		name = n.ErrorName()
	}
	if e, ok := err.(*Error); ok {
		return name, e.Message
	}
	return name, err.Error()
}

// FormatDate renders an instant as RFC 3339 in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

var leadingFlags = regexp.MustCompile(`^\(\?([imsU]+)\)`)

// RegexpParts splits a compiled expression into its pattern and the letters
// of a leading flag group, if any.
func RegexpParts(re *regexp.Regexp) (source, flags string) {
	expr := re.String()
	m := leadingFlags.FindStringSubmatch(expr)
	if m == nil {
		return expr, ""
	}
	return expr[len(m[0]):], uniqueFlags(m[1])
}

// CompileRegexp rebuilds an expression from pattern and flag letters. Letters
// with no Go equivalent (g, y, u, d, v) are ignored.
func CompileRegexp(source, flags string) (*regexp.Regexp, error) {
	keep := uniqueFlags(flags)
	expr := source
	if keep != "" {
		expr = "(?" + keep + ")" + source
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	return re, nil
}

func uniqueFlags(flags string) string {
	var b strings.Builder
	for _, c := range flags {
		if strings.ContainsRune("imsU", c) && !strings.ContainsRune(b.String(), c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

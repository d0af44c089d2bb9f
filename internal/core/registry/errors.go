package registry

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownClass = errors.New("unknown class")
	ErrInvalidName  = errors.New("invalid class name")
	ErrInvalidType  = errors.New("invalid class type")
)

// UnknownClassError reports a type tag that has no registered type.
type UnknownClassError struct {
	Name string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("cannot find type for class name <%s>", e.Name)
}

func (e *UnknownClassError) Is(target error) bool {
	return target == ErrUnknownClass
}

package encoding

import "reflect"

var defaultSerializer = New()

// Default returns the process-wide serializer behind the package functions.
func Default() *Serializer {
	return defaultSerializer
}

func RegisterClass(name string, prototype any) error {
	return defaultSerializer.RegisterClass(name, prototype)
}

func GetConstructorForClass(name string) (reflect.Type, bool) {
	return defaultSerializer.ConstructorFor(name)
}

func GetClassNameFor(v any) (string, bool) {
	return defaultSerializer.ClassNameFor(v)
}

func Stringify(v any, indent ...string) (string, error) {
	return defaultSerializer.Stringify(v, indent...)
}

func Parse(text string) (any, error) {
	return defaultSerializer.Parse(text)
}

func ParseAs[T any](text string) (T, error) {
	return ParseWith[T](defaultSerializer, text)
}

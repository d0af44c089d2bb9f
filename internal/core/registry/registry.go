package registry

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"sync"
	"time"
)

// Reserved names are the built-in type tags; they cannot be registered.
var Reserved = []string{"Date", "RegExp", "Error"}

// Registry maps class names to Go struct types and back.
//
// Lookups by instance follow registration order: the first registered type
// that the instance's struct type is, or embeds, wins. Results are cached per
// concrete type until the next Register call.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	order  []string
	byType map[reflect.Type]match
}

type match struct {
	name string
	ok   bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]match),
	}
}

// Register stores name for the struct type described by prototype, replacing
// any earlier type under the same name. The prototype may be a struct value, a
// pointer to a struct (a typed nil is fine) or a reflect.Type of either.
// Types encoded as built-ins, time.Time, regexp.Regexp and error
// implementations, are rejected.
func (r *Registry) Register(name string, prototype any) error {
	if name == "" || slices.Contains(Reserved, name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	t, err := structType(prototype)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = t
	clear(r.byType)
	r.mu.Unlock()
	return nil
}

// ConstructorFor returns the struct type registered under name.
func (r *Registry) ConstructorFor(name string) (reflect.Type, bool) {
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	return t, ok
}

// New allocates a zero instance of the type registered under name and
// returns a pointer to it. No initialization logic runs.
func (r *Registry) New(name string) (reflect.Value, error) {
	t, ok := r.ConstructorFor(name)
	if !ok {
		return reflect.Value{}, &UnknownClassError{Name: name}
	}
	return reflect.New(t), nil
}

// NameFor returns the class name for v, which may be a struct or a pointer to one.
func (r *Registry) NameFor(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	return r.NameForType(reflect.TypeOf(v))
}

// NameForType is NameFor on a reflect.Type.
func (r *Registry) NameForType(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return "", false
	}

	r.mu.RLock()
	m, cached := r.byType[t]
	r.mu.RUnlock()
	if cached {
		return m.name, m.ok
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m = match{}
	for _, name := range r.order {
		if isInstanceOf(t, r.byName[name]) {
			m = match{name: name, ok: true}
			break
		}
	}
	r.byType[t] = m
	return m.name, m.ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func structType(prototype any) (reflect.Type, error) {
	var t reflect.Type
	switch p := prototype.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil prototype", ErrInvalidType)
	case reflect.Type:
		t = p
	default:
		t = reflect.TypeOf(p)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidType, t)
	}
	if builtIn(t) {
		return nil, fmt.Errorf("%w: %s is encoded as a built-in", ErrInvalidType, t)
	}
	return t, nil
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	regexpType = reflect.TypeOf(regexp.Regexp{})
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// builtIn reports whether values of struct type t are always tagged as Date,
// RegExp or Error, so a class name could never apply to them.
func builtIn(t reflect.Type) bool {
	return t == timeType || t == regexpType ||
		t.Implements(errorType) || reflect.PointerTo(t).Implements(errorType)
}

// isInstanceOf reports whether t is target or embeds it, directly or through
// other embedded structs.
func isInstanceOf(t, target reflect.Type) bool {
	return embeds(t, target, make(map[reflect.Type]bool))
}

func embeds(t, target reflect.Type, visited map[reflect.Type]bool) bool {
	if t == target {
		return true
	}
	if visited[t] {
		return false
	}
	visited[t] = true
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && embeds(ft, target, visited) {
			return true
		}
	}
	return false
}

package decoder

import (
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/zeusync/jetgraph/internal/core/graph"
	"github.com/zeusync/jetgraph/internal/core/observability/log"
	"github.com/zeusync/jetgraph/internal/core/registry"
	"github.com/zeusync/jetgraph/internal/core/wire"
)

const (
	pending = iota
	assigning
	assigned
)

// instance is a registered class allocated during resolution whose fields
// are assigned once every table entry exists.
type instance struct {
	name   string
	ptr    reflect.Value
	fields map[string]any
	raw    map[string]any
	state  int
}

type convKey struct {
	id graph.Identity
	to reflect.Type
}

type state struct {
	dec  *Decoder
	main any

	raw       []any
	values    []any
	tableInst []*instance

	instances []*instance
	byPtr     map[any]*instance
	memo      map[convKey]reflect.Value

	// refresh re-copies instances held by value, and re-stores the map
	// entries holding them, once every Wakeup has run. Inner copies are
	// recorded before the copies of their owners.
	refresh []func()
}

func newState(d *Decoder, env *wire.Envelope) *state {
	return &state{
		dec:       d,
		main:      env.Main,
		raw:       env.Duplicates,
		values:    make([]any, len(env.Duplicates)),
		tableInst: make([]*instance, len(env.Duplicates)),
		byPtr:     make(map[any]*instance),
		memo:      make(map[convKey]reflect.Value),
	}
}

// run allocates every table entry first so references can be bound before
// any content is read, then fills the entries and resolves main.
func (s *state) run() (any, error) {
	for i, entry := range s.raw {
		v, err := s.placeholder(i, entry)
		if err != nil {
			return nil, fmt.Errorf("duplicates[%d]: %w", i, err)
		}
		s.values[i] = v
	}
	for i, entry := range s.raw {
		if err := s.fill(i, entry); err != nil {
			return nil, fmt.Errorf("duplicates[%d]: %w", i, err)
		}
	}
	return s.resolve(s.main, 0)
}

func (s *state) placeholder(i int, entry any) (any, error) {
	switch x := entry.(type) {
	case []any:
		return make([]any, len(x)), nil
	case map[string]any:
		if _, isRef, _ := wire.RefIndex(x); isRef {
			return nil, fmt.Errorf("%w: table entry is a reference", wire.ErrFormat)
		}
		name, tagged, err := wire.ClassName(x)
		if err != nil {
			return nil, err
		}
		if !tagged {
			return make(map[string]any, len(x)), nil
		}
		if wire.IsBuiltInTag(name) {
			return builtIn(name, x)
		}
		inst, err := s.allocate(name, x)
		if err != nil {
			return nil, err
		}
		s.tableInst[i] = inst
		return inst.ptr.Interface(), nil
	default:
		return s.resolve(entry, 0)
	}
}

func (s *state) fill(i int, entry any) error {
	var err error
	switch v := s.values[i].(type) {
	case []any:
		for j, item := range entry.([]any) {
			if v[j], err = s.resolve(item, 1); err != nil {
				return err
			}
		}
	case map[string]any:
		for k, item := range entry.(map[string]any) {
			if v[k], err = s.resolve(item, 1); err != nil {
				return err
			}
		}
	default:
		if inst := s.tableInst[i]; inst != nil {
			inst.fields, err = s.resolveFields(inst.raw, 1)
		}
	}
	return err
}

func (s *state) resolve(node any, depth int) (any, error) {
	if depth > s.dec.maxDepth {
		return nil, graph.ErrMaxDepth
	}

	switch x := node.(type) {
	case nil, bool, string:
		return x, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			v, err := s.resolve(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]any:
		idx, isRef, err := wire.RefIndex(x)
		if err != nil {
			return nil, err
		}
		if isRef {
			if idx >= len(s.values) {
				return nil, fmt.Errorf("%w: reference %d out of range [0,%d)", wire.ErrFormat, idx, len(s.values))
			}
			return s.values[idx], nil
		}

		name, tagged, err := wire.ClassName(x)
		if err != nil {
			return nil, err
		}
		if tagged {
			if wire.IsBuiltInTag(name) {
				return builtIn(name, x)
			}
			inst, err := s.allocate(name, x)
			if err != nil {
				return nil, err
			}
			if inst.fields, err = s.resolveFields(x, depth+1); err != nil {
				return nil, err
			}
			return inst.ptr.Interface(), nil
		}

		out := make(map[string]any, len(x))
		for k, item := range x {
			v, err := s.resolve(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		if f, ok := wire.AsFloat(x); ok {
			return f, nil
		}
		return nil, fmt.Errorf("%w: unexpected %T in document", wire.ErrFormat, node)
	}
}

func (s *state) resolveFields(obj map[string]any, depth int) (map[string]any, error) {
	fields := make(map[string]any, len(obj))
	for k, item := range obj {
		if k == wire.KeyClass {
			continue
		}
		v, err := s.resolve(item, depth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		fields[k] = v
	}
	return fields, nil
}

// allocate creates a zero instance of a registered class. No constructor
// logic runs; fields are assigned later.
func (s *state) allocate(name string, raw map[string]any) (*instance, error) {
	t, ok := s.dec.reg.ConstructorFor(name)
	if !ok {
		return nil, &registry.UnknownClassError{Name: name}
	}
	inst := &instance{name: name, ptr: reflect.New(t), raw: raw}
	s.instances = append(s.instances, inst)
	s.byPtr[inst.ptr.Interface()] = inst
	return inst, nil
}

func builtIn(name string, obj map[string]any) (any, error) {
	switch name {
	case wire.TagDate:
		switch v := obj["value"].(type) {
		case string:
			t, err := graph.ParseDate(v)
			if err != nil {
				return nil, wire.FormatError(err)
			}
			return t, nil
		default:
			ms, ok := wire.AsInt64(v)
			if !ok {
				return nil, fmt.Errorf("%w: Date value is %T", wire.ErrFormat, v)
			}
			return time.UnixMilli(ms).UTC(), nil
		}
	case wire.TagRegExp:
		source, ok := obj["source"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: RegExp without source", wire.ErrFormat)
		}
		flags, _ := obj["flags"].(string)
		re, err := graph.CompileRegexp(source, flags)
		if err != nil {
			return nil, wire.FormatError(err)
		}
		return re, nil
	default:
		errName, _ := obj["name"].(string)
		message, _ := obj["message"].(string)
		return graph.NewError(errName, message), nil
	}
}

// complete assigns the fields of every instance in discovery order.
func (s *state) complete() error {
	for _, inst := range s.instances {
		if err := s.assign(inst); err != nil {
			return err
		}
	}
	return nil
}

func (s *state) assign(inst *instance) error {
	if inst.state != pending {
		return nil
	}
	inst.state = assigning

	elem := inst.ptr.Elem()
	t := elem.Type()
	for _, f := range graph.FieldsOf(t) {
		v, ok := inst.fields[f.Name]
		if !ok {
			continue
		}
		if err := s.into(elem.FieldByIndex(f.Index), v, inst.raw[f.Name], 1); err != nil {
			return fmt.Errorf("%s.%s: %w", inst.name, f.Name, err)
		}
	}
	if s.dec.log.GetLevel() == log.LevelDebug {
		keys := make([]string, 0, len(inst.fields))
		for k := range inst.fields {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if _, known := graph.FieldByName(t, k); !known {
				s.dec.log.Debug("ignoring unknown field", log.String("class", inst.name), log.String("field", k))
			}
		}
	}

	inst.state = assigned
	return nil
}

// copied records that dst holds the instance by value.
func (s *state) copied(inst *instance, dst reflect.Value) {
	s.refresh = append(s.refresh, func() { dst.Set(inst.ptr.Elem()) })
}

// wake calls Wakeup on every instance once, in discovery order, then brings
// the copies held by value up to date with what the hooks did.
func (s *state) wake() error {
	for _, inst := range s.instances {
		w, ok := inst.ptr.Interface().(graph.Waker)
		if !ok {
			continue
		}
		if err := w.Wakeup(); err != nil {
			return fmt.Errorf("wakeup %s: %w", inst.name, err)
		}
	}
	for _, fn := range s.refresh {
		fn()
	}
	s.dec.log.Debug("graph decoded",
		log.Int("instances", len(s.instances)),
		log.Int("duplicates", len(s.raw)),
	)
	return nil
}

// deref follows a reference marker to the raw table entry.
func (s *state) deref(raw any) any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	if idx, isRef, err := wire.RefIndex(obj); isRef && err == nil && idx < len(s.raw) {
		return s.raw[idx]
	}
	return raw
}

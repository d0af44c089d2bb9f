package decoder

import (
	"fmt"
	"reflect"

	"github.com/zeusync/jetgraph/internal/core/graph"
	"github.com/zeusync/jetgraph/internal/core/observability/log"
	"github.com/zeusync/jetgraph/internal/core/wire"
)

// into stores the resolved value val in dst, converting records and arrays
// into the Go types dst asks for. raw is the wire node val came from and is
// used for integer precision. Conversions of the same record or array into
// the same pointer, map or slice type are shared, so aliasing survives.
func (s *state) into(dst reflect.Value, val, raw any, depth int) error {
	if depth > s.dec.maxDepth {
		return graph.ErrMaxDepth
	}
	t := dst.Type()
	if val == nil {
		dst.Set(reflect.Zero(t))
		return nil
	}

	src := reflect.ValueOf(val)
	if src.Type().AssignableTo(t) {
		dst.Set(src)
		return nil
	}
	if ge, ok := val.(*graph.Error); ok && implementsError(t) {
		s.dec.log.Debug("dropping error payload",
			log.String("type", t.String()),
			log.String("name", ge.ErrorName()),
		)
		dst.Set(reflect.Zero(t))
		return nil
	}
	raw = s.deref(raw)

	switch t.Kind() {
	case reflect.Func:
		return nil
	case reflect.Pointer:
		key, shared := s.key(src, t)
		if shared {
			if done, ok := s.memo[key]; ok {
				dst.Set(done)
				return nil
			}
		}
		p := reflect.New(t.Elem())
		if shared {
			s.memo[key] = p
		}
		if err := s.into(p.Elem(), val, raw, depth+1); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	case reflect.Struct:
		if src.Kind() == reflect.Pointer && src.Type().Elem() == t {
			inst := s.byPtr[val]
			if inst != nil {
				if err := s.assign(inst); err != nil {
					return err
				}
			}
			dst.Set(src.Elem())
			if inst != nil {
				s.copied(inst, dst)
			}
			return nil
		}
		obj, ok := val.(map[string]any)
		if !ok {
			return mismatch(val, t)
		}
		rawObj, _ := raw.(map[string]any)
		for _, f := range graph.FieldsOf(t) {
			v, present := obj[f.Name]
			if !present {
				continue
			}
			if err := s.into(dst.FieldByIndex(f.Index), v, rawObj[f.Name], depth+1); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
		}
		return nil
	case reflect.Map:
		obj, ok := val.(map[string]any)
		if !ok {
			return mismatch(val, t)
		}
		key, shared := s.key(src, t)
		if shared {
			if done, ok := s.memo[key]; ok {
				dst.Set(done)
				return nil
			}
		}
		m := reflect.MakeMapWithSize(t, len(obj))
		if shared {
			s.memo[key] = m
		}
		rawObj, _ := raw.(map[string]any)
		for k, v := range obj {
			kv, err := graph.ParseKey(k, t.Key())
			if err != nil {
				return fmt.Errorf("%w: key %q for %s: %w", ErrTypeMismatch, k, t, err)
			}
			ev := reflect.New(t.Elem()).Elem()
			before := len(s.refresh)
			if err = s.into(ev, v, rawObj[k], depth+1); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			m.SetMapIndex(kv, ev)
			if len(s.refresh) > before {
				s.refresh = append(s.refresh, func() { m.SetMapIndex(kv, ev) })
			}
		}
		dst.Set(m)
		return nil
	case reflect.Slice:
		items, ok := val.([]any)
		if !ok {
			return mismatch(val, t)
		}
		key, shared := s.key(src, t)
		if shared {
			if done, ok := s.memo[key]; ok {
				dst.Set(done)
				return nil
			}
		}
		sl := reflect.MakeSlice(t, len(items), len(items))
		if shared {
			s.memo[key] = sl
		}
		rawItems, _ := raw.([]any)
		for i, item := range items {
			if err := s.into(sl.Index(i), item, at(rawItems, i), depth+1); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(sl)
		return nil
	case reflect.Array:
		items, ok := val.([]any)
		if !ok || len(items) > t.Len() {
			return mismatch(val, t)
		}
		dst.Set(reflect.Zero(t))
		rawItems, _ := raw.([]any)
		for i, item := range items {
			if err := s.into(dst.Index(i), item, at(rawItems, i), depth+1); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case reflect.Bool:
		b, ok := val.(bool)
		if !ok {
			return mismatch(val, t)
		}
		dst.SetBool(b)
		return nil
	case reflect.String:
		str, ok := val.(string)
		if !ok {
			return mismatch(val, t)
		}
		dst.SetString(str)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := wire.AsInt64(numberSource(val, raw))
		if !ok || dst.OverflowInt(n) {
			return mismatch(val, t)
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := wire.AsUint64(numberSource(val, raw))
		if !ok || dst.OverflowUint(n) {
			return mismatch(val, t)
		}
		dst.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, ok := wire.AsFloat(val)
		if !ok {
			return mismatch(val, t)
		}
		dst.SetFloat(f)
		return nil
	}
	return mismatch(val, t)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// implementsError reports whether t or a pointer to it is an error type.
// Such targets cannot hold the Error built-in, which only keeps name and
// message, so they are left zero.
func implementsError(t reflect.Type) bool {
	if t.Implements(errorType) {
		return true
	}
	return t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(errorType)
}

func (s *state) key(src reflect.Value, to reflect.Type) (convKey, bool) {
	id, ok := graph.IdentityOf(src)
	return convKey{id: id, to: to}, ok
}

func numberSource(val, raw any) any {
	if wire.IsNumber(raw) {
		return raw
	}
	return val
}

func at(items []any, i int) any {
	if i < len(items) {
		return items[i]
	}
	return nil
}

func mismatch(val any, t reflect.Type) error {
	return fmt.Errorf("%w: cannot use %T as %s", ErrTypeMismatch, val, t)
}

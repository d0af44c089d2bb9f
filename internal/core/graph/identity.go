package graph

import "reflect"

// Identity is the hashable reference identity of a node.
type Identity struct {
	ptr uintptr
	len int
	typ reflect.Type
}

// IdentityOf returns the identity of v, which must already be classified.
// Values without reference semantics report false.
func IdentityOf(v reflect.Value) (Identity, bool) {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return Identity{}, false
		}
		return Identity{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Pointer:
		// Zero-size values may share one address.
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return Identity{}, false
		}
		return Identity{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Slice:
		if v.Len() == 0 || v.Type().Elem().Size() == 0 {
			return Identity{}, false
		}
		return Identity{ptr: v.Pointer(), len: v.Len(), typ: v.Type()}, true
	}
	return Identity{}, false
}

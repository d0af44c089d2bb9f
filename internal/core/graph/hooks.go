package graph

import "reflect"

// ToWirer lets a value replace itself with another value before encoding.
// Registered types keep their class tag; the projection becomes their
// payload and must be record-shaped.
type ToWirer interface {
	ToWire() (any, error)
}

// Waker is called once on every reconstructed instance of a registered type,
// after the whole graph has been rebuilt.
type Waker interface {
	Wakeup() error
}

var toWirerType = reflect.TypeOf((*ToWirer)(nil)).Elem()

// Project calls ToWire on v when v, or its address, implements ToWirer.
func Project(v reflect.Value) (any, bool, error) {
	if !v.IsValid() {
		return nil, false, nil
	}
	if v.Type().Implements(toWirerType) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return nil, false, nil
		}
		out, err := v.Interface().(ToWirer).ToWire()
		return out, true, err
	}
	if v.CanAddr() && v.Addr().Type().Implements(toWirerType) {
		out, err := v.Addr().Interface().(ToWirer).ToWire()
		return out, true, err
	}
	return nil, false, nil
}

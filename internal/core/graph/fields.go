package graph

import (
	"reflect"
	"strings"
	"sync"
)

// Field is an exported struct field as seen on the wire.
type Field struct {
	Name  string
	Index []int
	Type  reflect.Type
}

var fieldCache sync.Map // map[reflect.Type][]Field

// FieldsOf lists the own properties of struct type t in declaration order.
// Fields of embedded structs are promoted unless a shallower field already
// uses the name. A json tag renames a field, "-" hides it.
func FieldsOf(t reflect.Type) []Field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]Field)
	}

	var all []depthField
	collect(t, nil, 0, map[reflect.Type]bool{}, &all)

	best := make(map[string]int, len(all))
	for _, f := range all {
		if d, ok := best[f.Name]; !ok || f.depth < d {
			best[f.Name] = f.depth
		}
	}
	fields := make([]Field, 0, len(all))
	taken := make(map[string]bool, len(all))
	for _, f := range all {
		if f.depth != best[f.Name] || taken[f.Name] {
			continue
		}
		taken[f.Name] = true
		fields = append(fields, f.Field)
	}

	cached, _ := fieldCache.LoadOrStore(t, fields)
	return cached.([]Field)
}

type depthField struct {
	Field
	depth int
}

func collect(t reflect.Type, prefix []int, depth int, visiting map[reflect.Type]bool, out *[]depthField) {
	if visiting[t] {
		return
	}
	visiting[t] = true
	defer delete(visiting, t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, skip := tagName(sf)
		if skip {
			continue
		}
		index := append(append([]int(nil), prefix...), i)

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			collect(sf.Type, index, depth+1, visiting, out)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		*out = append(*out, depthField{
			Field: Field{Name: name, Index: index, Type: sf.Type},
			depth: depth,
		})
	}
}

func tagName(sf reflect.StructField) (name string, skip bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

// FieldByName finds the field with the given wire name.
func FieldByName(t reflect.Type, name string) (Field, bool) {
	for _, f := range FieldsOf(t) {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

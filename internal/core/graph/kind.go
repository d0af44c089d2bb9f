package graph

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"time"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindRecord // map
	KindStruct // struct or pointer to struct; an instance when registered
	KindDate
	KindRegex
	KindError
	KindCallable
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindArray:    "array",
	KindRecord:   "record",
	KindStruct:   "struct",
	KindDate:     "date",
	KindRegex:    "regexp",
	KindError:    "error",
	KindCallable: "callable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Composite reports whether values of this kind have children.
func (k Kind) Composite() bool {
	return k == KindArray || k == KindRecord || k == KindStruct
}

// BuiltIn reports whether the kind is one of the tagged built-ins.
func (k Kind) BuiltIn() bool {
	return k == KindDate || k == KindRegex || k == KindError
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	regexpType = reflect.TypeOf((*regexp.Regexp)(nil))
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// Classify strips interfaces and pointers to non-struct values from v and
// reports the kind of what remains. Nil checks come before anything else.
func Classify(v reflect.Value) (Kind, reflect.Value, error) {
	for {
		if !v.IsValid() {
			return KindNull, v, nil
		}
		switch v.Kind() {
		case reflect.Func:
			return KindCallable, v, nil
		case reflect.Interface:
			if v.IsNil() {
				return KindNull, reflect.Value{}, nil
			}
			v = v.Elem()
			continue
		case reflect.Pointer, reflect.Map, reflect.Slice:
			if v.IsNil() {
				return KindNull, reflect.Value{}, nil
			}
		}

		t := v.Type()
		switch {
		case t == timeType:
			return KindDate, v, nil
		case t == regexpType:
			return KindRegex, v, nil
		case t.Implements(errorType):
			return KindError, v, nil
		}

		switch v.Kind() {
		case reflect.Pointer:
			if t.Elem().Kind() == reflect.Struct && t.Elem() != timeType {
				return KindStruct, v, nil
			}
			v = v.Elem()
		case reflect.Struct:
			return KindStruct, v, nil
		case reflect.Map:
			if !validKey(t.Key()) {
				return KindNull, v, fmt.Errorf("%w: map key %s", ErrUnsupportedType, t.Key())
			}
			return KindRecord, v, nil
		case reflect.Slice, reflect.Array:
			return KindArray, v, nil
		case reflect.Bool:
			return KindBool, v, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64:
			return KindNumber, v, nil
		case reflect.String:
			return KindString, v, nil
		default:
			return KindNull, v, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
	}
}

func validKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// Entry is one map entry with its key rendered as a wire key.
type Entry struct {
	Key   string
	Value reflect.Value
}

// Entries returns the entries of map v sorted by wire key.
func Entries(v reflect.Value) []Entry {
	out := make([]Entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		out = append(out, Entry{Key: KeyString(iter.Key()), Value: iter.Value()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// KeyString renders a map key the way encoding/json does.
func KeyString(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	default:
		return strconv.FormatUint(k.Uint(), 10)
	}
}

// ParseKey converts a wire key back into a value of map key type t.
func ParseKey(s string, t reflect.Type) (reflect.Value, error) {
	k := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		k.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return k, err
		}
		k.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return k, err
		}
		k.SetUint(n)
	default:
		return k, fmt.Errorf("%w: map key %s", ErrUnsupportedType, t)
	}
	return k, nil
}

// Package wire defines the flat, tree-shaped form exchanged between the
// encoder and the decoder, and the codecs that turn it into bytes.
//
// A wire tree only contains nil, bool, numbers, strings, []any and
// map[string]any. Shared and cyclic nodes appear once in the duplicates
// table and are referenced by {"$ref": index} everywhere else.
package wire

const (
	KeyMain       = "main"
	KeyDuplicates = "duplicates"
	KeyRef        = "$ref"
	KeyClass      = "$className"

	TagDate   = "Date"
	TagRegExp = "RegExp"
	TagError  = "Error"
)

// Envelope is the top-level wire document.
type Envelope struct {
	Main       any
	Duplicates []any
}

// Tree returns the envelope as a plain wire object. The duplicates key is
// omitted when the table is empty.
func (e *Envelope) Tree() map[string]any {
	tree := map[string]any{KeyMain: e.Main}
	if len(e.Duplicates) > 0 {
		tree[KeyDuplicates] = e.Duplicates
	}
	return tree
}

// FromTree reads an envelope out of a decoded wire document.
func FromTree(doc any) (*Envelope, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, formatErrorf("document is %T, want object", doc)
	}
	main, ok := obj[KeyMain]
	if !ok {
		return nil, formatErrorf("missing %q field", KeyMain)
	}
	env := &Envelope{Main: main}
	if raw, present := obj[KeyDuplicates]; present && raw != nil {
		dups, ok := raw.([]any)
		if !ok {
			return nil, formatErrorf("%q is %T, want array", KeyDuplicates, raw)
		}
		env.Duplicates = dups
	}
	return env, nil
}

// Ref builds a reference marker.
func Ref(index int) map[string]any {
	return map[string]any{KeyRef: index}
}

// RefIndex reports whether obj is a reference marker and returns its index.
// A marker whose index is not a non-negative integer is a format error.
func RefIndex(obj map[string]any) (int, bool, error) {
	raw, ok := obj[KeyRef]
	if !ok {
		return 0, false, nil
	}
	n, ok := AsInt(raw)
	if !ok || n < 0 {
		return 0, true, formatErrorf("invalid reference %v", raw)
	}
	return n, true, nil
}

// ClassName returns the type tag of obj, if any.
func ClassName(obj map[string]any) (string, bool, error) {
	raw, ok := obj[KeyClass]
	if !ok {
		return "", false, nil
	}
	name, ok := raw.(string)
	if !ok {
		return "", true, formatErrorf("%q is %T, want string", KeyClass, raw)
	}
	return name, true, nil
}

// IsBuiltInTag reports whether name is one of the reserved built-in tags.
func IsBuiltInTag(name string) bool {
	return name == TagDate || name == TagRegExp || name == TagError
}

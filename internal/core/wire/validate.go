package wire

// Stats summarizes a validated envelope.
type Stats struct {
	Nodes      int
	Refs       int
	Tagged     int
	Duplicates int
}

// Validate checks an envelope without reconstructing it: markers must point
// into the table, tags must be strings and built-in records must carry their
// fields. Registered class names are not checked.
func Validate(env *Envelope) (Stats, error) {
	v := validator{tableLen: len(env.Duplicates)}
	v.stats.Duplicates = len(env.Duplicates)
	for i, entry := range env.Duplicates {
		if obj, ok := entry.(map[string]any); ok {
			if _, isRef, _ := RefIndex(obj); isRef {
				return v.stats, formatErrorf("duplicates[%d] is a reference", i)
			}
		}
		if err := v.check(entry); err != nil {
			return v.stats, err
		}
	}
	if err := v.check(env.Main); err != nil {
		return v.stats, err
	}
	return v.stats, nil
}

type validator struct {
	tableLen int
	stats    Stats
}

func (v *validator) check(node any) error {
	v.stats.Nodes++
	switch x := node.(type) {
	case []any:
		for _, item := range x {
			if err := v.check(item); err != nil {
				return err
			}
		}
	case map[string]any:
		idx, isRef, err := RefIndex(x)
		if err != nil {
			return err
		}
		if isRef {
			if idx >= v.tableLen {
				return formatErrorf("reference %d out of range [0,%d)", idx, v.tableLen)
			}
			v.stats.Refs++
			return nil
		}
		name, tagged, err := ClassName(x)
		if err != nil {
			return err
		}
		if tagged {
			v.stats.Tagged++
			if err := checkBuiltIn(name, x); err != nil {
				return err
			}
		}
		for k, item := range x {
			if k == KeyClass {
				continue
			}
			if err := v.check(item); err != nil {
				return err
			}
		}
	default:
		if node != nil && !IsNumber(node) {
			switch node.(type) {
			case bool, string:
			default:
				return formatErrorf("unexpected %T in document", node)
			}
		}
	}
	return nil
}

func checkBuiltIn(name string, obj map[string]any) error {
	var required []string
	switch name {
	case TagDate:
		required = []string{"value"}
	case TagRegExp:
		required = []string{"source", "flags"}
	case TagError:
		required = []string{"name", "message"}
	default:
		return nil
	}
	for _, key := range required {
		if _, ok := obj[key].(string); !ok {
			return formatErrorf("%s record needs string %q", name, key)
		}
	}
	return nil
}

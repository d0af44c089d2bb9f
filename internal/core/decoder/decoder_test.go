package decoder

import (
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/jetgraph/internal/core/graph"
	"github.com/zeusync/jetgraph/internal/core/registry"
	"github.com/zeusync/jetgraph/internal/core/wire"
)

type point struct {
	X, Y int
}

type record struct {
	Name   string
	Next   *record
	Tags   []string
	Scores map[string]int
	Pos    point
	Big    int64
	Small  uint8
	When   time.Time
	Fail   error
	Extra  any
	Hook   func()
}

var wakeups []string

type sensor struct {
	ID   string
	Peer *sensor
}

func (s *sensor) Wakeup() error {
	peer := "<nil>"
	if s.Peer != nil {
		peer = s.Peer.ID
	}
	wakeups = append(wakeups, s.ID+"->"+peer)
	return nil
}

type faulty struct{}

func (*faulty) Wakeup() error { return errors.New("not ready") }

func newDecoder(t *testing.T, classes map[string]any) *Decoder {
	t.Helper()
	reg := registry.New()
	for name, proto := range classes {
		require.NoError(t, reg.Register(name, proto))
	}
	return New(reg)
}

func samePtr(t *testing.T, a, b any) {
	t.Helper()
	assert.Equal(t, reflect.ValueOf(a).Pointer(), reflect.ValueOf(b).Pointer())
}

func TestDecode_PlainValues(t *testing.T) {
	out, err := New(nil).Decode(&wire.Envelope{Main: map[string]any{
		"a": []any{int64(1), "x", nil, true},
		"b": 2.5,
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{1.0, "x", nil, true}, "b": 2.5}, out)
}

func TestDecode_SelfReference(t *testing.T) {
	out, err := New(nil).Decode(&wire.Envelope{
		Main:       wire.Ref(0),
		Duplicates: []any{map[string]any{"number": int64(5), "x": wire.Ref(0)}},
	})
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, 5.0, m["number"])
	samePtr(t, m, m["x"])
}

func TestDecode_SharedEntries(t *testing.T) {
	out, err := New(nil).Decode(&wire.Envelope{
		Main: []any{wire.Ref(0), wire.Ref(1), map[string]any{"again": wire.Ref(0)}},
		Duplicates: []any{
			map[string]any{"list": wire.Ref(1)},
			[]any{"a", wire.Ref(0)},
		},
	})
	require.NoError(t, err)

	items := out.([]any)
	first := items[0].(map[string]any)
	list := items[1].([]any)
	samePtr(t, first, items[2].(map[string]any)["again"])
	samePtr(t, list, first["list"])
	samePtr(t, first, list[1])
}

func TestDecode_BuiltIns(t *testing.T) {
	out, err := New(nil).Decode(&wire.Envelope{Main: map[string]any{
		"date":  map[string]any{"$className": "Date", "value": "2024-03-04T04:06:07.008Z"},
		"epoch": map[string]any{"$className": "Date", "value": int64(1000)},
		"re":    map[string]any{"$className": "RegExp", "source": "ab+c", "flags": "gi"},
		"err":   map[string]any{"$className": "Error", "name": "TypeError", "message": "bad"},
	}})
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.True(t, time.Date(2024, 3, 4, 4, 6, 7, 8000000, time.UTC).Equal(m["date"].(time.Time)))
	assert.True(t, time.Unix(1, 0).Equal(m["epoch"].(time.Time)))

	re := m["re"].(*regexp.Regexp)
	assert.True(t, re.MatchString("xABBC"))

	var ge *graph.Error
	require.ErrorAs(t, m["err"].(error), &ge)
	assert.Equal(t, "TypeError", ge.Name)
	assert.Equal(t, "bad", ge.Message)
}

func TestDecode_RegisteredInstance(t *testing.T) {
	dec := newDecoder(t, map[string]any{"Record": record{}})
	out, err := dec.Decode(&wire.Envelope{
		Main: map[string]any{
			"$className": "Record",
			"Name":       "root",
			"Next":       wire.Ref(0),
			"Tags":       []any{"a", "b"},
			"Scores":     map[string]any{"x": int64(3)},
			"Pos":        map[string]any{"X": int64(1), "Y": int64(2)},
			"Big":        int64(9007199254740993),
			"Small":      int64(200),
			"When":       map[string]any{"$className": "Date", "value": "2024-01-01T00:00:00Z"},
			"Fail":       map[string]any{"$className": "Error", "name": "Error", "message": "x"},
			"Extra":      wire.Ref(1),
			"Unknown":    "ignored",
		},
		Duplicates: []any{
			map[string]any{"$className": "Record", "Name": "child", "Next": wire.Ref(0)},
			map[string]any{"k": "v"},
		},
	})
	require.NoError(t, err)

	root, ok := out.(*record)
	require.True(t, ok)
	assert.Equal(t, "root", root.Name)
	assert.Equal(t, []string{"a", "b"}, root.Tags)
	assert.Equal(t, map[string]int{"x": 3}, root.Scores)
	assert.Equal(t, point{1, 2}, root.Pos)
	assert.Equal(t, int64(9007199254740993), root.Big)
	assert.Equal(t, uint8(200), root.Small)
	assert.Equal(t, 2024, root.When.Year())
	assert.EqualError(t, root.Fail, "x")
	assert.Equal(t, map[string]any{"k": "v"}, root.Extra)

	require.NotNil(t, root.Next)
	assert.Equal(t, "child", root.Next.Name)
	assert.Same(t, root.Next, root.Next.Next)
}

func TestDecode_InstanceCycle(t *testing.T) {
	dec := newDecoder(t, map[string]any{"Record": record{}})
	out, err := dec.Decode(&wire.Envelope{
		Main: wire.Ref(0),
		Duplicates: []any{
			map[string]any{"$className": "Record", "Name": "a", "Next": map[string]any{
				"$className": "Record", "Name": "b", "Next": wire.Ref(0),
			}},
		},
	})
	require.NoError(t, err)

	a := out.(*record)
	assert.Equal(t, "b", a.Next.Name)
	assert.Same(t, a, a.Next.Next)
}

func TestDecode_WakeupRunsOnceAfterGraph(t *testing.T) {
	wakeups = nil
	dec := newDecoder(t, map[string]any{"Sensor": sensor{}})
	_, err := dec.Decode(&wire.Envelope{
		Main: []any{
			wire.Ref(0),
			wire.Ref(0),
			map[string]any{"$className": "Sensor", "ID": "c", "Peer": wire.Ref(0)},
		},
		Duplicates: []any{
			map[string]any{"$className": "Sensor", "ID": "a", "Peer": map[string]any{
				"$className": "Sensor", "ID": "b", "Peer": wire.Ref(0),
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a->b", "b->a", "c->a"}, wakeups)
}

func TestDecode_WakeupError(t *testing.T) {
	dec := newDecoder(t, map[string]any{"Faulty": faulty{}})
	_, err := dec.Decode(&wire.Envelope{Main: map[string]any{"$className": "Faulty"}})
	assert.ErrorContains(t, err, "not ready")
}

func TestDecode_Errors(t *testing.T) {
	t.Run("unknown class", func(t *testing.T) {
		_, err := New(nil).Decode(&wire.Envelope{Main: map[string]any{"$className": "Ghost"}})
		var unknown *registry.UnknownClassError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "Ghost", unknown.Name)
		assert.ErrorIs(t, err, registry.ErrUnknownClass)
	})

	t.Run("reference out of range", func(t *testing.T) {
		_, err := New(nil).Decode(&wire.Envelope{Main: wire.Ref(2), Duplicates: []any{1}})
		assert.ErrorIs(t, err, wire.ErrFormat)
	})

	t.Run("table entry is a reference", func(t *testing.T) {
		_, err := New(nil).Decode(&wire.Envelope{Main: wire.Ref(0), Duplicates: []any{wire.Ref(0)}})
		assert.ErrorIs(t, err, wire.ErrFormat)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := New(nil).Decode(&wire.Envelope{Main: map[string]any{"$className": "Date", "value": "yesterday"}})
		assert.ErrorIs(t, err, wire.ErrFormat)
	})

	t.Run("missing main", func(t *testing.T) {
		_, err := New(nil).DecodeTree(map[string]any{"duplicates": []any{}})
		assert.ErrorIs(t, err, wire.ErrFormat)
	})

	t.Run("field type mismatch", func(t *testing.T) {
		dec := newDecoder(t, map[string]any{"Record": record{}})
		_, err := dec.Decode(&wire.Envelope{Main: map[string]any{"$className": "Record", "Tags": "nope"}})
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("max depth", func(t *testing.T) {
		var deep any = "leaf"
		for i := 0; i < 20; i++ {
			deep = []any{deep}
		}
		_, err := New(nil, WithMaxDepth(5)).Decode(&wire.Envelope{Main: deep})
		assert.ErrorIs(t, err, graph.ErrMaxDepth)
	})
}

type plainNode struct {
	Name string
	Kids []*plainNode
}

func TestDecodeInto_SharesConvertedNodes(t *testing.T) {
	env := &wire.Envelope{
		Main: []any{wire.Ref(0), wire.Ref(0)},
		Duplicates: []any{
			map[string]any{"Name": "loop", "Kids": []any{wire.Ref(0)}},
		},
	}

	var nodes []*plainNode
	require.NoError(t, New(nil).DecodeInto(env, &nodes))
	require.Len(t, nodes, 2)
	assert.Same(t, nodes[0], nodes[1])
	assert.Equal(t, "loop", nodes[0].Name)
	assert.Same(t, nodes[0], nodes[0].Kids[0])
}

func TestDecodeInto_Precision(t *testing.T) {
	var out struct {
		ID  int64
		Max uint64
	}
	env := &wire.Envelope{Main: map[string]any{
		"ID":  int64(9007199254740993),
		"Max": uint64(18446744073709551615),
	}}
	require.NoError(t, New(nil).DecodeInto(env, &out))
	assert.Equal(t, int64(9007199254740993), out.ID)
	assert.Equal(t, uint64(18446744073709551615), out.Max)
}

func TestDecodeInto_Errors(t *testing.T) {
	env := &wire.Envelope{Main: map[string]any{"N": "str"}}

	var out struct{ N int }
	assert.ErrorIs(t, New(nil).DecodeInto(env, &out), ErrTypeMismatch)
	assert.ErrorIs(t, New(nil).DecodeInto(env, out), ErrTypeMismatch)

	overflow := &wire.Envelope{Main: map[string]any{"N": int64(300)}}
	var small struct{ N int8 }
	assert.ErrorIs(t, New(nil).DecodeInto(overflow, &small), ErrTypeMismatch)
}

type gauge struct {
	N     int
	Woken int
}

func (g *gauge) Wakeup() error {
	g.Woken++
	return nil
}

type panel struct {
	Main  gauge
	Named map[string]gauge
	Spare *gauge
}

func tagged(class string, fields map[string]any) map[string]any {
	fields["$className"] = class
	return fields
}

func TestDecode_WakeupReachesValueCopies(t *testing.T) {
	dec := newDecoder(t, map[string]any{"Panel": panel{}, "Gauge": gauge{}})
	out, err := dec.Decode(&wire.Envelope{Main: tagged("Panel", map[string]any{
		"Main":  tagged("Gauge", map[string]any{"N": 1}),
		"Named": map[string]any{"k": tagged("Gauge", map[string]any{"N": 2})},
	})})
	require.NoError(t, err)

	p := out.(*panel)
	assert.Equal(t, gauge{N: 1, Woken: 1}, p.Main)
	assert.Equal(t, gauge{N: 2, Woken: 1}, p.Named["k"])
	assert.Nil(t, p.Spare)
}

func TestDecode_WakeupSharedByValueAndPointer(t *testing.T) {
	dec := newDecoder(t, map[string]any{"Panel": panel{}, "Gauge": gauge{}})
	out, err := dec.Decode(&wire.Envelope{
		Main: tagged("Panel", map[string]any{"Main": wire.Ref(0), "Spare": wire.Ref(0)}),
		Duplicates: []any{
			tagged("Gauge", map[string]any{"N": 3}),
		},
	})
	require.NoError(t, err)

	p := out.(*panel)
	assert.Equal(t, gauge{N: 3, Woken: 1}, p.Main)
	require.NotNil(t, p.Spare)
	assert.Equal(t, gauge{N: 3, Woken: 1}, *p.Spare)
}

func TestDecodeInto_WakeupOnValueTarget(t *testing.T) {
	dec := newDecoder(t, map[string]any{"Gauge": gauge{}})

	var g gauge
	require.NoError(t, dec.DecodeInto(&wire.Envelope{Main: tagged("Gauge", map[string]any{"N": 4})}, &g))
	assert.Equal(t, gauge{N: 4, Woken: 1}, g)

	var gs []gauge
	env := &wire.Envelope{
		Main:       []any{wire.Ref(0), wire.Ref(0)},
		Duplicates: []any{tagged("Gauge", map[string]any{"N": 5})},
	}
	require.NoError(t, dec.DecodeInto(env, &gs))
	assert.Equal(t, []gauge{{N: 5, Woken: 1}, {N: 5, Woken: 1}}, gs)
}

func TestDecodeInto_WakeupOnNestedValues(t *testing.T) {
	dec := newDecoder(t, map[string]any{"Panel": panel{}, "Gauge": gauge{}})

	var p panel
	env := &wire.Envelope{Main: tagged("Panel", map[string]any{
		"Main":  tagged("Gauge", map[string]any{"N": 6}),
		"Named": map[string]any{"x": tagged("Gauge", map[string]any{"N": 7})},
	})}
	require.NoError(t, dec.DecodeInto(env, &p))
	assert.Equal(t, gauge{N: 6, Woken: 1}, p.Main)
	assert.Equal(t, map[string]gauge{"x": {N: 7, Woken: 1}}, p.Named)
}

type codedError struct {
	Code int
}

func (e *codedError) Error() string { return "coded" }

type outcome struct {
	Ptr   *codedError
	Value codedError
	Any   error
}

func TestDecode_ErrorIntoConcreteTypeIsDropped(t *testing.T) {
	dec := newDecoder(t, map[string]any{"Outcome": outcome{}})
	failure := func() map[string]any {
		return map[string]any{"$className": "Error", "name": "codedError", "message": "coded"}
	}
	out, err := dec.Decode(&wire.Envelope{Main: tagged("Outcome", map[string]any{
		"Ptr":   failure(),
		"Value": failure(),
		"Any":   failure(),
	})})
	require.NoError(t, err)

	o := out.(*outcome)
	assert.Nil(t, o.Ptr)
	assert.Zero(t, o.Value)

	var ge *graph.Error
	require.ErrorAs(t, o.Any, &ge)
	assert.Equal(t, "codedError", ge.ErrorName())
}

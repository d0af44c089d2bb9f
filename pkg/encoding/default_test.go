package encoding

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shape struct {
	Sides int
}

type square struct {
	shape
	Side float64
}

func TestDefaultRegistry(t *testing.T) {
	require.NoError(t, RegisterClass("Shape", shape{}))
	require.NoError(t, RegisterClass("Square", square{}))

	typ, ok := GetConstructorForClass("Square")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(square{}), typ)

	// registration order decides for types embedding a registered one
	name, ok := GetClassNameFor(&square{})
	require.True(t, ok)
	assert.Equal(t, "Shape", name)

	_, ok = GetClassNameFor(map[string]any{})
	assert.False(t, ok)

	assert.ErrorIs(t, RegisterClass("Date", shape{}), ErrInvalidName)
	assert.ErrorIs(t, RegisterClass("Nums", 3), ErrInvalidType)
	assert.Same(t, Default().Registry(), Default().Registry())
}

func TestDefaultStringifyParse(t *testing.T) {
	type box struct{ N int }
	require.NoError(t, RegisterClass("Box", box{}))

	text, err := Stringify(&box{N: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"main":{"$className":"Box","N":7}}`, text)

	out, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, &box{N: 7}, out)

	typed, err := ParseAs[box](text)
	require.NoError(t, err)
	assert.Equal(t, box{N: 7}, typed)
}

type beacon struct {
	ID    string
	Armed bool `json:"-"`
}

func (b *beacon) Wakeup() error {
	b.Armed = true
	return nil
}

func TestDefaultParseAsWakesValue(t *testing.T) {
	require.NoError(t, RegisterClass("Beacon", beacon{}))

	text, err := Stringify(&beacon{ID: "b1"})
	require.NoError(t, err)

	got, err := ParseAs[beacon](text)
	require.NoError(t, err)
	assert.Equal(t, beacon{ID: "b1", Armed: true}, got)
}

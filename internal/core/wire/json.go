package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/zeusync/jetgraph/pkg/generic"
)

var buffers = generic.NewHotPool(func() *bytes.Buffer {
	return bytes.NewBuffer(make([]byte, 0, 512))
}, 4).WithReset(func(b *bytes.Buffer) { b.Reset() })

// JSON is the default text codec. Numbers decode as json.Number first so
// integers keep full precision.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(tree any, indent string) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return append([]byte(nil), out...), nil
}

func (JSON) Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, FormatError(err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, formatErrorf("trailing data after document")
	}
	return Normalize(tree)
}

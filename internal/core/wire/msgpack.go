package wire

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack is the binary codec. The indent argument is ignored.
type MsgPack struct{}

func (MsgPack) Name() string { return "msgpack" }

func (MsgPack) Marshal(tree any, _ string) ([]byte, error) {
	tree, err := Normalize(tree)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err = enc.Encode(tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgPack) Unmarshal(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, FormatError(err)
	}
	return Normalize(tree)
}

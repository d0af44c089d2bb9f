package wire

import (
	"github.com/fxamacker/cbor/v2"
)

var cborEnc = func() cbor.EncMode {
	mode, err := cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// CBOR is the binary codec for RFC 8949 consumers. Map keys are written in
// canonical order. The indent argument is ignored.
type CBOR struct{}

func (CBOR) Name() string { return "cbor" }

func (CBOR) Marshal(tree any, _ string) ([]byte, error) {
	tree, err := Normalize(tree)
	if err != nil {
		return nil, err
	}
	return cborEnc.Marshal(tree)
}

func (CBOR) Unmarshal(data []byte) (any, error) {
	var tree any
	if err := cbor.Unmarshal(data, &tree); err != nil {
		return nil, FormatError(err)
	}
	return Normalize(tree)
}

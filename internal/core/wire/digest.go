package wire

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
)

// Digest hashes the canonical JSON form of an envelope. Object keys are
// sorted, so equal documents hash equally whatever codec they came from.
func Digest(env *Envelope) (uint64, error) {
	tree, err := Normalize(env.Tree())
	if err != nil {
		return 0, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return 0, FormatError(err)
	}
	return xxhash.Sum64(data), nil
}

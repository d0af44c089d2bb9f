package wire

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// YAML writes block-style documents; the indent width is the length of the
// indent string, two spaces when empty.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Marshal(tree any, indent string) ([]byte, error) {
	tree, err := Normalize(tree)
	if err != nil {
		return nil, err
	}
	width := len(indent)
	if width == 0 {
		width = 2
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(width)
	if err = enc.Encode(tree); err != nil {
		return nil, err
	}
	if err = enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAML) Unmarshal(data []byte) (any, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, FormatError(err)
	}
	return Normalize(tree)
}

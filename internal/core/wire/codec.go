package wire

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownCodec is returned by CodecByName for unregistered names.
var ErrUnknownCodec = errors.New("unknown codec")

// Codec turns wire trees into bytes and back. Unmarshal always returns a
// normalized tree.
type Codec interface {
	Name() string
	Marshal(tree any, indent string) ([]byte, error)
	Unmarshal(data []byte) (any, error)
}

var (
	codecsMu sync.RWMutex
	codecs   = map[string]Codec{}
)

func init() {
	RegisterCodec(JSON{})
	RegisterCodec(YAML{})
	RegisterCodec(MsgPack{})
	RegisterCodec(CBOR{})
}

// RegisterCodec makes c available through CodecByName. A codec with the
// same name is replaced.
func RegisterCodec(c Codec) {
	codecsMu.Lock()
	defer codecsMu.Unlock()
	codecs[strings.ToLower(c.Name())] = c
}

// CodecByName looks a codec up case-insensitively. "yml" and "mp" are
// accepted aliases.
func CodecByName(name string) (Codec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "yml":
		name = "yaml"
	case "mp":
		name = "msgpack"
	}
	codecsMu.RLock()
	c, ok := codecs[name]
	codecsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// CodecNames lists the registered codecs in sorted order.
func CodecNames() []string {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CodecForPath guesses a codec from a file extension, falling back to JSON.
func CodecForPath(path string) Codec {
	dot := strings.LastIndexByte(path, '.')
	if dot >= 0 {
		if c, err := CodecByName(path[dot+1:]); err == nil {
			return c
		}
	}
	return JSON{}
}

// Unmarshal decodes data with c and reads the envelope out of it.
func Unmarshal(c Codec, data []byte) (*Envelope, error) {
	tree, err := c.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return FromTree(tree)
}

// Marshal writes env with c.
func Marshal(c Codec, env *Envelope, indent string) ([]byte, error) {
	return c.Marshal(env.Tree(), indent)
}

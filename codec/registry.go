package codec

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSerializer = errors.New("codec: unknown serializer")

// Lookup resolves a configured serializer name. Names are case-insensitive;
// "" resolves to JSON. Legacy names from older configs are accepted as aliases.
func Lookup(name string) (Serializer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json", "newtonsoft", "jil":
		return JSON{}, nil
	case "msgpack", "messagepack":
		return Msgpack{}, nil
	case "cbor":
		return NewCBOR(false)
	case "cbor-deterministic":
		return NewCBOR(true)
	case "protobuf", "proto":
		return Proto{}, nil
	case "raw":
		return Raw{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSerializer, name)
}

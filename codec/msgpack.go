package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack is a compact binary Serializer built on vmihailenco/msgpack/v5.
// The zero value is ready to use.
//
// Plain strings are stored as raw UTF-8 rather than a msgpack str so they stay
// readable with redis-cli; decoding into *string mirrors that.
// Use `msgpack:"fieldName"` tags if you need explicit control over field names.
type Msgpack struct{}

var _ Serializer = Msgpack{}

func (Msgpack) Name() string { return "msgpack" }

func (Msgpack) Marshal(v any) ([]byte, error) {
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	b, err := msgpack.Marshal(v)
	return b, encodeErr("msgpack", v, err)
}

func (Msgpack) Unmarshal(b []byte, v any) error {
	if p, ok := v.(*string); ok {
		*p = string(b)
		return nil
	}
	return decodeErr("msgpack", v, msgpack.Unmarshal(b, v))
}

// Package codec turns typed values into the opaque byte payloads stored by the
// cache and back.
//
// Two contracts live here:
//   - Codec[V]: typed encode/decode for one value type (also what Polymorphic
//     implements for an interface type).
//   - Serializer: an untyped, named format (json, msgpack, cbor, protobuf, raw)
//     that the client owns once and views through Of[V] for every call site.
package codec

import (
	"fmt"
	"reflect"
)

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Serializer is a named format able to handle arbitrary Go values.
// Unmarshal receives a non-nil pointer to the destination.
type Serializer interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
}

// EncodeError reports a value whose runtime shape the codec cannot encode.
type EncodeError struct {
	Codec string
	Type  string
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("codec %s: encode %s: %v", e.Codec, e.Type, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports payload bytes that do not parse as the target type.
type DecodeError struct {
	Codec string
	Type  string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec %s: decode into %s: %v", e.Codec, e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func encodeErr(codec string, v any, err error) error {
	if err == nil {
		return nil
	}
	return &EncodeError{Codec: codec, Type: typeName(v), Err: err}
}

func decodeErr(codec string, target any, err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{Codec: codec, Type: targetName(target), Err: err}
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

// targetName reports the pointed-to type of an Unmarshal destination.
func targetName(target any) string {
	t := reflect.TypeOf(target)
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		return t.Elem().String()
	}
	return t.String()
}

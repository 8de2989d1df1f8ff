package codec

import "errors"

var errRawShape = errors.New("raw codec handles only []byte and string")

// Raw passes []byte and string values through unchanged. Anything else fails
// with EncodeError, which makes it a strict choice for byte-oriented keyspaces.
// String assumes UTF-8 and performs no validation.
type Raw struct{}

var _ Serializer = Raw{}

func (Raw) Name() string { return "raw" }

func (Raw) Marshal(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	}
	return nil, encodeErr("raw", v, errRawShape)
}

func (Raw) Unmarshal(b []byte, v any) error {
	switch p := v.(type) {
	case *[]byte:
		*p = b
		return nil
	case *string:
		*p = string(b)
		return nil
	}
	return decodeErr("raw", v, errRawShape)
}

package codec

import (
	"errors"
	"fmt"
)

var ErrPayloadTooLarge = errors.New("payload too large")

// Limit wraps another codec to enforce a maximum allowed payload size
// at Decode time. Encode is forwarded to Inner unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// Typical use: protect against oversized inputs coming from a shared cache.
type Limit[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec[V]
	// MaxDecode is the maximum permitted payload length in bytes.
	MaxDecode int
}

var _ Codec[struct{}] = Limit[struct{}]{}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, &DecodeError{
			Codec: "limit",
			Type:  fmt.Sprintf("%T", zero),
			Err:   fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(b), c.MaxDecode),
		}
	}
	return c.Inner.Decode(b)
}

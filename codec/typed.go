package codec

import "github.com/unkn0wn-root/clustercache/future"

type typed[V any] struct{ s Serializer }

// Of views a Serializer as a Codec for V.
func Of[V any](s Serializer) Codec[V] { return typed[V]{s: s} }

func (t typed[V]) Encode(v V) ([]byte, error) { return t.s.Marshal(v) }

func (t typed[V]) Decode(b []byte) (V, error) {
	var v V
	err := t.s.Unmarshal(b, &v)
	return v, err
}

// EncodeAsync runs c.Encode on its own goroutine.
func EncodeAsync[V any](c Codec[V], v V) *future.Future[[]byte] {
	return future.Go(func() ([]byte, error) { return c.Encode(v) })
}

// DecodeAsync runs c.Decode on its own goroutine.
func DecodeAsync[V any](c Codec[V], b []byte) *future.Future[V] {
	return future.Go(func() (V, error) { return c.Decode(b) })
}

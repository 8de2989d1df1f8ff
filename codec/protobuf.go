package codec

import (
	"errors"
	"reflect"

	"google.golang.org/protobuf/proto"
)

var errNotMessage = errors.New("value is not a proto.Message")

var messageType = reflect.TypeFor[proto.Message]()

// Proto is a Serializer for generated protobuf messages. Any other value is
// rejected with an EncodeError/DecodeError.
//
// Unmarshal accepts either a message (*mypb.User) or a pointer to a message
// pointer (**mypb.User, which is what Of[*mypb.User] passes); a nil inner
// pointer is allocated.
type Proto struct{}

var _ Serializer = Proto{}

func (Proto) Name() string { return "protobuf" }

func (Proto) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, encodeErr("protobuf", v, errNotMessage)
	}
	b, err := proto.Marshal(m)
	return b, encodeErr("protobuf", v, err)
}

func (Proto) Unmarshal(b []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return decodeErr("protobuf", v, proto.Unmarshal(b, m))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return decodeErr("protobuf", v, errNotMessage)
	}
	inner := rv.Elem()
	if inner.Kind() != reflect.Pointer || !inner.Type().Implements(messageType) {
		return decodeErr("protobuf", v, errNotMessage)
	}
	if inner.IsNil() {
		inner.Set(reflect.New(inner.Type().Elem()))
	}
	return decodeErr("protobuf", v, proto.Unmarshal(b, inner.Interface().(proto.Message)))
}

// Protobuf is a typed codec for one message type.
type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message (e.g., func() *mypb.User { return &mypb.User{} })
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	b, err := proto.Marshal(v)
	return b, encodeErr("protobuf", v, err)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, decodeErr("protobuf", m, err)
}

package codec

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/unkn0wn-root/clustercache/internal/wire"
)

// UnsupportedTypeError: the runtime type of a value is not registered.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("codec polymorphic: type %s is not registered", e.Type)
}

// UnknownTypeTagError: an envelope names a tag with no registered case.
type UnknownTypeTagError struct {
	Tag string
}

func (e *UnknownTypeTagError) Error() string {
	return fmt.Sprintf("codec polymorphic: unknown type tag %q", e.Tag)
}

// TruncatedEnvelopeError: the envelope framing is short or corrupt.
type TruncatedEnvelopeError struct {
	Len int
	Err error
}

func (e *TruncatedEnvelopeError) Error() string {
	return fmt.Sprintf("codec polymorphic: truncated envelope (%d bytes): %v", e.Len, e.Err)
}

func (e *TruncatedEnvelopeError) Unwrap() error { return e.Err }

// Variant is one registered concrete type of the capability I.
// Build it with Case.
type Variant[I any] struct {
	tag    string
	typ    reflect.Type
	encode func(I) ([]byte, error)
	decode func([]byte) (I, error)
	err    error
}

// Case registers concrete type T under tag. An empty tag defaults to T's
// type name (element name for pointer types), which matches what the value
// was historically stored under.
func Case[I, T any](tag string, c Codec[T]) Variant[I] {
	typ := reflect.TypeFor[T]()
	if tag == "" {
		tag = shortName(typ)
	}
	v := Variant[I]{tag: tag, typ: typ}
	iface := reflect.TypeFor[I]()
	switch {
	case c == nil:
		v.err = fmt.Errorf("codec polymorphic: case %q has nil codec", tag)
		return v
	case iface.Kind() != reflect.Interface:
		v.err = fmt.Errorf("codec polymorphic: %s is not an interface type", iface)
		return v
	case typ.Kind() == reflect.Interface:
		v.err = fmt.Errorf("codec polymorphic: case %q must be a concrete type, got %s", tag, typ)
		return v
	case !typ.Implements(iface):
		v.err = fmt.Errorf("codec polymorphic: %s does not implement %s", typ, iface)
		return v
	}

	v.encode = func(i I) ([]byte, error) {
		t, ok := any(i).(T)
		if !ok {
			return nil, &UnsupportedTypeError{Type: typeName(any(i))}
		}
		return c.Encode(t)
	}
	v.decode = func(b []byte) (I, error) {
		t, err := c.Decode(b)
		if err != nil {
			var zero I
			return zero, err
		}
		return any(t).(I), nil // checked by Implements above
	}
	return v
}

func shortName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Polymorphic encodes values declared as interface type I by writing a
// {typeTag, payload} envelope. The registry is fixed at construction and
// never mutated, so a Polymorphic is safe for concurrent use.
type Polymorphic[I any] struct {
	byTag  map[string]Variant[I]
	byType map[reflect.Type]Variant[I]
}

var _ Codec[error] = (*Polymorphic[error])(nil)

// NewPolymorphic builds the registry from explicit cases. Duplicate tags,
// duplicate types and invalid cases are construction errors.
func NewPolymorphic[I any](cases ...Variant[I]) (*Polymorphic[I], error) {
	if len(cases) == 0 {
		return nil, errors.New("codec polymorphic: at least one case is required")
	}
	p := &Polymorphic[I]{
		byTag:  make(map[string]Variant[I], len(cases)),
		byType: make(map[reflect.Type]Variant[I], len(cases)),
	}
	for _, c := range cases {
		if c.err != nil {
			return nil, c.err
		}
		if c.typ == nil {
			return nil, errors.New("codec polymorphic: zero Variant; build cases with Case")
		}
		if _, dup := p.byTag[c.tag]; dup {
			return nil, fmt.Errorf("codec polymorphic: duplicate tag %q", c.tag)
		}
		if _, dup := p.byType[c.typ]; dup {
			return nil, fmt.Errorf("codec polymorphic: type %s registered twice", c.typ)
		}
		p.byTag[c.tag] = c
		p.byType[c.typ] = c
	}
	return p, nil
}

// MustPolymorphic is like NewPolymorphic but panics on error.
func MustPolymorphic[I any](cases ...Variant[I]) *Polymorphic[I] {
	p, err := NewPolymorphic[I](cases...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Polymorphic[I]) Encode(v I) ([]byte, error) {
	rt := reflect.TypeOf(any(v))
	if rt == nil {
		return nil, &UnsupportedTypeError{Type: "<nil>"}
	}
	c, ok := p.byType[rt]
	if !ok {
		return nil, &UnsupportedTypeError{Type: rt.String()}
	}
	payload, err := c.encode(v)
	if err != nil {
		return nil, asEncodeErr(v, err)
	}
	b, err := wire.EncodeEnvelope(c.tag, payload)
	if err != nil {
		return nil, encodeErr("polymorphic", any(v), err)
	}
	return b, nil
}

func (p *Polymorphic[I]) Decode(b []byte) (I, error) {
	var zero I
	tag, payload, err := wire.DecodeEnvelope(b)
	if err != nil {
		return zero, &TruncatedEnvelopeError{Len: len(b), Err: err}
	}
	c, ok := p.byTag[tag]
	if !ok {
		return zero, &UnknownTypeTagError{Tag: tag}
	}
	v, err := c.decode(payload)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return zero, err
		}
		return zero, &DecodeError{Codec: "polymorphic", Type: c.typ.String(), Err: err}
	}
	return v, nil
}

// Tags lists the registered type tags in sorted order.
func (p *Polymorphic[I]) Tags() []string {
	out := make([]string, 0, len(p.byTag))
	for t := range p.byTag {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func asEncodeErr(v any, err error) error {
	var ee *EncodeError
	var ut *UnsupportedTypeError
	if errors.As(err, &ee) || errors.As(err, &ut) {
		return err
	}
	return encodeErr("polymorphic", v, err)
}

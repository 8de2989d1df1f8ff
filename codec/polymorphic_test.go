package codec

import (
	"errors"
	"testing"

	"github.com/unkn0wn-root/clustercache/internal/wire"
)

type animal interface{ Sound() string }

type dog struct {
	Name string `json:"name"`
}

func (d *dog) Sound() string { return d.Name + ": woof" }

type cat struct {
	Lives int `json:"lives"`
}

func (c cat) Sound() string { return "meow" }

type fish struct{}

func (fish) Sound() string { return "" }

func newAnimals(t *testing.T) *Polymorphic[animal] {
	t.Helper()
	p, err := NewPolymorphic(
		Case[animal]("", Of[*dog](JSON{})),
		Case[animal]("Cat", Of[cat](Msgpack{})),
	)
	if err != nil {
		t.Fatalf("NewPolymorphic: %v", err)
	}
	return p
}

func TestPolymorphicRoundTrip(t *testing.T) {
	p := newAnimals(t)

	b, err := p.Encode(&dog{Name: "Rex"})
	if err != nil {
		t.Fatalf("Encode dog: %v", err)
	}
	got, err := p.Decode(b)
	if err != nil {
		t.Fatalf("Decode dog: %v", err)
	}
	d, ok := got.(*dog)
	if !ok || d.Name != "Rex" {
		t.Fatalf("expected *dog Rex, got %#v", got)
	}

	b, err = p.Encode(cat{Lives: 9})
	if err != nil {
		t.Fatalf("Encode cat: %v", err)
	}
	tag, _, err := wire.DecodeEnvelope(b)
	if err != nil || tag != "Cat" {
		t.Fatalf("expected tag Cat, got %q err=%v", tag, err)
	}
	got, err = p.Decode(b)
	if err != nil {
		t.Fatalf("Decode cat: %v", err)
	}
	if c, ok := got.(cat); !ok || c.Lives != 9 {
		t.Fatalf("expected cat{9}, got %#v", got)
	}
}

func TestPolymorphicDefaultTag(t *testing.T) {
	p := newAnimals(t)
	b, err := p.Encode(&dog{Name: "a"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tag, _, _ := wire.DecodeEnvelope(b)
	if tag != "dog" {
		t.Fatalf("expected default tag from type name, got %q", tag)
	}
	if tags := p.Tags(); len(tags) != 2 || tags[0] != "Cat" || tags[1] != "dog" {
		t.Fatalf("Tags = %v", tags)
	}
}

func TestPolymorphicUnsupportedType(t *testing.T) {
	p := newAnimals(t)
	var ut *UnsupportedTypeError
	if _, err := p.Encode(fish{}); !errors.As(err, &ut) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
	if _, err := p.Encode(nil); !errors.As(err, &ut) {
		t.Fatalf("expected UnsupportedTypeError for nil, got %v", err)
	}
	// a value type is distinct from its pointer type
	if _, err := p.Encode(&cat{}); !errors.As(err, &ut) {
		t.Fatalf("expected UnsupportedTypeError for *cat, got %v", err)
	}
}

func TestPolymorphicUnknownTag(t *testing.T) {
	p := newAnimals(t)
	b, err := wire.EncodeEnvelope("Horse", []byte("{}"))
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	var ut *UnknownTypeTagError
	if _, err := p.Decode(b); !errors.As(err, &ut) || ut.Tag != "Horse" {
		t.Fatalf("expected UnknownTypeTagError{Horse}, got %v", err)
	}
}

func TestPolymorphicTruncated(t *testing.T) {
	p := newAnimals(t)
	b, err := p.Encode(&dog{Name: "Rex"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, in := range [][]byte{nil, b[:3], b[:len(b)-1]} {
		var te *TruncatedEnvelopeError
		_, err := p.Decode(in)
		if !errors.As(err, &te) {
			t.Fatalf("len %d: expected TruncatedEnvelopeError, got %v", len(in), err)
		}
		if !errors.Is(err, wire.ErrCorrupt) {
			t.Fatalf("expected wrapped ErrCorrupt, got %v", err)
		}
	}
}

func TestPolymorphicBadPayload(t *testing.T) {
	p := newAnimals(t)
	b, _ := wire.EncodeEnvelope("dog", []byte("{broken"))
	var de *DecodeError
	if _, err := p.Decode(b); !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestNewPolymorphicRejectsBadRegistry(t *testing.T) {
	cases := map[string][]Variant[animal]{
		"empty": nil,
		"duplicate tag": {
			Case[animal]("x", Of[*dog](JSON{})),
			Case[animal]("x", Of[cat](JSON{})),
		},
		"duplicate type": {
			Case[animal]("a", Of[cat](JSON{})),
			Case[animal]("b", Of[cat](JSON{})),
		},
		"not implementing": {
			Case[animal]("d", Of[dog](JSON{})), // only *dog has Sound
		},
		"nil codec": {
			Case[animal, cat]("c", nil),
		},
		"zero variant": {{}},
	}
	for name, cs := range cases {
		if _, err := NewPolymorphic(cs...); err == nil {
			t.Fatalf("%s: expected construction error", name)
		}
	}

	if _, err := NewPolymorphic(Case[dog]("d", Of[dog](JSON{}))); err == nil {
		t.Fatalf("expected error for non-interface capability type")
	}
}

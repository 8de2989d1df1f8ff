package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR is a Serializer built on fxamacker/cbor.
// The zero value is NOT ready to use. Construct with NewCBOR or MustCBOR.
//
// Use deterministic=true for canonical encoding (RFC 8949 Core Deterministic)
// when you need byte-for-byte stable outputs (e.g. hashing set members).
// Time values are encoded as RFC3339Nano.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Serializer = CBOR{}

func NewCBOR(deterministic bool) (CBOR, error) {
	var eo cbor.EncOptions
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR{}, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return CBOR{}, err
	}
	return CBOR{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error. Handy for package-level vars in tests.
func MustCBOR(deterministic bool) CBOR {
	c, err := NewCBOR(deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (CBOR) Name() string { return "cbor" }

func (c CBOR) Marshal(v any) ([]byte, error) {
	b, err := c.enc.Marshal(v)
	return b, encodeErr("cbor", v, err)
}

func (c CBOR) Unmarshal(b []byte, v any) error {
	return decodeErr("cbor", v, c.dec.Unmarshal(b, v))
}

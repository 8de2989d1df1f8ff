package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

const (
	version   byte = 1
	maxTagLen      = 0xFFFF
	header         = 4 + 1 + 2 // magic | ver | tagLen
)

var (
	ErrCorrupt       = errors.New("clustercache: corrupt envelope")
	ErrTagLength     = errors.New("clustercache: envelope tag must be 1..65535 bytes")
	ErrPayloadLength = errors.New("clustercache: envelope payload exceeds 4 GiB")
	magic4           = [...]byte{'C', 'C', 'T', 'E'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Envelope: magic(4) | ver(1) | tagLen(u16 be) | tag(tagLen) | vlen(u32 be) | payload(vlen)
func EncodeEnvelope(tag string, payload []byte) ([]byte, error) {
	if l := len(tag); l == 0 || l > maxTagLen {
		return nil, ErrTagLength
	}
	if err := checkPayloadLen(len(payload)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(header + len(tag) + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u2 [2]byte
	var u4 [4]byte

	binary.BigEndian.PutUint16(u2[:], uint16(len(tag)))
	buf.Write(u2[:])
	buf.WriteString(tag)

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)

	return buf.Bytes(), nil
}

// vlen is a u32 on the wire.
func checkPayloadLen(n int) error {
	if uint64(n) > math.MaxUint32 {
		return ErrPayloadLength
	}
	return nil
}

// DecodeEnvelope returns the tag and a payload slice aliasing b.
// Short buffers, bad headers and trailing bytes are all ErrCorrupt.
func DecodeEnvelope(b []byte) (tag string, payload []byte, err error) {
	if len(b) < header || !hasMagic(b) || b[4] != version {
		return "", nil, ErrCorrupt
	}

	off := 5

	tlen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if tlen == 0 || tlen > len(b)-off {
		return "", nil, ErrCorrupt
	}
	tag = string(b[off : off+tlen])
	off += tlen

	if off+4 > len(b) {
		return "", nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact: no trailing bytes
		return "", nil, ErrCorrupt
	}

	return tag, b[off : off+vlen], nil
}

// Stamped: deadline(i64 be, unix nanos) | payload
func EncodeStamped(deadline int64, payload []byte) []byte {
	out := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint64(out[:8], uint64(deadline))
	copy(out[8:], payload)
	return out
}

// DecodeStamped returns a payload slice aliasing b.
func DecodeStamped(b []byte) (deadline int64, payload []byte, err error) {
	if len(b) < 8 {
		return 0, nil, ErrCorrupt
	}
	return int64(binary.BigEndian.Uint64(b[:8])), b[8:], nil
}

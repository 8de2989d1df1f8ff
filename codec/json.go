package codec

import "encoding/json"

// JSON is the default text format. The zero value is ready to use.
type JSON struct{}

var _ Serializer = JSON{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	return b, encodeErr("json", v, err)
}

func (JSON) Unmarshal(b []byte, v any) error {
	return decodeErr("json", v, json.Unmarshal(b, v))
}

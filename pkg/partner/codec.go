package partner

import (
	json "github.com/goccy/go-json"
)

// Codec encodes request bodies and decodes response bodies.
type Codec interface {
	Marshal(value interface{}) ([]byte, error)
	Unmarshal(data []byte, value interface{}) error
	ContentType() string
}

// JSONCodec is the default Codec.
type JSONCodec struct{}

// DefaultCodec returns the codec used when none is configured.
func DefaultCodec() Codec {
	return JSONCodec{}
}

// Marshal implements Codec.
func (JSONCodec) Marshal(value interface{}) ([]byte, error) {
	return json.Marshal(value)
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte, value interface{}) error {
	return json.Unmarshal(data, value)
}

// ContentType implements Codec.
func (JSONCodec) ContentType() string {
	return "application/json"
}

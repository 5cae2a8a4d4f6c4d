package session

import (
	"encoding/json"
)

// jsonCodec lets connect carry the plain Go messages of this package. It
// takes the "json" name so it replaces connect's protobuf JSON codec.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	// An empty body decodes to the zero message
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

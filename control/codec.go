package control

import (
	"encoding/json"
	"fmt"
)

// codecName doubles as the content subtype: unary calls travel as
// application/json.
const codecName = "json"

// jsonCodec marshals plain Go structs. The codec connect registers under
// the same name only accepts protobuf messages, so handlers and clients
// install this one in its place.
type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

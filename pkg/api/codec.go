// Package api defines the settleup.v1 RPC surface: request and response
// messages, procedure names, handler constructors and typed clients.
//
// Messages are plain Go structs carried by connect with a JSON codec, so any
// Connect-protocol client can call the services with application/json.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// CodecName is the codec name negotiated in the Content-Type header.
const CodecName = "json"

type jsonCodec struct{}

// Codec returns the JSON codec used by handlers and clients.
func Codec() connect.Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string {
	return CodecName
}

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal rejects unknown fields so malformed requests fail instead of
// being read as zero values.
func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("invalid json message: %w", err)
	}
	return nil
}

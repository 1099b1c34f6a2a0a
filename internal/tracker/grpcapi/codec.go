package grpcapi

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec is a grpc encoding.Codec that marshals messages as JSON rather
// than protobuf wire format. The track table messages already have a
// canonical binary form on the UDP wire (see package wire); this service
// exists purely to stream human/tool-readable snapshots to dashboards and
// debug clients, so JSON keeps it directly curlable with grpcurl without a
// .proto toolchain in the loop.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}

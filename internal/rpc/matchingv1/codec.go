package matchingv1

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype the messages travel with
// ("application/grpc+json").
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the validate tags of a request message.
func Validate(req any) error {
	return validate.Struct(req)
}

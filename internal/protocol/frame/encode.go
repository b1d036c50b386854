package frame

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var encMode = mustEncMode(cbor.CoreDetEncOptions())

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// Encode writes the header map followed by body. The body must be
// non-empty, since a header-only buffer does not decode.
func Encode(h Header, body []byte) ([]byte, error) {
	if h.Op != OpMessage && h.Op != OpError {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFrameType, h.Op)
	}
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	m := map[string]any{"op": int64(h.Op)}
	if t, ok := h.TypeTag(); ok {
		m["t"] = t
	}
	head, err := encMode.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("frame: encode header: %w", err)
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head...)
	return append(out, body...), nil
}

// EncodeMessage encodes a message frame with type tag t. An empty t is
// written as an untyped message.
func EncodeMessage(t string, body []byte) ([]byte, error) {
	h := UntypedMessageHeader()
	if t != "" {
		h = MessageHeader(t)
	}
	return Encode(h, body)
}

// EncodeError encodes an error frame carrying body.
func EncodeError(body []byte) ([]byte, error) {
	return Encode(ErrorHeader(), body)
}

package frame

import (
	"bytes"
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// decMode follows DAG-CBOR's decoding rules for the parts that matter for
// headers: string map keys, no duplicate keys, definite lengths only.
var decMode = mustDecMode(cbor.DecOptions{
	DupMapKey:      cbor.DupMapKeyEnforcedAPF,
	IndefLength:    cbor.IndefLengthForbidden,
	IntDec:         cbor.IntDecConvertNone,
	DefaultMapType: reflect.TypeOf(map[string]any(nil)),
})

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	dm, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

// Decode splits buf into its CBOR header and opaque body and interprets the
// header. Decode does not retain buf.
func Decode(buf []byte) (Frame, error) {
	head, body, err := split(buf)
	if err != nil {
		return Frame{}, err
	}
	h, err := parseHeader(head)
	if err != nil {
		return Frame{}, err
	}
	return assemble(h, body), nil
}

// split finds the end of the leading CBOR value. The value must be followed
// by at least one byte: a frame without a body is invalid.
func split(buf []byte) (head, body []byte, err error) {
	var raw cbor.RawMessage
	rest, err := decMode.UnmarshalFirst(buf, &raw)
	if err != nil {
		return nil, nil, &DataError{Data: bytes.Clone(buf), Err: err}
	}
	if len(rest) == 0 {
		return nil, nil, &DataError{Data: bytes.Clone(buf)}
	}
	n := len(buf) - len(rest)
	return buf[:n], buf[n:], nil
}

func parseHeader(b []byte) (Header, error) {
	var v any
	if err := decMode.Unmarshal(b, &v); err != nil {
		return Header{}, &DecodeError{Err: err}
	}
	return headerFromValue(v)
}

func headerFromValue(v any) (Header, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Header{}, &TypeError{Value: v}
	}
	op, ok := intValue(m["op"])
	if !ok {
		return Header{}, &TypeError{Value: v}
	}
	switch Op(op) {
	case OpMessage:
		// "t" is best effort: anything but text means untyped.
		if t, ok := m["t"].(string); ok {
			return MessageHeader(t), nil
		}
		return UntypedMessageHeader(), nil
	case OpError:
		return ErrorHeader(), nil
	default:
		return Header{}, &TypeError{Value: v}
	}
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func assemble(h Header, body []byte) Frame {
	if h.Op == OpError {
		return Frame{Header: h, Error: &ErrorFrame{}}
	}
	return Frame{Header: h, Message: &MessageFrame{Body: bytes.Clone(body)}}
}

package frame

import "strconv"

// Op is the frame discriminator carried in the header's "op" field.
type Op int64

const (
	OpMessage Op = 1
	OpError   Op = -1
)

func (o Op) String() string {
	switch o {
	case OpMessage:
		return "message"
	case OpError:
		return "error"
	default:
		return "op(" + strconv.FormatInt(int64(o), 10) + ")"
	}
}

// Header is the interpreted leading CBOR map of a frame.
// Type is only meaningful for OpMessage and only when HasType is set.
type Header struct {
	Op      Op
	Type    string
	HasType bool
}

// MessageHeader returns a message header with type tag t.
func MessageHeader(t string) Header {
	return Header{Op: OpMessage, Type: t, HasType: true}
}

// UntypedMessageHeader returns a message header without a type tag.
func UntypedMessageHeader() Header {
	return Header{Op: OpMessage}
}

// ErrorHeader returns an error-frame header.
func ErrorHeader() Header {
	return Header{Op: OpError}
}

// TypeTag reports the message body type discriminator, if any.
func (h Header) TypeTag() (string, bool) {
	if h.Op != OpMessage || !h.HasType {
		return "", false
	}
	return h.Type, true
}

// MessageFrame holds the undecoded message body. Body is never shared
// with the buffer passed to Decode.
type MessageFrame struct {
	Body []byte
}

// ErrorFrame marks an error frame. The error payload schema is not defined
// yet, so error-frame bodies are dropped on decode.
type ErrorFrame struct{}

// Frame is one decoded protocol unit. Exactly one of Message and Error is
// non-nil, matching Header.Op.
type Frame struct {
	Header  Header
	Message *MessageFrame
	Error   *ErrorFrame
}

// Kind returns the frame's op.
func (f Frame) Kind() Op {
	return f.Header.Op
}

// IsMessage reports whether f is a message frame.
func (f Frame) IsMessage() bool {
	return f.Message != nil
}

// IsError reports whether f is an error frame.
func (f Frame) IsError() bool {
	return f.Error != nil
}

package frame

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFrameData = errors.New("frame: invalid frame data")
	ErrInvalidFrameType = errors.New("frame: invalid frame type")
	ErrCBORDecode       = errors.New("frame: cbor decode failed")
	ErrEmptyBody        = errors.New("frame: empty body")
)

// DataError reports a buffer with no header/body split point: either no
// leading CBOR value could be read, or the value consumed the whole buffer.
// Err holds the codec error, and is nil for the exact-fit case.
type DataError struct {
	Data []byte
	Err  error
}

func (e *DataError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("frame: invalid frame data: header consumes all %d bytes", len(e.Data))
	}
	return fmt.Sprintf("frame: invalid frame data (%d bytes): %v", len(e.Data), e.Err)
}

func (e *DataError) Is(target error) bool { return target == ErrInvalidFrameData }

func (e *DataError) Unwrap() error { return e.Err }

// TypeError reports a header that decoded but is not a recognised frame
// header. Value is the decoded header.
type TypeError struct {
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("frame: invalid frame type: %v", e.Value)
}

func (e *TypeError) Is(target error) bool { return target == ErrInvalidFrameType }

// DecodeError reports header bytes that could not be decoded as a single
// well-formed value.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("frame: cbor decode failed: %v", e.Err)
}

func (e *DecodeError) Is(target error) bool { return target == ErrCBORDecode }

func (e *DecodeError) Unwrap() error { return e.Err }

// Class returns a short, stable name for the error class of err, suitable
// for metric labels and logs.
func Class(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidFrameData):
		return "invalid_frame_data"
	case errors.Is(err, ErrInvalidFrameType):
		return "invalid_frame_type"
	case errors.Is(err, ErrCBORDecode):
		return "cbor_decode"
	default:
		return "other"
	}
}

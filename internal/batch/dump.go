package batch

import (
	"encoding/binary"
	"errors"
	"io"
	"time"
)

// Dump records are a 12-byte header (big-endian uint32 frame length, int64
// receive time in unix milliseconds) followed by the frame bytes.
const dumpHeaderLen = 12

var (
	ErrShortDumpHeader = errors.New("batch: short dump record header")
	ErrDumpTooLarge    = errors.New("batch: dump record too large")
)

// DefaultMaxDumpRecord bounds a single dump record.
const DefaultMaxDumpRecord = 8 * 1024 * 1024

// WriteDump appends msgs to w in dump format.
func WriteDump(w io.Writer, msgs []Message) error {
	var hdr [dumpHeaderLen]byte
	for _, m := range msgs {
		if uint64(len(m.Data)) > DefaultMaxDumpRecord {
			return ErrDumpTooLarge
		}
		binary.BigEndian.PutUint32(hdr[0:4], uint32(len(m.Data)))
		binary.BigEndian.PutUint64(hdr[4:12], uint64(m.Received.UnixMilli()))
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
		if _, err := w.Write(m.Data); err != nil {
			return err
		}
	}
	return nil
}

// ReadDump reads dump records until EOF.
func ReadDump(r io.Reader, maxRecord uint32) ([]Message, error) {
	var msgs []Message
	var hdr [dumpHeaderLen]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return msgs, nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return msgs, ErrShortDumpHeader
			}
			return msgs, err
		}
		n := binary.BigEndian.Uint32(hdr[0:4])
		if n > maxRecord {
			return msgs, ErrDumpTooLarge
		}
		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			return msgs, err
		}
		msgs = append(msgs, Message{
			Received: time.UnixMilli(int64(binary.BigEndian.Uint64(hdr[4:12]))),
			Data:     data,
		})
	}
}

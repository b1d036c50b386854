package batch

import "time"

// Message is one frame as received from a transport.
type Message struct {
	Received time.Time
	Data     []byte
}

// Pack concatenates msgs into a List. Offsets are deltas between
// consecutive receive times, so accumulating them reproduces each
// message's receive time. Out-of-order receive times clamp to a zero delta.
func Pack(msgs []Message) List {
	l := List{
		Lengths: make([]uint32, len(msgs)),
		Offsets: make([]time.Duration, len(msgs)),
	}
	if len(msgs) == 0 {
		return l
	}

	total := 0
	for _, m := range msgs {
		total += len(m.Data)
	}
	l.Buffer = make([]byte, 0, total)
	l.Start = msgs[0].Received

	prev := l.Start
	for i, m := range msgs {
		l.Buffer = append(l.Buffer, m.Data...)
		l.Lengths[i] = uint32(len(m.Data))
		if d := m.Received.Sub(prev); d > 0 {
			l.Offsets[i] = d
			prev = m.Received
		}
	}
	return l
}

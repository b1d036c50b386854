package event

import (
	"testing"

	"github.com/danmuck/skyframe/internal/protocol/frame"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageFrame(t *testing.T, tag string, body any) frame.Frame {
	t.Helper()
	b, err := cbor.Marshal(body)
	require.NoError(t, err)
	buf, err := frame.EncodeMessage(tag, b)
	require.NoError(t, err)
	f, err := frame.Decode(buf)
	require.NoError(t, err)
	return f
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindCommit, KindOf("#commit", true))
	assert.Equal(t, KindIdentity, KindOf("#identity", true))
	assert.Equal(t, KindInfo, KindOf("#info", true))
	assert.Equal(t, KindUnknown, KindOf("#labels", true))
	assert.Equal(t, KindUnknown, KindOf("#commit", false))
}

func TestSummarizeCommit(t *testing.T) {
	f := messageFrame(t, "#commit", map[string]any{
		"seq":    int64(4242),
		"repo":   "did:plc:abc",
		"rev":    "3kzxyrev",
		"time":   "2024-03-01T00:00:00Z",
		"blocks": []byte{0x01, 0x02},
		"ops":    []any{map[string]any{"action": "create", "path": "app.bsky.feed.post/1"}},
		"commit": cbor.Tag{Number: 42, Content: []byte{0x00, 0x01}},
	})

	s, err := Summarize(f)
	require.NoError(t, err)
	assert.Equal(t, KindCommit, s.Kind)
	assert.True(t, s.HasSeq)
	assert.Equal(t, int64(4242), s.Seq)
	assert.Equal(t, "did:plc:abc", s.Actor())
	assert.Equal(t, "3kzxyrev", s.Label())
}

func TestSummarizeIdentityUsesDID(t *testing.T) {
	f := messageFrame(t, "#identity", map[string]any{
		"seq":  int64(7),
		"did":  "did:plc:xyz",
		"time": "2024-03-01T00:00:00Z",
	})

	s, err := Summarize(f)
	require.NoError(t, err)
	assert.Equal(t, KindIdentity, s.Kind)
	assert.Equal(t, "did:plc:xyz", s.Actor())
	assert.Equal(t, "#identity", s.Label())
}

func TestSummarizeInfoWithoutSeq(t *testing.T) {
	f := messageFrame(t, "#info", map[string]any{
		"name":    "OutdatedCursor",
		"message": "cursor too old",
	})

	s, err := Summarize(f)
	require.NoError(t, err)
	assert.False(t, s.HasSeq)
	assert.Equal(t, "OutdatedCursor", s.Name)
	assert.Equal(t, "cursor too old", s.Message)
}

func TestSummarizeUntypedMessage(t *testing.T) {
	f := messageFrame(t, "", map[string]any{"seq": int64(1)})

	s, err := Summarize(f)
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, s.Kind)
	assert.Equal(t, "unknown", s.Label())
}

func TestSummarizeErrorFrame(t *testing.T) {
	buf, err := frame.EncodeError([]byte{0xFF})
	require.NoError(t, err)
	f, err := frame.Decode(buf)
	require.NoError(t, err)

	s, err := Summarize(f)
	require.NoError(t, err)
	assert.Equal(t, KindError, s.Kind)
	assert.Equal(t, "error", s.Label())
}

func TestSummarizeRejectsNonMapBody(t *testing.T) {
	buf, err := frame.EncodeMessage("#commit", []byte{0x18, 0x2A})
	require.NoError(t, err)
	f, err := frame.Decode(buf)
	require.NoError(t, err)

	s, err := Summarize(f)
	require.ErrorIs(t, err, ErrBody)
	assert.Equal(t, KindCommit, s.Kind)
}

// Package event reads the few envelope fields of a firehose message body
// that are needed for routing and progress tracking. Full body decoding
// belongs to the lexicon schema layer.
package event

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/danmuck/skyframe/internal/protocol/frame"
	"github.com/fxamacker/cbor/v2"
)

// Kind is the message kind derived from a frame's type tag.
type Kind string

const (
	KindCommit    Kind = "#commit"
	KindSync      Kind = "#sync"
	KindIdentity  Kind = "#identity"
	KindAccount   Kind = "#account"
	KindHandle    Kind = "#handle"
	KindMigrate   Kind = "#migrate"
	KindTombstone Kind = "#tombstone"
	KindInfo      Kind = "#info"
	KindError     Kind = "error"
	KindUnknown   Kind = "unknown"
)

var knownKinds = map[string]Kind{
	string(KindCommit):    KindCommit,
	string(KindSync):      KindSync,
	string(KindIdentity):  KindIdentity,
	string(KindAccount):   KindAccount,
	string(KindHandle):    KindHandle,
	string(KindMigrate):   KindMigrate,
	string(KindTombstone): KindTombstone,
	string(KindInfo):      KindInfo,
}

// KindOf maps a frame type tag to a Kind.
func KindOf(tag string, ok bool) Kind {
	if !ok {
		return KindUnknown
	}
	if k, found := knownKinds[tag]; found {
		return k
	}
	return KindUnknown
}

// ErrBody is wrapped by Summarize when a message body is not a CBOR map.
var ErrBody = errors.New("event: invalid message body")

// Summary holds the envelope fields common to firehose messages.
type Summary struct {
	Kind    Kind
	Tag     string
	Seq     int64
	HasSeq  bool
	Repo    string
	DID     string
	Rev     string
	Time    string
	Name    string
	Message string
}

// Label is the short per-record result: the revision for commits, the kind
// otherwise.
func (s Summary) Label() string {
	if s.Kind == KindCommit && s.Rev != "" {
		return s.Rev
	}
	return string(s.Kind)
}

// Actor returns the account the event is about.
func (s Summary) Actor() string {
	if s.Repo != "" {
		return s.Repo
	}
	return s.DID
}

type envelope struct {
	Seq     *int64 `cbor:"seq"`
	Repo    string `cbor:"repo"`
	DID     string `cbor:"did"`
	Rev     string `cbor:"rev"`
	Time    string `cbor:"time"`
	Name    string `cbor:"name"`
	Message string `cbor:"message"`
}

var bodyMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// Summarize reads the envelope fields of a message frame. Error frames
// summarise as KindError without reading any body.
func Summarize(f frame.Frame) (Summary, error) {
	if f.IsError() {
		return Summary{Kind: KindError}, nil
	}
	if f.Message == nil {
		return Summary{}, fmt.Errorf("%w: frame has no message", ErrBody)
	}
	tag, ok := f.Header.TypeTag()
	s := Summary{Kind: KindOf(tag, ok), Tag: tag}

	var env envelope
	if err := bodyMode.Unmarshal(f.Message.Body, &env); err != nil {
		return s, fmt.Errorf("%w: %v", ErrBody, err)
	}
	if env.Seq != nil {
		s.Seq = *env.Seq
		s.HasSeq = true
	}
	s.Repo = env.Repo
	s.DID = env.DID
	s.Rev = env.Rev
	s.Time = env.Time
	s.Name = env.Name
	s.Message = env.Message
	return s, nil
}

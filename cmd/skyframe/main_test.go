package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/skyframe/internal/batch"
	"github.com/danmuck/skyframe/internal/protocol/frame"
	"github.com/fxamacker/cbor/v2"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func commitBody(t *testing.T, seq int64, rev string) []byte {
	t.Helper()
	body, err := cbor.Marshal(map[string]any{"seq": seq, "repo": "did:plc:abc", "rev": rev})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func TestEncodeThenDecode(t *testing.T) {
	body := hex.EncodeToString(commitBody(t, 77, "rev-77"))
	encoded, err := run(t, "", "encode", "--type", "#commit", "--body-hex", body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := run(t, encoded, "decode", "--hex")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, want := range []string{"op:    message", "type:  #commit", "label: rev-77", "seq:   77", "actor: did:plc:abc"} {
		if !strings.Contains(out, want) {
			t.Fatalf("decode output missing %q:\n%s", want, out)
		}
	}
}

func TestDecodeReportsErrorClass(t *testing.T) {
	header, err := cbor.Marshal(map[string]any{"op": 1})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	_, err = run(t, hex.EncodeToString(header), "decode", "--hex")
	if err == nil || !strings.Contains(err.Error(), "invalid_frame_data") {
		t.Fatalf("expected invalid_frame_data error, got %v", err)
	}
}

func TestEncodeRejectsUnknownOp(t *testing.T) {
	if _, err := run(t, "", "encode", "--op", "5", "--body-hex", "00"); err == nil {
		t.Fatalf("expected unknown op error")
	}
}

func TestReplayDump(t *testing.T) {
	commit, err := frame.EncodeMessage("#commit", commitBody(t, 5, "rev-5"))
	if err != nil {
		t.Fatalf("encode commit: %v", err)
	}
	errFrame, err := frame.EncodeError([]byte{0xA0})
	if err != nil {
		t.Fatalf("encode error frame: %v", err)
	}
	base := time.UnixMilli(1_700_000_000_000)
	var dump bytes.Buffer
	if err := batch.WriteDump(&dump, []batch.Message{
		{Received: base, Data: commit},
		{Received: base.Add(time.Millisecond), Data: errFrame},
		{Received: base.Add(2 * time.Millisecond), Data: []byte{0xA1}},
	}); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	path := filepath.Join(t.TempDir(), "frames.dump")
	if err := os.WriteFile(path, dump.Bytes(), 0o644); err != nil {
		t.Fatalf("write dump file: %v", err)
	}

	out, err := run(t, "", "replay", "--log-level", "off", path)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	for _, want := range []string{"frames:  3", "failed:  1", "#commit", "error", "last seq: 5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("replay output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skyframe.toml")
	if _, err := run(t, "", "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	out, err := run(t, "", "config", "validate", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "validated config") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := run(t, "", "config", "init", path); err == nil {
		t.Fatalf("expected init to refuse overwrite")
	}
}

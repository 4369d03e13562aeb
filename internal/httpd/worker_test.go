package httpd

import (
	"bytes"
	"testing"

	"reshell/internal/procstate"
	"reshell/internal/session"
	"reshell/internal/shell"
	"reshell/internal/workerpool"
	"reshell/internal/wsproto"
)

type fakeConn struct {
	bytes.Buffer
}

func newTestWorker(t *testing.T) (*connWorker, *session.Session) {
	t.Helper()
	env, err := procstate.NewEnvironment()
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	pool, err := session.New()
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	sess, ok := pool.Allocate()
	if !ok {
		t.Fatalf("Allocate failed")
	}
	w := &connWorker{
		sessions: pool,
		interp: &shell.Interpreter{
			Env:            env,
			WorkerCapacity: workerpool.Capacity,
		},
	}
	return w, sess
}

func TestFeedInputEchoesPrintableBytes(t *testing.T) {
	w, sess := newTestWorker(t)
	var conn fakeConn
	w.feedInput(&conn, sess, []byte("ls"))
	if conn.String() != "ls" {
		t.Fatalf("echo = %q, want %q", conn.String(), "ls")
	}
}

func TestFeedInputBackspaceErasesOnWire(t *testing.T) {
	w, sess := newTestWorker(t)
	var conn fakeConn
	w.feedInput(&conn, sess, []byte{'a', 0x7F})
	want := "a" + string([]byte{0x08, ' ', 0x08})
	if conn.String() != want {
		t.Fatalf("echo = %q, want %q", conn.String(), want)
	}
}

func TestFeedInputEnterExecutesAndWritesOutput(t *testing.T) {
	w, sess := newTestWorker(t)
	var conn fakeConn
	w.feedInput(&conn, sess, []byte("echo hi\n"))
	if conn.String() != "echo hi\n" {
		t.Fatalf("echo = %q, want typed bytes then a bare newline before execution", conn.String())
	}
	if !sess.HasOutput() {
		t.Fatalf("expected session output after command execution")
	}
	dst := make([]byte, session.OutputCapacity)
	n := sess.ReadOutput(dst)
	if got := string(dst[:n]); got != "hi\n" {
		t.Fatalf("session output = %q, want %q", got, "hi\n")
	}
}

func TestFeedInputEmptyEnterSendsPromptDirectly(t *testing.T) {
	w, sess := newTestWorker(t)
	var conn fakeConn
	w.feedInput(&conn, sess, []byte("\n"))
	if conn.String() != "\n$ " {
		t.Fatalf("echo = %q, want %q", conn.String(), "\n$ ")
	}
	if sess.HasOutput() {
		t.Fatalf("empty line should not execute anything")
	}
}

func TestDrainOutputAppendsPromptFrame(t *testing.T) {
	w, sess := newTestWorker(t)
	sess.WriteOutput([]byte("hi\n"))

	var conn fakeConn
	w.drainOutput(&conn, sess)

	buf := conn.Bytes()
	outputFrame, n1, err := wsproto.Decode(buf)
	if err != nil {
		t.Fatalf("decode output frame: %v", err)
	}
	if string(outputFrame.Payload) != "hi\n" {
		t.Fatalf("output frame payload = %q, want %q", outputFrame.Payload, "hi\n")
	}

	promptFrame, n2, err := wsproto.Decode(buf[n1:])
	if err != nil {
		t.Fatalf("decode prompt frame: %v", err)
	}
	if string(promptFrame.Payload) != "$ " {
		t.Fatalf("prompt frame payload = %q, want %q", promptFrame.Payload, "$ ")
	}
	if n1+n2 != len(buf) {
		t.Fatalf("unexpected trailing bytes after output+prompt frames")
	}
}

func TestParseRequestLineExtractsMethodAndPath(t *testing.T) {
	method, path, ok := parseRequestLine([]byte("GET /index.html HTTP/1.1\r\nHost: x\r\n\r\n"))
	if !ok || method != "GET" || path != "/index.html" {
		t.Fatalf("parseRequestLine = %q %q %v", method, path, ok)
	}
}

func TestParseRequestLineRejectsMalformed(t *testing.T) {
	if _, _, ok := parseRequestLine([]byte("garbage")); ok {
		t.Fatalf("expected malformed request line to be rejected")
	}
}

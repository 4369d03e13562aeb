package prompt

import (
	"bytes"
	"strings"
	"testing"

	"reshell/internal/procstate"
)

func newTestLoop(t *testing.T, input string) (*Loop, *bytes.Buffer) {
	t.Helper()
	env, err := procstate.NewEnvironment()
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	env.Set("PATH", "/usr/bin")
	var out bytes.Buffer
	shutdown := &procstate.ShutdownFlag{}
	return &Loop{
		Env:      env,
		Shutdown: shutdown,
		In:       strings.NewReader(input),
		Out:      &out,
	}, &out
}

func TestReadLineEchoesAndTerminatesOnNewline(t *testing.T) {
	l, out := newTestLoop(t, "pwd\n")
	line, ok := l.readLine()
	if !ok {
		t.Fatalf("readLine returned !ok")
	}
	if line != "pwd" {
		t.Fatalf("readLine = %q, want %q", line, "pwd")
	}
	if !strings.HasPrefix(out.String(), "pwd") {
		t.Fatalf("echoed output = %q, want prefix %q", out.String(), "pwd")
	}
}

func TestReadLineBackspaceErases(t *testing.T) {
	l, _ := newTestLoop(t, "lsx\x7F\n")
	line, ok := l.readLine()
	if !ok {
		t.Fatalf("readLine returned !ok")
	}
	if line != "ls" {
		t.Fatalf("readLine = %q, want %q", line, "ls")
	}
}

func TestReadLineCtrlCAbortsLine(t *testing.T) {
	l, out := newTestLoop(t, "abc\x03")
	line, ok := l.readLine()
	if !ok {
		t.Fatalf("readLine returned !ok")
	}
	if line != "" {
		t.Fatalf("readLine after ^C = %q, want empty", line)
	}
	if !strings.Contains(out.String(), "^C") {
		t.Fatalf("output missing ^C echo: %q", out.String())
	}
}

func TestCompletePrefersBuiltins(t *testing.T) {
	l, _ := newTestLoop(t, "")
	if got := l.complete("ec"); got != "echo" {
		t.Fatalf("complete(ec) = %q, want %q", got, "echo")
	}
}

func TestCompleteReturnsPrefixWhenNoMatch(t *testing.T) {
	l, _ := newTestLoop(t, "")
	if got := l.complete("zzzznomatch"); got != "zzzznomatch" {
		t.Fatalf("complete(no match) = %q, want unchanged prefix", got)
	}
}

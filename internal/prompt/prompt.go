// Package prompt implements spec.md §4.10's interactive prompt loop (IP):
// the main thread's local line editor, running in parallel with the
// remote WebSocket sessions HL/WS/SP/SSH serve.
//
// Raw-mode handling goes through golang.org/x/term rather than hand-rolled
// TCGETS/TCSETS ioctls, the way kornnellio-runc-Go's exec.go puts a PTY's
// controlling terminal in raw mode before relaying bytes.
package prompt

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"reshell/internal/procstate"
	"reshell/internal/shell"
	"reshell/internal/sysx"
)

// Builtins is the hard-coded completion list §4.10 calls for, mirroring
// the dispatch table in internal/shell.
var Builtins = []string{"pwd", "cd", "ls", "echo", "export", "env", "threads", "exit"}

const (
	byteBackspace1 = 0x7F
	byteBackspace2 = 0x08
	byteETX        = 0x03
	byteTab        = 0x09
)

// Loop drives the local terminal user: prompt, raw-mode single-byte reads,
// line editing, and built-in dispatch shared with the session shell.
type Loop struct {
	Env      *procstate.Environment
	Shutdown *procstate.ShutdownFlag
	Interp   *shell.Interpreter

	In    io.Reader
	Out   io.Writer
	InFD  int // must be a real terminal fd for raw mode; 0 (stdin) in production
}

// Run writes prompts and dispatches lines until the shutdown flag is set
// or the input stream closes. If InFD is a terminal, it is switched to raw
// mode for the duration and restored on return.
func (l *Loop) Run() {
	if term.IsTerminal(l.InFD) {
		if old, err := term.MakeRaw(l.InFD); err == nil {
			defer term.Restore(l.InFD, old)
		}
	}

	for {
		if l.Shutdown.ShouldShutdown() {
			return
		}

		fmt.Fprint(l.Out, "reshell> ")
		line, ok := l.readLine()
		if !ok {
			return
		}
		if line == "" {
			continue
		}
		l.Interp.Execute(line, ioWriter{l.Out})
	}
}

// readLine reads and echoes bytes until CR/LF terminates the line or ^C
// aborts it. Returns ok=false when the input stream is exhausted.
func (l *Loop) readLine() (string, bool) {
	var buf []byte
	one := make([]byte, 1)

	for {
		n, err := l.In.Read(one)
		if n == 0 || err != nil {
			return "", false
		}
		b := one[0]

		switch {
		case b == '\r' || b == '\n':
			fmt.Fprint(l.Out, "\r\n")
			return string(buf), true
		case b == byteETX:
			fmt.Fprint(l.Out, "^C\r\n")
			return "", true
		case b == byteBackspace1 || b == byteBackspace2:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				fmt.Fprint(l.Out, "\b \b")
			}
		case b == byteTab:
			completed := l.complete(string(buf))
			if completed != "" && completed != string(buf) {
				fmt.Fprint(l.Out, completed[len(buf):])
				buf = []byte(completed)
			}
		case b >= 32 && b <= 126:
			buf = append(buf, b)
			l.Out.Write(one)
		default:
			// ignored
		}
	}
}

// complete returns the first builtin or $PATH entry matching prefix,
// favoring the hard-coded builtin table before scanning PATH directories.
func (l *Loop) complete(prefix string) string {
	if prefix == "" {
		return prefix
	}
	for _, b := range Builtins {
		if strings.HasPrefix(b, prefix) {
			return b
		}
	}

	path, _ := l.Env.Get("PATH")
	for _, dir := range strings.Split(path, ":") {
		if dir == "" {
			continue
		}
		if match, ok := scanDirForPrefix(dir, prefix); ok {
			return match
		}
	}
	return prefix
}

func scanDirForPrefix(dir, prefix string) (string, bool) {
	fd, err := sysx.Open(dir, 0, 0)
	if err != nil {
		return "", false
	}
	defer sysx.Close(fd)

	buf := make([]byte, 4096)
	for {
		n, err := sysx.Getdents(fd, buf)
		if err != nil || n <= 0 {
			break
		}
		for _, name := range shell.ParseDirents(buf[:n]) {
			if strings.HasPrefix(name, prefix) {
				return name, true
			}
		}
	}
	return "", false
}

// ioWriter adapts io.Writer to the shell package's unexported writer
// interface (identical method set, different package).
type ioWriter struct {
	w io.Writer
}

func (iw ioWriter) Write(p []byte) (int, error) {
	return iw.w.Write(p)
}

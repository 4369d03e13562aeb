package httpd

import (
	"bufio"
	"bytes"
	"log"

	"reshell/internal/assets"
	"reshell/internal/procstate"
	"reshell/internal/session"
	"reshell/internal/shell"
	"reshell/internal/sysx"
	"reshell/internal/wsproto"
)

// FramePollMillis bounds how long the frame loop blocks in poll before
// re-checking the shutdown flag (spec.md §5).
const FramePollMillis = 50

// connWorker runs spec.md §4.5/§4.6/§4.7/§4.8 for one accepted connection:
// parse the request, route to static asset or WS upgrade, then (for
// upgrades) run the handshake and frame loop against one session.
type connWorker struct {
	fd       int
	shutdown *procstate.ShutdownFlag
	sessions *session.Pool
	interp   *shell.Interpreter
	logger   *log.Logger
}

func (w *connWorker) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}

func (w *connWorker) serve() {
	defer sysx.Close(w.fd)

	conn := fdConn{fd: w.fd}
	r := bufio.NewReaderSize(conn, RequestReadLimit)

	raw, err := wsproto.ReadRequest(r, RequestReadLimit)
	if err != nil || len(raw) == 0 {
		return
	}

	if wsproto.IsUpgradeRequest(raw) {
		w.serveUpgrade(conn, raw)
		return
	}

	w.serveStatic(conn, raw)
}

func (w *connWorker) serveStatic(conn fdConn, raw []byte) {
	method, path, ok := parseRequestLine(raw)
	if !ok {
		return
	}
	if method != "GET" {
		conn.Write([]byte("HTTP/1.1 405 Method Not Allowed\r\nContent-Length: 0\r\n\r\n"))
		return
	}
	if path != assets.Path {
		conn.Write([]byte("HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"))
		return
	}

	body := assets.TerminalHTML
	header := []byte("HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n")
	conn.Write(header)
	conn.Write(body)
}

// serveUpgrade performs the handshake, allocates a session, sends the
// welcome banner and first prompt (spec.md §6's bit-level dialog;
// original_source network/websocket.rs:185), and runs the frame loop until
// CLOSE, shutdown, or a protocol violation (spec.md §4.6, §4.7, §7).
func (w *connWorker) serveUpgrade(conn fdConn, raw []byte) {
	key, ok := wsproto.ExtractKey(raw)
	if !ok {
		w.logf("reshelld: ws upgrade missing Sec-WebSocket-Key, closing")
		return
	}

	if _, err := conn.Write(wsproto.AcceptResponse(key)); err != nil {
		return
	}

	sess, ok := w.sessions.Allocate()
	if !ok {
		w.logf("reshelld: no free session, dropping connection")
		return
	}
	defer w.sessions.Free(sess)

	if _, err := conn.Write(wsproto.EncodeText([]byte("Welcome to ReShell!\n$ "))); err != nil {
		return
	}

	w.frameLoop(conn, sess)
}

// frameLoop reads raw bytes from the socket, decodes frames as they
// complete, and drives the session. It also drains any output the
// interpreter produced back out as TEXT frames.
func (w *connWorker) frameLoop(conn fdConn, sess *session.Session) {
	var accum []byte
	readBuf := make([]byte, wsproto.MaxReadChunk)

	for {
		if w.shutdown.ShouldShutdown() {
			conn.Write(wsproto.EncodeClose())
			return
		}

		revents, err := sysx.Poll(w.fd, 0x0001 /* POLLIN */, FramePollMillis)
		if err != nil {
			return
		}
		if revents == 0 {
			w.drainOutput(conn, sess)
			continue
		}

		n, err := conn.Read(readBuf)
		if err != nil || n == 0 {
			return
		}
		accum = append(accum, readBuf[:n]...)

		for {
			frame, consumed, err := wsproto.Decode(accum)
			if err == wsproto.ErrFrameTooShort {
				break
			}
			if err == wsproto.ErrUnsupportedLength {
				w.logf("reshelld: ws protocol violation (unsupported length), closing")
				return
			}
			if err != nil {
				return
			}

			accum = accum[consumed:]
			if !w.handleFrame(conn, sess, frame) {
				return
			}
		}

		w.drainOutput(conn, sess)
	}
}

// connWriter is the minimal sink feedInput and drainOutput write frames to
// — satisfied by fdConn, and by a fake in tests.
type connWriter interface {
	Write(p []byte) (int, error)
}

// handleFrame dispatches one decoded frame per spec.md §4.6. Returns false
// when the connection should close.
func (w *connWorker) handleFrame(conn connWriter, sess *session.Session, frame wsproto.Frame) bool {
	switch frame.Opcode {
	case wsproto.OpText:
		w.feedInput(conn, sess, frame.Payload)
	case wsproto.OpClose:
		conn.Write(wsproto.EncodeClose())
		return false
	case wsproto.OpPing:
		conn.Write(wsproto.EncodePong())
	default:
		// ignored
	}
	return true
}

// feedInput pushes each byte of payload through the session's input
// editor, echoing printable bytes and backspaces, and executing the line
// on CR/LF (spec.md §4.7). On Enter, a non-empty line is echoed with a bare
// newline before executing (the command's own output, plus drainOutput's
// trailing prompt, follow); an empty line gets the full `\n$ ` directly,
// since there is nothing to execute and so no output to drain
// (original_source network/websocket.rs:290-296).
func (w *connWorker) feedInput(conn connWriter, sess *session.Session, payload []byte) {
	for _, b := range payload {
		switch {
		case b == '\r' || b == '\n':
			dst := make([]byte, session.InputCapacity)
			n := sess.GetInput(dst)
			sess.ClearInput()
			if n > 0 {
				conn.Write([]byte("\n"))
				w.interp.Execute(string(dst[:n]), sessionWriter{sess})
			} else {
				conn.Write([]byte("\n$ "))
			}
		case b == 0x7F || b == 0x08:
			sess.BackspaceInput()
			conn.Write([]byte{0x08, ' ', 0x08})
		case b >= 32 && b <= 126:
			sess.AppendInput(b)
			conn.Write([]byte{b})
		default:
			// ignored
		}
	}
}

// drainOutput flushes any bytes the interpreter wrote into sess's output
// ring out as WS TEXT frames, fragmented to MaxReadChunk per frame, then
// sends the `$ ` prompt frame that follows every non-empty drain
// (original_source network/websocket.rs:199-200).
func (w *connWorker) drainOutput(conn connWriter, sess *session.Session) {
	if !sess.HasOutput() {
		return
	}
	buf := make([]byte, wsproto.MaxReadChunk)
	for sess.HasOutput() {
		n := sess.ReadOutput(buf)
		if n == 0 {
			return
		}
		frame := wsproto.EncodeText(buf[:n])
		if frame == nil {
			return
		}
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
	conn.Write(wsproto.EncodeText([]byte("$ ")))
}

// sessionWriter adapts *session.Session to the shell package's writer
// interface, routing built-in output into the session's output ring
// instead of the process's own stdout.
type sessionWriter struct {
	s *session.Session
}

func (sw sessionWriter) Write(p []byte) (int, error) {
	sw.s.WriteOutput(p)
	return len(p), nil
}

// parseRequestLine extracts the method and path from the first line of a
// raw HTTP request, tolerant of everything after it (spec.md §4.5).
func parseRequestLine(raw []byte) (method, path string, ok bool) {
	end := bytes.IndexByte(raw, '\n')
	if end < 0 {
		end = len(raw)
	}
	line := bytes.TrimRight(raw[:end], "\r\n")
	parts := bytes.Fields(line)
	if len(parts) < 2 {
		return "", "", false
	}
	return string(parts[0]), string(parts[1]), true
}

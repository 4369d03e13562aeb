// Package session implements spec.md §4.7's session pool: a fixed array of
// 16 shell sessions, each with its own input line-editor state and output
// ring, allocated and freed by scanning active flags.
package session

import (
	"sync/atomic"

	"reshell/internal/sysx"
)

// Capacity is the fixed number of session slots (spec.md §3).
const Capacity = 16

// InputCapacity is the input line buffer size in bytes.
const InputCapacity = 512

// OutputCapacity is the output ring buffer size in bytes.
const OutputCapacity = 4096

// Session is one slot of the fixed pool. spec.md §9 allows substituting a
// true wrap-around ring for the output buffer as long as the external
// contract — single reader, single writer, bytes consumed in order — is
// preserved; this implementation takes that option; overwrite policy: a
// write that would make the unread span (writeCursor - readCursor) exceed
// OutputCapacity is truncated at the boundary rather than overwriting
// unread bytes, matching Testable Property 4 exactly.
type Session struct {
	idx    int
	active atomic.Bool

	inputBuf []byte
	inputLen int

	outputBuf    []byte
	writeCursor  atomic.Uint64
	readCursor   atomic.Uint64
}

// Index returns the session's position in the pool.
func (s *Session) Index() int { return s.idx }

// Pool is the fixed 16-session pool.
type Pool struct {
	sessions [Capacity]*Session
}

// New allocates the pool and each session's mmap-backed input/output
// buffers.
func New() (*Pool, error) {
	p := &Pool{}
	for i := range p.sessions {
		in, err := sysx.Mmap(InputCapacity)
		if err != nil {
			return nil, err
		}
		out, err := sysx.Mmap(OutputCapacity)
		if err != nil {
			return nil, err
		}
		p.sessions[i] = &Session{idx: i, inputBuf: in, outputBuf: out}
	}
	return p, nil
}

// Allocate scans for the first inactive session, flips its active flag with
// release ordering, resets its cursors, and returns it. Returns nil, false
// if the pool is full; the caller must close the connection (spec.md
// §4.7).
func (p *Pool) Allocate() (*Session, bool) {
	for _, s := range p.sessions {
		if s.active.CompareAndSwap(false, true) {
			s.inputLen = 0
			s.writeCursor.Store(0)
			s.readCursor.Store(0)
			return s, true
		}
	}
	return nil, false
}

// Free clears the session's active flag, returning it to the pool.
func (p *Pool) Free(s *Session) {
	s.active.Store(false)
}

// ActiveCount returns the number of currently active sessions.
func (p *Pool) ActiveCount() int {
	n := 0
	for _, s := range p.sessions {
		if s.active.Load() {
			n++
		}
	}
	return n
}

// AppendInput pushes a printable byte (32..126) onto the input buffer if
// there's room; out-of-range bytes and overflow are silently ignored
// (spec.md §4.7).
func (s *Session) AppendInput(b byte) {
	if b < 32 || b > 126 {
		return
	}
	if s.inputLen >= InputCapacity {
		return
	}
	s.inputBuf[s.inputLen] = b
	s.inputLen++
}

// BackspaceInput decrements the input length if it's greater than 0.
func (s *Session) BackspaceInput() {
	if s.inputLen > 0 {
		s.inputLen--
	}
}

// GetInput copies the current input line into dst, up to the smaller of
// both lengths, and returns the number of bytes copied.
func (s *Session) GetInput(dst []byte) int {
	return copy(dst, s.inputBuf[:s.inputLen])
}

// ClearInput resets the input length to 0.
func (s *Session) ClearInput() {
	s.inputLen = 0
}

// WriteOutput appends bytes to the output ring at the write cursor. Bytes
// that would make the unread span exceed OutputCapacity are dropped (see
// the Session doc comment for the overwrite policy).
func (s *Session) WriteOutput(p []byte) {
	wc := s.writeCursor.Load()
	rc := s.readCursor.Load()
	unread := wc - rc

	room := uint64(OutputCapacity) - unread
	if room == 0 {
		return
	}
	if uint64(len(p)) > room {
		p = p[:room]
	}

	for i, b := range p {
		pos := (wc + uint64(i)) % OutputCapacity
		s.outputBuf[pos] = b
	}
	s.writeCursor.Store(wc + uint64(len(p)))
}

// ReadOutput copies bytes from the read cursor up to min(available,
// len(dst)), advances the read cursor, and returns the number of bytes
// copied.
func (s *Session) ReadOutput(dst []byte) int {
	rc := s.readCursor.Load()
	wc := s.writeCursor.Load()
	available := wc - rc
	if available == 0 {
		return 0
	}

	n := uint64(len(dst))
	if n > available {
		n = available
	}

	for i := uint64(0); i < n; i++ {
		pos := (rc + i) % OutputCapacity
		dst[i] = s.outputBuf[pos]
	}
	s.readCursor.Store(rc + n)
	return int(n)
}

// HasOutput reports whether there are unread bytes.
func (s *Session) HasOutput() bool {
	return s.readCursor.Load() < s.writeCursor.Load()
}

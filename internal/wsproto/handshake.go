// Package wsproto hand-rolls the RFC 6455 subset spec.md §4.6 requires: the
// handshake's Sec-WebSocket-Accept computation and a frame codec with
// masking. This is deliberately not built on a WebSocket library — the
// point of this component is that reshelld computes these bytes itself;
// Testable Properties 1 and 2 are assertions about this exact code, not
// about a library's conformance. See SPEC_FULL.md §2 for where this
// project's one WebSocket dependency (nhooyr.io/websocket) lives instead.
package wsproto

import (
	"bufio"
	"strings"

	"reshell/internal/crypto"
)

// MaxKeyLen is the longest Sec-WebSocket-Key value the handshake reads
// (spec.md §4.6).
const MaxKeyLen = 60

const keyHeader = "Sec-WebSocket-Key: "

// ExtractKey locates the Sec-WebSocket-Key header in a raw HTTP request
// (case-sensitive match, exactly one space after the colon, per spec.md
// §4.6) and returns its value up to CR or LF, capped at MaxKeyLen bytes.
// Returns "", false if no such header is present.
func ExtractKey(request []byte) (string, bool) {
	idx := strings.Index(string(request), keyHeader)
	if idx < 0 {
		return "", false
	}
	rest := request[idx+len(keyHeader):]

	end := len(rest)
	for i, b := range rest {
		if b == '\r' || b == '\n' {
			end = i
			break
		}
	}
	if end > MaxKeyLen {
		end = MaxKeyLen
	}
	return string(rest[:end]), true
}

// AcceptResponse builds the bit-exact 101 Switching Protocols response for
// the given client key (spec.md §4.6).
func AcceptResponse(key string) []byte {
	accept := crypto.AcceptKey(key)
	var b strings.Builder
	b.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	b.WriteString("Sec-WebSocket-Accept: ")
	b.WriteString(accept)
	b.WriteString("\r\n\r\n")
	return []byte(b.String())
}

// IsUpgradeRequest reports whether the request contains "websocket" or
// "WebSocket" anywhere (spec.md §4.5's tolerant routing check).
func IsUpgradeRequest(request []byte) bool {
	s := string(request)
	return strings.Contains(s, "websocket") || strings.Contains(s, "WebSocket")
}

// ReadRequest reads up to limit bytes looking for the CRLFCRLF header
// terminator, tolerant of however much of the body follows (spec.md §4.5:
// "no header validation beyond locating the CRLF-CRLF boundary").
func ReadRequest(r *bufio.Reader, limit int) ([]byte, error) {
	buf := make([]byte, limit)
	n, err := r.Read(buf)
	if n == 0 {
		return nil, err
	}
	return buf[:n], nil
}

package wsproto

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestDecodeEncodeTextRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("l"),
		[]byte(""),
		bytes.Repeat([]byte("a"), 125),
		bytes.Repeat([]byte("b"), 126),
		bytes.Repeat([]byte("c"), 65535),
	}

	for _, p := range payloads {
		encoded := EncodeText(p)
		frame, n, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(EncodeText(%d bytes)): %v", len(p), err)
		}
		if n != len(encoded) {
			t.Fatalf("Decode consumed %d bytes, want %d", n, len(encoded))
		}
		if frame.Opcode != OpText || !frame.FIN || frame.Masked {
			t.Fatalf("unexpected frame header: %+v", frame)
		}
		if !bytes.Equal(frame.Payload, p) {
			t.Fatalf("payload mismatch: got %d bytes, want %d", len(frame.Payload), len(p))
		}
	}
}

func TestEncodeTextOverMaxPayload(t *testing.T) {
	if got := EncodeText(make([]byte, MaxPayload+1)); got != nil {
		t.Fatalf("EncodeText(oversized) = %v, want nil", got)
	}
}

func TestMaskedClientFrameDecodesToOriginalPayload(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	payload := make([]byte, 300)
	rng.Read(payload)

	var mask [4]byte
	rng.Read(mask[:])

	encoded := EncodeClientText(payload, mask)
	frame, n, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != len(encoded) {
		t.Fatalf("consumed %d, want %d", n, len(encoded))
	}
	if !frame.Masked {
		t.Fatalf("expected masked frame")
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Fatalf("payload mismatch after unmask")
	}
}

func TestDecodeShortFrame(t *testing.T) {
	if _, _, err := Decode([]byte{0x81}); err != ErrFrameTooShort {
		t.Fatalf("Decode(1 byte) = %v, want ErrFrameTooShort", err)
	}
}

func TestDecodeUnsupportedExtendedLength(t *testing.T) {
	frameHeader := []byte{0x81, 0xFF} // mask bit set, len=127
	if _, _, err := Decode(frameHeader); err != ErrUnsupportedLength {
		t.Fatalf("Decode(127-length) = %v, want ErrUnsupportedLength", err)
	}
}

func TestExtractKey(t *testing.T) {
	req := []byte("GET /ws HTTP/1.1\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n")
	key, ok := ExtractKey(req)
	if !ok {
		t.Fatalf("ExtractKey: not found")
	}
	if key != "dGhlIHNhbXBsZSBub25jZQ==" {
		t.Fatalf("ExtractKey = %q", key)
	}
}

func TestIsUpgradeRequest(t *testing.T) {
	if !IsUpgradeRequest([]byte("GET /x HTTP/1.1\r\nUpgrade: websocket\r\n\r\n")) {
		t.Fatalf("expected upgrade request to be detected")
	}
	if IsUpgradeRequest([]byte("GET / HTTP/1.1\r\n\r\n")) {
		t.Fatalf("expected plain GET to not be detected as upgrade")
	}
}

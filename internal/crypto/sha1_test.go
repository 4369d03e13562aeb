package crypto

import "testing"

func TestAcceptKey(t *testing.T) {
	got := AcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Fatalf("AcceptKey() = %q, want %q", got, want)
	}
}

func TestBase64EncodeEmpty(t *testing.T) {
	var dst [4]byte
	if n := Base64Encode(nil, dst[:]); n != 0 {
		t.Fatalf("Base64Encode(nil) wrote %d bytes, want 0", n)
	}
}

func TestBase64EncodePadding(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"f", "Zg=="},
		{"fo", "Zm8="},
		{"foo", "Zm9v"},
		{"foob", "Zm9vYg=="},
		{"fooba", "Zm9vYmE="},
		{"foobar", "Zm9vYmFy"},
	}
	for _, c := range cases {
		var dst [8]byte
		n := Base64Encode([]byte(c.in), dst[:])
		if got := string(dst[:n]); got != c.want {
			t.Errorf("Base64Encode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSHA1KnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want [DigestSize]byte
	}{
		{"", [DigestSize]byte{0xda, 0x39, 0xa3, 0xee, 0x5e, 0x6b, 0x4b, 0x0d, 0x32, 0x55, 0xbf, 0xef, 0x95, 0x60, 0x18, 0x90, 0xaf, 0xd8, 0x07, 0x09}},
		{"abc", [DigestSize]byte{0xa9, 0x99, 0x3e, 0x36, 0x47, 0x06, 0x81, 0x6a, 0xba, 0x3e, 0x25, 0x71, 0x78, 0x50, 0xc2, 0x6c, 0x9c, 0xd0, 0xd8, 0x9d}},
	}
	for _, c := range cases {
		got := SHA1([]byte(c.in))
		if got != c.want {
			t.Errorf("SHA1(%q) = %x, want %x", c.in, got, c.want)
		}
	}
}

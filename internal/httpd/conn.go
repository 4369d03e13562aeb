package httpd

import "reshell/internal/sysx"

// fdConn adapts a raw file descriptor to io.Reader/io.Writer so the
// wsproto and bufio machinery can operate on it without net.Conn (spec.md
// §4.1: everything above a raw fd goes through internal/sysx).
type fdConn struct {
	fd int
}

func (c fdConn) Read(p []byte) (int, error) {
	return sysx.Read(c.fd, p)
}

func (c fdConn) Write(p []byte) (int, error) {
	return sysx.Write(c.fd, p)
}

package network

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"sync"
)

// first byte of a TLS handshake record
const tlsHandshake = 0x16

// AutoHttpsConn sniffs the first byte of a connection. A TLS client hello is
// passed through; anything else is read as an HTTP request, answered with a
// redirect to the https URL and closed.
type AutoHttpsConn struct {
	net.Conn

	reader *bufio.Reader
	once   sync.Once
	plain  bool
}

func NewAutoHttpsConn(conn net.Conn) net.Conn {
	return &AutoHttpsConn{
		Conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (c *AutoHttpsConn) detect() {
	first, err := c.reader.Peek(1)
	if err != nil || first[0] == tlsHandshake {
		return
	}
	c.plain = true

	request, err := http.ReadRequest(c.reader)
	if err == nil {
		resp := http.Response{
			StatusCode: http.StatusTemporaryRedirect,
			ProtoMajor: 1,
			ProtoMinor: 1,
			Header:     http.Header{},
			Close:      true,
		}
		resp.Header.Set("Location", "https://"+request.Host+request.RequestURI)
		_ = resp.Write(c.Conn)
	}
	_ = c.Conn.Close()
}

func (c *AutoHttpsConn) Read(buf []byte) (int, error) {
	c.once.Do(c.detect)
	if c.plain {
		return 0, io.EOF
	}
	return c.reader.Read(buf)
}

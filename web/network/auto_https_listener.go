// Package network opens the listener the API server accepts connections on.
package network

import (
	"crypto/tls"
	"fmt"
	"net"
)

// AutoHttpsListener hands out connections that redirect plain HTTP requests
// to https and pass TLS traffic through untouched.
type AutoHttpsListener struct {
	net.Listener
}

func NewAutoHttpsListener(listener net.Listener) net.Listener {
	return &AutoHttpsListener{
		Listener: listener,
	}
}

func (l *AutoHttpsListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewAutoHttpsConn(conn), nil
}

// Listen opens a TCP listener on addr. With a certificate and key the listener
// serves TLS, and plain HTTP requests on the same port get a 307 to https.
func Listen(addr, certFile, keyFile string) (net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if certFile == "" && keyFile == "" {
		return listener, nil
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	return tls.NewListener(NewAutoHttpsListener(listener), cfg), nil
}

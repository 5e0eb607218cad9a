// Package dbortransport provides a dbor.Transport implementation over
// a QUIC stream, demonstrating the abstract byte-transport contract
// (spec §4.2) against a real network substrate instead of an
// in-memory buffer.
package dbortransport

import (
	"context"
	"crypto/tls"

	"github.com/quic-go/quic-go"

	"github.com/dbor-go/dbor"
)

// defaultTLSConfig mirrors the teacher's HTTP/3 server defaulting:
// QUIC requires TLS 1.3, so a nil or weaker config is upgraded rather
// than left to fail opaquely inside quic-go.
func defaultTLSConfig(cfg *tls.Config, alpn string) *tls.Config {
	if cfg == nil {
		return &tls.Config{MinVersion: tls.VersionTLS13, NextProtos: []string{alpn}}
	}
	if cfg.MinVersion == 0 || cfg.MinVersion < tls.VersionTLS13 {
		c := cfg.Clone()
		c.MinVersion = tls.VersionTLS13
		if len(c.NextProtos) == 0 {
			c.NextProtos = []string{alpn}
		}
		return c
	}
	return cfg
}

// ALPNProtocol is the ALPN identifier DBOR-over-QUIC negotiates.
const ALPNProtocol = "dbor/1"

// QUICTransport adapts a *quic.Stream to dbor.Transport. A QUIC
// stream is already an io.Reader/io.Writer, so this simply tracks a
// byte offset on top of it for error context (spec §6 Transport
// contract requires no seek and no peek-beyond-one, which a QUIC
// stream already satisfies).
type QUICTransport struct {
	stream *quic.Stream
	off    int64
}

// NewQUICTransport wraps an already-open QUIC stream.
func NewQUICTransport(stream *quic.Stream) *QUICTransport {
	return &QUICTransport{stream: stream}
}

func (q *QUICTransport) WriteBytes(b []byte) error {
	n, err := q.stream.Write(b)
	q.off += int64(n)
	if err != nil {
		return &dbor.Error{Kind: dbor.KindIo, Message: err.Error(), Offset: q.off, Cause: err}
	}
	return nil
}

func (q *QUICTransport) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := q.stream.Read(buf[read:])
		read += m
		q.off += int64(m)
		if err != nil {
			if read < n {
				return nil, &dbor.Error{Kind: dbor.KindUnexpectedEof, Message: err.Error(), Offset: q.off, Cause: err}
			}
			break
		}
	}
	return buf, nil
}

func (q *QUICTransport) ReadOne() (byte, error) {
	b, err := q.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (q *QUICTransport) Offset() int64 { return q.off }

// DialStream opens a QUIC connection to addr and returns its first
// bidirectional stream wrapped as a dbor.Transport.
func DialStream(ctx context.Context, addr string, tlsConf *tls.Config) (dbor.Transport, *quic.Conn, error) {
	conn, err := quic.DialAddr(ctx, addr, defaultTLSConfig(tlsConf, ALPNProtocol), nil)
	if err != nil {
		return nil, nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(0, "open stream failed")
		return nil, nil, err
	}
	return NewQUICTransport(stream), conn, nil
}

// AcceptStream accepts one QUIC connection on a listener bound to addr
// and returns its first incoming stream wrapped as a dbor.Transport.
// The caller is responsible for closing the returned listener.
func AcceptStream(ctx context.Context, addr string, tlsConf *tls.Config) (dbor.Transport, *quic.Listener, error) {
	ln, err := quic.ListenAddr(addr, defaultTLSConfig(tlsConf, ALPNProtocol), nil)
	if err != nil {
		return nil, nil, err
	}
	conn, err := ln.Accept(ctx)
	if err != nil {
		ln.Close()
		return nil, nil, err
	}
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		ln.Close()
		return nil, nil, err
	}
	return NewQUICTransport(stream), ln, nil
}

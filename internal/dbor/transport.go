package dbor

import (
	"io"
)

// Transport is the abstract byte stream the encoder writes to and the
// decoder reads from. It has no seek and no peek-beyond-one; buffering
// is the transport's concern.
type Transport interface {
	// WriteBytes appends b to the sink. Any underlying error is
	// surfaced verbatim, wrapped as a Kind Io error.
	WriteBytes(b []byte) error

	// ReadExact blocks until n bytes are delivered or the stream ends.
	// EOF before n bytes yields a Kind UnexpectedEof error.
	ReadExact(n int) ([]byte, error)

	// ReadOne reads a single byte, with the same EOF semantics as
	// ReadExact(1).
	ReadOne() (byte, error)

	// Offset reports the number of bytes consumed (decode) or
	// produced (encode) so far, for error context. Implementations
	// that cannot track this cheaply may return -1.
	Offset() int64
}

// streamTransport adapts an io.Reader/io.Writer pair to Transport. It
// is the default Transport used when the caller hands the codec plain
// byte streams rather than a custom transport (e.g. a QUIC stream).
type streamTransport struct {
	r   io.Reader
	w   io.Writer
	off int64
}

// NewReaderTransport wraps r for decoding.
func NewReaderTransport(r io.Reader) Transport {
	return &streamTransport{r: r}
}

// NewWriterTransport wraps w for encoding.
func NewWriterTransport(w io.Writer) Transport {
	return &streamTransport{w: w}
}

// NewTransport wraps a combined reader/writer, for transports (like a
// QUIC stream or net.Conn) that are both at once.
func NewTransport(rw io.ReadWriter) Transport {
	return &streamTransport{r: rw, w: rw}
}

func (t *streamTransport) WriteBytes(b []byte) error {
	if t.w == nil {
		return newErr(KindIo, t.off, "transport has no writer")
	}
	n, err := t.w.Write(b)
	t.off += int64(n)
	if err != nil {
		return wrapIo(t.off, err)
	}
	return nil
}

func (t *streamTransport) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if t.r == nil {
		return nil, newErr(KindIo, t.off, "transport has no reader")
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(t.r, buf)
	t.off += int64(read)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, newErr(KindUnexpectedEof, t.off, "expected %d bytes, got %d", n, read)
		}
		return nil, wrapIo(t.off, err)
	}
	return buf, nil
}

func (t *streamTransport) ReadOne() (byte, error) {
	b, err := t.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (t *streamTransport) Offset() int64 { return t.off }

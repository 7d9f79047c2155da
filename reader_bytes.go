package serial

import "io"

// BytesReader is an io.Reader over a fixed byte slice.
// Unlike bytes.Reader it exposes the read position, which Unmarshal uses to
// detect trailing data without copying.
type BytesReader struct {
	B []byte // source slice
	N int    // current read position
}

// NewBytesReader creates a new BytesReader.
func NewBytesReader(b []byte) *BytesReader {
	return &BytesReader{B: b}
}

// Read implements the [io.Reader] interface.
func (r *BytesReader) Read(p []byte) (int, error) {
	if r.N >= len(r.B) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, r.B[r.N:])
	r.N += n
	return n, nil
}

// ReadByte implements the [io.ByteReader] interface.
func (r *BytesReader) ReadByte() (byte, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	b := r.B[r.N]
	r.N++
	return b, nil
}

// Len returns the number of bytes read.
func (r *BytesReader) Len() int { return r.N }

// Size returns the size of the underlying byte slice.
func (r *BytesReader) Size() int { return len(r.B) }

// Available returns the number of bytes left to read.
func (r *BytesReader) Available() int {
	if n := len(r.B) - r.N; n > 0 {
		return n
	}
	return 0
}

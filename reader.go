package serial

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// DefaultBufferSize is the bufio size used when a Reader or Writer wraps an unbuffered stream.
	DefaultBufferSize = 4096
	// MinBufferSize is the smallest buffer NewReaderSize accepts for an unbuffered stream.
	MinBufferSize = 16
)

// Limits guards decode-side allocations driven by length prefixes. A stream that has
// desynchronized tends to yield absurd prefixes; refusing them early turns a
// multi-gigabyte allocation into an ErrInvalidLength.
type Limits struct {
	MaxStringLen int // largest accepted string byte count, <= 0 means unbounded
	MaxSeqLen    int // largest accepted element count of a sequence, <= 0 means unbounded
	MaxDepth     int // deepest accepted nesting of ReadObject calls, <= 0 means unbounded
}

// DefaultLimits returns the limits applied by NewReader.
func DefaultLimits() Limits {
	return Limits{
		MaxStringLen: 16 * 1024 * 1024,
		MaxSeqLen:    1 << 22,
		MaxDepth:     256,
	}
}

type source interface {
	io.Reader
	io.ByteReader
	Size() int
}

// Reader decodes primitives from a byte stream.
// It tracks the first error; subsequent reads become no-ops and leave their
// destinations untouched, so entity decoders can issue a run of reads and
// check Err once at the end.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	r       source
	count   int64 // total bytes consumed
	err     error // first error encountered
	order   binary.ByteOrder
	limits  Limits
	depth   int // ReadObject nesting
	scratch [8]byte
}

var (
	_ io.Reader     = (*Reader)(nil)
	_ io.ByteReader = (*Reader)(nil)
)

// NewReaderSize creates a new Reader with a specified buffer size.
// In-memory sources are used directly; an already buffered source is reused
// only when its buffer is large enough.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	if size <= 0 {
		size = DefaultBufferSize
	}

	switch src := r.(type) {
	case *Reader:
		if _, ok := src.r.(*bufioReaderAdapter); !ok || src.r.Size() >= size {
			return &Reader{r: src.r, order: src.order, limits: src.limits}, nil
		}
		return nil, ErrAlreadyBuffered
	case *bufio.Reader:
		if src.Size() >= size {
			return &Reader{r: &bufioReaderAdapter{src}, order: Order, limits: DefaultLimits()}, nil
		}
		return nil, ErrAlreadyBuffered
	case *BytesReader:
		return &Reader{r: src, order: Order, limits: DefaultLimits()}, nil
	case *bytes.Reader:
		return &Reader{r: &bytesReaderAdapter{src}, order: Order, limits: DefaultLimits()}, nil
	case *bytes.Buffer:
		return &Reader{r: &bytesBufferReaderAdapter{src}, order: Order, limits: DefaultLimits()}, nil
	}

	if size < MinBufferSize {
		return nil, ErrSizeTooSmall
	}
	return &Reader{
		r:      &bufioReaderAdapter{bufio.NewReaderSize(r, size)},
		order:  Order,
		limits: DefaultLimits(),
	}, nil
}

// NewReader creates a new Reader with DefaultBufferSize.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, 0)
}

// WithByteOrder sets the byte order and returns the Reader for chaining.
// Both peers must agree; the network default is Order.
func (r *Reader) WithByteOrder(order binary.ByteOrder) *Reader {
	r.order = order
	return r
}

// WithLimits replaces the decode limits and returns the Reader for chaining.
func (r *Reader) WithLimits(l Limits) *Reader {
	r.limits = l
	return r
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	if n < 0 || n > len(p) {
		r.setError(ErrInvalidRead)
		return 0, r.err
	}
	r.count += int64(n)
	if err != nil {
		r.setError(exhausted(err))
	}
	return n, err
}

// ReadByte implements the io.ByteReader interface.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.setError(exhausted(err))
		return 0, r.err
	}
	r.count++
	return b, nil
}

func (r *Reader) Size() int      { return r.r.Size() }
func (r *Reader) Count() int64   { return r.count }
func (r *Reader) Err() error     { return r.err }
func (r *Reader) Limits() Limits { return r.limits }

// IsEOF reports whether the Reader stopped on a clean end of stream, i.e. the
// source ended before the first byte of a value rather than inside one.
func (r *Reader) IsEOF() bool { return r.err != nil && isCleanEOF(r.err) }

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Fail latches err as if a read had failed. Entity decoders use it to reject
// values the primitives accepted but the entity cannot (e.g. inconsistent counts).
func (r *Reader) Fail(err error) {
	r.setError(err)
}

// readFull fills buf completely or latches a stream-exhausted error.
func (r *Reader) readFull(buf []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := io.ReadFull(r.r, buf)
	r.count += int64(n)
	if err != nil {
		r.err = exhausted(err)
		return false
	}
	return true
}

// readLen reads an int32 length prefix and checks it against max.
func (r *Reader) readLen(max int) (int, bool) {
	var n int32
	r.ReadInt32(&n)
	if r.err != nil {
		return 0, false
	}
	if n < 0 {
		r.err = fmt.Errorf("%w: negative length %d at offset %d", ErrInvalidLength, n, r.count-4)
		return 0, false
	}
	if max > 0 && int(n) > max {
		r.err = fmt.Errorf("%w: length %d exceeds limit %d at offset %d", ErrInvalidLength, n, max, r.count-4)
		return 0, false
	}
	return int(n), true
}

// ReadBytes reads n raw bytes and returns a new byte slice.
func (r *Reader) ReadBytes(n int) []byte {
	if n <= 0 || r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if !r.readFull(buf) {
		return nil
	}
	return buf
}

// ReadBytesTo fills dest with raw bytes.
func (r *Reader) ReadBytesTo(dest []byte) {
	if len(dest) == 0 {
		return
	}
	r.readFull(dest)
}

// --- Primitive Read Operations ---

func (r *Reader) ReadBool(dest *bool) {
	if b, err := r.ReadByte(); err == nil {
		*dest = b != 0
	}
}

func (r *Reader) ReadUint8(dest *uint8) {
	if b, err := r.ReadByte(); err == nil {
		*dest = b
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	if b, err := r.ReadByte(); err == nil {
		*dest = int8(b)
	}
}

// ReadChar reads a 2-byte UTF-16 code unit.
func (r *Reader) ReadChar(dest *uint16) {
	r.ReadUint16(dest)
}

func (r *Reader) ReadUint16(dest *uint16) {
	if buf := r.scratch[:2]; r.readFull(buf) {
		*dest = r.order.Uint16(buf)
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	if buf := r.scratch[:4]; r.readFull(buf) {
		*dest = r.order.Uint32(buf)
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	if buf := r.scratch[:8]; r.readFull(buf) {
		*dest = r.order.Uint64(buf)
	}
}

func (r *Reader) ReadInt16(dest *int16) {
	if buf := r.scratch[:2]; r.readFull(buf) {
		*dest = int16(r.order.Uint16(buf))
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	if buf := r.scratch[:4]; r.readFull(buf) {
		*dest = int32(r.order.Uint32(buf))
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	if buf := r.scratch[:8]; r.readFull(buf) {
		*dest = int64(r.order.Uint64(buf))
	}
}

func (r *Reader) ReadFloat32(dest *float32) {
	if buf := r.scratch[:4]; r.readFull(buf) {
		*dest = math.Float32frombits(r.order.Uint32(buf))
	}
}

func (r *Reader) ReadFloat64(dest *float64) {
	if buf := r.scratch[:8]; r.readFull(buf) {
		*dest = math.Float64frombits(r.order.Uint64(buf))
	}
}

// ReadString reads an int32 byte count followed by that many raw bytes.
func (r *Reader) ReadString(dest *string) {
	n, ok := r.readLen(r.limits.MaxStringLen)
	if !ok {
		return
	}
	if n == 0 {
		*dest = ""
		return
	}
	buf := make([]byte, n)
	if r.readFull(buf) {
		*dest = string(buf)
	}
}

// ReadInt32s reads an int32 count followed by that many int32 values.
// A zero count yields an empty, non-nil slice.
func (r *Reader) ReadInt32s(dest *[]int32) {
	n, ok := r.readLen(r.limits.MaxSeqLen)
	if !ok {
		return
	}
	buf := make([]byte, 4*n)
	if !r.readFull(buf) {
		return
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(r.order.Uint32(buf[4*i:]))
	}
	*dest = out
}

// ReadFloat64s reads an int32 count followed by that many float64 values.
// A zero count yields an empty, non-nil slice.
func (r *Reader) ReadFloat64s(dest *[]float64) {
	n, ok := r.readLen(r.limits.MaxSeqLen)
	if !ok {
		return
	}
	buf := make([]byte, 8*n)
	if !r.readFull(buf) {
		return
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(r.order.Uint64(buf[8*i:]))
	}
	*dest = out
}

// ReadCount reads a sequence count prefix bounded by Limits.MaxSeqLen, for
// callers that decode elements themselves. It returns -1 when the Reader has failed.
func (r *Reader) ReadCount() int {
	n, ok := r.readLen(r.limits.MaxSeqLen)
	if !ok {
		return -1
	}
	return n
}

package serial

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

type sink interface {
	io.Writer
	io.ByteWriter
	Size() int
	Flush() error
}

// Writer encodes primitives onto a byte stream.
// It wraps bufio.Writer for efficiency and tracks the first error that occurs.
// After an error, all subsequent write operations become no-ops and every
// reported error wraps ErrWriteFailure.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	w       sink
	count   int64 // total bytes accepted
	err     error // first error encountered
	depth   int
	order   binary.ByteOrder
	scratch [8]byte
}

var (
	_ io.Writer     = (*Writer)(nil)
	_ io.ByteWriter = (*Writer)(nil)
)

// NewWriterSize creates a new Writer with a specified buffer size.
// It returns an error to prevent double-buffering, a common source of bugs.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	if size <= 0 {
		size = DefaultBufferSize
	}

	switch dst := w.(type) {
	// Reuse the underlying buffer if it's already a compatible Writer.
	case *Writer:
		if _, ok := dst.w.(*bufioWriterAdapter); !ok || dst.w.Size() >= size {
			return &Writer{w: dst.w, depth: dst.depth + 1, order: dst.order}, nil
		}
		return nil, ErrAlreadyBuffered
	case *bufio.Writer:
		if dst.Size() >= size {
			return &Writer{w: &bufioWriterAdapter{dst}, depth: 1, order: Order}, nil
		}
		return nil, ErrAlreadyBuffered

	// underlying is a buf so we don't need buffering
	case *BytesWriter:
		return &Writer{w: dst, order: Order}, nil
	case *bytes.Buffer:
		return &Writer{w: &bytesBufferWriterAdapter{dst}, order: Order}, nil
	}

	return &Writer{w: &bufioWriterAdapter{bufio.NewWriterSize(w, size)}, order: Order}, nil
}

// NewWriter creates a new Writer with DefaultBufferSize.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// WithByteOrder sets the byte order and returns the Writer for chaining.
func (w *Writer) WithByteOrder(order binary.ByteOrder) *Writer {
	w.order = order
	return w
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := w.w.Write(buf)
	if n < 0 {
		w.setError(failure(ErrInvalidWrite))
		return 0, w.err
	}
	w.count += int64(n)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.setError(failure(err))
	}
	return n, w.err
}

// WriteByte implements the io.ByteWriter interface.
func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.WriteByte(v); err != nil {
		w.setError(failure(err))
		return w.err
	}
	w.count++
	return nil
}

func (w *Writer) Size() int    { return w.w.Size() }
func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Fail latches err as if a write had failed. Entity encoders use it to refuse
// values that cannot be represented on the wire.
func (w *Writer) Fail(err error) {
	w.setError(err)
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	_ = w.Flush()
	return w.count, w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	// Only the outermost writer is responsible for the final flush.
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.setError(failure(err))
	}
	return w.err
}

// WriteBytes writes raw bytes without a length prefix.
func (w *Writer) WriteBytes(buf []byte) {
	_, _ = w.Write(buf)
}

// writeLen writes an int32 length prefix for n.
func (w *Writer) writeLen(n int) bool {
	if w.err != nil {
		return false
	}
	prefix, err := lengthPrefix(n)
	if err != nil {
		w.setError(err)
		return false
	}
	w.WriteInt32(prefix)
	return w.err == nil
}

// --- Primitive Write Operations ---

func (w *Writer) WriteBool(v bool) {
	if v {
		_ = w.WriteByte(1)
	} else {
		_ = w.WriteByte(0)
	}
}

func (w *Writer) WriteUint8(v uint8) {
	_ = w.WriteByte(v)
}

func (w *Writer) WriteInt8(v int8) {
	_ = w.WriteByte(uint8(v))
}

// WriteChar writes a 2-byte UTF-16 code unit.
func (w *Writer) WriteChar(v uint16) {
	w.WriteUint16(v)
}

func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	w.order.PutUint16(w.scratch[:2], v)
	_, _ = w.Write(w.scratch[:2])
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	w.order.PutUint32(w.scratch[:4], v)
	_, _ = w.Write(w.scratch[:4])
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	w.order.PutUint64(w.scratch[:8], v)
	_, _ = w.Write(w.scratch[:8])
}

func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteString writes the byte count of s as an int32 followed by the raw bytes.
// Nothing is terminated or re-encoded: the reader consumes exactly len(s) bytes.
func (w *Writer) WriteString(s string) {
	if !w.writeLen(len(s)) || len(s) == 0 {
		return
	}
	n, err := io.WriteString(w.w, s)
	if n < 0 {
		w.setError(failure(ErrInvalidWrite))
		return
	}
	w.count += int64(n)
	if err == nil && n < len(s) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.setError(failure(err))
	}
}

// WriteInt32s writes an int32 count followed by each value.
func (w *Writer) WriteInt32s(vs []int32) {
	if !w.writeLen(len(vs)) {
		return
	}
	for _, v := range vs {
		w.WriteInt32(v)
	}
}

// WriteFloat64s writes an int32 count followed by each value.
func (w *Writer) WriteFloat64s(vs []float64) {
	if !w.writeLen(len(vs)) {
		return
	}
	for _, v := range vs {
		w.WriteFloat64(v)
	}
}

// WriteCount writes a sequence count prefix for callers that encode elements themselves.
func (w *Writer) WriteCount(n int) {
	w.writeLen(n)
}

func failure(err error) error {
	return fmt.Errorf("%w: %w", ErrWriteFailure, err)
}

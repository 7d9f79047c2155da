package serial

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the high performance cost of reflection in `binary.Size`
// on every call. The map is shared by all Fixed instantiations.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// Fixed provides a generic Serializable implementation for any struct `Payload`
// composed of fixed-size fields, laid out in declaration order with no padding.
// It is the natural fit for DAQ headers and status words.
//
// Constraint: The `Payload` type MUST NOT contain variable-size fields like slices,
// maps, or strings, as this will cause `binary.Size` to fail.
type Fixed[Payload any] struct {
	Payload Payload
}

var _ Serializable = (*Fixed[struct{}])(nil)

// Size returns the fixed wire size of Payload in bytes, or -1 if Payload is not fixed-size.
// The result is cached to avoid reflection overhead on subsequent calls.
func (c *Fixed[Payload]) Size() int {
	payloadType := reflect.TypeOf((*Payload)(nil)).Elem()
	if size, ok := sizeCache.Load(payloadType); ok {
		return size
	}
	size := binary.Size(&c.Payload)
	sizeCache.Store(payloadType, size)
	return size
}

// WriteObject encodes the payload in the Writer's byte order.
func (c *Fixed[Payload]) WriteObject(w *Writer) error {
	if w.err != nil {
		return w.err
	}
	size := c.Size()
	if size < 0 {
		w.setError(fmt.Errorf("serial: %T is not a fixed-size payload", c.Payload))
		return w.err
	}
	buf := make([]byte, size)
	if _, err := binary.Encode(buf, w.order, &c.Payload); err != nil {
		w.setError(failure(err))
		return w.err
	}
	w.WriteBytes(buf)
	return w.err
}

// ReadObject decodes the payload in the Reader's byte order.
// The payload is left untouched unless every byte was available.
func (c *Fixed[Payload]) ReadObject(r *Reader) error {
	if r.err != nil {
		return r.err
	}
	size := c.Size()
	if size < 0 {
		r.setError(fmt.Errorf("serial: %T is not a fixed-size payload", c.Payload))
		return r.err
	}
	buf := make([]byte, size)
	if !r.readFull(buf) {
		return r.err
	}
	var p Payload
	if _, err := binary.Decode(buf, r.order, &p); err != nil {
		r.setError(exhausted(err))
		return r.err
	}
	c.Payload = p
	return nil
}

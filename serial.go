// Package serial implements the positional binary object protocol spoken by
// the slow-control and DQM network: a Reader/Writer pair of fixed-width
// primitive codecs and the Serializable contract entities implement on top.
//
// Wire rules:
//   - scalars are fixed width in big-endian order (see Order);
//   - strings are an int32 byte count followed by that many raw bytes;
//   - variable sequences are an int32 element count followed by the elements.
//
// There is no envelope, magic number, type tag or version. Both peers must be
// built with the same entity definitions: a field order or arity mismatch is
// not detected and decodes into wrong values rather than an error.
package serial

import "fmt"

// Serializable is implemented by every entity that travels the wire.
//
// WriteObject must emit fields in the entity's documented order and
// ReadObject must consume them in the identical order. Implementations call
// the latched primitive methods of Reader/Writer and return r.Err()/w.Err(),
// so they must behave safely when the Reader/Writer already carries an error.
type Serializable interface {
	ReadObject(r *Reader) error
	WriteObject(w *Writer) error
}

// ReadObject is a helper that decodes v from r unless r already failed.
// Nested calls count against Limits.MaxDepth, so a recursive entity fed a
// hostile stream fails with ErrInvalidLength instead of exhausting the stack.
func ReadObject(r *Reader, v Serializable) error {
	if v == nil {
		return ErrNilObject
	}
	if r.err != nil {
		return r.err
	}
	if limit := r.limits.MaxDepth; limit > 0 && r.depth >= limit {
		r.err = fmt.Errorf("%w: nesting deeper than %d at offset %d", ErrInvalidLength, limit, r.count)
		return r.err
	}
	r.depth++
	defer func() { r.depth-- }()
	if err := v.ReadObject(r); err != nil {
		r.setError(err)
	}
	return r.err
}

// WriteObject is a helper that encodes v to w unless w already failed.
func WriteObject(w *Writer, v Serializable) error {
	if v == nil {
		return ErrNilObject
	}
	if w.err != nil {
		return w.err
	}
	if err := v.WriteObject(w); err != nil {
		w.setError(err)
	}
	return w.err
}

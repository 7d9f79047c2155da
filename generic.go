package serial

import (
	"bytes"
	"fmt"
)

// Marshal encodes v into a new byte slice.
// Note: This allocates the result. For streaming, write to a Writer bound to the sink.
func Marshal(v Serializable) ([]byte, error) {
	if v == nil {
		return nil, ErrNilObject
	}
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	w, err := NewWriter(buf)
	if err != nil {
		return nil, err
	}
	if err := WriteObject(w, v); err != nil {
		return nil, err
	}
	if _, err := w.Result(); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// MarshalTo encodes v into p without allocating and returns the bytes used.
// A too-small p fails with an error wrapping io.ErrShortWrite.
func MarshalTo(v Serializable, p []byte) (int, error) {
	if v == nil {
		return 0, ErrNilObject
	}
	bw := NewBytesWriter(p)
	w, err := NewWriter(bw)
	if err != nil {
		return 0, err
	}
	if err := WriteObject(w, v); err != nil {
		return bw.Len(), err
	}
	n, err := w.Result()
	return int(n), err
}

// Unmarshal decodes data into v. Since objects carry no length of their own,
// bytes left over after v's last field mean the peers disagree on the layout
// and the call fails with ErrTrailingData.
func Unmarshal(data []byte, v Serializable) error {
	if v == nil {
		return ErrNilObject
	}
	br := NewBytesReader(data)
	r, err := NewReader(br)
	if err != nil {
		return err
	}
	if err := ReadObject(r, v); err != nil {
		return err
	}
	if left := br.Available(); left > 0 {
		return fmt.Errorf("%w: %d bytes after offset %d", ErrTrailingData, left, br.Len())
	}
	return nil
}

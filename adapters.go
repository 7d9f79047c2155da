package serial

import (
	"bufio"
	"bytes"
)

type (
	bytesReaderAdapter       struct{ *bytes.Reader }
	bytesBufferReaderAdapter struct{ *bytes.Buffer }
	bytesBufferWriterAdapter struct{ *bytes.Buffer }
	bufioReaderAdapter       struct{ *bufio.Reader }
	bufioWriterAdapter       struct{ *bufio.Writer }
)

func (r *bytesReaderAdapter) Size() int       { return int(r.Reader.Size()) }
func (r *bytesBufferReaderAdapter) Size() int { return r.Len() }
func (w *bytesBufferWriterAdapter) Size() int { return w.Available() }
func (w *bytesBufferWriterAdapter) Flush() error {
	return nil
}

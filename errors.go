package serial

import "errors"

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with a nil io.Reader/io.Writer.
	ErrNilIO = errors.New("serial: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a buffer size that bufio would silently round up.
	ErrSizeTooSmall = errors.New("serial: NewReaderSize with a size smaller than 16 conflict with bufio")

	// ErrAlreadyBuffered indicates that NewReader/NewWriter was called with an already-buffered
	// reader/writer whose buffer is smaller than requested. Double buffering a socket hides
	// bytes from the second layer and desynchronizes the stream.
	ErrAlreadyBuffered = errors.New("serial: reader or writer is already buffered")

	// ErrStreamExhausted indicates that the source ended before a value was complete.
	// It is always joined with io.EOF (nothing of the value was available) or
	// io.ErrUnexpectedEOF (the value was cut mid-way).
	ErrStreamExhausted = errors.New("serial: stream exhausted")

	// ErrWriteFailure indicates that the sink rejected bytes or was closed. It wraps the cause.
	ErrWriteFailure = errors.New("serial: write failure")

	// ErrInvalidLength indicates a length or count prefix that is negative, exceeds the
	// configured Limits, or does not fit in a 32-bit prefix on encode.
	ErrInvalidLength = errors.New("serial: invalid length prefix")

	// ErrTrailingData is returned by Unmarshal when bytes remain after the object was decoded.
	ErrTrailingData = errors.New("serial: trailing data found after decoding")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative) count from Write.
	ErrInvalidWrite = errors.New("serial: writer returned invalid count from Write")

	// ErrInvalidRead indicates that an io.Reader returned an invalid (negative or outbound) count from Read.
	ErrInvalidRead = errors.New("serial: reader returned invalid count from Read")

	// ErrNilObject indicates Marshal/Unmarshal/Send was called with a nil Serializable.
	ErrNilObject = errors.New("serial: nil object")
)

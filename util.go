package serial

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/constraints"
)

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
	// Order is the network byte order shared by every peer.
	Order binary.ByteOrder = BE
)

// lengthPrefix converts a Go length into the wire's int32 prefix.
func lengthPrefix[T constraints.Integer](n T) (int32, error) {
	if n < 0 || uint64(n) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d does not fit an int32 prefix", ErrInvalidLength, n)
	}
	return int32(n), nil
}

// exhausted maps a short read onto ErrStreamExhausted while keeping the
// io.EOF / io.ErrUnexpectedEOF distinction reachable through errors.Is.
func exhausted(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %w", ErrStreamExhausted, err)
	}
	return err
}

// isCleanEOF reports whether err is a stream end that fell between two values.
func isCleanEOF(err error) bool {
	return errors.Is(err, ErrStreamExhausted) && errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF)
}

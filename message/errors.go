package message

import "errors"

var (
	ErrUnknownSeverity = errors.New("message: unknown severity")
	ErrUnknownCommand  = errors.New("message: unknown command")
	ErrBinMismatch     = errors.New("message: histogram contents do not match bin count")
	ErrNoSuchParam     = errors.New("message: no such config parameter")
)

package serial

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses buffers for Marshal.
// This reduces GC pressure for the small, frequent messages of the control network.
var bytesBufPool = sync.Pool{
	New: func() any {
		// Most control messages are far below 4KB.
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

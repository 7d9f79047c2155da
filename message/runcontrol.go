package message

import (
	"fmt"

	"github.com/oy3o/serial"
)

// RunControlMessage carries a command between the run controller and a node.
//
// Wire layout:
//
//	int32   Command
//	int32   len(Params)
//	int32   Params... (len(Params) values)
//	string  Data (empty when absent)
type RunControlMessage struct {
	Command Command
	Params  []int32
	Data    string
}

var _ serial.Serializable = (*RunControlMessage)(nil)

func NewRunControlMessage(cmd Command, data string, params ...int32) *RunControlMessage {
	if params == nil {
		params = []int32{}
	}
	return &RunControlMessage{Command: cmd, Params: params, Data: data}
}

// Param returns the i-th parameter, or def when the message carries fewer.
func (m *RunControlMessage) Param(i int, def int32) int32 {
	if i < 0 || i >= len(m.Params) {
		return def
	}
	return m.Params[i]
}

func (m *RunControlMessage) String() string {
	return fmt.Sprintf("%s %v %q", m.Command, m.Params, m.Data)
}

func (m *RunControlMessage) WriteObject(w *serial.Writer) error {
	w.WriteInt32(int32(m.Command))
	w.WriteInt32s(m.Params)
	w.WriteString(m.Data)
	return w.Err()
}

func (m *RunControlMessage) ReadObject(r *serial.Reader) error {
	var (
		out RunControlMessage
		cmd int32
	)
	r.ReadInt32(&cmd)
	r.ReadInt32s(&out.Params)
	r.ReadString(&out.Data)
	if err := r.Err(); err != nil {
		return err
	}
	out.Command = Command(cmd)
	*m = out
	return nil
}

package message

import (
	"fmt"
	"time"

	"github.com/oy3o/serial"
)

// LogMessage is one record forwarded from a node to the log collector.
//
// Wire layout:
//
//	int32  Timestamp (unix seconds)
//	string Node
//	string Group
//	int32  Severity
//	string Message
type LogMessage struct {
	Timestamp int32
	Node      string
	Group     string
	Severity  Severity
	Message   string
}

var _ serial.Serializable = (*LogMessage)(nil)

// NewLogMessage stamps a record with the current time.
func NewLogMessage(node, group string, severity Severity, text string) *LogMessage {
	return &LogMessage{
		Timestamp: int32(time.Now().Unix()),
		Node:      node,
		Group:     group,
		Severity:  severity,
		Message:   text,
	}
}

// Time returns Timestamp as a time.Time.
func (m *LogMessage) Time() time.Time {
	return time.Unix(int64(m.Timestamp), 0)
}

func (m *LogMessage) String() string {
	return fmt.Sprintf("%s [%s] %s/%s: %s",
		m.Time().UTC().Format(time.DateTime), m.Severity, m.Group, m.Node, m.Message)
}

func (m *LogMessage) WriteObject(w *serial.Writer) error {
	w.WriteInt32(m.Timestamp)
	w.WriteString(m.Node)
	w.WriteString(m.Group)
	w.WriteInt32(int32(m.Severity))
	w.WriteString(m.Message)
	return w.Err()
}

func (m *LogMessage) ReadObject(r *serial.Reader) error {
	var (
		out      LogMessage
		severity int32
	)
	r.ReadInt32(&out.Timestamp)
	r.ReadString(&out.Node)
	r.ReadString(&out.Group)
	r.ReadInt32(&severity)
	r.ReadString(&out.Message)
	if err := r.Err(); err != nil {
		return err
	}
	out.Severity = Severity(severity)
	*m = out
	return nil
}

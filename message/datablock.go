package message

import "github.com/oy3o/serial"

// BlockHeader is the fixed part of a DAQ data block.
type BlockHeader struct {
	NodeID       uint32
	RunNumber    uint32
	SubRunNumber uint32
	EventNumber  uint32
	Trigger      uint16
	Flags        uint16
}

// Block flags.
const (
	FlagTruncated uint16 = 1 << iota
	FlagCRCError
	FlagLastBlock
)

// DataBlock is one readout block shipped from a DAQ node.
//
// Wire layout:
//
//	20 bytes  BlockHeader fields in declaration order
//	int32     len(Words)
//	int32     Words...
type DataBlock struct {
	Header serial.Fixed[BlockHeader]
	Words  []int32
}

var _ serial.Serializable = (*DataBlock)(nil)

func (b *DataBlock) Has(flag uint16) bool {
	return b.Header.Payload.Flags&flag != 0
}

func (b *DataBlock) WriteObject(w *serial.Writer) error {
	if err := b.Header.WriteObject(w); err != nil {
		return err
	}
	w.WriteInt32s(b.Words)
	return w.Err()
}

func (b *DataBlock) ReadObject(r *serial.Reader) error {
	var out DataBlock
	if err := out.Header.ReadObject(r); err != nil {
		return err
	}
	r.ReadInt32s(&out.Words)
	if err := r.Err(); err != nil {
		return err
	}
	*b = out
	return nil
}

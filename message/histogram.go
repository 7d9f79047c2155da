package message

import (
	"fmt"
	"math"

	"github.com/oy3o/serial"
)

// Histogram is a one-dimensional DQM histogram with fixed-width bins.
// Contents holds Bins+2 cells: the underflow cell, the Bins in-range cells,
// then the overflow cell.
//
// Wire layout:
//
//	string  Name
//	string  Title
//	int32   Bins
//	float64 Min
//	float64 Max
//	int64   Entries
//	int32   len(Contents)
//	float64 Contents...
type Histogram struct {
	Name     string
	Title    string
	Bins     int32
	Min, Max float64
	Entries  int64
	Contents []float64
}

var _ serial.Serializable = (*Histogram)(nil)

// NewHistogram allocates an empty histogram.
func NewHistogram(name, title string, bins int32, min, max float64) *Histogram {
	if bins < 1 {
		bins = 1
	}
	return &Histogram{
		Name:     name,
		Title:    title,
		Bins:     bins,
		Min:      min,
		Max:      max,
		Contents: make([]float64, bins+2),
	}
}

// FindBin returns the cell index of x: 0 is underflow, Bins+1 is overflow.
func (h *Histogram) FindBin(x float64) int {
	switch {
	case math.IsNaN(x) || x < h.Min:
		return 0
	case x >= h.Max:
		return int(h.Bins) + 1
	}
	bin := int((x-h.Min)/(h.Max-h.Min)*float64(h.Bins)) + 1
	return min(bin, int(h.Bins))
}

// Fill adds one entry at x.
func (h *Histogram) Fill(x float64) {
	h.FillWeight(x, 1)
}

// FillWeight adds an entry of the given weight at x. On a zero Histogram it
// first allocates the cells; a histogram whose cells do not match Bins is
// left unchanged.
func (h *Histogram) FillWeight(x, weight float64) {
	if len(h.Contents) == 0 {
		h.Bins = max(h.Bins, 1)
		h.Contents = make([]float64, h.Bins+2)
	}
	if !h.consistent() {
		return
	}
	h.Contents[h.FindBin(x)] += weight
	h.Entries++
}

func (h *Histogram) consistent() bool {
	return h.Bins >= 1 && int64(len(h.Contents)) == int64(h.Bins)+2
}

// Integral sums the in-range cells.
func (h *Histogram) Integral() float64 {
	if !h.consistent() {
		return 0
	}
	var sum float64
	for _, v := range h.Contents[1 : len(h.Contents)-1] {
		sum += v
	}
	return sum
}

func (h *Histogram) WriteObject(w *serial.Writer) error {
	if int64(len(h.Contents)) != int64(h.Bins)+2 {
		w.Fail(fmt.Errorf("%w: %q has %d bins but %d cells", ErrBinMismatch, h.Name, h.Bins, len(h.Contents)))
		return w.Err()
	}
	w.WriteString(h.Name)
	w.WriteString(h.Title)
	w.WriteInt32(h.Bins)
	w.WriteFloat64(h.Min)
	w.WriteFloat64(h.Max)
	w.WriteInt64(h.Entries)
	w.WriteFloat64s(h.Contents)
	return w.Err()
}

func (h *Histogram) ReadObject(r *serial.Reader) error {
	var out Histogram
	r.ReadString(&out.Name)
	r.ReadString(&out.Title)
	r.ReadInt32(&out.Bins)
	r.ReadFloat64(&out.Min)
	r.ReadFloat64(&out.Max)
	r.ReadInt64(&out.Entries)
	r.ReadFloat64s(&out.Contents)
	if err := r.Err(); err != nil {
		return err
	}
	if int64(len(out.Contents)) != int64(out.Bins)+2 {
		err := fmt.Errorf("%w: %q has %d bins but %d cells", ErrBinMismatch, out.Name, out.Bins, len(out.Contents))
		r.Fail(err)
		return err
	}
	*h = out
	return nil
}

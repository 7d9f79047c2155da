package serial

import (
	"bytes"
	"io"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample exercises every primitive in one entity.
type sample struct {
	B    bool
	C    uint16
	I8   int8
	I16  int16
	I32  int32
	I64  int64
	F32  float32
	F64  float64
	S    string
	Ints []int32
	Dbls []float64
}

func (v *sample) WriteObject(w *Writer) error {
	w.WriteBool(v.B)
	w.WriteChar(v.C)
	w.WriteInt8(v.I8)
	w.WriteInt16(v.I16)
	w.WriteInt32(v.I32)
	w.WriteInt64(v.I64)
	w.WriteFloat32(v.F32)
	w.WriteFloat64(v.F64)
	w.WriteString(v.S)
	w.WriteInt32s(v.Ints)
	w.WriteFloat64s(v.Dbls)
	return w.Err()
}

func (v *sample) ReadObject(r *Reader) error {
	var out sample
	r.ReadBool(&out.B)
	r.ReadChar(&out.C)
	r.ReadInt8(&out.I8)
	r.ReadInt16(&out.I16)
	r.ReadInt32(&out.I32)
	r.ReadInt64(&out.I64)
	r.ReadFloat32(&out.F32)
	r.ReadFloat64(&out.F64)
	r.ReadString(&out.S)
	r.ReadInt32s(&out.Ints)
	r.ReadFloat64s(&out.Dbls)
	if err := r.Err(); err != nil {
		return err
	}
	*v = out
	return nil
}

func fullSample() *sample {
	return &sample{
		B:    true,
		C:    0x263A,
		I8:   math.MinInt8,
		I16:  math.MaxInt16,
		I32:  math.MinInt32,
		I64:  math.MaxInt64,
		F32:  -3.5,
		F64:  math.SmallestNonzeroFloat64,
		S:    "ecl\x00collector",
		Ints: []int32{1, -1, math.MaxInt32},
		Dbls: []float64{0.5, math.Inf(-1)},
	}
}

func TestPrimitiveRoundTrip(t *testing.T) {
	cases := []sample{
		{},
		*fullSample(),
		{B: false, C: 0xFFFF, I8: math.MaxInt8, I16: math.MinInt16, I32: math.MaxInt32, I64: math.MinInt64,
			F32: math.MaxFloat32, F64: -math.MaxFloat64, S: "", Ints: []int32{}, Dbls: []float64{}},
	}
	for _, want := range cases {
		data, err := Marshal(&want)
		require.NoError(t, err)

		var got sample
		require.NoError(t, Unmarshal(data, &got))
		assert.Equal(t, want.B, got.B)
		assert.Equal(t, want.C, got.C)
		assert.Equal(t, want.I8, got.I8)
		assert.Equal(t, want.I16, got.I16)
		assert.Equal(t, want.I32, got.I32)
		assert.Equal(t, want.I64, got.I64)
		assert.Equal(t, want.F32, got.F32)
		assert.Equal(t, want.F64, got.F64)
		assert.Equal(t, want.S, got.S)
		if len(want.Ints) == 0 {
			assert.Empty(t, got.Ints)
		} else {
			assert.Equal(t, want.Ints, got.Ints)
		}
		if len(want.Dbls) == 0 {
			assert.Empty(t, got.Dbls)
		} else {
			assert.Equal(t, want.Dbls, got.Dbls)
		}
	}
}

func TestFloatBitsRoundTrip(t *testing.T) {
	values := []float64{math.NaN(), math.Copysign(0, -1), math.Inf(1), 1e-300}

	var buf bytes.Buffer
	w, _ := NewWriter(&buf)
	for _, v := range values {
		w.WriteFloat64(v)
		w.WriteFloat32(float32(v))
	}
	_, err := w.Result()
	require.NoError(t, err)

	r, _ := NewReader(&buf)
	for _, v := range values {
		var f64 float64
		var f32 float32
		r.ReadFloat64(&f64)
		r.ReadFloat32(&f32)
		require.NoError(t, r.Err())
		assert.Equal(t, math.Float64bits(v), math.Float64bits(f64))
		assert.Equal(t, math.Float32bits(float32(v)), math.Float32bits(f32))
	}
}

func TestStringRoundTrip(t *testing.T) {
	random := make([]byte, 1000)
	rand.New(rand.NewSource(1)).Read(random)

	cases := []string{
		"",
		"\x00",
		"a\x00b",
		"\x00\x00\x00\x00",
		"daq01",
		"Σ detector ✓",
		string(random), // not valid UTF-8, still raw bytes
	}
	for _, want := range cases {
		var buf bytes.Buffer
		w, _ := NewWriter(&buf)
		w.WriteString(want)
		w.WriteInt32(-7) // sentinel after the string
		_, err := w.Result()
		require.NoError(t, err)
		assert.Equal(t, 4+len(want)+4, buf.Len())

		r, _ := NewReader(&buf)
		var got string
		var sentinel int32
		r.ReadString(&got)
		r.ReadInt32(&sentinel)
		require.NoError(t, r.Err())
		assert.Equal(t, want, got)
		assert.Equal(t, int32(-7), sentinel, "framing must end exactly at the declared length")
	}
}

func TestSequenceRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 3, 1000} {
		want := make([]int32, n)
		for i := range want {
			want[i] = int32(i*7 - 500)
		}
		var buf bytes.Buffer
		w, _ := NewWriter(&buf)
		w.WriteInt32s(want)
		_, err := w.Result()
		require.NoError(t, err)

		r, _ := NewReader(&buf)
		var got []int32
		r.ReadInt32s(&got)
		require.NoError(t, r.Err())
		require.NotNil(t, got, "n=0 must decode to an empty list")
		assert.Equal(t, want, got)
	}
}

func TestTruncationAlwaysFails(t *testing.T) {
	data, err := Marshal(fullSample())
	require.NoError(t, err)

	for cut := 1; cut <= len(data); cut++ {
		got := sample{S: "untouched"}
		err := Unmarshal(data[:len(data)-cut], &got)
		require.Error(t, err, "cut=%d", cut)
		assert.ErrorIs(t, err, ErrStreamExhausted, "cut=%d", cut)
		assert.Equal(t, "untouched", got.S, "cut=%d", cut)
	}
}

func TestFieldOrderMatters(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf)
	w.WriteInt16(1)
	w.WriteInt32(2)
	_, err := w.Result()
	require.NoError(t, err)

	r, _ := NewReader(bytes.NewReader(buf.Bytes()))
	var a int16
	var b int32
	r.ReadInt16(&a)
	r.ReadInt32(&b)
	require.NoError(t, r.Err())
	assert.Equal(t, int16(1), a)
	assert.Equal(t, int32(2), b)

	// Same bytes, reads swapped: no error, just wrong values.
	r, _ = NewReader(bytes.NewReader(buf.Bytes()))
	r.ReadInt32(&b)
	r.ReadInt16(&a)
	require.NoError(t, r.Err())
	assert.Equal(t, int32(0x00010000), b)
	assert.Equal(t, int16(2), a)
}

func TestUnmarshal(t *testing.T) {
	data, err := Marshal(fullSample())
	require.NoError(t, err)

	t.Run("TrailingData", func(t *testing.T) {
		var got sample
		err := Unmarshal(append(bytes.Clone(data), 0x00), &got)
		assert.ErrorIs(t, err, ErrTrailingData)
	})

	t.Run("NilObject", func(t *testing.T) {
		assert.ErrorIs(t, Unmarshal(data, nil), ErrNilObject)
		_, err := Marshal(nil)
		assert.ErrorIs(t, err, ErrNilObject)
	})
}

func TestMarshalTo(t *testing.T) {
	want, err := Marshal(fullSample())
	require.NoError(t, err)

	t.Run("ExactBuffer", func(t *testing.T) {
		buf := make([]byte, len(want))
		n, err := MarshalTo(fullSample(), buf)
		require.NoError(t, err)
		assert.Equal(t, len(want), n)
		assert.Equal(t, want, buf)
	})

	t.Run("ShortBuffer", func(t *testing.T) {
		buf := make([]byte, len(want)-1)
		_, err := MarshalTo(fullSample(), buf)
		assert.ErrorIs(t, err, ErrWriteFailure)
		assert.ErrorIs(t, err, io.ErrShortWrite)
	})
}

// --- Sequences of entities ---

type pair struct {
	Key   string
	Value int64
}

func (p *pair) WriteObject(w *Writer) error {
	w.WriteString(p.Key)
	w.WriteInt64(p.Value)
	return w.Err()
}

func (p *pair) ReadObject(r *Reader) error {
	r.ReadString(&p.Key)
	r.ReadInt64(&p.Value)
	return r.Err()
}

func TestSeq(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		want := []pair{{"run", 42}, {"", -1}, {"exp", 7}}
		var buf bytes.Buffer
		w, _ := NewWriter(&buf)
		require.NoError(t, WriteSeq(w, want))
		_, err := w.Result()
		require.NoError(t, err)

		r, _ := NewReader(&buf)
		got, err := ReadSeq[pair](r)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Empty", func(t *testing.T) {
		var buf bytes.Buffer
		w, _ := NewWriter(&buf)
		require.NoError(t, WriteSeq[pair](w, nil))
		_, err := w.Result()
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 0}, buf.Bytes())

		r, _ := NewReader(&buf)
		got, err := ReadSeq[pair](r)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("TruncatedElement", func(t *testing.T) {
		r, _ := NewReader(bytes.NewReader([]byte{0, 0, 0, 2, 0, 0, 0, 0}))
		got, err := ReadSeq[pair](r)
		assert.ErrorIs(t, err, ErrStreamExhausted)
		assert.Nil(t, got)
	})
}

// --- Nesting ---

// chain nests through a sequence of itself, like a configuration tree.
type chain struct {
	Next []chain
}

func (c *chain) WriteObject(w *Writer) error {
	return WriteSeq(w, c.Next)
}

func (c *chain) ReadObject(r *Reader) error {
	next, err := ReadSeq[chain](r)
	if err != nil {
		return err
	}
	c.Next = next
	return nil
}

func nestedChain(depth int) *chain {
	c := &chain{Next: []chain{}}
	for i := 1; i < depth; i++ {
		c = &chain{Next: []chain{*c}}
	}
	return c
}

func TestNestingDepth(t *testing.T) {
	decode := func(data []byte, limits Limits) error {
		r, _ := NewReader(bytes.NewReader(data))
		r.WithLimits(limits)
		return ReadObject(r, &chain{})
	}

	t.Run("AtLimit", func(t *testing.T) {
		data, err := Marshal(nestedChain(3))
		require.NoError(t, err)
		assert.NoError(t, decode(data, Limits{MaxDepth: 3}))
	})

	t.Run("OverLimit", func(t *testing.T) {
		data, err := Marshal(nestedChain(4))
		require.NoError(t, err)
		assert.ErrorIs(t, decode(data, Limits{MaxDepth: 3}), ErrInvalidLength)
		assert.NoError(t, decode(data, Limits{}))
	})

	t.Run("SiblingsDoNotAccumulate", func(t *testing.T) {
		wide := &chain{Next: []chain{*nestedChain(2), *nestedChain(2), *nestedChain(2)}}
		data, err := Marshal(wide)
		require.NoError(t, err)
		assert.NoError(t, decode(data, Limits{MaxDepth: 3}))
	})

	t.Run("EndlessNesting", func(t *testing.T) {
		// every level claims exactly one child
		data := bytes.Repeat([]byte{0, 0, 0, 1}, 1_000_000)
		var got chain
		err := Unmarshal(data, &got)
		assert.ErrorIs(t, err, ErrInvalidLength)
		assert.Nil(t, got.Next)
	})
}

// --- Fixed ---

type statusWord struct {
	ID    uint32
	State uint16
	Flags [2]byte
}

type statusCodec = Fixed[statusWord]

type notFixed struct {
	Name string
}

func TestFixed(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		c := &statusCodec{statusWord{ID: 0xDEADBEEF, State: 3, Flags: [2]byte{1, 2}}}
		data, err := Marshal(c)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x03, 0x01, 0x02}, data)

		var got statusCodec
		require.NoError(t, Unmarshal(data, &got))
		assert.Equal(t, c.Payload, got.Payload)
	})

	t.Run("Truncated", func(t *testing.T) {
		got := statusCodec{statusWord{ID: 9}}
		err := Unmarshal([]byte{0xDE, 0xAD}, &got)
		assert.ErrorIs(t, err, ErrStreamExhausted)
		assert.Equal(t, uint32(9), got.Payload.ID)
	})

	t.Run("VariableSizePayload", func(t *testing.T) {
		_, err := Marshal(&Fixed[notFixed]{})
		assert.Error(t, err)
	})

	t.Run("SizeCache", func(t *testing.T) {
		expectedSize := 8 // uint32(4) + uint16(2) + [2]byte(2)
		assert.Equal(t, expectedSize, (&statusCodec{}).Size())

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := &statusCodec{statusWord{ID: uint32(i)}}
				assert.Equal(t, expectedSize, c.Size())
			}()
		}
		wg.Wait()
	})
}

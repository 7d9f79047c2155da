package serial

// WriteSeq writes len(items) as an int32 count followed by each item's
// encoding, in order. It is the mirror image of ReadSeq.
func WriteSeq[T any, PT interface {
	*T
	Serializable
}](w *Writer, items []T) error {
	w.WriteCount(len(items))
	if w.err != nil {
		return w.err
	}
	for i := range items {
		if err := WriteObject(w, PT(&items[i])); err != nil {
			return err
		}
	}
	return w.err
}

// ReadSeq reads an int32 count followed by that many elements, each decoded
// into a freshly zeroed T. A zero count yields an empty, non-nil slice; on
// failure nothing decoded so far is returned.
func ReadSeq[T any, PT interface {
	*T
	Serializable
}](r *Reader) ([]T, error) {
	n := r.ReadCount()
	if n < 0 {
		return nil, r.err
	}
	items := make([]T, n)
	for i := range items {
		if err := ReadObject(r, PT(&items[i])); err != nil {
			return nil, err
		}
	}
	return items, nil
}

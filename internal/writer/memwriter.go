package writer

// MemWriter captures asset bytes in memory.
type MemWriter struct {
	Buf []byte
}

// WriteAsset implements Sink by copying data.
func (w *MemWriter) WriteAsset(data []byte) error {
	w.Buf = append(w.Buf[:0], data...)
	return nil
}

package bind_group_provider

// BufferWrite is a queued upload of Data into the buffer a provider holds at Binding, starting Offset
// bytes in. Writes against a binding with no buffer are dropped.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Bytes returns the total payload of a batch of writes.
func Bytes(writes []BufferWrite) int {
	n := 0
	for _, w := range writes {
		n += len(w.Data)
	}
	return n
}

package ring

// Buffer is a fixed-capacity circular byte buffer with FIFO semantics.
// Writes and reads clamp to the space or data actually available and
// report how many bytes moved; no operation fails or blocks.
//
// Buffer is not safe for concurrent use. Callers sharing one across
// goroutines must synchronize externally (see internal/pipe for the
// mutex-guarded wrapper used by the relay).
type Buffer struct {
	buf      []byte
	readPos  int
	writePos int
	used     int
}

// New creates a buffer with the given capacity. The capacity is fixed for
// the lifetime of the buffer. A capacity of zero (or negative) yields a
// degenerate buffer on which every operation reports zero bytes moved.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{buf: make([]byte, capacity)}
}

// Capacity returns the total byte slots in the buffer.
func (b *Buffer) Capacity() int {
	return len(b.buf)
}

// ReadAvailable returns the number of buffered bytes waiting to be read.
func (b *Buffer) ReadAvailable() int {
	return b.used
}

// WriteAvailable returns the number of free slots.
// ReadAvailable()+WriteAvailable() equals Capacity() in every state.
func (b *Buffer) WriteAvailable() int {
	return len(b.buf) - b.used
}

// Write copies as much of p as fits into the buffer and returns the number
// of bytes accepted. A full buffer accepts nothing and returns 0; excess
// bytes are discarded, not queued. The caller detects a partial write from
// the returned count and retries the remainder once space frees up.
func (b *Buffer) Write(p []byte) int {
	n := min(len(p), b.WriteAvailable())
	if n == 0 {
		return 0
	}
	if b.writePos+n <= len(b.buf) {
		copy(b.buf[b.writePos:], p[:n])
	} else {
		first := len(b.buf) - b.writePos
		copy(b.buf[b.writePos:], p[:first])
		copy(b.buf, p[first:n])
	}
	b.writePos = (b.writePos + n) % len(b.buf)
	b.used += n
	return n
}

// Read removes and returns up to maxBytes of the oldest buffered bytes, in
// write order. Reading from an empty buffer, or with maxBytes <= 0, returns
// an empty slice. The returned slice is freshly allocated and owned by the
// caller.
func (b *Buffer) Read(maxBytes int) []byte {
	n := min(maxBytes, b.used)
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	if b.readPos+n <= len(b.buf) {
		copy(out, b.buf[b.readPos:b.readPos+n])
	} else {
		first := len(b.buf) - b.readPos
		copy(out, b.buf[b.readPos:])
		copy(out[first:], b.buf[:n-first])
	}
	b.readPos = (b.readPos + n) % len(b.buf)
	b.used -= n
	return out
}

// Flush resets the buffer to empty in O(1). The storage is not zeroed;
// stale bytes remain physically present but are unreachable through Read.
// Callers needing guaranteed zeroing must overwrite the buffer themselves.
func (b *Buffer) Flush() {
	b.readPos = 0
	b.writePos = 0
	b.used = 0
}

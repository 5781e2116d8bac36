// Package pipe defines the interface for synchronized byte pipes.
//
// A pipe connects one producing goroutine to one consuming goroutine
// through a bounded in-memory buffer, so a bursty side can run ahead of
// the other up to the buffer capacity.
package pipe

// Stats is a point-in-time snapshot of a pipe's buffer and counters.
type Stats struct {
	// Capacity is the fixed buffer capacity in bytes.
	Capacity int

	// Buffered is the number of bytes currently waiting to be read.
	Buffered int

	// BytesIn is the total number of bytes accepted by Write.
	BytesIn uint64

	// BytesOut is the total number of bytes returned by Read.
	BytesOut uint64

	// BytesDropped is the total number of bytes discarded by Write under
	// the drop overflow policy.
	BytesDropped uint64
}

// Pipe is a bounded byte pipe between goroutines.
// All implementations must be thread-safe.
type Pipe interface {
	// Write copies p into the pipe, blocking or dropping on overflow
	// depending on the implementation's policy. It returns the number of
	// bytes accepted.
	Write(p []byte) (int, error)

	// Read copies buffered bytes into p in FIFO order, blocking until at
	// least one byte is available or the pipe is closed. After CloseWrite,
	// Read drains the remaining bytes and then returns io.EOF.
	Read(p []byte) (int, error)

	// CloseWrite closes the write side. Buffered bytes stay readable.
	CloseWrite() error

	// Close tears the pipe down and unblocks all waiters. Buffered bytes
	// are discarded.
	Close() error

	// Stats returns a snapshot of the pipe's counters.
	Stats() Stats
}

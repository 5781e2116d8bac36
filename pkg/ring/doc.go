// Package ring provides a fixed-capacity circular byte buffer with FIFO
// semantics, intended as the low-level building block for streaming byte
// pipes where a bounded memory region absorbs bursty writes and is drained
// by a reader at a different rate.
//
// # Buffer
//
// A Buffer owns a contiguous byte region of fixed capacity plus read and
// write cursors. All operations are synchronous and total: they clamp their
// effect to the space or data actually available and return immediately
// with the count of bytes moved. Nothing errors, panics, or blocks.
//
//	b := ring.New(1024)
//
//	n := b.Write(data)        // n may be < len(data) when space runs out
//	chunk := b.Read(4096)     // at most 4096 bytes, FIFO order
//
// # Availability
//
// Callers poll before acting; a short write is the backpressure signal:
//
//	if b.WriteAvailable() == 0 {
//	    // full: drain some bytes before writing more
//	}
//	occupied := b.ReadAvailable()
//
// ReadAvailable and WriteAvailable always sum to Capacity.
//
// # Flush
//
// Flush resets the buffer to empty in constant time without touching the
// storage. Previously buffered bytes stay in memory until overwritten by
// later writes; zero the region manually if that matters.
//
// # Concurrency
//
// Buffer provides no synchronization. Use it from a single goroutine, or
// wrap it: the relay in this repository guards one with a mutex and
// condition variables (internal/pipe) for producer/consumer use.
package ring

// Package pipe implements a synchronized blocking byte pipe over a ring
// buffer, for one side of a relayed connection.
package pipe

import (
	"fmt"
	"io"
	"sync"

	"github.com/jittakal/ringpipe/internal/errors"
	"github.com/jittakal/ringpipe/pkg/pipe"
	"github.com/jittakal/ringpipe/pkg/ring"
)

// Ensure implementation satisfies interface at compile time.
var _ pipe.Pipe = (*BufferedPipe)(nil)

// OverflowPolicy selects what Write does when the buffer is full.
type OverflowPolicy int

const (
	// Block makes Write wait until the reader frees space.
	Block OverflowPolicy = iota

	// Drop makes Write accept the prefix that fits and discard the rest,
	// counting the discarded bytes in Stats.
	Drop
)

// ParsePolicy maps a configuration string to an OverflowPolicy.
func ParsePolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "block":
		return Block, nil
	case "drop":
		return Drop, nil
	default:
		return Block, fmt.Errorf("unknown overflow policy: %q", s)
	}
}

func (p OverflowPolicy) String() string {
	if p == Drop {
		return "drop"
	}
	return "block"
}

// BufferedPipe is a thread-safe byte pipe backed by a fixed-capacity ring
// buffer. One goroutine writes network ingress into it while another drains
// it toward the peer; either side may run ahead up to the ring capacity.
type BufferedPipe struct {
	mu       sync.Mutex
	readable sync.Cond
	writable sync.Cond

	rb     *ring.Buffer
	policy OverflowPolicy

	writeClosed bool
	closed      bool

	bytesIn      uint64
	bytesOut     uint64
	bytesDropped uint64
}

// New creates a pipe with the given ring capacity and overflow policy.
func New(capacity int, policy OverflowPolicy) *BufferedPipe {
	p := &BufferedPipe{
		rb:     ring.New(capacity),
		policy: policy,
	}
	p.readable.L = &p.mu
	p.writable.L = &p.mu
	return p
}

// Write copies p into the pipe. Under the Block policy it waits for the
// reader whenever the ring is full, so it returns len(p) unless the pipe
// closes mid-write. Under the Drop policy it accepts what fits and counts
// the remainder as dropped, returning the accepted count with a nil error.
func (p *BufferedPipe) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0
	for {
		if p.closed {
			return total, errors.ErrPipeClosed
		}
		if p.writeClosed {
			return total, errors.ErrWriteClosed
		}

		n := p.rb.Write(data[total:])
		if n > 0 {
			total += n
			p.bytesIn += uint64(n)
			p.readable.Signal()
		}
		if total == len(data) {
			return total, nil
		}

		if p.policy == Drop {
			p.bytesDropped += uint64(len(data) - total)
			return total, nil
		}
		p.writable.Wait()
	}
}

// Read copies up to len(dst) buffered bytes into dst, blocking until data
// arrives. After CloseWrite it drains the remainder and then reports io.EOF.
func (p *BufferedPipe) Read(dst []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if p.closed {
			return 0, errors.ErrPipeClosed
		}

		if p.rb.ReadAvailable() > 0 {
			chunk := p.rb.Read(len(dst))
			n := copy(dst, chunk)
			p.bytesOut += uint64(n)
			p.writable.Signal()
			return n, nil
		}

		if p.writeClosed {
			return 0, io.EOF
		}
		if len(dst) == 0 {
			return 0, nil
		}
		p.readable.Wait()
	}
}

// CloseWrite closes the write side. Buffered bytes remain readable; once
// drained, Read returns io.EOF. Safe to call more than once.
func (p *BufferedPipe) CloseWrite() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.writeClosed = true
	p.readable.Broadcast()
	p.writable.Broadcast()
	return nil
}

// Close tears the pipe down, discarding buffered bytes and unblocking all
// waiters. Safe to call more than once.
func (p *BufferedPipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.closed = true
		p.rb.Flush()
		p.readable.Broadcast()
		p.writable.Broadcast()
	}
	return nil
}

// Stats returns a snapshot of the pipe's buffer state and counters.
func (p *BufferedPipe) Stats() pipe.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return pipe.Stats{
		Capacity:     p.rb.Capacity(),
		Buffered:     p.rb.ReadAvailable(),
		BytesIn:      p.bytesIn,
		BytesOut:     p.bytesOut,
		BytesDropped: p.bytesDropped,
	}
}

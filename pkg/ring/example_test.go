package ring_test

import (
	"fmt"

	"github.com/jittakal/ringpipe/pkg/ring"
)

func Example() {
	// A small buffer absorbing a bursty writer.
	b := ring.New(10)

	n := b.Write([]byte("hello world!"))
	fmt.Printf("accepted %d of 12 bytes\n", n)
	fmt.Printf("occupied: %d, free: %d\n", b.ReadAvailable(), b.WriteAvailable())

	// Drain a few bytes, then the writer retries the remainder.
	fmt.Printf("drained: %q\n", b.Read(5))
	n = b.Write([]byte("d!"))
	fmt.Printf("retry accepted %d bytes\n", n)
	fmt.Printf("contents: %q\n", b.Read(b.ReadAvailable()))

	// Output:
	// accepted 10 of 12 bytes
	// occupied: 10, free: 0
	// drained: "hello"
	// retry accepted 2 bytes
	// contents: " world!"
}

func Example_backpressure() {
	b := ring.New(4)

	// A full buffer rejects further bytes; the short count is the signal.
	b.Write([]byte{1, 2, 3, 4})
	if n := b.Write([]byte{5}); n == 0 {
		fmt.Println("buffer full, retry later")
	}

	// Flush resets to empty in O(1).
	b.Flush()
	fmt.Printf("after flush: %d free\n", b.WriteAvailable())

	// Output:
	// buffer full, retry later
	// after flush: 4 free
}

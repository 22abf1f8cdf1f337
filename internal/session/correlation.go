package session

import (
	"strconv"
	"sync/atomic"
)

// Allocator issues request-correlation identifiers: monotonically
// increasing integers, string-encoded, unique for the lifetime of one
// connection. Increment is atomic because the per-device fan-out may
// allocate several ids before the drain goroutine sees any response.
type Allocator struct {
	last atomic.Uint64
}

// Next returns a fresh correlation identifier.
func (a *Allocator) Next() string {
	return strconv.FormatUint(a.last.Add(1), 10)
}

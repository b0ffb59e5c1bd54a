package rhi

import (
	"sync/atomic"
	"unsafe"
)

// Allocator manages host memory backing renderer objects.
//
// Reallocate follows the realloc contract:
//   - block nil, size > 0: allocate size bytes
//   - block non-nil, size > 0: resize, keeping min(len(block), size) bytes
//   - size 0: free block and return nil
//
// The returned slice starts at a multiple of alignment when alignment is a
// power of two. Implementations must be safe for concurrent use because
// resources may be released from any goroutine.
type Allocator interface {
	Reallocate(block []byte, size, alignment int) []byte
}

// HeapAllocator allocates from the Go heap and keeps statistics.
// The zero value is ready to use.
type HeapAllocator struct {
	allocs atomic.Int64
	frees  atomic.Int64
	live   atomic.Int64
}

// AllocatorStats is a snapshot of HeapAllocator counters.
type AllocatorStats struct {
	Allocations int64
	Frees       int64
	LiveBytes   int64
}

// Reallocate implements Allocator.
func (a *HeapAllocator) Reallocate(block []byte, size, alignment int) []byte {
	if size <= 0 {
		if block != nil {
			a.frees.Add(1)
			a.live.Add(-int64(len(block)))
		}
		return nil
	}
	out := alignedBytes(size, alignment)
	if block != nil {
		copy(out, block)
		a.frees.Add(1)
		a.live.Add(-int64(len(block)))
	}
	a.allocs.Add(1)
	a.live.Add(int64(size))
	return out
}

// Stats returns the current counters.
func (a *HeapAllocator) Stats() AllocatorStats {
	return AllocatorStats{
		Allocations: a.allocs.Load(),
		Frees:       a.frees.Load(),
		LiveBytes:   a.live.Load(),
	}
}

// alignedBytes returns a zeroed slice of length size whose first element
// sits at a multiple of alignment.
func alignedBytes(size, alignment int) []byte {
	if alignment <= 1 || alignment&(alignment-1) != 0 {
		return make([]byte, size)
	}
	buf := make([]byte, size+alignment-1)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	off := int((uintptr(alignment) - addr%uintptr(alignment)) % uintptr(alignment)) // #nosec G115 -- off < alignment
	return buf[off : off+size : off+size]
}

var defaultAllocator HeapAllocator

// DefaultAllocator returns the process-wide heap allocator.
func DefaultAllocator() *HeapAllocator {
	return &defaultAllocator
}

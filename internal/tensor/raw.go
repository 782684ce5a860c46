package tensor

import (
	"runtime"
	"sync/atomic"
)

// Ownership tells which party supplied a tensor's backing memory.
type Ownership int

// Ownership modes.
const (
	// Owned buffers were allocated by the engine and are freed on release.
	Owned Ownership = iota
	// Borrowed buffers alias pinned caller memory; release only unpins it.
	Borrowed
	// External buffers were supplied together with a caller deallocator.
	External
)

// String returns a human-readable ownership mode.
func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// Deallocator releases the memory behind a tensor buffer.
//
// Release is called exactly once per tensor with the buffer and the context
// value registered at construction. It must not fail.
type Deallocator interface {
	Release(data []byte, ctx any)
}

// DeallocatorFunc adapts a function to the Deallocator interface.
type DeallocatorFunc func(data []byte, ctx any)

// Release calls f(data, ctx).
func (f DeallocatorFunc) Release(data []byte, ctx any) {
	f(data, ctx)
}

// ownedBuffer is an engine-allocated buffer. It is the context value passed
// to ownedDeallocator.
type ownedBuffer struct {
	data []byte
}

// newOwnedBuffer allocates a zeroed buffer of size bytes.
func newOwnedBuffer(size int) *ownedBuffer {
	ownedBytes.Add(int64(size))
	return &ownedBuffer{data: make([]byte, size)}
}

// free drops the engine's reference so the memory can be reclaimed.
func (b *ownedBuffer) free() {
	ownedBytes.Add(-int64(len(b.data)))
	b.data = nil
}

// ownedDeallocator frees engine-allocated buffers.
type ownedDeallocator struct{}

func (ownedDeallocator) Release(_ []byte, ctx any) {
	if b, ok := ctx.(*ownedBuffer); ok {
		b.free()
	}
}

// pinnedDeallocator releases the pin on borrowed caller memory. It never
// frees the memory itself.
type pinnedDeallocator struct{}

func (pinnedDeallocator) Release(_ []byte, ctx any) {
	if p, ok := ctx.(*runtime.Pinner); ok {
		p.Unpin()
	}
}

// handle owns a tensor's buffer and guarantees its deallocator runs once.
// It is kept separate from Tensor so a GC cleanup attached to the Tensor can
// reference it without keeping the Tensor reachable.
type handle struct {
	data      []byte
	size      int
	dealloc   Deallocator
	ctx       any
	ownership Ownership
	released  atomic.Bool
}

func newHandle(data []byte, d Deallocator, ctx any, ownership Ownership) *handle {
	liveTensors.Add(1)
	return &handle{
		data:      data,
		size:      len(data),
		dealloc:   d,
		ctx:       ctx,
		ownership: ownership,
	}
}

// release runs the deallocator if no other caller has done so yet.
// It reports whether this call performed the release.
func (h *handle) release() bool {
	if !h.released.CompareAndSwap(false, true) {
		return false
	}
	data, ctx := h.data, h.ctx
	h.data, h.ctx = nil, nil
	h.dealloc.Release(data, ctx)
	liveTensors.Add(-1)
	return true
}

func (h *handle) isReleased() bool {
	return h.released.Load()
}

package rgpu

import (
	"sync"
	"sync/atomic"
)

// ScalarType is the per-component scalar type of a DataSegment (spec §3
// "Data segment").
type ScalarType int

const (
	ScalarFloat ScalarType = iota
	ScalarInt
	ScalarUInt
)

// SizeBytes returns the size in bytes of one scalar component.
func (t ScalarType) SizeBytes() int { return 4 }

// DataSegment describes one named, interleaved field of a vertex buffer
// (spec §3 "Data segment"). InstanceRate of 0 means per-vertex; >=1
// means per-instance, advanced every N instances.
type DataSegment struct {
	Name         string
	Scalar       ScalarType
	Count        int // 1..4
	InstanceRate int
}

// SizeBytes is the byte footprint of one element of this segment.
func (s DataSegment) SizeBytes() int { return s.Scalar.SizeBytes() * s.Count }

// Buffer owns an init descriptor (raw bytes plus an optional layout of
// DataSegments) and lazily-realized backend state (spec §3 Buffer). The
// first ensured role (vertex or uniform) is fixed for the buffer's
// lifetime; see BufferRole.
type Buffer struct {
	gpu  *Gpu
	refs int32

	Bytes  []byte
	Layout []DataSegment

	mu      sync.Mutex
	role    BufferRole
	backend interface{}
}

// BufferNewForData copies data into a new Buffer init descriptor (spec
// §6 buffer_new_for_data). layout may be nil for a buffer that will
// only ever be used as a uniform block.
func BufferNewForData(gpu *Gpu, data []byte, layout []DataSegment) *Buffer {
	if gpu == nil {
		critical("buffer_new_for_data", "nil gpu")
		return nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	gpu.Ref()
	return &Buffer{gpu: gpu, refs: 1, Bytes: cp, Layout: layout}
}

// BufferNewForDataTake is identical to BufferNewForData but takes
// ownership of data without copying (spec §6 buffer_new_for_data_take).
// Callers must not mutate data afterward.
func BufferNewForDataTake(gpu *Gpu, data []byte, layout []DataSegment) *Buffer {
	if gpu == nil {
		critical("buffer_new_for_data_take", "nil gpu")
		return nil
	}
	gpu.Ref()
	return &Buffer{gpu: gpu, refs: 1, Bytes: data, Layout: layout}
}

func (b *Buffer) ref() { atomic.AddInt32(&b.refs, 1) }

func (b *Buffer) unref() {
	if atomic.AddInt32(&b.refs, -1) != 0 {
		return
	}
	for _, e := range b.gpu.backend.ReleaseBuffer(b) {
		b.gpu.pushDestroy(e)
	}
	b.gpu.Unref()
}

func (b *Buffer) Unref() { b.unref() }
func (b *Buffer) Ref() *Buffer {
	b.ref()
	return b
}

// Role reports the buffer's fixed role, or RoleUnset if never ensured.
func (b *Buffer) Role() BufferRole {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.role
}

// FixRole atomically sets the buffer's role on first use, or reports a
// mismatch against an already-fixed role (spec §3 Buffer, §8 "Buffer
// role exclusivity").
func (b *Buffer) FixRole(want BufferRole) (ok bool, prior BufferRole) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.role == RoleUnset {
		b.role = want
		return true, want
	}
	return b.role == want, b.role
}

func (b *Buffer) Backend() interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.backend
}

func (b *Buffer) SetBackend(v interface{}) {
	b.mu.Lock()
	b.backend = v
	b.mu.Unlock()
}

// Stride computes the interleaved stride of the buffer's layout in
// bytes (spec §4.3 "stride as sum of segment_count x type_size").
func (b *Buffer) Stride() int {
	total := 0
	for _, seg := range b.Layout {
		total += seg.SizeBytes()
	}
	return total
}

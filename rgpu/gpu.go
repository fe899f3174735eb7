package rgpu

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vitrailgpu/rgpu/internal/gid"
	"github.com/vitrailgpu/rgpu/internal/rlog"
	"github.com/vitrailgpu/rgpu/internal/ring"
)

// Gpu is the process-facing handle to a backend (spec §3 Gpu).
type Gpu struct {
	id string // uuid generated by NewGpu; not read elsewhere in this package

	refs int32 // atomic

	driverName string
	backend    Backend
	threadsafe bool // driver.IsThreadSafe()
	flags      Flags

	// dataLock is the "single-bit lock reused as a coarse mutex" of
	// spec §3/§9. It must never be held across a driver call — only
	// around frontend data mutation and the claim check.
	dataLock sync.Mutex
	claimed  uint64 // goroutine id from internal/gid, 0 = unclaimed

	// destroyQueue is guarded by its own mutex inside ring.Queue, a
	// separate region from dataLock per spec §9 ("two logical regions
	// ... must not be held across driver calls").
	destroyQueue *ring.Queue[DestroyEntry]

	fbStackDepth int
}

// NewGpu opens driver and returns a frontend Gpu bound to it (spec §6
// gpu_new). loader is the extension-loader function pointer, or nil.
func NewGpu(flags Flags, driver Driver, loader interface{}) (*Gpu, error) {
	if driver == nil {
		critical("gpu_new", "nil driver")
		return nil, newError(FailedInit, nil, "nil driver")
	}
	backend, err := driver.Open(flags, loader)
	if err != nil {
		return nil, newError(FailedInit, nil, "open %s backend: %v", driver.Name(), err)
	}
	rlog.SetLevel(flags&UseDebugLayers != 0)
	g := &Gpu{
		id:           uuid.NewString(),
		refs:         1,
		driverName:   driver.Name(),
		backend:      backend,
		threadsafe:   driver.IsThreadSafe(),
		flags:        flags,
		destroyQueue: ring.New[DestroyEntry](16),
	}
	return g, nil
}

// Ref increments the Gpu's atomic reference count and returns the
// receiver, mirroring the resource-object ref discipline of spec §5.
func (g *Gpu) Ref() *Gpu {
	atomic.AddInt32(&g.refs, 1)
	return g
}

// Unref decrements the reference count. The backend is not torn down
// here; callers are expected to have flushed all deferred destructions
// beforehand. This mirrors the source's coarse-grained teardown, which
// is out of scope for the core plan/commands pipeline (spec §1).
func (g *Gpu) Unref() {
	atomic.AddInt32(&g.refs, -1)
}

func (g *Gpu) refCount() int32 { return atomic.LoadInt32(&g.refs) }

// Info answers gpu_get_info (spec §6).
func (g *Gpu) Info(key string) string {
	return g.backend.Info(key)
}

// StealThisThread atomically claims this Gpu for the calling goroutine
// (spec §5, §6 gpu_steal_this_thread).
func (g *Gpu) StealThisThread() {
	g.dataLock.Lock()
	g.claimed = gid.Current()
	g.dataLock.Unlock()
	g.backend.StealThisThread()
}

// ReleaseThisThread clears the current claim (spec §6
// gpu_release_this_thread).
func (g *Gpu) ReleaseThisThread() {
	g.dataLock.Lock()
	g.claimed = 0
	g.dataLock.Unlock()
	g.backend.ReleaseThisThread()
}

// requiresClaim reports whether claim discipline is active: the backend
// is not natively thread-safe and the caller did not opt out with
// NoThreadSafety (spec §5).
func (g *Gpu) requiresClaim() bool {
	return !g.threadsafe && g.flags&NoThreadSafety == 0
}

// checkClaim enforces spec §3's Gpu invariant: a mismatch between the
// calling goroutine and the current claim logs a critical and reports
// failure without mutating anything. Safe to call without already
// holding dataLock.
func (g *Gpu) checkClaim(op string) bool {
	if !g.requiresClaim() {
		return true
	}
	g.dataLock.Lock()
	defer g.dataLock.Unlock()
	if g.claimed == 0 || g.claimed != gid.Current() {
		critical(op, "gpu not claimed by calling thread")
		return false
	}
	return true
}

// pushDestroy enqueues a driver handle for deferred destruction (spec
// §5, §9). Called from any goroutine when a resource's refcount reaches
// zero; actually freed by the next Flush on the claim thread.
func (g *Gpu) pushDestroy(e DestroyEntry) {
	g.destroyQueue.Push(e)
}

// Flush drains the deferred-destruction queue and asks the backend to
// free each entry (spec §5 "resources are actually freed at the next
// flush on the Gpu's claim thread", §6 gpu_flush). Must be called on the
// Gpu's claim thread; like compile/dispatch, it checks the claim first.
func (g *Gpu) Flush() {
	if !g.checkClaim("gpu_flush") {
		return
	}
	for _, e := range g.destroyQueue.DrainAll() {
		g.backend.Destroy(e)
	}
}

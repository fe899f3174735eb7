package rgpu

import "testing"

func TestGpuCheckClaimTransitions(t *testing.T) {
	gpu := newTestGpu() // NoThreadSafety set, so claim discipline is bypassed
	gpu.Flush()          // must not panic even though never claimed

	// Force claim discipline on, bypassing the NoThreadSafety flag, to
	// exercise the rejection path directly.
	gpu.flags &^= NoThreadSafety
	if gpu.checkClaim("test_op") {
		t.Fatalf("checkClaim should fail before StealThisThread is called")
	}

	gpu.StealThisThread()
	if !gpu.checkClaim("test_op") {
		t.Fatalf("checkClaim should succeed on the thread that stole the gpu")
	}
	gpu.ReleaseThisThread()
	if gpu.checkClaim("test_op") {
		t.Fatalf("checkClaim should fail again after ReleaseThisThread")
	}
}

func TestGpuFlushDrainsDestroyQueue(t *testing.T) {
	gpu := newTestGpu()
	gpu.pushDestroy(DestroyEntry{Kind: DestroyBuffer, Handle: 1})
	gpu.pushDestroy(DestroyEntry{Kind: DestroyTexture, Handle: 2})

	gpu.Flush()

	if n := len(gpu.destroyQueue.DrainAll()); n != 0 {
		t.Fatalf("expected destroy queue to be empty after Flush, found %d leftover", n)
	}
}

func TestGpuRefCount(t *testing.T) {
	gpu := newTestGpu()
	if gpu.refCount() != 1 {
		t.Fatalf("new gpu refcount = %d, want 1", gpu.refCount())
	}
	gpu.Ref()
	if gpu.refCount() != 2 {
		t.Fatalf("after Ref refcount = %d, want 2", gpu.refCount())
	}
	gpu.Unref()
	if gpu.refCount() != 1 {
		t.Fatalf("after Unref refcount = %d, want 1", gpu.refCount())
	}
}

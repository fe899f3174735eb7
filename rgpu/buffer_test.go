package rgpu

import "testing"

func TestBufferFixRoleExclusivity(t *testing.T) {
	gpu := newTestGpu()
	buf := BufferNewForData(gpu, []byte{1, 2, 3, 4}, nil)

	ok, role := buf.FixRole(RoleVertex)
	if !ok || role != RoleVertex {
		t.Fatalf("first FixRole(vertex) = (%v, %v), want (true, vertex)", ok, role)
	}
	if buf.Role() != RoleVertex {
		t.Fatalf("Role() = %v, want vertex", buf.Role())
	}

	ok, role = buf.FixRole(RoleUniform)
	if ok {
		t.Fatalf("FixRole(uniform) after vertex was fixed should fail")
	}
	if role != RoleVertex {
		t.Fatalf("mismatched FixRole should report the prior role, got %v", role)
	}

	// Re-asserting the already-fixed role is not an error.
	ok, role = buf.FixRole(RoleVertex)
	if !ok || role != RoleVertex {
		t.Fatalf("re-asserting the fixed role should succeed, got (%v, %v)", ok, role)
	}
}

func TestBufferStrideSumsLayout(t *testing.T) {
	gpu := newTestGpu()
	buf := BufferNewForData(gpu, make([]byte, 32), []DataSegment{
		{Name: "a_pos", Scalar: ScalarFloat, Count: 3},
		{Name: "a_uv", Scalar: ScalarFloat, Count: 2},
	})
	if got, want := buf.Stride(), (3+2)*4; got != want {
		t.Fatalf("Stride() = %d, want %d", got, want)
	}
}

func TestBufferNewForDataCopies(t *testing.T) {
	gpu := newTestGpu()
	src := []byte{1, 2, 3}
	buf := BufferNewForData(gpu, src, nil)
	src[0] = 99
	if buf.Bytes[0] == 99 {
		t.Fatalf("BufferNewForData must copy, not alias, the source slice")
	}
}

func TestBufferNewForDataTakeAliases(t *testing.T) {
	gpu := newTestGpu()
	src := []byte{1, 2, 3}
	buf := BufferNewForDataTake(gpu, src, nil)
	src[0] = 99
	if buf.Bytes[0] != 99 {
		t.Fatalf("BufferNewForDataTake must take ownership without copying")
	}
}

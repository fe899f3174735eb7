package rgpu

import "testing"

func TestPlanPushPopDepthRoundTrip(t *testing.T) {
	gpu := newTestGpu()
	plan := PlanNew(gpu)

	plan.BeginConfig()
	plan.ConfigWriteMask(Color)
	plan.PushGroup() // root, depth 0
	if got := plan.Depth(); got != 0 {
		t.Fatalf("root depth = %d, want 0", got)
	}

	sh := ShaderNewForCode(gpu, "vs", "fs")
	tex := TextureNewForData(gpu, nil, 4, 4, FormatRGBA8, 0, 0)

	plan.BeginConfig()
	plan.ConfigShader(sh)
	plan.ConfigTargets(NewTextureValue(tex))
	plan.PushGroup() // non-fake child, depth 1
	if got := plan.Depth(); got != 1 {
		t.Fatalf("child depth = %d, want 1", got)
	}

	plan.Pop(1)
	if !plan.AtRoot() {
		t.Fatalf("expected cursor back at root after Pop(1)")
	}
	if got := plan.Depth(); got != 0 {
		t.Fatalf("depth after pop = %d, want 0", got)
	}
}

func TestPlanFakePassSharesParentDepth(t *testing.T) {
	gpu := newTestGpu()
	plan := PlanNew(gpu)

	plan.BeginConfig()
	plan.ConfigWriteMask(Color)
	plan.PushGroup() // root, depth 0
	rootDepth := plan.Depth()

	// No shader, no targets: this child is "fake" and must not
	// advance depth.
	plan.BeginConfig()
	plan.ConfigWriteMask(Color)
	plan.PushGroup()

	if got := plan.Depth(); got != rootDepth {
		t.Fatalf("fake pass depth = %d, want parent depth %d", got, rootDepth)
	}
}

func TestPlanPopPastRootLogsAndStops(t *testing.T) {
	gpu := newTestGpu()
	plan := PlanNew(gpu)

	plan.BeginConfig()
	plan.ConfigWriteMask(Color)
	plan.PushGroup()

	plan.Pop(5) // exceeds depth; should not panic, cursor stays at root
	if !plan.AtRoot() {
		t.Fatalf("expected cursor still at root after over-popping")
	}
}

func TestPlanAppendRequiresShader(t *testing.T) {
	gpu := newTestGpu()
	plan := PlanNew(gpu)

	plan.BeginConfig()
	plan.PushGroup() // root with no write mask set explicitly

	buf := BufferNewForData(gpu, []byte{0, 0, 0, 0}, nil)
	// Root materializes defaults for write mask, so this should not
	// panic; no shader is in scope though, so append is a no-op.
	before := len(plan.cursor.Children)
	plan.Append(1, buf)
	if len(plan.cursor.Children) != before {
		t.Fatalf("append should have been rejected: no shader in scope")
	}
}

func TestPlanAppendWaivesDepthFuncForColorOnlyPass(t *testing.T) {
	gpu := newTestGpu()
	plan := PlanNew(gpu)

	plan.BeginConfig()
	plan.ConfigWriteMask(Color) // no Depth bit
	plan.PushGroup()
	// The root materializes a LEQUAL default; drop it so no depth-func
	// is in scope anywhere.
	plan.root.DepthFuncVal = nil

	sh := ShaderNewForCode(gpu, "vs", "fs")
	plan.BeginConfig()
	plan.ConfigShader(sh)
	plan.ConfigWriteMask(Color)
	plan.PushGroup()

	buf := BufferNewForData(gpu, []byte{0, 0, 0, 0}, nil)
	plan.Append(1, buf)
	if len(plan.cursor.Children) != 1 {
		t.Fatalf("append should have succeeded without a depth-func in scope")
	}
}

package rgpu

import "testing"

func buildSinglePassPlan(gpu *Gpu) *Plan {
	plan := PlanNew(gpu)
	sh := ShaderNewForCode(gpu, "vs", "fs")
	buf := BufferNewForData(gpu, make([]byte, 16), []DataSegment{
		{Name: "a_pos", Scalar: ScalarFloat, Count: 4},
	})

	plan.BeginConfig()
	plan.ConfigShader(sh)
	plan.ConfigWriteMask(Color)
	plan.PushGroup()
	plan.Append(1, buf)
	return plan
}

func TestUnrefToCommandsRequiresSoleReference(t *testing.T) {
	gpu := newTestGpu()
	plan := buildSinglePassPlan(gpu)
	plan.Ref() // extra reference: refcount now 2

	cmds, err := plan.UnrefToCommands()
	if cmds != nil || err != nil {
		t.Fatalf("expected a rejected compile (nil, nil) with an outstanding extra reference, got (%v, %v)", cmds, err)
	}
	if plan.refCount() != 2 {
		t.Fatalf("plan refcount should be left untouched on rejection, got %d", plan.refCount())
	}
	plan.Unref()
	plan.Unref()
}

func TestUnrefToCommandsGrowsFramebufferStack(t *testing.T) {
	gpu := newTestGpu()
	plan := buildSinglePassPlan(gpu)

	cmds, err := plan.UnrefToCommands()
	if err != nil {
		t.Fatalf("UnrefToCommands: %v", err)
	}
	defer cmds.Unref()

	fb := gpu.backend.(*fakeBackend)
	wantMin := cmds.MaxDepth() + 2
	if fb.fbStack < wantMin {
		t.Fatalf("framebuffer stack = %d, want >= %d", fb.fbStack, wantMin)
	}
}

func TestMaxHeightNestedPasses(t *testing.T) {
	gpu := newTestGpu()
	plan := PlanNew(gpu)
	sh := ShaderNewForCode(gpu, "vs", "fs")
	tex := TextureNewForData(gpu, nil, 4, 4, FormatRGBA8, 0, 0)

	plan.BeginConfig()
	plan.ConfigWriteMask(Color)
	plan.PushGroup() // depth 0

	plan.BeginConfig()
	plan.ConfigShader(sh)
	plan.ConfigTargets(NewTextureValue(tex))
	plan.PushGroup() // depth 1

	plan.BeginConfig()
	plan.ConfigShader(sh)
	plan.ConfigTargets(NewTextureValue(tex))
	plan.PushGroup() // depth 2

	if got := maxHeight(plan.root); got != 2 {
		t.Fatalf("maxHeight = %d, want 2", got)
	}
}

func TestUniformTypeMatchesTexture(t *testing.T) {
	if !uniformTypeMatches(ValueTexture, GLTypeSampler2D) {
		t.Fatalf("texture value should match sampler2D")
	}
	if uniformTypeMatches(ValueTexture, GLTypeFloat) {
		t.Fatalf("texture value should not match a scalar float uniform")
	}
}

func TestUniformTypeMatchesBufferAlwaysOk(t *testing.T) {
	if !uniformTypeMatches(ValueBuffer, GLTypeFloatVec4) {
		t.Fatalf("a buffer value should satisfy any uniform-block member location")
	}
}

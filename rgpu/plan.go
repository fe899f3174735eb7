package rgpu

import "sync/atomic"

// Instruction is implemented by the three plan leaf/internal node kinds:
// *PassNode, *VerticesOp, *BlitOp (spec §3 "Plan instruction node").
type Instruction interface{ isInstruction() }

// PassNode is an internal tree node carrying inherited render state
// (spec §3, glossary "Pass"). Unset overrides are nil and are resolved
// by walking Parent at validation/dispatch time (spec §4.1 "Every leaf
// op must resolve — walking ancestors").
type PassNode struct {
	Parent   *PassNode
	Children []Instruction

	Shader  *Shader
	Targets []Target

	Uniforms       UniformStore
	AttributeHints []string

	DestRect        *Rect
	WriteMaskVal    *WriteMask
	DepthFuncVal    *TestFunc
	ClockwiseFaces  *bool
	BackfaceCullVal *bool

	Depth int
	Fake  bool
}

func (*PassNode) isInstruction() {}

// VerticesOp is a leaf draw call over one or more buffers (spec §3
// "Vertices op").
type VerticesOp struct {
	Parent    *PassNode
	Buffers   []*Buffer
	Instances int
}

func (*VerticesOp) isInstruction() {}

// BlitOp is a leaf blit from a source texture into the parent pass's
// dest rect (spec §3 "Blit op").
type BlitOp struct {
	Parent *PassNode
	Src    *Texture
}

func (*BlitOp) isInstruction() {}

// resolveShader walks p and its ancestors for the nearest non-nil
// Shader (spec §4.1 append invariant, §4.2 uniform validation).
func resolveShader(p *PassNode) *Shader {
	for n := p; n != nil; n = n.Parent {
		if n.Shader != nil {
			return n.Shader
		}
	}
	return nil
}

func resolveWriteMask(p *PassNode) (WriteMask, bool) {
	for n := p; n != nil; n = n.Parent {
		if n.WriteMaskVal != nil {
			return *n.WriteMaskVal, true
		}
	}
	return 0, false
}

func resolveDepthFunc(p *PassNode) (TestFunc, bool) {
	for n := p; n != nil; n = n.Parent {
		if n.DepthFuncVal != nil {
			return *n.DepthFuncVal, true
		}
	}
	return 0, false
}

func resolveDestRect(p *PassNode) (Rect, bool) {
	for n := p; n != nil; n = n.Parent {
		if n.DestRect != nil {
			return *n.DestRect, true
		}
	}
	return Rect{}, false
}

func resolveClockwiseFaces(p *PassNode) bool {
	for n := p; n != nil; n = n.Parent {
		if n.ClockwiseFaces != nil {
			return *n.ClockwiseFaces
		}
	}
	return false
}

func resolveBackfaceCull(p *PassNode) bool {
	for n := p; n != nil; n = n.Parent {
		if n.BackfaceCullVal != nil {
			return *n.BackfaceCullVal
		}
	}
	return true
}

// resolveTargets walks p and its ancestors for the nearest node that
// specified a target list (spec §4.1 "A fake node ... inherits targets
// ... by reference").
func resolveTargets(p *PassNode) []Target {
	for n := p; n != nil; n = n.Parent {
		if len(n.Targets) > 0 {
			return n.Targets
		}
	}
	return nil
}

// ResolveShader, ResolveTargets, ResolveDestRect, ResolveWriteMask,
// ResolveDepthFunc, ResolveClockwiseFaces, and ResolveBackfaceCull
// expose the ancestor-walk resolution of a pass's inherited state to
// backend packages, so the dispatcher's setup/teardown (spec §4.3)
// shares exactly one resolution implementation with the compiler's
// validation pass (spec §4.2).
func ResolveShader(p *PassNode) *Shader             { return resolveShader(p) }
func ResolveTargets(p *PassNode) []Target           { return resolveTargets(p) }
func ResolveDestRect(p *PassNode) (Rect, bool)       { return resolveDestRect(p) }
func ResolveWriteMask(p *PassNode) (WriteMask, bool) { return resolveWriteMask(p) }
func ResolveDepthFunc(p *PassNode) (TestFunc, bool)  { return resolveDepthFunc(p) }
func ResolveClockwiseFaces(p *PassNode) bool         { return resolveClockwiseFaces(p) }
func ResolveBackfaceCull(p *PassNode) bool           { return resolveBackfaceCull(p) }

// configuring holds the in-progress node allocated by BeginConfig,
// before it is committed by PushGroup (spec §3 Plan invariant: "at most
// one in-progress configuring node at any moment").
type configuring struct {
	shader         *Shader
	targets        []Target
	uniforms       UniformStore
	destRect       *Rect
	writeMask      *WriteMask
	depthFunc      *TestFunc
	clockwiseFaces *bool
	backfaceCull   *bool
}

// Plan is a mutable builder that grows an instruction tree (spec §4.1).
// It is not safe for concurrent writers; a reader may read a plan if
// external synchronization excludes writers.
type Plan struct {
	gpu  *Gpu
	refs int32

	root   *PassNode
	cursor *PassNode // current node; nil only before the first PushGroup

	cfg *configuring
}

// PlanNew returns a fresh plan bound to gpu, with an empty tree and no
// configuring node (spec §4.1 new(gpu)).
func PlanNew(gpu *Gpu) *Plan {
	if gpu == nil {
		critical("plan_new", "nil gpu")
		return nil
	}
	gpu.Ref()
	return &Plan{gpu: gpu, refs: 1}
}

func (p *Plan) ref() { atomic.AddInt32(&p.refs, 1) }
func (p *Plan) unref() {
	if atomic.AddInt32(&p.refs, -1) == 0 {
		p.gpu.Unref()
	}
}

// Ref/Unref implement spec §6 plan_ref/plan_unref.
func (p *Plan) Ref() *Plan {
	p.ref()
	return p
}
func (p *Plan) Unref() { p.unref() }

// refCount reports the plan's current reference count, used by
// UnrefToCommands to enforce "sole remaining reference" (spec §4.2).
func (p *Plan) refCount() int32 { return atomic.LoadInt32(&p.refs) }

// BeginConfig allocates a new in-progress pass (spec §4.1 begin_config).
func (p *Plan) BeginConfig() {
	if p.cfg != nil {
		critical("begin_config", "a configuring node is already in progress")
		return
	}
	p.cfg = &configuring{}
}

// ConfigTargets appends to the configuring node's target list. Each
// value must be a Texture or a Tuple3(Texture, Int src_blend, Int
// dst_blend) (spec §4.1 config_targets).
func (p *Plan) ConfigTargets(values ...Value) {
	if !p.requireConfiguring("config_targets") {
		return
	}
	for _, v := range values {
		switch v.Kind {
		case ValueTexture:
			p.cfg.targets = append(p.cfg.targets, Target{Texture: v.Texture(), SrcBlend: BlendOne, DstBlend: BlendZero})
		case ValueTuple3:
			t := v.Tuple()
			if len(t) != 3 || t[0].Kind != ValueTexture || t[1].Kind != ValueInt || t[2].Kind != ValueInt {
				critical("config_targets", "malformed Tuple3 target argument")
				continue
			}
			src, dst := t[1].Int(), t[2].Int()
			if !validBlend(src) || !validBlend(dst) {
				critical("config_targets", "blend factor out of range: src=%d dst=%d", src, dst)
				continue
			}
			p.cfg.targets = append(p.cfg.targets, Target{Texture: t[0].Texture(), SrcBlend: Blend(src), DstBlend: Blend(dst)})
		default:
			critical("config_targets", "argument must be Texture or Tuple3, got %s", v.Kind)
		}
	}
}

// ConfigShader sets the configuring node's shader (spec §4.1
// config_shader). The tree takes a strong reference, matching the
// reference-counted resource-handle discipline of spec §3/§5 — it is
// released when the owning Commands tree is torn down (commands.go
// releaseTree).
func (p *Plan) ConfigShader(s *Shader) {
	if !p.requireConfiguring("config_shader") {
		return
	}
	if s != nil {
		s.ref()
	}
	p.cfg.shader = s
}

// ConfigUniforms upserts each KeyVal into the configuring node's uniform
// store, preserving first-insertion order (spec §4.1 config_uniforms).
func (p *Plan) ConfigUniforms(kvs ...Value) {
	if !p.requireConfiguring("config_uniforms") {
		return
	}
	for _, kv := range kvs {
		if kv.Kind != ValueKeyVal {
			critical("config_uniforms", "argument must be KeyVal, got %s", kv.Kind)
			continue
		}
		pair := kv.KeyVal()
		p.cfg.uniforms.Upsert(pair.Name, *pair.Inner)
	}
}

// ConfigDest sets the configuring node's destination rect. w and h must
// be non-zero (spec §4.1 config_dest).
func (p *Plan) ConfigDest(x, y, w, h int32) {
	if !p.requireConfiguring("config_dest") {
		return
	}
	if w == 0 || h == 0 {
		critical("config_dest", "w and h must be non-zero")
		return
	}
	r := Rect{X: x, Y: y, W: w, H: h}
	p.cfg.destRect = &r
}

func (p *Plan) ConfigWriteMask(mask WriteMask) {
	if !p.requireConfiguring("config_write_mask") {
		return
	}
	p.cfg.writeMask = &mask
}

func (p *Plan) ConfigDepthTestFunc(f TestFunc) {
	if !p.requireConfiguring("config_depth_test_func") {
		return
	}
	if !validTestFunc(int64(f)) {
		critical("config_depth_test_func", "depth func out of range: %d", f)
		return
	}
	p.cfg.depthFunc = &f
}

func (p *Plan) ConfigClockwiseFaces(b bool) {
	if !p.requireConfiguring("config_clockwise_faces") {
		return
	}
	p.cfg.clockwiseFaces = &b
}

func (p *Plan) ConfigBackfaceCull(b bool) {
	if !p.requireConfiguring("config_backface_cull") {
		return
	}
	p.cfg.backfaceCull = &b
}

func (p *Plan) requireConfiguring(op string) bool {
	if p.cfg == nil {
		critical(op, "no configuring node in progress; call begin_config first")
		return false
	}
	return true
}

// PushGroup commits the configuring node into the tree (spec §4.1
// push_group).
func (p *Plan) PushGroup() {
	if p.cfg == nil {
		critical("push_group", "no configuring node in progress")
		return
	}
	c := p.cfg
	p.cfg = nil

	node := &PassNode{
		Shader:          c.shader,
		Targets:         c.targets,
		Uniforms:        c.uniforms,
		DestRect:        c.destRect,
		WriteMaskVal:    c.writeMask,
		DepthFuncVal:    c.depthFunc,
		ClockwiseFaces:  c.clockwiseFaces,
		BackfaceCullVal: c.backfaceCull,
	}

	if p.root == nil {
		if node.WriteMaskVal == nil {
			wm := All
			node.WriteMaskVal = &wm
		}
		if node.DepthFuncVal == nil {
			df := TestLEqual
			node.DepthFuncVal = &df
		}
		if node.ClockwiseFaces == nil {
			cw := false
			node.ClockwiseFaces = &cw
		}
		if node.BackfaceCullVal == nil {
			bc := true
			node.BackfaceCullVal = &bc
		}
		node.Depth = 0
		node.Fake = false
		p.root = node
		p.cursor = node
		return
	}

	node.Fake = len(c.targets) == 0 && c.shader == nil
	node.Parent = p.cursor
	if node.Fake {
		node.Depth = p.cursor.Depth
	} else {
		node.Depth = p.cursor.Depth + 1
	}
	p.cursor.Children = append(p.cursor.Children, node)
	p.cursor = node
}

// PushState is the variadic convenience of spec §4.1 push_state: it
// calls BeginConfig, dispatches each StateArg to the matching setter,
// then PushGroup. A type mismatch between Key and Value logs a critical
// and skips that pair (spec: "log a critical and skip the pair").
func (p *Plan) PushState(args ...StateArg) {
	p.BeginConfig()
	for _, a := range args {
		switch a.Key {
		case StateTarget:
			p.ConfigTargets(a.Value)
		case StateShader:
			if a.Value.Kind != ValueShader {
				critical("push_state", "SHADER expects a Shader value, got %s", a.Value.Kind)
				continue
			}
			p.ConfigShader(a.Value.Shader())
		case StateUniform:
			if a.Value.Kind != ValueKeyVal {
				critical("push_state", "UNIFORM expects a KeyVal value, got %s", a.Value.Kind)
				continue
			}
			p.ConfigUniforms(a.Value)
		case StateDest:
			if a.Value.Kind != ValueRect {
				critical("push_state", "DEST expects a Rect value, got %s", a.Value.Kind)
				continue
			}
			r := a.Value.RectVal()
			p.ConfigDest(r.X, r.Y, r.W, r.H)
		case StateWriteMask:
			if a.Value.Kind != ValueUInt && a.Value.Kind != ValueInt {
				critical("push_state", "WRITE_MASK expects an Int/UInt value, got %s", a.Value.Kind)
				continue
			}
			p.ConfigWriteMask(WriteMask(a.Value.UInt() | uint64(a.Value.Int())))
		case StateDepthFunc:
			if a.Value.Kind != ValueInt {
				critical("push_state", "DEPTH_FUNC expects an Int value, got %s", a.Value.Kind)
				continue
			}
			p.ConfigDepthTestFunc(TestFunc(a.Value.Int()))
		case StateClockwiseFaces:
			if a.Value.Kind != ValueBool {
				critical("push_state", "CLOCKWISE_FACES expects a Bool value, got %s", a.Value.Kind)
				continue
			}
			p.ConfigClockwiseFaces(a.Value.Bool())
		case StateBackfaceCull:
			if a.Value.Kind != ValueBool {
				critical("push_state", "BACKFACE_CULL expects a Bool value, got %s", a.Value.Kind)
				continue
			}
			p.ConfigBackfaceCull(a.Value.Bool())
		default:
			critical("push_state", "unknown state key %d", a.Key)
		}
	}
	p.PushGroup()
}

// Append constructs a vertices op under the current node (spec §4.1
// append). instances must be >= 1; a shader and a set write-mask must be
// in scope, plus a set depth-func when the resolved write mask has the
// Depth bit, validated by walking ancestors.
func (p *Plan) Append(instances int, buffers ...*Buffer) {
	if p.cursor == nil {
		critical("append", "plan has no pushed group yet")
		return
	}
	if instances < 1 {
		critical("append", "instances must be >= 1, got %d", instances)
		return
	}
	if resolveShader(p.cursor) == nil {
		critical("append", "no shader in scope")
		return
	}
	if _, ok := resolveWriteMask(p.cursor); !ok {
		critical("append", "no write-mask in scope")
		return
	}
	// A pure color pass needs no depth-func (spec §9 open question (c)):
	// the depth-func requirement is waived when the resolved write mask
	// carries no DEPTH bit.
	wm, _ := resolveWriteMask(p.cursor)
	if wm&Depth != 0 {
		if _, ok := resolveDepthFunc(p.cursor); !ok {
			critical("append", "no depth-func in scope for a depth-writing pass")
			return
		}
	}
	// The op's Buffers each take a strong reference, released when the
	// owning Commands tree is torn down (commands.go releaseTree).
	for _, b := range buffers {
		b.ref()
	}
	p.cursor.Children = append(p.cursor.Children, &VerticesOp{
		Parent:    p.cursor,
		Buffers:   append([]*Buffer(nil), buffers...),
		Instances: instances,
	})
}

// Blit constructs a blit leaf under the current node (spec §4.1 blit).
// src takes a strong reference, released when the owning Commands tree
// is torn down (commands.go releaseTree).
func (p *Plan) Blit(src *Texture) {
	if p.cursor == nil {
		critical("blit", "plan has no pushed group yet")
		return
	}
	if src != nil {
		src.ref()
	}
	p.cursor.Children = append(p.cursor.Children, &BlitOp{Parent: p.cursor, Src: src})
}

// Pop moves the cursor up n levels (spec §4.1 pop). Popping past the
// root logs and stops.
func (p *Plan) Pop(n int) {
	for i := 0; i < n; i++ {
		if p.cursor == nil || p.cursor.Parent == nil {
			critical("pop", "pop count exceeds current tree depth")
			return
		}
		p.cursor = p.cursor.Parent
	}
}

// Depth reports the cursor's current tree depth, used by tests asserting
// the push/pop round-trip invariant (spec §8).
func (p *Plan) Depth() int {
	if p.cursor == nil {
		return -1
	}
	return p.cursor.Depth
}

// AtRoot reports whether the cursor is currently at the tree root.
func (p *Plan) AtRoot() bool {
	return p.cursor != nil && p.cursor.Parent == nil
}

package rgpu

import "fmt"

// expectedGLTypeName reverse-maps a Value variant to the GL uniform type
// name used in validation error messages (spec §4.2 uniform validation
// table).
func expectedGLTypeName(k ValueKind) string {
	switch k {
	case ValueBool:
		return "BOOL"
	case ValueInt:
		return "INT"
	case ValueUInt:
		return "UNSIGNED_INT"
	case ValueFloat:
		return "FLOAT"
	case ValueVec2:
		return "FLOAT_VEC2"
	case ValueVec3:
		return "FLOAT_VEC3"
	case ValueVec4:
		return "FLOAT_VEC4"
	case ValueMat4:
		return "FLOAT_MAT4"
	case ValueTexture:
		return "SAMPLER_2D or SAMPLER_CUBE"
	case ValueBuffer:
		return "any uniform-block member location"
	default:
		return "UNKNOWN"
	}
}

// UnrefToCommands consumes p, requiring the caller hold the sole
// remaining reference (spec §4.2 "unref-to-commands"). On success p's
// last reference is transferred into the returned Commands; on failure
// p is left untouched (refcount unchanged) and the caller must still
// drop its own reference.
func (p *Plan) UnrefToCommands() (*Commands, error) {
	return p.unrefToCommands(false)
}

// UnrefToCommandsDebug is identical but additionally records a
// compile-time annotation log and enables a run-time call log on the
// returned Commands (spec §3 "debug call log").
func (p *Plan) UnrefToCommandsDebug() (*Commands, error) {
	return p.unrefToCommands(true)
}

func (p *Plan) unrefToCommands(debug bool) (*Commands, error) {
	if !p.gpu.checkClaim("plan_unref_to_commands") {
		return nil, nil
	}
	if p.refCount() != 1 {
		critical("plan_unref_to_commands", "plan has %d outstanding references, need exactly 1", p.refCount())
		return nil, nil
	}
	if p.root == nil {
		critical("plan_unref_to_commands", "plan has no pushed group")
		return nil, nil
	}
	if p.cfg != nil {
		critical("plan_unref_to_commands", "a configuring node is still in progress")
		return nil, nil
	}

	gpu := p.gpu
	root := p.root

	c := &Commands{gpu: gpu, root: root, debugLog: debug}
	if debug {
		c.compileLog = append(c.compileLog, "begin compile")
	}

	if err := c.ensureTree(root, debug); err != nil {
		return nil, err
	}

	c.maxDepth = maxHeight(root)
	if err := gpu.backend.GrowFramebufferStack(c.maxDepth + 2); err != nil {
		return nil, raiseRuntime(gpu, newError(FailedTargetCreation, nil, "grow framebuffer stack to %d: %v", c.maxDepth+2, err))
	}

	if debug {
		c.compileLog = append(c.compileLog, fmt.Sprintf("grew framebuffer stack to %d", c.maxDepth+2))
	}

	// The plan's single reference transfers into Commands; the plan
	// itself is dropped (its tree is now solely owned by c).
	p.root = nil
	p.cursor = nil
	p.refs = 0

	c.refs = 1
	return c, nil
}

// maxHeight returns the maximum pass depth reachable from n (spec §4.2
// step 3 "tree max-height").
func maxHeight(n *PassNode) int {
	h := n.Depth
	for _, child := range n.Children {
		if pn, ok := child.(*PassNode); ok {
			h = MaxOf(h, maxHeight(pn))
		}
	}
	return h
}

// ensureTree performs the pre-order ensure/validate traversal of spec
// §4.2 step 2.
func (c *Commands) ensureTree(n *PassNode, debug bool) error {
	gpu := c.gpu

	if n.Shader != nil {
		if err := gpu.backend.EnsureShader(n.Shader); err != nil {
			return raiseRuntime(gpu, newError(FailedShaderGen, nil, "ensure shader: %v", err))
		}
		if debug {
			c.compileLog = append(c.compileLog, "ensured shader")
		}
	}

	for _, t := range n.Targets {
		if t.Texture != nil {
			if err := gpu.backend.EnsureTexture(t.Texture); err != nil {
				return raiseRuntime(gpu, newError(FailedTextureGen, nil, "ensure target texture: %v", err))
			}
		}
	}

	sh := resolveShader(n)
	for _, u := range n.Uniforms.Ordered() {
		if err := c.validateUniform(sh, u.Name, u.Value); err != nil {
			return err
		}
	}

	for _, child := range n.Children {
		switch t := child.(type) {
		case *PassNode:
			if err := c.ensureTree(t, debug); err != nil {
				return err
			}
		case *VerticesOp:
			if err := c.ensureVertices(t, debug); err != nil {
				return err
			}
		case *BlitOp:
			if err := c.ensureBlit(t, debug); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateUniform implements spec §4.2's "Uniform validation" table.
func (c *Commands) validateUniform(sh *Shader, name string, v Value) error {
	gpu := c.gpu
	if sh == nil {
		return raiseRuntime(gpu, newError(FailedShaderUniformSet, nil, "uniform %q: no shader in scope", name))
	}
	info, ok := gpu.backend.LookupUniform(sh, name)
	if !ok {
		return raiseRuntime(gpu, newError(FailedShaderUniformSet, nil, "uniform %q does not exist", name))
	}
	if !uniformTypeMatches(v.Kind, info.GLType) {
		want := "UNKNOWN"
		for k := ValueTexture; k <= ValueMat4; k++ {
			if uniformTypeMatches(k, info.GLType) {
				want = expectedGLTypeName(k)
				break
			}
		}
		return raiseRuntime(gpu, newError(FailedShaderUniformSet, nil,
			"uniform %q: expected %s, got %s", name, want, expectedGLTypeName(v.Kind)))
	}
	if v.Kind == ValueBuffer {
		buf := v.Buffer()
		if buf == nil {
			return raiseRuntime(gpu, newError(FailedShaderUniformSet, nil, "uniform %q: nil buffer", name))
		}
		if err := gpu.backend.EnsureBuffer(buf, RoleUniform); err != nil {
			return raiseRuntime(gpu, newError(FailedBufferGen, nil, "ensure uniform buffer %q: %v", name, err))
		}
	}
	if v.Kind == ValueTexture {
		tex := v.Texture()
		if tex == nil {
			return raiseRuntime(gpu, newError(FailedShaderUniformSet, nil, "uniform %q: nil texture", name))
		}
		if err := gpu.backend.EnsureTexture(tex); err != nil {
			return raiseRuntime(gpu, newError(FailedTextureGen, nil, "ensure uniform texture %q: %v", name, err))
		}
		if tex.IsMultisample() {
			if _, err := tex.Shadow(); err != nil {
				return raiseRuntime(gpu, newError(FailedTextureGen, nil, "ensure msaa shadow for uniform %q: %v", name, err))
			}
		}
	}
	return nil
}

// uniformTypeMatches reports whether a GLType reported by the backend's
// reflection is an acceptable match for the Value's variant. This
// package does not import an OpenGL binding, so the comparison is made
// against a
// small, backend-agnostic symbolic name the backend populates for each
// reflected uniform rather than a raw numeric GL enum, avoiding a
// frontend-to-backend enum coupling. See backend/opengl for the mapping
// from real GL_* constants to these symbolic values.
func uniformTypeMatches(kind ValueKind, glType uint32) bool {
	switch kind {
	case ValueBool:
		return glType == GLTypeBool
	case ValueInt:
		return glType == GLTypeInt
	case ValueUInt:
		return glType == GLTypeUnsignedInt
	case ValueFloat:
		return glType == GLTypeFloat
	case ValueVec2:
		return glType == GLTypeFloatVec2
	case ValueVec3:
		return glType == GLTypeFloatVec3
	case ValueVec4:
		return glType == GLTypeFloatVec4
	case ValueMat4:
		return glType == GLTypeFloatMat4
	case ValueTexture:
		return glType == GLTypeSampler2D || glType == GLTypeSamplerCube
	case ValueBuffer:
		return true // any uniform-block member location (spec §4.2 table)
	default:
		return false
	}
}

// GLType symbolic values shared between the frontend's uniform
// validation and any Backend's reflection population (spec §4.2
// uniform validation table). Backends translate their driver's real
// GL_* enum into one of these before populating UniformInfo.GLType.
const (
	GLTypeBool uint32 = iota + 1
	GLTypeInt
	GLTypeUnsignedInt
	GLTypeFloat
	GLTypeFloatVec2
	GLTypeFloatVec3
	GLTypeFloatVec4
	GLTypeFloatMat4
	GLTypeSampler2D
	GLTypeSamplerCube
)

// ensureVertices realizes the buffers of a vertices op as vertex-role
// buffers and validates their attribute names against the in-scope
// shader (spec §4.2 step 2 "For vertices ops").
func (c *Commands) ensureVertices(op *VerticesOp, debug bool) error {
	gpu := c.gpu
	sh := resolveShader(op.Parent)
	if sh == nil {
		return raiseRuntime(gpu, newError(FailedShaderUniformSet, nil, "vertices op: no shader in scope"))
	}
	for _, b := range op.Buffers {
		if len(b.Layout) == 0 {
			return raiseRuntime(gpu, newError(FailedBufferGen, nil, "vertices op: buffer has no layout"))
		}
		if err := gpu.backend.EnsureBuffer(b, RoleVertex); err != nil {
			return raiseRuntime(gpu, newError(FailedBufferGen, nil, "ensure vertex buffer: %v", err))
		}
		for _, seg := range b.Layout {
			if _, ok := gpu.backend.LookupAttribute(sh, seg.Name); !ok {
				return raiseRuntime(gpu, newError(FailedShaderUniformSet, nil, "attribute %q does not exist", seg.Name))
			}
		}
	}
	if debug {
		c.compileLog = append(c.compileLog, fmt.Sprintf("ensured vertices op with %d buffer(s)", len(op.Buffers)))
	}
	return nil
}

// ensureBlit realizes a blit op's source texture (spec §4.2 step 2
// "For blit ops").
func (c *Commands) ensureBlit(op *BlitOp, debug bool) error {
	if op.Src == nil {
		return raiseRuntime(c.gpu, newError(FailedTextureGen, nil, "blit op: nil source texture"))
	}
	if err := c.gpu.backend.EnsureTexture(op.Src); err != nil {
		return raiseRuntime(c.gpu, newError(FailedTextureGen, nil, "ensure blit source texture: %v", err))
	}
	if debug {
		c.compileLog = append(c.compileLog, "ensured blit op")
	}
	return nil
}

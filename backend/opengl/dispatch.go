package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v3.3-core/gl"

	"github.com/vitrailgpu/rgpu/rgpu"
)

// dispatcher carries the per-call state of a tree walk (spec §4.3). A
// fresh dispatcher is created for every DispatchCommands call.
type dispatcher struct {
	b          *Backend
	cmds       *rgpu.Commands
	externalFB uint32
}

// DispatchCommands walks c's compiled tree pre-order, running
// setup/teardown around each pass's children and issuing GL calls for
// every leaf op (spec §4.3).
func (b *Backend) DispatchCommands(c *rgpu.Commands) error {
	var externalFB int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &externalFB)

	d := &dispatcher{b: b, cmds: c, externalFB: uint32(externalFB)}
	root := c.Root()
	if root == nil {
		return nil
	}
	return d.walkPass(root)
}

// framebufferFor returns the framebuffer object bound while rendering
// pass (spec §4.3 "The framebuffer slot used for a pass").
func (d *dispatcher) framebufferFor(pass *rgpu.PassNode) uint32 {
	if len(rgpu.ResolveTargets(pass)) == 0 {
		return d.externalFB
	}
	if pass.Depth < len(d.b.framebuffers) {
		return d.b.framebuffers[pass.Depth]
	}
	return d.externalFB
}

func (d *dispatcher) scratchFBs(pass *rgpu.PassNode) (read, draw uint32) {
	r, w := pass.Depth+1, pass.Depth+2
	if r < len(d.b.framebuffers) {
		read = d.b.framebuffers[r]
	}
	if w < len(d.b.framebuffers) {
		draw = d.b.framebuffers[w]
	}
	return
}

func (d *dispatcher) walkPass(pass *rgpu.PassNode) error {
	if len(pass.Children) == 0 {
		return nil
	}

	fb := d.framebufferFor(pass)
	scratchRead, scratchDraw := d.scratchFBs(pass)

	if err := d.setup(pass, fb); err != nil {
		return err
	}
	d.cmds.LogRun(fmt.Sprintf("setup pass depth=%d fb=%d", pass.Depth, fb))

	for i, child := range pass.Children {
		var err error
		switch t := child.(type) {
		case *rgpu.PassNode:
			err = d.walkPass(t)
		case *rgpu.VerticesOp:
			err = d.dispatchVertices(t)
		case *rgpu.BlitOp:
			err = d.dispatchBlit(pass, fb, scratchRead, t)
		}
		if err != nil {
			return err
		}
		if i < len(pass.Children)-1 {
			d.rebindDefensive(pass, fb)
		}
	}

	d.teardown(pass, fb)
	d.cmds.LogRun(fmt.Sprintf("teardown pass depth=%d fb=%d", pass.Depth, fb))
	_ = scratchDraw
	return nil
}

// rebindDefensive re-establishes the pass's program and framebuffer
// between sibling children (spec §4.3 "between sibling children ...
// the program and FB are rebound defensively").
func (d *dispatcher) rebindDefensive(pass *rgpu.PassNode, fb uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	if sh := rgpu.ResolveShader(pass); sh != nil {
		if ext, ok := sh.Backend().(*shaderExt); ok {
			gl.UseProgram(ext.program)
		}
	}
}

// setup implements spec §4.3's numbered setup algorithm.
func (d *dispatcher) setup(pass *rgpu.PassNode, fb uint32) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)

	sh := rgpu.ResolveShader(pass)
	var program uint32
	if sh != nil {
		if ext, ok := sh.Backend().(*shaderExt); ok {
			program = ext.program
		}
		gl.UseProgram(program)
	}

	if rect, ok := rgpu.ResolveDestRect(pass); ok {
		gl.Viewport(rect.X, rect.Y, rect.W, rect.H)
	}

	wm, _ := rgpu.ResolveWriteMask(pass)
	gl.ColorMask(
		wm&rgpu.ColorRed != 0, wm&rgpu.ColorGreen != 0,
		wm&rgpu.ColorBlue != 0, wm&rgpu.ColorAlpha != 0,
	)
	gl.DepthMask(wm&rgpu.Depth != 0)
	if df, ok := rgpu.ResolveDepthFunc(pass); ok {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(glDepthFunc(df))
	}

	if rgpu.ResolveClockwiseFaces(pass) {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}
	if rgpu.ResolveBackfaceCull(pass) {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	} else {
		gl.Disable(gl.CULL_FACE)
	}

	targets := rgpu.ResolveTargets(pass)
	if fb != d.externalFB {
		var drawBuffers []uint32
		colorIdx := uint32(0)
		for _, t := range targets {
			if t.Texture == nil {
				continue
			}
			if t.Texture.Format == rgpu.FormatDepth {
				attachTarget(gl.DEPTH_ATTACHMENT, t.Texture)
				continue
			}
			if colorIdx >= 32 {
				continue
			}
			attachTarget(gl.COLOR_ATTACHMENT0+colorIdx, t.Texture)
			drawBuffers = append(drawBuffers, gl.COLOR_ATTACHMENT0+colorIdx)
			colorIdx++
		}
		if len(drawBuffers) == 0 {
			drawBuffers = []uint32{gl.NONE}
		}
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])

		if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
			return fmt.Errorf("framebuffer incomplete: 0x%x", status)
		}

		if len(targets) > 0 {
			applyBlend(targets[0])
		}
	}

	gl.ClearColor(0, 0, 0, 0)
	gl.ClearDepth(0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	return d.bindUniforms(pass, sh)
}

func applyBlend(t rgpu.Target) {
	if t.SrcBlend == rgpu.BlendOne && t.DstBlend == rgpu.BlendZero {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(glBlendFactor(t.SrcBlend), glBlendFactor(t.DstBlend))
}

func attachTarget(attachment uint32, tex *rgpu.Texture) {
	ext, ok := tex.Backend().(*textureExt)
	if !ok || ext == nil {
		return
	}
	if tex.IsMultisample() {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D_MULTISAMPLE, ext.handle, 0)
	} else {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, ext.handle, 0)
	}
}

func detachTarget(attachment uint32, tex *rgpu.Texture) {
	target := uint32(gl.TEXTURE_2D)
	if tex.IsMultisample() {
		target = gl.TEXTURE_2D_MULTISAMPLE
	}
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, target, 0, 0)
}

// bindUniforms binds a pass's ordered uniforms (spec §4.3 step 8).
func (d *dispatcher) bindUniforms(pass *rgpu.PassNode, sh *rgpu.Shader) error {
	if sh == nil {
		return nil
	}
	unit := int32(0)
	for _, entry := range pass.Uniforms.Ordered() {
		info, ok := d.b.LookupUniform(sh, entry.Name)
		if !ok {
			continue
		}
		v := entry.Value
		switch v.Kind {
		case rgpu.ValueTexture:
			tex := v.Texture()
			texUnit := unit
			unit++
			gl.ActiveTexture(gl.TEXTURE0 + uint32(texUnit))
			sampleTex := tex
			if tex.IsMultisample() {
				if err := d.resolveMSAA(pass, tex); err != nil {
					return err
				}
				sampleTex = tex.ShadowPeek()
			}
			ext, _ := sampleTex.Backend().(*textureExt)
			if ext != nil {
				gl.BindTexture(ext.target, ext.handle)
			}
			gl.Uniform1i(info.Location, texUnit)
		case rgpu.ValueBuffer:
			buf := v.Buffer()
			ext, _ := buf.Backend().(*bufferExt)
			if ext != nil {
				gl.BindBufferBase(gl.UNIFORM_BUFFER, 0, ext.vbo)
				if info.BlockIndexPlus1 > 0 {
					gl.UniformBlockBinding(d.programOf(sh), info.BlockIndexPlus1-1, 0)
				}
			}
		case rgpu.ValueBool:
			b := int32(0)
			if v.Bool() {
				b = 1
			}
			gl.Uniform1i(info.Location, b)
		case rgpu.ValueInt:
			gl.Uniform1i(info.Location, int32(v.Int()))
		case rgpu.ValueUInt:
			gl.Uniform1ui(info.Location, uint32(v.UInt()))
		case rgpu.ValueFloat:
			gl.Uniform1f(info.Location, v.Float())
		case rgpu.ValueVec2:
			vv := v.Vec2Val()
			gl.Uniform2fv(info.Location, 1, &vv[0])
		case rgpu.ValueVec3:
			vv := v.Vec3Val()
			gl.Uniform3fv(info.Location, 1, &vv[0])
		case rgpu.ValueVec4:
			vv := v.Vec4Val()
			gl.Uniform4fv(info.Location, 1, &vv[0])
		case rgpu.ValueMat4:
			m := v.Mat4Val()
			gl.UniformMatrix4fv(info.Location, 1, false, &m[0])
		}
	}
	return nil
}

func (d *dispatcher) programOf(sh *rgpu.Shader) uint32 {
	if ext, ok := sh.Backend().(*shaderExt); ok {
		return ext.program
	}
	return 0
}

// resolveMSAA blits tex's multisample contents into its shadow sibling
// (spec §4.3 "For MSAA textures, first perform a resolve").
func (d *dispatcher) resolveMSAA(pass *rgpu.PassNode, tex *rgpu.Texture) error {
	shadow := tex.ShadowPeek()
	if shadow == nil {
		return fmt.Errorf("opengl: resolveMSAA: texture has no shadow")
	}
	readFB, drawFB := d.scratchFBs(pass)
	if readFB == 0 || drawFB == 0 {
		return fmt.Errorf("opengl: resolveMSAA: scratch framebuffers unavailable")
	}

	attachment := uint32(gl.COLOR_ATTACHMENT0)
	bit := uint32(gl.COLOR_BUFFER_BIT)
	if tex.Format == rgpu.FormatDepth {
		attachment = gl.DEPTH_ATTACHMENT
		bit = gl.DEPTH_BUFFER_BIT
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, readFB)
	attachTarget(attachment, tex)
	gl.BindFramebuffer(gl.FRAMEBUFFER, drawFB)
	attachTarget(attachment, shadow)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, readFB)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, drawFB)
	gl.BlitFramebuffer(0, 0, int32(tex.Width), int32(tex.Height), 0, 0, int32(shadow.Width), int32(shadow.Height), bit, gl.NEAREST)

	gl.BindFramebuffer(gl.FRAMEBUFFER, readFB)
	detachTarget(attachment, tex)
	gl.BindFramebuffer(gl.FRAMEBUFFER, drawFB)
	detachTarget(attachment, shadow)

	pr := rgpu.ResolveShader(pass)
	fb := d.framebufferFor(pass)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	if pr != nil {
		if ext, ok := pr.Backend().(*shaderExt); ok {
			gl.UseProgram(ext.program)
		}
	}
	return nil
}

// teardown mirrors setup: detach textures, unbind texture units and the
// uniform block base binding (spec §4.3 "Teardown").
func (d *dispatcher) teardown(pass *rgpu.PassNode, fb uint32) {
	// A pass's last child may be a nested PassNode whose own
	// walkPass/teardown left a different framebuffer bound; rebind fb
	// before detaching, the same way setup does (spec §4.3 "Teardown"
	// mirrors setup's first step).
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)

	targets := rgpu.ResolveTargets(pass)
	if fb != d.externalFB {
		colorIdx := uint32(0)
		for _, t := range targets {
			if t.Texture == nil {
				continue
			}
			if t.Texture.Format == rgpu.FormatDepth {
				detachTarget(gl.DEPTH_ATTACHMENT, t.Texture)
				continue
			}
			if colorIdx >= 32 {
				continue
			}
			detachTarget(gl.COLOR_ATTACHMENT0+colorIdx, t.Texture)
			colorIdx++
		}
	}

	unit := int32(0)
	for _, entry := range pass.Uniforms.Ordered() {
		switch entry.Value.Kind {
		case rgpu.ValueTexture:
			gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
			gl.BindTexture(gl.TEXTURE_2D, 0)
			gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
			unit++
		case rgpu.ValueBuffer:
			gl.BindBufferBase(gl.UNIFORM_BUFFER, 0, 0)
		}
	}
}

// dispatchVertices implements spec §4.3's Vertices leaf dispatch.
func (d *dispatcher) dispatchVertices(op *rgpu.VerticesOp) error {
	if len(op.Buffers) == 0 {
		return nil
	}
	sh := rgpu.ResolveShader(op.Parent)
	if sh == nil {
		return fmt.Errorf("opengl: vertices op with no shader in scope")
	}

	first, ok := op.Buffers[0].Backend().(*bufferExt)
	if !ok || first == nil || first.vao == 0 {
		return fmt.Errorf("opengl: vertices op: buffer has no VAO")
	}
	gl.BindVertexArray(first.vao)

	maxLength := 0
	var enabled []uint32
	for _, buf := range op.Buffers {
		ext, ok := buf.Backend().(*bufferExt)
		if !ok || ext == nil {
			continue
		}
		stride := buf.Stride()
		if stride == 0 {
			continue
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, ext.vbo)
		offset := 0
		for _, seg := range buf.Layout {
			attr, ok := d.b.LookupAttribute(sh, seg.Name)
			if !ok {
				offset += seg.SizeBytes()
				continue
			}
			loc := uint32(attr.Location)
			gl.VertexAttribPointer(loc, int32(seg.Count), glScalarType(seg.Scalar), false, int32(stride), gl.PtrOffset(offset))
			gl.VertexAttribDivisor(loc, uint32(seg.InstanceRate))
			gl.EnableVertexAttribArray(loc)
			enabled = append(enabled, loc)
			offset += seg.SizeBytes()
		}
		n := len(buf.Bytes) / stride
		maxLength = rgpu.MaxOf(maxLength, n)
	}

	if maxLength > 0 {
		if op.Instances > 1 {
			gl.DrawArraysInstanced(gl.TRIANGLES, 0, int32(maxLength), int32(op.Instances))
		} else {
			gl.DrawArrays(gl.TRIANGLES, 0, int32(maxLength))
		}
	}

	for _, loc := range enabled {
		gl.DisableVertexAttribArray(loc)
	}
	gl.BindVertexArray(0)
	return nil
}

// dispatchBlit implements spec §4.3's Blit leaf dispatch.
func (d *dispatcher) dispatchBlit(pass *rgpu.PassNode, passFB, scratchReadFB uint32, op *rgpu.BlitOp) error {
	if op.Src == nil || scratchReadFB == 0 {
		return fmt.Errorf("opengl: blit op missing source texture or scratch framebuffer")
	}
	ext, ok := op.Src.Backend().(*textureExt)
	if !ok || ext == nil {
		return fmt.Errorf("opengl: blit source texture not realized")
	}

	attachment := uint32(gl.COLOR_ATTACHMENT0)
	bit := uint32(gl.COLOR_BUFFER_BIT)
	if op.Src.Format == rgpu.FormatDepth {
		attachment = gl.DEPTH_ATTACHMENT
		bit = gl.DEPTH_BUFFER_BIT
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, scratchReadFB)
	attachTarget(attachment, op.Src)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("opengl: blit scratch framebuffer incomplete: 0x%x", status)
	}

	dest, ok := rgpu.ResolveDestRect(pass)
	if !ok {
		dest = rgpu.Rect{X: 0, Y: 0, W: int32(op.Src.Width), H: int32(op.Src.Height)}
	}

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, scratchReadFB)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, passFB)
	gl.BlitFramebuffer(0, 0, int32(op.Src.Width), int32(op.Src.Height),
		dest.X, dest.Y, dest.X+dest.W, dest.Y+dest.H, bit, gl.NEAREST)

	gl.BindFramebuffer(gl.FRAMEBUFFER, scratchReadFB)
	detachTarget(attachment, op.Src)
	gl.BindFramebuffer(gl.FRAMEBUFFER, passFB)
	return nil
}

package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v3.3-core/gl"

	"github.com/vitrailgpu/rgpu/rgpu"
)

// shaderExt is the GL-side trailing state for a Shader (spec §3 Shader
// "reflection tables live in the owning Backend").
type shaderExt struct {
	program uint32

	uniforms   []rgpu.UniformInfo
	uniformIdx map[string]int // name -> index+1, 0 == absent (spec §4.2)

	attributes   []rgpu.AttributeInfo
	attributeIdx map[string]int
}

// EnsureShader lazily compiles+links sh's program and populates its
// reflection tables (spec §4.2 "Ensure shader").
func (b *Backend) EnsureShader(sh *rgpu.Shader) error {
	if !sh.Dirty() {
		return nil
	}

	program, err := compileAndLink(sh.VertexSourceCode, sh.FragmentSourceCode)
	if err != nil {
		return err
	}

	ext := &shaderExt{program: program}
	reflectAttributes(ext)
	reflectUniforms(ext)

	b.mu.Lock()
	if old, ok := b.shaderExtCol[sh]; ok && old.program != 0 {
		gl.DeleteProgram(old.program)
	}
	b.shaderExtCol[sh] = ext
	b.mu.Unlock()

	sh.SetBackend(ext)
	sh.ClearDirty()
	return nil
}

func compileAndLink(vertexSrc, fragmentSrc string) (uint32, error) {
	vid, err := compileStage(gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return 0, fmt.Errorf("vertex compile: %w", err)
	}
	defer gl.DeleteShader(vid)

	fid, err := compileStage(gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		return 0, fmt.Errorf("fragment compile: %w", err)
	}
	defer gl.DeleteShader(fid)

	program := gl.CreateProgram()
	gl.AttachShader(program, vid)
	gl.AttachShader(program, fid)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", log)
	}

	gl.DetachShader(program, vid)
	gl.DetachShader(program, fid)
	return program, nil
}

func compileStage(stage uint32, src string) (uint32, error) {
	id := gl.CreateShader(stage)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(id, 1, csrc, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(id, logLen, nil, gl.Str(log))
		gl.DeleteShader(id)
		return 0, fmt.Errorf("%s", log)
	}
	return id, nil
}

// reflectAttributes enumerates active attributes into ext (spec §4.2
// "enumerate active attributes; store (name, location, count, GL-type)").
func reflectAttributes(ext *shaderExt) {
	var count int32
	gl.GetProgramiv(ext.program, gl.ACTIVE_ATTRIBUTES, &count)
	ext.attributeIdx = make(map[string]int, count)

	var nameBuf [256]byte
	for i := int32(0); i < count; i++ {
		var size int32
		var glType uint32
		var length int32
		gl.GetActiveAttrib(ext.program, uint32(i), int32(len(nameBuf)), &length, &size, &glType, &nameBuf[0])
		name := string(nameBuf[:length])
		loc := gl.GetAttribLocation(ext.program, gl.Str(name+"\x00"))
		if loc < 0 {
			continue
		}
		ext.attributes = append(ext.attributes, rgpu.AttributeInfo{
			Name: name, Location: loc, Count: size, GLType: mapGLType(glType),
		})
		ext.attributeIdx[name] = len(ext.attributes) // index+1
	}
}

// reflectUniforms enumerates active uniforms, flattens arrays, and maps
// block membership (spec §4.2 "Uniforms" and "Uniform blocks").
func reflectUniforms(ext *shaderExt) {
	var count int32
	gl.GetProgramiv(ext.program, gl.ACTIVE_UNIFORMS, &count)
	ext.uniformIdx = make(map[string]int, count)

	var nameBuf [256]byte
	for i := int32(0); i < count; i++ {
		var size int32
		var glType uint32
		var length int32
		gl.GetActiveUniform(ext.program, uint32(i), int32(len(nameBuf)), &length, &size, &glType, &nameBuf[0])
		name := strings.TrimSuffix(string(nameBuf[:length]), "[0]")

		// The uniform's real location comes from GetUniformLocation, not
		// from accumulating prior uniforms' array counts: only elements
		// within the *same* flattened array are guaranteed consecutive
		// from the array's own base location (spec §4.2 "accumulating by
		// array count" applies within one uniform, not across uniforms).
		loc := gl.GetUniformLocation(ext.program, gl.Str(name+"\x00"))

		ext.uniforms = append(ext.uniforms, rgpu.UniformInfo{
			Name: name, Location: loc, Count: size, GLType: mapGLType(glType),
		})
		ext.uniformIdx[name] = len(ext.uniforms) // index+1, 0 == absent
	}

	// Uniform blocks: record block_index+1 on each member's reflection
	// row, found by its active-uniform index.
	var blockCount int32
	gl.GetProgramiv(ext.program, gl.ACTIVE_UNIFORM_BLOCKS, &blockCount)
	for blk := int32(0); blk < blockCount; blk++ {
		var numActive int32
		gl.GetActiveUniformBlockiv(ext.program, uint32(blk), gl.UNIFORM_BLOCK_ACTIVE_UNIFORMS, &numActive)
		if numActive == 0 {
			continue
		}
		indices := make([]int32, numActive)
		gl.GetActiveUniformBlockiv(ext.program, uint32(blk), gl.UNIFORM_BLOCK_ACTIVE_UNIFORM_INDICES, &indices[0])
		for _, idx := range indices {
			if idx < 0 || int(idx) >= len(ext.uniforms) {
				continue
			}
			ext.uniforms[idx].BlockIndexPlus1 = uint32(blk) + 1
		}
	}
}

// mapGLType translates a driver GL_* uniform/attribute type enum into
// the backend-agnostic symbolic constants rgpu's compiler validates
// against (spec §4.2 uniform validation table).
func mapGLType(glType uint32) uint32 {
	switch glType {
	case gl.BOOL:
		return rgpu.GLTypeBool
	case gl.INT:
		return rgpu.GLTypeInt
	case gl.UNSIGNED_INT:
		return rgpu.GLTypeUnsignedInt
	case gl.FLOAT:
		return rgpu.GLTypeFloat
	case gl.FLOAT_VEC2:
		return rgpu.GLTypeFloatVec2
	case gl.FLOAT_VEC3:
		return rgpu.GLTypeFloatVec3
	case gl.FLOAT_VEC4:
		return rgpu.GLTypeFloatVec4
	case gl.FLOAT_MAT4:
		return rgpu.GLTypeFloatMat4
	case gl.SAMPLER_2D:
		return rgpu.GLTypeSampler2D
	case gl.SAMPLER_CUBE:
		return rgpu.GLTypeSamplerCube
	default:
		return 0
	}
}

// LookupUniform implements spec §4.2's index+1/0-absent reflection query.
func (b *Backend) LookupUniform(sh *rgpu.Shader, name string) (rgpu.UniformInfo, bool) {
	ext, ok := sh.Backend().(*shaderExt)
	if !ok || ext == nil {
		return rgpu.UniformInfo{}, false
	}
	i, ok := ext.uniformIdx[name]
	if !ok {
		return rgpu.UniformInfo{}, false
	}
	return ext.uniforms[i-1], true
}

// LookupAttribute mirrors LookupUniform for attribute reflection.
func (b *Backend) LookupAttribute(sh *rgpu.Shader, name string) (rgpu.AttributeInfo, bool) {
	ext, ok := sh.Backend().(*shaderExt)
	if !ok || ext == nil {
		return rgpu.AttributeInfo{}, false
	}
	i, ok := ext.attributeIdx[name]
	if !ok {
		return rgpu.AttributeInfo{}, false
	}
	return ext.attributes[i-1], true
}

// ReleaseShader returns the deferred-destroy entry for sh's program, if
// one was ever materialized (spec §5 deferred destruction).
func (b *Backend) ReleaseShader(sh *rgpu.Shader) []rgpu.DestroyEntry {
	ext, ok := sh.Backend().(*shaderExt)
	if !ok || ext == nil || ext.program == 0 {
		return nil
	}
	return []rgpu.DestroyEntry{{Kind: rgpu.DestroyProgram, Handle: ext.program}}
}

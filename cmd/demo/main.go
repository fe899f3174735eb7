// Command demo opens a window, builds a single-pass textured triangle
// plan, compiles and dispatches it once, and exits (spec §8 scenario 1:
// "single-pass textured triangle"). It exercises the glfw windowing,
// image/png decoding and x/image/draw resampling collaborators the core
// rgpu module deliberately keeps out of its own dependency surface (see
// SPEC_FULL.md "Domain stack").
package main

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/image/draw"

	"github.com/vitrailgpu/rgpu/backend/opengl"
	"github.com/vitrailgpu/rgpu/internal/config"
	"github.com/vitrailgpu/rgpu/internal/rlog"
	"github.com/vitrailgpu/rgpu/rgpu"
)

func init() {
	runtime.LockOSThread()
}

const (
	vertexSrc = `#version 330 core
layout(location = 0) in vec2 a_pos;
layout(location = 1) in vec2 a_uv;
out vec2 v_uv;
void main() {
	v_uv = a_uv;
	gl_Position = vec4(a_pos, 0.0, 1.0);
}
`
	fragmentSrc = `#version 330 core
in vec2 v_uv;
out vec4 frag_color;
uniform sampler2D u_tex;
void main() {
	frag_color = texture(u_tex, v_uv);
}
`
)

func main() {
	if err := run(); err != nil {
		rlog.Errorf("demo: %v", err)
		os.Exit(1)
	}
}

func run() error {
	session, _ := config.Load("rgpu.toml")

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)

	window, err := glfw.CreateWindow(800, 600, "rgpu demo", nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()

	flags := rgpu.Flags(session.Flags(uint32(rgpu.BackendOpenGL)))
	gpu, err := rgpu.NewGpu(flags, opengl.Driver{}, func(name string) unsafe.Pointer {
		return glfw.GetProcAddress(name)
	})
	if err != nil {
		return fmt.Errorf("gpu_new: %w", err)
	}
	gpu.StealThisThread()
	defer gpu.ReleaseThisThread()

	rlog.Infof("opened %s: %s / %s", "opengl", gpu.Info("vendor"), gpu.Info("renderer"))

	pixels, w, h, err := decodePNG("testdata/checker.png")
	if err != nil {
		rlog.Warnf("decode texture: %v, falling back to a solid placeholder", err)
		pixels, w, h = solidPlaceholder()
	}
	tex := rgpu.TextureNewForData(gpu, pixels, w, h, rgpu.FormatRGBA8, 0, 0)
	defer tex.Unref()

	sh := rgpu.ShaderNewForCode(gpu, vertexSrc, fragmentSrc)
	defer sh.Unref()

	vertexLayout := []rgpu.DataSegment{
		{Name: "a_pos", Scalar: rgpu.ScalarFloat, Count: 2},
		{Name: "a_uv", Scalar: rgpu.ScalarFloat, Count: 2},
	}
	verts := triangleVertices()
	buf := rgpu.BufferNewForData(gpu, verts, vertexLayout)
	defer buf.Unref()

	plan := rgpu.PlanNew(gpu)
	plan.BeginConfig()
	plan.ConfigShader(sh)
	plan.ConfigDest(0, 0, 800, 600)
	plan.ConfigWriteMask(rgpu.Color)
	plan.ConfigUniforms(rgpu.NewKeyValValue("u_tex", rgpu.NewTextureValue(tex)))
	plan.PushGroup()
	plan.Append(1, buf)
	plan.Pop(1)

	commands, err := plan.UnrefToCommands()
	if err != nil {
		return fmt.Errorf("unref_to_commands: %w", err)
	}
	defer commands.Unref()

	if err := commands.Dispatch(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	gpu.Flush()

	window.SwapBuffers()
	glfw.PollEvents()
	return nil
}

func triangleVertices() []byte {
	type vtx struct{ x, y, u, v float32 }
	data := []vtx{
		{-0.8, -0.8, 0, 0},
		{0.8, -0.8, 1, 0},
		{0.0, 0.8, 0.5, 1},
	}
	buf := make([]byte, 0, len(data)*16)
	for _, v := range data {
		buf = append(buf, floatBytes(v.x)...)
		buf = append(buf, floatBytes(v.y)...)
		buf = append(buf, floatBytes(v.u)...)
		buf = append(buf, floatBytes(v.v)...)
	}
	return buf
}

func floatBytes(f float32) []byte {
	bits := *(*uint32)(unsafe.Pointer(&f))
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

func decodePNG(path string) (pixels []byte, w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, 0, err
	}
	// The rest of the pipeline assumes power-of-two dimensions (simpler
	// mipmap generation); resample with x/image/draw when the source
	// isn't already one.
	bounds := img.Bounds()
	pw, ph := nextPowerOfTwo(bounds.Dx()), nextPowerOfTwo(bounds.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	w, h = pw, ph
	pixels = dst.Pix
	return pixels, w, h, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func solidPlaceholder() ([]byte, int, int) {
	return []byte{255, 255, 255, 255}, 1, 1
}

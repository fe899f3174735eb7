package rgpu

// Flags are the Gpu creation flags of spec §6. Bit positions match the
// closed enumeration bit0..bit6.
type Flags uint32

const (
	BackendOpenGL Flags = 1 << iota
	BackendVulkan       // reserved; backend/vulkan always reports ErrBackendNotImplemented
	UseDebugLayers
	NoThreadSafety
	NoFallback // reserved, accepted but unused
	ExitOnError
	LogErrors
)

// BufferRole is the first realized use of a Buffer, which forbids the
// other role thereafter (spec §3 Buffer, glossary "Role").
type BufferRole int

const (
	RoleUnset BufferRole = iota
	RoleVertex
	RoleUniform
)

func (r BufferRole) String() string {
	switch r {
	case RoleVertex:
		return "vertex"
	case RoleUniform:
		return "uniform"
	default:
		return "unset"
	}
}

// DestroyKind tags a driver-handle kind awaiting deferred destruction
// (spec §9 "Deferred destruction queue").
type DestroyKind int

const (
	DestroyProgram DestroyKind = iota
	DestroyBuffer
	DestroyVertexArray
	DestroyTexture
	DestroyFramebuffer
)

// DestroyEntry is one entry of the Gpu's deferred-destruction queue.
type DestroyEntry struct {
	Kind   DestroyKind
	Handle uint32
}

// UniformInfo is one row of a shader's flattened uniform reflection
// table (spec §3 Shader, §4.2 "Ensure shader").
type UniformInfo struct {
	Name     string
	Location int32
	Count    int32
	// GLType is one of the backend-agnostic GLType* constants (e.g.
	// GLTypeFloatVec4), translated by the backend from the driver's enum.
	GLType uint32
	// BlockIndex+1, or 0 if the uniform is not a member of a uniform
	// block (spec §3 "0 meaning not in a block").
	BlockIndexPlus1 uint32
}

// AttributeInfo is one row of a shader's attribute reflection table.
type AttributeInfo struct {
	Name     string
	Location int32
	Count    int32
	GLType   uint32
}

// Driver selects and opens a concrete backend implementation (spec
// §4.4 "selected at Gpu creation"). Each backend package (backend/opengl,
// backend/vulkan) provides one.
type Driver interface {
	// Name identifies the backend in error messages.
	Name() string
	// IsThreadSafe reports whether the backend is natively thread-safe
	// (spec §4.4, §5). The OpenGL backend is not; a reserved/placeholder
	// backend may be.
	IsThreadSafe() bool
	// Open initializes the backend against the flags the Gpu was
	// created with. loader is the extension-loader function pointer of
	// spec §6 ("backend_init_data"); nil means "linked against a loader
	// shim" and the backend resolves its own entry points.
	Open(flags Flags, loader interface{}) (Backend, error)
}

// Backend is the per-Gpu vtable of spec §4.4. The frontend (this
// package) forwards all lifecycle and compile/dispatch calls through it.
type Backend interface {
	// Info answers gpu_get_info (spec §6): "vendor", "renderer",
	// "version", "shading language version".
	Info(key string) string

	// StealThisThread / ReleaseThisThread manage the backend's
	// per-thread current-Gpu slot (spec §5 "claim").
	StealThisThread()
	ReleaseThisThread()

	// Destroy performs the actual driver delete call for one deferred
	// entry. Called only from Gpu.Flush, on the Gpu's claim thread.
	Destroy(entry DestroyEntry)

	// EnsureShader lazily compiles+links sh's program and populates its
	// reflection tables on first use (spec §4.2).
	EnsureShader(sh *Shader) error
	// EnsureBuffer lazily realizes buf under role (vertex or uniform),
	// fixing buf's role on first call (spec §3 Buffer).
	EnsureBuffer(buf *Buffer, role BufferRole) error
	// EnsureTexture lazily realizes tex's driver handle and uploads its
	// initial pixels.
	EnsureTexture(tex *Texture) error
	// EnsureShadow realizes the driver handle of tex's non-msaa shadow
	// sibling, which Texture.Shadow allocates before calling it (spec
	// §3 Texture invariant; only valid when tex.IsMultisample()).
	EnsureShadow(tex *Texture) error

	// LookupUniform and LookupAttribute query sh's reflection tables,
	// populated by the most recent EnsureShader.
	LookupUniform(sh *Shader, name string) (UniformInfo, bool)
	LookupAttribute(sh *Shader, name string) (AttributeInfo, bool)

	// GrowFramebufferStack ensures at least n framebuffer slots exist
	// (spec §4.2 step 3, §8 "|framebuffer_stack| >= h + 2").
	GrowFramebufferStack(n int) error

	// DispatchCommands executes a compiled Commands tree (spec §4.3).
	DispatchCommands(c *Commands) error

	// ReleaseShader, ReleaseBuffer, ReleaseTexture return the deferred
	// destroy entries (if any driver handle was ever materialized) for
	// a resource whose refcount just reached zero. The frontend pushes
	// the returned entries onto the owning Gpu's destroy queue.
	ReleaseShader(sh *Shader) []DestroyEntry
	ReleaseBuffer(buf *Buffer) []DestroyEntry
	ReleaseTexture(tex *Texture) []DestroyEntry
}

package rgpu

// ValueKind is the closed set of Value variants (spec §3, §6 "Value
// types"). The port expresses the C tagged union as a Go sum type: a
// ValueKind tag plus variant-specific fields on Value, guarded so that
// only the field matching Kind is meaningful.
type ValueKind int

const (
	ValueShader ValueKind = iota
	ValueBuffer
	ValueTexture
	ValueBool
	ValueInt
	ValueUInt
	ValueFloat
	ValuePointer
	ValueVec2
	ValueVec3
	ValueVec4
	ValueMat4
	ValueRect
	ValueKeyVal
	ValueTuple2
	ValueTuple3
	ValueTuple4
)

func (k ValueKind) String() string {
	switch k {
	case ValueShader:
		return "SHADER"
	case ValueBuffer:
		return "BUFFER"
	case ValueTexture:
		return "TEXTURE"
	case ValueBool:
		return "BOOL"
	case ValueInt:
		return "INT"
	case ValueUInt:
		return "UINT"
	case ValueFloat:
		return "FLOAT"
	case ValuePointer:
		return "POINTER"
	case ValueVec2:
		return "VEC2"
	case ValueVec3:
		return "VEC3"
	case ValueVec4:
		return "VEC4"
	case ValueMat4:
		return "MAT4"
	case ValueRect:
		return "RECT"
	case ValueKeyVal:
		return "KEYVAL"
	case ValueTuple2:
		return "TUPLE2"
	case ValueTuple3:
		return "TUPLE3"
	case ValueTuple4:
		return "TUPLE4"
	default:
		return "UNKNOWN"
	}
}

// Vec2, Vec3, Vec4 are fixed-size numeric aggregates (spec §3).
type Vec2 [2]float32
type Vec3 [3]float32
type Vec4 [4]float32

// Mat4 is a column-major 4x4 matrix, matching the wire format GL expects
// from uniformMatrix4fv (spec §4.3 "Mat4: ... column-major, unchanged").
type Mat4 [16]float32

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Rect is an integer rectangle: x, y, w, h (spec §3).
type Rect struct {
	X, Y, W, H int32
}

// KeyVal is an owned name plus a boxed inner Value (spec §3).
type KeyVal struct {
	Name  string
	Inner *Value
}

// Value is the tagged union used for uniforms, state arguments, and
// tuple composition (spec §3). The zero Value has Kind ValueShader and a
// nil shader; use the constructors below to build a well-formed Value.
//
// Construction from user space uses the constructors directly (there is
// no separate "foreign" borrowed form in Go — the garbage collector
// already gives every Value its own copy of any referenced data, so the
// foreign/initialized split the source language needs to avoid a copy
// has no work to do here).
type Value struct {
	Kind ValueKind

	shader  *Shader
	buffer  *Buffer
	texture *Texture

	b bool
	i int64
	u uint64
	f float32
	p uintptr

	vec2 Vec2
	vec3 Vec3
	vec4 Vec4
	mat4 Mat4
	rect Rect

	kv KeyVal

	tuple []Value
}

func NewBoolValue(b bool) Value       { return Value{Kind: ValueBool, b: b} }
func NewIntValue(i int64) Value       { return Value{Kind: ValueInt, i: i} }
func NewUIntValue(u uint64) Value     { return Value{Kind: ValueUInt, u: u} }
func NewFloatValue(f float32) Value   { return Value{Kind: ValueFloat, f: f} }
func NewPointerValue(p uintptr) Value { return Value{Kind: ValuePointer, p: p} }
func NewVec2Value(v Vec2) Value       { return Value{Kind: ValueVec2, vec2: v} }
func NewVec3Value(v Vec3) Value       { return Value{Kind: ValueVec3, vec3: v} }
func NewVec4Value(v Vec4) Value       { return Value{Kind: ValueVec4, vec4: v} }
func NewMat4Value(m Mat4) Value       { return Value{Kind: ValueMat4, mat4: m} }
func NewRectValue(r Rect) Value       { return Value{Kind: ValueRect, rect: r} }

// NewShaderValue, NewBufferValue, NewTextureValue wrap a resource handle.
// The Value takes a new strong reference to the resource (spec §3:
// "resource handles, reference-counted").
func NewShaderValue(s *Shader) Value {
	if s != nil {
		s.ref()
	}
	return Value{Kind: ValueShader, shader: s}
}

func NewBufferValue(b *Buffer) Value {
	if b != nil {
		b.ref()
	}
	return Value{Kind: ValueBuffer, buffer: b}
}

func NewTextureValue(t *Texture) Value {
	if t != nil {
		t.ref()
	}
	return Value{Kind: ValueTexture, texture: t}
}

// NewKeyValValue boxes inner under name (spec §3 "KeyVal (owned name +
// boxed inner value)").
func NewKeyValValue(name string, inner Value) Value {
	cp := inner
	return Value{Kind: ValueKeyVal, kv: KeyVal{Name: name, Inner: &cp}}
}

func NewTuple2Value(a, b Value) Value    { return Value{Kind: ValueTuple2, tuple: []Value{a, b}} }
func NewTuple3Value(a, b, c Value) Value { return Value{Kind: ValueTuple3, tuple: []Value{a, b, c}} }
func NewTuple4Value(a, b, c, d Value) Value {
	return Value{Kind: ValueTuple4, tuple: []Value{a, b, c, d}}
}

func (v Value) Bool() bool        { return v.b }
func (v Value) Int() int64        { return v.i }
func (v Value) UInt() uint64      { return v.u }
func (v Value) Float() float32    { return v.f }
func (v Value) Pointer() uintptr  { return v.p }
func (v Value) Vec2Val() Vec2     { return v.vec2 }
func (v Value) Vec3Val() Vec3     { return v.vec3 }
func (v Value) Vec4Val() Vec4     { return v.vec4 }
func (v Value) Mat4Val() Mat4     { return v.mat4 }
func (v Value) RectVal() Rect     { return v.rect }
func (v Value) Shader() *Shader   { return v.shader }
func (v Value) Buffer() *Buffer   { return v.buffer }
func (v Value) Texture() *Texture { return v.texture }
func (v Value) KeyVal() KeyVal    { return v.kv }
func (v Value) Tuple() []Value    { return v.tuple }

// Clear releases the Value's owned interior: the strong reference held
// by a resource-handle Value, or the boxed interior of a KeyVal/Tuple
// (spec §3: "Clearing a Value releases its owned interior").
func (v *Value) Clear() {
	switch v.Kind {
	case ValueShader:
		if v.shader != nil {
			v.shader.unref()
		}
	case ValueBuffer:
		if v.buffer != nil {
			v.buffer.unref()
		}
	case ValueTexture:
		if v.texture != nil {
			v.texture.unref()
		}
	case ValueKeyVal:
		if v.kv.Inner != nil {
			v.kv.Inner.Clear()
		}
	case ValueTuple2, ValueTuple3, ValueTuple4:
		for i := range v.tuple {
			v.tuple[i].Clear()
		}
	}
	*v = Value{}
}

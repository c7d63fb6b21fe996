package mdf

import (
	"fmt"
	"strings"
)

// Flags is the material flag word. The low 32 bits are stored at every
// revision; the high 32 bits exist from revision 31 on.
type Flags uint64

// Single-bit flags, bits 0-9.
const (
	FlagBaseTwoSideEnable Flags = 1 << iota
	FlagBaseAlphaTestEnable
	FlagShadowCastDisable
	FlagVertexShaderUsed
	FlagEmissiveUsed
	FlagTessellationEnable
	FlagEnableIgnoreDepth
	FlagAlphaMaskUsed
	FlagForcedTwoSideEnable
	FlagTwoSideEnable
)

// Single-bit flags, bits 24-31.
const (
	FlagRoughTransparentEnable Flags = 1 << (24 + iota)
	FlagForcedAlphaTestEnable
	FlagAlphaTestEnable
	FlagSSSProfileUsed
	FlagEnableStencilPriority
	FlagRequireDualQuaternion
	FlagPixelDepthOffsetUsed
	FlagNoRayTracing
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{FlagBaseTwoSideEnable, "BaseTwoSideEnable"},
	{FlagBaseAlphaTestEnable, "BaseAlphaTestEnable"},
	{FlagShadowCastDisable, "ShadowCastDisable"},
	{FlagVertexShaderUsed, "VertexShaderUsed"},
	{FlagEmissiveUsed, "EmissiveUsed"},
	{FlagTessellationEnable, "TessellationEnable"},
	{FlagEnableIgnoreDepth, "EnableIgnoreDepth"},
	{FlagAlphaMaskUsed, "AlphaMaskUsed"},
	{FlagForcedTwoSideEnable, "ForcedTwoSideEnable"},
	{FlagTwoSideEnable, "TwoSideEnable"},
	{FlagRoughTransparentEnable, "RoughTransparentEnable"},
	{FlagForcedAlphaTestEnable, "ForcedAlphaTestEnable"},
	{FlagAlphaTestEnable, "AlphaTestEnable"},
	{FlagSSSProfileUsed, "SSSProfileUsed"},
	{FlagEnableStencilPriority, "EnableStencilPriority"},
	{FlagRequireDualQuaternion, "RequireDualQuaternion"},
	{FlagPixelDepthOffsetUsed, "PixelDepthOffsetUsed"},
	{FlagNoRayTracing, "NoRayTracing"},
}

const flagZPostPass Flags = 1 << 10

// field extracts width bits at shift.
func (f Flags) field(shift, width uint) uint64 {
	return uint64(f) >> shift & (1<<width - 1)
}

func (f Flags) withField(shift, width uint, v uint64) Flags {
	mask := Flags(1<<width-1) << shift
	return f&^mask | Flags(v)<<shift&mask
}

// Has reports whether every bit of b is set.
func (f Flags) Has(b Flags) bool { return f&b == b }

// With returns f with b set or cleared.
func (f Flags) With(b Flags, on bool) Flags {
	if on {
		return f | b
	}
	return f &^ b
}

func tessellationField(rev int) (shift, width uint) {
	if Has(rev, FieldExtended) {
		return 11, 5
	}
	return 10, 6
}

// Tessellation returns the tessellation factor. It is 6 bits wide before
// revision 31 and 5 bits wide from then on, when bit 10 became ZPostPass.
func (f Flags) Tessellation(rev int) uint8 {
	s, w := tessellationField(rev)
	return uint8(f.field(s, w))
}

// WithTessellation sets the tessellation factor, truncated to its width.
func (f Flags) WithTessellation(rev int, v uint8) Flags {
	s, w := tessellationField(rev)
	return f.withField(s, w, uint64(v))
}

// ZPostPass reports the revision 31 ZPostPass bit.
func (f Flags) ZPostPass(rev int) bool {
	return Has(rev, FieldExtended) && f.Has(flagZPostPass)
}

// WithZPostPass sets the ZPostPass bit. Before revision 31 the bit belongs
// to the tessellation factor and f is returned unchanged.
func (f Flags) WithZPostPass(rev int, on bool) Flags {
	if !Has(rev, FieldExtended) {
		return f
	}
	return f.With(flagZPostPass, on)
}

// Phong returns the phong factor, bits 16-23.
func (f Flags) Phong() uint8 { return uint8(f.field(16, 8)) }

// WithPhong sets the phong factor.
func (f Flags) WithPhong(v uint8) Flags { return f.withField(16, 8, uint64(v)) }

// Flags3 returns the raw bits 32-39. Zero before revision 31.
func (f Flags) Flags3(rev int) uint8 {
	if !Has(rev, FieldExtended) {
		return 0
	}
	return uint8(f.field(32, 8))
}

// WithFlags3 sets bits 32-39.
func (f Flags) WithFlags3(rev int, v uint8) Flags {
	if !Has(rev, FieldExtended) {
		return f
	}
	return f.withField(32, 8, uint64(v))
}

// PriorityBias returns the signed draw priority bias, bits 40-47. Zero
// before revision 31.
func (f Flags) PriorityBias(rev int) int8 {
	if !Has(rev, FieldExtended) {
		return 0
	}
	return int8(f.field(40, 8))
}

// WithPriorityBias sets the priority bias.
func (f Flags) WithPriorityBias(rev int, v int8) Flags {
	if !Has(rev, FieldExtended) {
		return f
	}
	return f.withField(40, 8, uint64(uint8(v)))
}

// High returns the upper flag word, bits 48-63. Zero before revision 31.
func (f Flags) High(rev int) uint16 {
	if !Has(rev, FieldExtended) {
		return 0
	}
	return uint16(f.field(48, 16))
}

// Stored returns f masked to the bits revision rev can store.
func (f Flags) Stored(rev int) Flags {
	if Has(rev, FieldExtended) {
		return f
	}
	return f & 0xFFFFFFFF
}

// Names returns the names of the set single-bit flags in bit order.
func (f Flags) Names() []string {
	var out []string
	for _, n := range flagNames {
		if f.Has(n.f) {
			out = append(out, n.name)
		}
	}
	return out
}

// FlagFields is the decoded view of a flag word at one revision.
type FlagFields struct {
	Names        []string `json:"names" yaml:"names"`
	Tessellation uint8    `json:"tessellation" yaml:"tessellation"`
	ZPostPass    bool     `json:"zPostPass,omitempty" yaml:"zPostPass,omitempty"`
	Phong        uint8    `json:"phong" yaml:"phong"`
	Flags3       uint8    `json:"flags3,omitempty" yaml:"flags3,omitempty"`
	PriorityBias int8     `json:"priorityBias,omitempty" yaml:"priorityBias,omitempty"`
	High         uint16   `json:"high,omitempty" yaml:"high,omitempty"`
}

// Fields decodes f at revision rev.
func (f Flags) Fields(rev int) FlagFields {
	return FlagFields{
		Names:        f.Names(),
		Tessellation: f.Tessellation(rev),
		ZPostPass:    f.ZPostPass(rev),
		Phong:        f.Phong(),
		Flags3:       f.Flags3(rev),
		PriorityBias: f.PriorityBias(rev),
		High:         f.High(rev),
	}
}

func (f Flags) String() string {
	return fmt.Sprintf("0x%016x[%s]", uint64(f), strings.Join(f.Names(), "|"))
}

// ShaderType is the material shader class.
type ShaderType int32

var shaderTypeNames = []string{
	"Standard", "Decal", "DecalWithMetallic", "DecalNRMR", "Transparent",
	"Distortion", "PrimitiveMesh", "PrimitiveSolidMesh", "Water", "SpeedTree",
	"GUI", "GUIMesh", "GUIMeshTransparent", "ExpensiveTransparent", "Forward",
	"RenderTarget", "PostProcess", "PrimitiveMaterial", "PrimitiveSolidMaterial",
	"SpineMaterial", "ReflectiveTransparent",
}

func (s ShaderType) String() string {
	if s >= 0 && int(s) < len(shaderTypeNames) {
		return shaderTypeNames[s]
	}
	return fmt.Sprintf("ShaderType(%d)", int32(s))
}

// ParseShaderType returns the shader type with the given name.
func ParseShaderType(name string) (ShaderType, bool) {
	for i, n := range shaderTypeNames {
		if strings.EqualFold(n, name) {
			return ShaderType(i), true
		}
	}
	return 0, false
}

package mdf

import "fmt"

// Field names a revision-gated part of the material layout.
type Field int

const (
	// FieldLegacy is an extra 8-byte material header field.
	FieldLegacy Field = iota
	// FieldTextureReserved is 8 trailing reserved bytes per texture record.
	FieldTextureReserved
	// FieldParamLayout13 puts the parameter offset before the count.
	FieldParamLayout13
	// FieldGPUBuffers is the GPU-buffer table and its two counts.
	FieldGPUBuffers
	// FieldExtended is the high flag word, the bake texture array size and
	// the tex-id array table, which holds the shaderLOD redirects.
	FieldExtended
	// FieldParamLayout31 packs the parameter count into 16 bits with a
	// 16-bit extra value beside it.
	FieldParamLayout31
)

// Gate is the revision range in which a field exists. Max of zero means
// no upper bound.
type Gate struct {
	Field Field
	Name  string
	Min   int
	Max   int
}

// Gates lists every revision-dependent field.
var Gates = []Gate{
	{FieldLegacy, "legacy material field", 6, 6},
	{FieldTextureReserved, "texture reserved bytes", 13, 0},
	{FieldParamLayout13, "parameter layout v13", 13, 0},
	{FieldGPUBuffers, "gpu buffers", 19, 0},
	{FieldExtended, "extended flags and tables", 31, 0},
	{FieldParamLayout31, "parameter layout v31", 31, 0},
}

// Has reports whether field f exists at revision rev.
func Has(rev int, f Field) bool {
	for _, g := range Gates {
		if g.Field == f {
			return rev >= g.Min && (g.Max == 0 || rev <= g.Max)
		}
	}
	panic(fmt.Sprintf("mdf: no gate for field %d", f))
}

func (f Field) String() string {
	for _, g := range Gates {
		if g.Field == f {
			return g.Name
		}
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Record sizes.
const (
	textureRecordSize    = 24
	textureReservedSize  = 8
	paramRecordSize      = 24
	gpuBufferRecordSize  = 32
	headerAlign          = 16
	paramsAlign          = 16
	legacyParamsEndAlign = 4
)

func textureSize(rev int) int {
	if Has(rev, FieldTextureReserved) {
		return textureRecordSize + textureReservedSize
	}
	return textureRecordSize
}

// materialHeaderSize returns the size of one material header.
func materialHeaderSize(rev int) int {
	n := 8 + 4 // name, name hash
	if Has(rev, FieldLegacy) {
		n += 8
	}
	n += 4 + 4 + 4 // params size, param count, texture count
	if Has(rev, FieldGPUBuffers) {
		n += 4 + 4
	}
	n += 4 // shader type
	if Has(rev, FieldExtended) {
		n += 4 // bake texture array size
	}
	n += 4 // flags low
	if Has(rev, FieldExtended) {
		n += 4 + 4 // flags high, tex-id count
	}
	n += 8 + 8 // parameter headers, texture headers
	if Has(rev, FieldGPUBuffers) {
		n += 8
	}
	n += 8 + 8 // params data, shader path
	if Has(rev, FieldExtended) {
		n += 8 // tex-id table, the last header field
	}
	return n
}

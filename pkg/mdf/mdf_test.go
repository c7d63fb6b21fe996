package mdf

import (
	"encoding/binary"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/reasset/internal/buf"
	"github.com/joshuapare/reasset/pkg/strhash"
	"github.com/joshuapare/reasset/pkg/types"
)

// sampleFile builds a two-material file using every field revision rev
// can store.
func sampleFile(rev int) *File {
	body := &Material{
		Name:       "Body_Mat",
		ShaderPath: "Shader/Standard/Body.fx",
		ShaderType: 0,
		Flags:      (FlagBaseTwoSideEnable | FlagAlphaTestEnable).WithPhong(0x20).WithTessellation(rev, 3),
		Textures: []Texture{
			{Type: "BaseDielectricMap", Path: "tex/body_alb.tex"},
			{Type: "NormalRoughnessMap", Path: "tex/body_nrm.tex"},
			{Type: "", Path: "tex/shared.tex"},
		},
		Params: []Param{
			{Name: "BaseColor", Components: 4, Values: [4]float32{1, 0.5, 0.25, 1}},
			{Name: "Roughness", Components: 1, Values: [4]float32{0.8}},
			{Name: "Offset", Components: 3, Values: [4]float32{1, 2, 3}},
		},
	}
	hair := &Material{
		Name:       "Hair_Mat",
		ShaderPath: "Shader/Standard/Body.fx",
		ShaderType: 4,
		Flags:      FlagEmissiveUsed,
		Textures:   []Texture{{Type: "AlphaTranslucentOcclusionCavityMap", Path: "tex/shared.tex"}},
		Params:     []Param{{Name: "Emissive", Components: 2, Values: [4]float32{3, 4}}},
	}
	if Has(rev, FieldLegacy) {
		body.Legacy = 0x1122334455667788
	}
	if Has(rev, FieldTextureReserved) {
		body.Textures[1].Reserved = 7
	}
	if Has(rev, FieldGPUBuffers) {
		body.GPUBuffers = []GPUBuffer{{Name: "SkinBuffer", Value: "buf/skin.gpbf"}}
	}
	if Has(rev, FieldExtended) {
		body.BakeTextureArraySize = 2
		body.Flags = body.Flags.WithZPostPass(rev, true).WithFlags3(rev, 0x5).WithPriorityBias(rev, -3)
		body.Params[1].Extra = 0x9
		body.TexIDArrays = []TexIDArray{
			{Counts: []int32{1, 2}, Elements: []int32{10, 20, 30}},
			{Counts: []int32{4}, Elements: []int32{-1}},
		}
	}
	return &File{Revision: rev, HeaderVersion: 1, Materials: []*Material{body, hair}}
}

func encodeDecode(t *testing.T, f *File) ([]byte, *File) {
	t.Helper()
	data, err := Encode(f, nil)
	require.NoError(t, err)
	got, err := Decode(data, f.Revision, nil)
	require.NoError(t, err)
	return data, got
}

// headerAt returns the first material header of an encoded file.
func headerAt(t *testing.T, data []byte, rev, index int) header {
	t.Helper()
	c := buf.NewReader(data)
	var f File
	_, err := readFileHeader(c, &f)
	require.NoError(t, err)
	require.NoError(t, c.Skip(index*materialHeaderSize(rev)))
	h, err := readHeader(c, rev)
	require.NoError(t, err)
	return h
}

func TestRoundTripAcrossRevisions(t *testing.T) {
	for _, rev := range []int{6, 13, 18, 19, 23, 30, 31, 32} {
		t.Run("rev"+strconv.Itoa(rev), func(t *testing.T) {
			f := sampleFile(rev)
			data, got := encodeDecode(t, f)

			assert.Equal(t, rev, got.Revision)
			assert.Equal(t, f.HeaderVersion, got.HeaderVersion)
			require.Len(t, got.Materials, 2)
			assert.Equal(t, f.Materials, got.Materials)

			again, err := Encode(got, nil)
			require.NoError(t, err)
			assert.Equal(t, data, again, "re-encode is not byte-identical")
			assert.True(t, Plausible(data, rev))
		})
	}
}

func TestFileHeaderLayout(t *testing.T) {
	data, err := Encode(sampleFile(19), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("MDF\x00"), data[:4])
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[4:]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[6:]))

	h := headerAt(t, data, 19, 0)
	assert.Equal(t, strhash.UTF16("Body_Mat"), h.nameHash)
	assert.Equal(t, int32(3), h.paramCount)
	assert.Equal(t, int32(3), h.texCount)
	assert.Equal(t, int32(1), h.gpbNameCount)
	assert.Equal(t, int32(1), h.gpbDataCount)
	// first material header starts on the 16-byte boundary
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[16+8+4+4:]))
}

func TestMaterialHeaderSizes(t *testing.T) {
	for rev, want := range map[int]int{6: 72, 10: 64, 13: 64, 18: 64, 19: 80, 30: 80, 31: 100, 32: 100} {
		assert.Equal(t, want, materialHeaderSize(rev), "rev %d", rev)
	}
}

func TestGPUBufferGateAt19(t *testing.T) {
	f18 := sampleFile(18)
	f19 := sampleFile(18)
	f19.Revision = 19

	d18, err := Encode(f18, nil)
	require.NoError(t, err)
	d19, err := Encode(f19, nil)
	require.NoError(t, err)
	// two counts and one offset per material header, no buffer records
	const shift = 2 * 16
	assert.Equal(t, len(d18)+shift, len(d19))

	pool := headerAt(t, d19, 19, 0).nameOff
	for i := range 2 {
		h18 := headerAt(t, d18, 18, i)
		h19 := headerAt(t, d19, 19, i)
		assert.Zero(t, h19.gpbNameCount)
		assert.Zero(t, h19.gpbDataCount)
		// an empty buffer table sits where the string pool starts
		assert.Equal(t, pool, h19.gpbOff)

		h19.gpbOff = 0
		for _, off := range []*uint64{&h19.nameOff, &h19.paramHdrOff, &h19.texHdrOff, &h19.paramsOff, &h19.shaderOff} {
			*off -= shift
		}
		assert.Equal(t, h18, h19, "material %d", i)
	}

	// strings and parameter values are the same bytes, moved by the shift
	h18 := headerAt(t, d18, 18, 0)
	assert.Equal(t, h18.nameOff+shift, pool)
	assert.Equal(t, d18[h18.nameOff:], d19[pool:])

	// buffers set on an older revision are not stored
	f18.Materials[0].GPUBuffers = []GPUBuffer{{Name: "x", Value: "y"}}
	_, got := encodeDecode(t, f18)
	assert.Empty(t, got.Materials[0].GPUBuffers)
}

func TestGPUBufferRecordHashes(t *testing.T) {
	data, _ := encodeDecode(t, sampleFile(19))
	h := headerAt(t, data, 19, 0)
	rec := data[h.gpbOff:]
	assert.Equal(t, strhash.UTF16("SkinBuffer"), binary.LittleEndian.Uint32(rec[8:]))
	assert.Equal(t, strhash.ASCII("SkinBuffer"), binary.LittleEndian.Uint32(rec[12:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(rec[24:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(rec[28:]))
}

func TestStringsAreShared(t *testing.T) {
	data, _ := encodeDecode(t, sampleFile(13))
	body := headerAt(t, data, 13, 0)
	hair := headerAt(t, data, 13, 1)
	assert.Equal(t, body.shaderOff, hair.shaderOff)

	pathOff := func(h header, i int) uint64 {
		return binary.LittleEndian.Uint64(data[int(h.texHdrOff)+i*textureSize(13)+16:])
	}
	assert.Equal(t, pathOff(body, 2), pathOff(hair, 0))
	assert.NotEqual(t, pathOff(body, 0), pathOff(body, 1))

	// empty texture type is a zero offset with zero hashes
	rec := data[int(body.texHdrOff)+2*textureSize(13):]
	assert.Zero(t, binary.LittleEndian.Uint64(rec))
	assert.Zero(t, binary.LittleEndian.Uint64(rec[8:]))
}

func TestParamGapPreserved(t *testing.T) {
	f := &File{Revision: 19, Materials: []*Material{{
		Name: "Gap",
		Params: []Param{
			{Name: "A", Components: 2, Values: [4]float32{1, 2}, Gap: 4},
			{Name: "B", Components: 1, Values: [4]float32{3}, Gap: 8},
			{Name: "C", Components: 1, Values: [4]float32{4}},
		},
	}}}
	data, got := encodeDecode(t, f)
	params := got.Materials[0].Params
	assert.Equal(t, 4, params[0].Gap)
	assert.Equal(t, 8, params[1].Gap)
	assert.Equal(t, 0, params[2].Gap)
	assert.Equal(t, []float32{3}, params[1].Floats())

	// 4 + 8 + 8 + 4 + 4 = 28, padded to 32
	assert.Equal(t, int32(32), got.Materials[0].ParamsSize)

	h := headerAt(t, data, 19, 0)
	v := binary.LittleEndian.Uint32(data[h.paramsOff+20:])
	assert.Equal(t, float32(3), math.Float32frombits(v))

	again, err := Encode(got, nil)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestLayerColorBackfill(t *testing.T) {
	f := &File{Revision: 31, Materials: []*Material{{
		Name: "Layer",
		Params: []Param{
			{Name: "LayerColor_Red", Components: 1, Values: [4]float32{1}},
			{Name: "LayerColor_Blue", Components: 1, Values: [4]float32{3}},
			{Name: "Other", Components: 1, Values: [4]float32{5}},
			{Name: "layercolor_green", Components: 1, Values: [4]float32{2}},
		},
	}}}
	data, got := encodeDecode(t, f)
	params := got.Materials[0].Params
	// green was skipped between red and blue
	assert.Equal(t, 4, params[1].Gap)
	assert.Equal(t, 0, params[2].Gap)
	// a non-color parameter resets the channel sequence
	assert.Equal(t, 0, params[3].Gap)
	assert.Equal(t, float32(3), params[1].Values[0])
	assert.Equal(t, int32(32), got.Materials[0].ParamsSize)

	h := headerAt(t, data, 31, 0)
	blue := binary.LittleEndian.Uint32(data[h.paramsOff+8:])
	assert.Equal(t, float32(3), math.Float32frombits(blue))
}

func TestLayerColorChannel(t *testing.T) {
	tests := []struct {
		name string
		ch   int
		ok   bool
	}{
		{"layercolor_red", 0, true},
		{"LayerColor_Green", 1, true},
		{"layercolor_blue_2", 2, true},
		{"layercolor_alpha", 0, false},
		{"basecolor_red", 0, false},
	}
	for _, tt := range tests {
		ch, ok := layerColorChannel(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.ch, ch, tt.name)
	}
}

func TestParamsEndPadding(t *testing.T) {
	one := []Param{{Name: "A", Components: 1, Values: [4]float32{1}}}
	four := make([]Param, 4)
	for i := range four {
		four[i] = Param{Name: "V" + strconv.Itoa(i), Components: 4}
	}

	tests := []struct {
		rev    int
		params []Param
		want   int32
	}{
		{6, one, 8},
		{6, four, 64},
		{13, one, 16},
		{31, one, 16},
		{13, four, 64},
	}
	for _, tt := range tests {
		f := &File{Revision: tt.rev, Materials: []*Material{{Name: "P", Params: tt.params}}}
		_, got := encodeDecode(t, f)
		assert.Equal(t, tt.want, got.Materials[0].ParamsSize, "rev %d, %d params", tt.rev, len(tt.params))
	}
}

func TestParamHeaderLayouts(t *testing.T) {
	p := []Param{{Name: "X", Components: 3, Extra: 2}}
	for _, tt := range []struct {
		rev       int
		relAt     int
		countAt   int
		countWord uint32
	}{
		{6, 20, 16, 3},
		{13, 16, 20, 3},
		{31, 16, 20, 3 | 2<<16},
	} {
		f := &File{Revision: tt.rev, Materials: []*Material{{Name: "L", Params: p}}}
		data, err := Encode(f, nil)
		require.NoError(t, err)
		h := headerAt(t, data, tt.rev, 0)
		rec := data[h.paramHdrOff:]
		assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(rec[tt.relAt:]), "rev %d", tt.rev)
		assert.Equal(t, tt.countWord, binary.LittleEndian.Uint32(rec[tt.countAt:]), "rev %d", tt.rev)
	}
}

func TestTexIDArrays(t *testing.T) {
	data, got := encodeDecode(t, sampleFile(31))
	body := got.Materials[0]
	require.Len(t, body.TexIDArrays, 2)
	assert.Equal(t, []int32{10, 20, 30}, body.TexIDArrays[0].Elements)
	assert.Equal(t, []int32{-1}, body.TexIDArrays[1].Elements)
	assert.Empty(t, got.Materials[1].TexIDArrays)

	h := headerAt(t, data, 31, 0)
	assert.Equal(t, int32(2), h.texIDCount)
	first := binary.LittleEndian.Uint64(data[h.texIDOff:])
	// arrays follow their offset table directly
	assert.Equal(t, h.texIDOff+32, first)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[first:]))

	hair := headerAt(t, data, 31, 1)
	assert.Zero(t, hair.texIDCount)
	assert.Zero(t, hair.texIDOff)

	// the tex-id offset closes the header; the next header follows it
	assert.Equal(t, uint64(16+2*100), headerAt(t, data, 31, 0).texHdrOff)
}

func TestDecodeErrors(t *testing.T) {
	data, err := Encode(sampleFile(19), nil)
	require.NoError(t, err)

	bad := append([]byte(nil), data...)
	bad[0] = 'X'
	_, err = Decode(bad, 19, nil)
	require.ErrorIs(t, err, types.ErrBadMagic)

	_, err = Decode(data[:40], 19, nil)
	require.ErrorIs(t, err, types.ErrTruncated)

	_, err = Decode(data[:6], 19, nil)
	require.ErrorIs(t, err, types.ErrTruncated)

	h := headerAt(t, data, 19, 0)
	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[h.paramHdrOff+20:], 5)
	_, err = Decode(bad, 19, nil)
	require.ErrorIs(t, err, types.ErrUnsupportedType)

	// texture table pointing past the end
	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint64(bad[16+48:], uint64(len(data)+64))
	_, err = Decode(bad, 19, nil)
	require.ErrorIs(t, err, types.ErrInvalidOffset)
}

func TestEncodeRejectsBadComponents(t *testing.T) {
	f := &File{Revision: 19, Materials: []*Material{{Name: "M", Params: []Param{{Name: "p", Components: 5}}}}}
	_, err := Encode(f, nil)
	require.ErrorIs(t, err, types.ErrUnsupportedType)
}

func TestEncodeRecomputesHashes(t *testing.T) {
	f := sampleFile(19)
	f.Materials[0].Name = "Renamed"
	f.Materials[0].NameHash = 1
	_, got := encodeDecode(t, f)
	assert.Equal(t, strhash.UTF16("Renamed"), got.Materials[0].NameHash)
	assert.Equal(t, strhash.ASCII("Roughness"), got.Materials[0].Params[1].ASCIIHash)
}

func TestPlausible(t *testing.T) {
	data, err := Encode(sampleFile(19), nil)
	require.NoError(t, err)
	require.True(t, Plausible(data, 19))

	assert.False(t, Plausible(data[:32], 19), "truncated headers")
	assert.False(t, Plausible(nil, 19))
	// a revision 31 header is larger and misaligns every field
	assert.False(t, Plausible(data, 31))

	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[16+28:], 2) // gpu buffer value count
	assert.False(t, Plausible(bad, 19))

	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[16+8:], 0) // name hash
	assert.False(t, Plausible(bad, 19))

	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[16+12:], 0x7FFFFFF0) // params size
	assert.False(t, Plausible(bad, 19))
}

func TestRevisionFromPath(t *testing.T) {
	tests := []struct {
		path string
		rev  int
		ok   bool
	}{
		{"natives/stm/body.mdf2.31", 31, true},
		{"C:/game/Hair.MDF2.19", 19, true},
		{"a.b.mdf2.6", 6, true},
		{"body.mdf2", 0, false},
		{"body.mdf2.x", 0, false},
		{"body.user.3", 0, false},
	}
	for _, tt := range tests {
		rev, ok := RevisionFromPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.rev, rev, tt.path)
	}
}

func TestGates(t *testing.T) {
	tests := []struct {
		rev   int
		field Field
		want  bool
	}{
		{6, FieldLegacy, true},
		{5, FieldLegacy, false},
		{13, FieldLegacy, false},
		{12, FieldTextureReserved, false},
		{13, FieldTextureReserved, true},
		{18, FieldGPUBuffers, false},
		{19, FieldGPUBuffers, true},
		{30, FieldExtended, false},
		{31, FieldExtended, true},
		{40, FieldParamLayout31, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Has(tt.rev, tt.field), "rev %d %s", tt.rev, tt.field)
	}
	assert.Panics(t, func() { Has(1, Field(99)) })
}

func TestGuessRevision(t *testing.T) {
	data, err := Encode(sampleFile(31), nil)
	require.NoError(t, err)
	rev, ok := GuessRevision(data)
	require.True(t, ok)
	assert.True(t, Has(rev, FieldExtended))
	_, err = Decode(data, rev, nil)
	require.NoError(t, err)

	_, ok = GuessRevision([]byte("not a material file"))
	assert.False(t, ok)
}

func TestFlagLayoutAt30And31(t *testing.T) {
	f30 := Flags(0).WithTessellation(30, 63)
	assert.Equal(t, Flags(0xFC00), f30)
	assert.Equal(t, uint8(63), f30.Tessellation(30))
	assert.False(t, f30.ZPostPass(30), "bit 10 is tessellation before 31")

	f31 := Flags(0).WithTessellation(31, 63)
	assert.Equal(t, Flags(0xF800), f31, "5-bit field at 11")
	assert.Equal(t, uint8(31), f31.Tessellation(31))
	f31 = f31.WithZPostPass(31, true)
	assert.True(t, f31.ZPostPass(31))
	assert.Equal(t, uint8(31), f31.Tessellation(31))
	// the same word read at 30 sees bit 10 as part of tessellation
	assert.Equal(t, uint8(63), f31.Tessellation(30))

	assert.Equal(t, f30, f30.WithZPostPass(30, true))

	b := Flags(0).WithPriorityBias(31, -2).WithFlags3(31, 0xA5)
	assert.Equal(t, int8(-2), b.PriorityBias(31))
	assert.Equal(t, uint8(0xA5), b.Flags3(31))
	assert.Equal(t, Flags(0xFEA5)<<32, b)
	assert.Zero(t, b.PriorityBias(30))
	assert.Zero(t, b.Stored(30))
	assert.Equal(t, Flags(0), Flags(0).WithPriorityBias(30, -2))

	p := Flags(0).WithPhong(0x7F)
	assert.Equal(t, uint8(0x7F), p.Phong())
	assert.Equal(t, Flags(0x7F0000), p)
}

func TestFlagsDroppedBelow31(t *testing.T) {
	f := sampleFile(31)
	f.Revision = 30
	body := f.Materials[0]
	body.TexIDArrays = nil
	body.Params[1].Extra = 0
	body.BakeTextureArraySize = 0
	want := body.Flags.Stored(30)

	_, got := encodeDecode(t, f)
	assert.Equal(t, want, got.Materials[0].Flags)
	assert.Zero(t, got.Materials[0].Flags.PriorityBias(31))
}

func TestFlagNamesAndShaderTypes(t *testing.T) {
	f := FlagBaseTwoSideEnable | FlagTwoSideEnable | FlagNoRayTracing
	assert.Equal(t, []string{"BaseTwoSideEnable", "TwoSideEnable", "NoRayTracing"}, f.Names())
	assert.True(t, f.Has(FlagTwoSideEnable))
	assert.False(t, f.With(FlagTwoSideEnable, false).Has(FlagTwoSideEnable))
	assert.Equal(t, Flags(1<<31), FlagNoRayTracing)

	fields := f.WithTessellation(31, 4).Fields(31)
	assert.Equal(t, uint8(4), fields.Tessellation)

	assert.Equal(t, "Transparent", ShaderType(4).String())
	assert.Equal(t, "ShaderType(99)", ShaderType(99).String())
	st, ok := ParseShaderType("speedtree")
	assert.True(t, ok)
	assert.Equal(t, ShaderType(9), st)
}

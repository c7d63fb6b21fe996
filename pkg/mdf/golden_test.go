package mdf

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/reasset/pkg/strhash"
)

// The fixtures below are laid out field by field in the order the game
// tools write material files, without going through Encode.

type fixtureTexture struct {
	typ, path string
	reserved  uint64
}

type fixtureParam struct {
	name  string
	vals  []float32
	extra uint16
	gap   int
}

type fixtureMaterial struct {
	name, shader string
	shaderType   int32
	legacy       uint64
	bake         uint32
	flagsLow     uint32
	flagsHigh    uint32
	textures     []fixtureTexture
	params       []fixtureParam
	buffers      [][2]string
	texIDs       [][2][]int32
}

type fixtureWriter struct {
	b    []byte
	strs []fixtureString
}

type fixtureString struct {
	at int
	s  string
}

func (w *fixtureWriter) u16(v uint16) { w.b = binary.LittleEndian.AppendUint16(w.b, v) }
func (w *fixtureWriter) u32(v uint32) { w.b = binary.LittleEndian.AppendUint32(w.b, v) }
func (w *fixtureWriter) i32(v int32) { w.u32(uint32(v)) }
func (w *fixtureWriter) u64(v uint64) { w.b = binary.LittleEndian.AppendUint64(w.b, v) }
func (w *fixtureWriter) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *fixtureWriter) zeros(n int) { w.b = append(w.b, make([]byte, n)...) }

func (w *fixtureWriter) align(n int) {
	for len(w.b)%n != 0 {
		w.b = append(w.b, 0)
	}
}

// slot writes a zero u64 and returns its position.
func (w *fixtureWriter) slot() int {
	at := len(w.b)
	w.u64(0)
	return at
}

func (w *fixtureWriter) str(s string) { w.strs = append(w.strs, fixtureString{len(w.b), s}) }

func (w *fixtureWriter) put32(at int, v int32) {
	binary.LittleEndian.PutUint32(w.b[at:], uint32(v))
}

func (w *fixtureWriter) put64(at int, v uint64) {
	binary.LittleEndian.PutUint64(w.b[at:], v)
}

// flushStrings writes every queued string as NUL-terminated UTF-16LE in
// field order. Repeated strings point at their first copy.
func (w *fixtureWriter) flushStrings() {
	sort.SliceStable(w.strs, func(i, j int) bool { return w.strs[i].at < w.strs[j].at })
	first := map[string]int{}
	for _, e := range w.strs {
		if off, ok := first[e.s]; ok {
			w.put64(e.at, uint64(off))
			continue
		}
		first[e.s] = len(w.b)
		w.put64(e.at, uint64(len(w.b)))
		for _, u := range utf16.Encode([]rune(e.s)) {
			w.u16(u)
		}
		w.u16(0)
	}
	w.strs = nil
}

type fixtureSlots struct {
	paramsSize, paramHdr, texHdr int
	gpb, params, texIDs          int
	rel                          []int
}

// buildFixture lays out a material file at revision rev.
func buildFixture(rev int, version int16, mats []fixtureMaterial) []byte {
	w := &fixtureWriter{}
	w.u32(0x0046444D)
	w.u16(uint16(version))
	w.u16(uint16(len(mats)))
	w.i32(0)
	w.align(16)

	slots := make([]fixtureSlots, len(mats))
	for i, m := range mats {
		s := &slots[i]
		w.str(m.name)
		w.slot()
		w.u32(strhash.UTF16(m.name))
		if rev == 6 {
			w.u64(m.legacy)
		}
		s.paramsSize = len(w.b)
		w.i32(0)
		w.i32(int32(len(m.params)))
		w.i32(int32(len(m.textures)))
		if rev >= 19 {
			w.i32(int32(len(m.buffers)))
			w.i32(int32(len(m.buffers)))
		}
		w.i32(m.shaderType)
		if rev >= 31 {
			w.u32(m.bake)
		}
		w.u32(m.flagsLow)
		if rev >= 31 {
			w.u32(m.flagsHigh)
			w.i32(int32(len(m.texIDs)))
		}
		s.paramHdr = w.slot()
		s.texHdr = w.slot()
		if rev >= 19 {
			s.gpb = w.slot()
		}
		s.params = w.slot()
		w.str(m.shader)
		w.slot()
		if rev >= 31 {
			s.texIDs = w.slot()
		}
	}

	for i, m := range mats {
		w.put64(slots[i].texHdr, uint64(len(w.b)))
		for _, tex := range m.textures {
			if tex.typ == "" {
				w.u64(0)
				w.u32(0)
				w.u32(0)
			} else {
				w.str(tex.typ)
				w.slot()
				w.u32(strhash.UTF16(tex.typ))
				w.u32(strhash.ASCII(tex.typ))
			}
			if tex.path == "" {
				w.u64(0)
			} else {
				w.str(tex.path)
				w.slot()
			}
			if rev >= 13 {
				w.u64(tex.reserved)
			}
		}
	}

	for i, m := range mats {
		s := &slots[i]
		w.put64(s.paramHdr, uint64(len(w.b)))
		for _, p := range m.params {
			w.str(p.name)
			w.slot()
			w.u32(strhash.UTF16(p.name))
			w.u32(strhash.ASCII(p.name))
			switch {
			case rev >= 31:
				s.rel = append(s.rel, len(w.b))
				w.i32(0)
				w.u32(uint32(len(p.vals)) | uint32(p.extra)<<16)
			case rev >= 13:
				s.rel = append(s.rel, len(w.b))
				w.i32(0)
				w.i32(int32(len(p.vals)))
			default:
				w.i32(int32(len(p.vals)))
				s.rel = append(s.rel, len(w.b))
				w.i32(0)
			}
		}
	}

	if rev >= 19 {
		for i, m := range mats {
			w.put64(slots[i].gpb, uint64(len(w.b)))
			for _, pair := range m.buffers {
				w.str(pair[0])
				w.slot()
				w.u32(strhash.UTF16(pair[0]))
				w.u32(strhash.ASCII(pair[0]))
				w.str(pair[1])
				w.slot()
				w.u32(0)
				w.u32(1)
			}
		}
	}

	w.flushStrings()

	for i, m := range mats {
		s := &slots[i]
		start := len(w.b)
		w.put64(s.params, uint64(start))
		size := 0
		for j, p := range m.params {
			w.zeros(p.gap)
			size += p.gap
			w.put32(s.rel[j], int32(len(w.b)-start))
			for _, v := range p.vals {
				w.f32(v)
			}
			size += 4 * len(p.vals)
		}
		pad := (16 - size%16) % 16
		if rev == 6 && pad != 0 {
			pad = 4
		}
		w.zeros(pad)
		w.put32(s.paramsSize, int32(size+pad))
	}

	if rev >= 31 {
		for i, m := range mats {
			if len(m.texIDs) == 0 {
				continue
			}
			table := len(w.b)
			w.put64(slots[i].texIDs, uint64(table))
			w.zeros(16 * len(m.texIDs))
			for j, a := range m.texIDs {
				for k, vals := range a {
					w.put64(table+(2*j+k)*8, uint64(len(w.b)))
					w.i32(int32(len(vals)))
					for _, v := range vals {
						w.i32(v)
					}
				}
			}
		}
	}
	return w.b
}

// fixtureMaterials returns two materials using the fields revision rev
// stores. Every string is distinct.
func fixtureMaterials(rev int) []fixtureMaterial {
	skin := fixtureMaterial{
		name:       "pl0000_skin",
		shader:     "Shader/Skin.mmtr",
		shaderType: 0,
		flagsLow:   0x0020_0003,
		textures: []fixtureTexture{
			{typ: "BaseDielectricMap", path: "pl0000/skin_alb.tex"},
			{typ: "", path: "pl0000/skin_nrm.tex"},
		},
		params: []fixtureParam{
			{name: "BaseColor", vals: []float32{1, 0.5, 0.25, 1}},
			{name: "Roughness", vals: []float32{0.75}, gap: 4},
		},
	}
	cloth := fixtureMaterial{
		name:       "pl0000_cloth",
		shader:     "Shader/Cloth.mmtr",
		shaderType: 4,
		flagsLow:   0x10,
		textures:   []fixtureTexture{{typ: "NormalRoughnessMap", path: "pl0000/cloth_nrm.tex"}},
		params:     []fixtureParam{{name: "Emissive", vals: []float32{2}}},
	}
	if rev == 6 {
		skin.legacy = 0x0102030405060708
	}
	if rev >= 13 {
		skin.textures[0].reserved = 0x55
	}
	if rev >= 19 {
		skin.buffers = [][2]string{{"SkinWeights", "pl0000/skin.gpbf"}}
	}
	if rev >= 31 {
		skin.bake = 3
		skin.flagsLow |= 1 << 10
		skin.flagsHigh = 0xFE05
		skin.params[1].extra = 0x12
		skin.texIDs = [][2][]int32{
			{{1, 2}, {7, 8, 9}},
			{{}, {-1}},
		}
	}
	return []fixtureMaterial{skin, cloth}
}

func TestFixtureDecodeAndReencode(t *testing.T) {
	for _, tt := range []struct {
		rev        int
		headerSize int
	}{
		{6, 72},
		{13, 64},
		{19, 80},
		{31, 100},
	} {
		t.Run("rev"+strconv.Itoa(tt.rev), func(t *testing.T) {
			mats := fixtureMaterials(tt.rev)
			data := buildFixture(tt.rev, 2, mats)
			require.True(t, Plausible(data, tt.rev))

			f, err := Decode(data, tt.rev, nil)
			require.NoError(t, err)
			assert.Equal(t, int16(2), f.HeaderVersion)
			require.Len(t, f.Materials, len(mats))

			// textures of the first material follow the packed headers
			texHdr := binary.LittleEndian.Uint64(data[16+tt.headerSize-pointerTailFromTexHdr(tt.rev):])
			assert.Equal(t, uint64(16+2*tt.headerSize), texHdr)

			for i, want := range mats {
				m := f.Materials[i]
				assert.Equal(t, want.name, m.Name)
				assert.Equal(t, strhash.UTF16(want.name), m.NameHash)
				assert.Equal(t, want.shader, m.ShaderPath)
				assert.Equal(t, ShaderType(want.shaderType), m.ShaderType)
				assert.Equal(t, Flags(want.flagsHigh)<<32|Flags(want.flagsLow), m.Flags)
				assert.Equal(t, want.legacy, m.Legacy)
				assert.Equal(t, want.bake, m.BakeTextureArraySize)

				require.Len(t, m.Textures, len(want.textures))
				for j, tex := range want.textures {
					got := m.Textures[j]
					assert.Equal(t, tex.typ, got.Type)
					assert.Equal(t, tex.path, got.Path)
					assert.Equal(t, tex.reserved, got.Reserved)
					if tex.typ != "" {
						assert.Equal(t, strhash.ASCII(tex.typ), got.ASCIIHash)
					}
				}

				require.Len(t, m.Params, len(want.params))
				for j, p := range want.params {
					got := m.Params[j]
					assert.Equal(t, p.name, got.Name)
					assert.Equal(t, p.vals, got.Floats())
					assert.Equal(t, p.gap, got.Gap)
					assert.Equal(t, p.extra, got.Extra)
				}

				require.Len(t, m.GPUBuffers, len(want.buffers))
				for j, pair := range want.buffers {
					assert.Equal(t, pair[0], m.GPUBuffers[j].Name)
					assert.Equal(t, pair[1], m.GPUBuffers[j].Value)
				}

				require.Len(t, m.TexIDArrays, len(want.texIDs))
				for j, a := range want.texIDs {
					assert.Equal(t, a[0], m.TexIDArrays[j].Counts)
					assert.Equal(t, a[1], m.TexIDArrays[j].Elements)
				}
			}

			out, err := Encode(f, nil)
			require.NoError(t, err)
			assert.Equal(t, data, out, "re-encode is not byte-identical")
		})
	}
}

// pointerTailFromTexHdr is the distance from the texture header offset
// field to the end of a material header.
func pointerTailFromTexHdr(rev int) int {
	n := 8 + 8 + 8 // texture headers, params data, shader path
	if rev >= 19 {
		n += 8
	}
	if rev >= 31 {
		n += 8
	}
	return n
}

func TestFixtureRev31ParamsSize(t *testing.T) {
	data := buildFixture(31, 1, fixtureMaterials(31))
	f, err := Decode(data, 31, nil)
	require.NoError(t, err)
	// 16 + gap 4 + 4 padded to 32; a single float padded to 16
	assert.Equal(t, int32(32), f.Materials[0].ParamsSize)
	assert.Equal(t, int32(16), f.Materials[1].ParamsSize)
	assert.Equal(t, uint8(0x05), f.Materials[0].Flags.Flags3(31))
	assert.Equal(t, int8(-2), f.Materials[0].Flags.PriorityBias(31))
	assert.True(t, f.Materials[0].Flags.ZPostPass(31))
}

func TestFixtureRev6LegacyPadding(t *testing.T) {
	mats := fixtureMaterials(6)
	data := buildFixture(6, 1, mats)
	f, err := Decode(data, 6, nil)
	require.NoError(t, err)
	// 16 + 4 + 4 = 24 is off the 16-byte grid and gets 4 bytes
	assert.Equal(t, int32(28), f.Materials[0].ParamsSize)
	assert.Equal(t, int32(8), f.Materials[1].ParamsSize)
	assert.Equal(t, uint64(0x0102030405060708), f.Materials[0].Legacy)
}

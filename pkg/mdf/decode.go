package mdf

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/reasset/internal/buf"
	"github.com/joshuapare/reasset/pkg/types"
)

// header is a material header as stored, before its offsets are followed.
type header struct {
	nameOff      uint64
	nameHash     uint32
	legacy       uint64
	paramsSize   int32
	paramCount   int32
	texCount     int32
	gpbNameCount int32
	gpbDataCount int32
	shaderType   int32
	bakeSize     uint32
	flagsLow     uint32
	flagsHigh    uint32
	texIDCount   int32
	paramHdrOff  uint64
	texHdrOff    uint64
	gpbOff       uint64
	paramsOff    uint64
	shaderOff    uint64
	texIDOff     uint64
}

// fieldReader reads a run of fixed fields and keeps the first error.
type fieldReader struct {
	c   *buf.Cursor
	err error
}

func (r *fieldReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.ReadU32()
	r.err = err
	return v
}

func (r *fieldReader) i32() int32 { return int32(r.u32()) }

func (r *fieldReader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.ReadU64()
	r.err = err
	return v
}

func (r *fieldReader) f32() float32 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.ReadF32()
	r.err = err
	return v
}

func readHeader(c *buf.Cursor, rev int) (header, error) {
	r := fieldReader{c: c}
	var h header
	h.nameOff = r.u64()
	h.nameHash = r.u32()
	if Has(rev, FieldLegacy) {
		h.legacy = r.u64()
	}
	h.paramsSize = r.i32()
	h.paramCount = r.i32()
	h.texCount = r.i32()
	if Has(rev, FieldGPUBuffers) {
		h.gpbNameCount = r.i32()
		h.gpbDataCount = r.i32()
	}
	h.shaderType = r.i32()
	if Has(rev, FieldExtended) {
		h.bakeSize = r.u32()
	}
	h.flagsLow = r.u32()
	if Has(rev, FieldExtended) {
		h.flagsHigh = r.u32()
		h.texIDCount = r.i32()
	}
	h.paramHdrOff = r.u64()
	h.texHdrOff = r.u64()
	if Has(rev, FieldGPUBuffers) {
		h.gpbOff = r.u64()
	}
	h.paramsOff = r.u64()
	h.shaderOff = r.u64()
	if Has(rev, FieldExtended) {
		h.texIDOff = r.u64()
	}
	return h, r.err
}

// readFileHeader reads the file header and returns the material count,
// leaving c at the first material header.
func readFileHeader(c *buf.Cursor, f *File) (int, error) {
	r := fieldReader{c: c}
	magic := r.u32()
	if r.err != nil {
		return 0, r.err
	}
	if magic != Magic {
		return 0, types.Errorf(types.ErrKindBadMagic, "magic 0x%08x, want 0x%08x", magic, Magic)
	}
	word := r.u32()
	f.Reserved = r.i32()
	if r.err != nil {
		return 0, r.err
	}
	f.HeaderVersion = int16(word)
	count := int16(word >> 16)
	if count < 0 {
		return 0, types.Errorf(types.ErrKindLimitExceeded, "material count %d", count)
	}
	if err := c.Align(headerAlign); err != nil {
		return 0, err
	}
	return int(count), nil
}

// Decode parses a material file at revision rev.
func Decode(data []byte, rev int, opts *Options) (*File, error) {
	o := opts.normalize()
	f, err := decodeFile(buf.NewReader(data), rev, o.Logger)
	if err != nil {
		return nil, fmt.Errorf("mdf: %w", err)
	}
	return f, nil
}

func decodeFile(c *buf.Cursor, rev int, log *slog.Logger) (*File, error) {
	f := &File{Revision: rev}
	count, err := readFileHeader(c, f)
	if err != nil {
		return nil, err
	}
	log.Debug("mdf header", "revision", rev, "version", f.HeaderVersion, "materials", count)

	if _, err := buf.CheckTable(c.Len(), c.Tell(), count, materialHeaderSize(rev)); err != nil {
		return nil, types.Errorf(types.ErrKindTruncated, "material headers: %v", err)
	}
	headers := make([]header, count)
	for i := range headers {
		if headers[i], err = readHeader(c, rev); err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
	}

	f.Materials = make([]*Material, 0, count)
	for i, h := range headers {
		m, err := decodeMaterial(c, rev, h)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		log.Debug("mdf material", "name", m.Name, "textures", len(m.Textures),
			"params", len(m.Params), "gpuBuffers", len(m.GPUBuffers))
		f.Materials = append(f.Materials, m)
	}
	return f, nil
}

// readString follows a string offset. Zero means the empty string.
func readString(c *buf.Cursor, off uint64) (string, error) {
	if off == 0 {
		return "", nil
	}
	var s string
	err := c.JumpU64(off, func() error {
		var err error
		s, err = c.ReadWString()
		return err
	})
	return s, err
}

// table checks that count records of size bytes fit at off.
func table(c *buf.Cursor, what string, off uint64, count int32, size int) error {
	if count < 0 {
		return types.Errorf(types.ErrKindLimitExceeded, "%s count %d", what, count)
	}
	if off == 0 || off > uint64(c.Len()) {
		return types.Errorf(types.ErrKindInvalidOffset,
			"%s offset 0x%x outside buffer (size 0x%x)", what, off, c.Len())
	}
	if _, err := buf.CheckTable(c.Len(), int(off), int(count), size); err != nil {
		return types.Errorf(types.ErrKindTruncated, "%s: %v", what, err)
	}
	return nil
}

func decodeMaterial(c *buf.Cursor, rev int, h header) (*Material, error) {
	m := &Material{
		NameHash:             h.nameHash,
		ShaderType:           ShaderType(h.shaderType),
		Flags:                Flags(h.flagsHigh)<<32 | Flags(h.flagsLow),
		Legacy:               h.legacy,
		BakeTextureArraySize: h.bakeSize,
		ParamsSize:           h.paramsSize,
	}
	var err error
	if m.Name, err = readString(c, h.nameOff); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if m.ShaderPath, err = readString(c, h.shaderOff); err != nil {
		return nil, fmt.Errorf("shader path: %w", err)
	}
	if m.Textures, err = decodeTextures(c, rev, h); err != nil {
		return nil, fmt.Errorf("textures: %w", err)
	}
	if m.Params, err = decodeParams(c, rev, h); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	if Has(rev, FieldGPUBuffers) {
		if m.GPUBuffers, err = decodeGPUBuffers(c, h); err != nil {
			return nil, fmt.Errorf("gpu buffers: %w", err)
		}
	}
	if Has(rev, FieldExtended) {
		if m.TexIDArrays, err = decodeTexIDArrays(c, h); err != nil {
			return nil, fmt.Errorf("tex-id arrays: %w", err)
		}
	}
	return m, nil
}

func decodeTextures(c *buf.Cursor, rev int, h header) ([]Texture, error) {
	if h.texCount == 0 {
		return nil, nil
	}
	if err := table(c, "texture", h.texHdrOff, h.texCount, textureSize(rev)); err != nil {
		return nil, err
	}
	out := make([]Texture, h.texCount)
	err := c.JumpU64(h.texHdrOff, func() error {
		for i := range out {
			t := &out[i]
			r := fieldReader{c: c}
			typeOff := r.u64()
			t.Hash = r.u32()
			t.ASCIIHash = r.u32()
			pathOff := r.u64()
			if Has(rev, FieldTextureReserved) {
				t.Reserved = r.u64()
			}
			if r.err != nil {
				return r.err
			}
			var err error
			if t.Type, err = readString(c, typeOff); err != nil {
				return fmt.Errorf("texture %d type: %w", i, err)
			}
			if t.Path, err = readString(c, pathOff); err != nil {
				return fmt.Errorf("texture %d path: %w", i, err)
			}
		}
		return nil
	})
	return out, err
}

// paramHeader reads the offset and count fields of a parameter header in
// the layout of rev.
func paramHeader(r *fieldReader, rev int) (rel int32, count int32, extra uint16) {
	switch {
	case Has(rev, FieldParamLayout31):
		rel = r.i32()
		word := r.u32()
		return rel, int32(word & 0xFFFF), uint16(word >> 16)
	case Has(rev, FieldParamLayout13):
		rel = r.i32()
		count = r.i32()
		return rel, count, 0
	default:
		count = r.i32()
		rel = r.i32()
		return rel, count, 0
	}
}

func decodeParams(c *buf.Cursor, rev int, h header) ([]Param, error) {
	if h.paramCount == 0 {
		return nil, nil
	}
	if err := table(c, "parameter", h.paramHdrOff, h.paramCount, paramRecordSize); err != nil {
		return nil, err
	}
	out := make([]Param, h.paramCount)
	var prevAbs, prevCount int64
	err := c.JumpU64(h.paramHdrOff, func() error {
		for i := range out {
			p := &out[i]
			r := fieldReader{c: c}
			nameOff := r.u64()
			p.Hash = r.u32()
			p.ASCIIHash = r.u32()
			rel, count, extra := paramHeader(&r, rev)
			if r.err != nil {
				return r.err
			}
			if count < 0 || count > 4 {
				return types.Errorf(types.ErrKindUnsupportedType,
					"parameter %d has %d components", i, count)
			}
			p.Components, p.Extra = int(count), extra

			var err error
			if p.Name, err = readString(c, nameOff); err != nil {
				return fmt.Errorf("parameter %d name: %w", i, err)
			}

			abs := int64(h.paramsOff) + int64(rel)
			if i == 0 {
				p.Gap = int(rel)
			} else {
				p.Gap = int(abs - (prevAbs + prevCount*4))
			}
			prevAbs, prevCount = abs, int64(count)

			if count == 0 {
				continue
			}
			if abs < 0 {
				return types.Errorf(types.ErrKindInvalidOffset, "parameter %d value at %d", i, abs)
			}
			if err := c.JumpU64(uint64(abs), func() error {
				vr := fieldReader{c: c}
				for j := range p.Components {
					p.Values[j] = vr.f32()
				}
				return vr.err
			}); err != nil {
				return fmt.Errorf("parameter %d (%s) value: %w", i, p.Name, err)
			}
		}
		return nil
	})
	return out, err
}

func decodeGPUBuffers(c *buf.Cursor, h header) ([]GPUBuffer, error) {
	if h.gpbNameCount == 0 {
		return nil, nil
	}
	if h.gpbNameCount != h.gpbDataCount {
		return nil, types.Errorf(types.ErrKindInvalidOffset,
			"%d names for %d values", h.gpbNameCount, h.gpbDataCount)
	}
	if err := table(c, "gpu buffer", h.gpbOff, h.gpbNameCount, gpuBufferRecordSize); err != nil {
		return nil, err
	}
	out := make([]GPUBuffer, h.gpbNameCount)
	err := c.JumpU64(h.gpbOff, func() error {
		for i := range out {
			g := &out[i]
			r := fieldReader{c: c}
			nameOff := r.u64()
			g.NameHash = r.u32()
			g.NameASCIIHash = r.u32()
			valueOff := r.u64()
			r.u32()
			r.u32()
			if r.err != nil {
				return r.err
			}
			var err error
			if g.Name, err = readString(c, nameOff); err != nil {
				return fmt.Errorf("buffer %d name: %w", i, err)
			}
			if g.Value, err = readString(c, valueOff); err != nil {
				return fmt.Errorf("buffer %d value: %w", i, err)
			}
		}
		return nil
	})
	return out, err
}

func decodeTexIDArrays(c *buf.Cursor, h header) ([]TexIDArray, error) {
	if h.texIDCount == 0 || h.texIDOff == 0 {
		return nil, nil
	}
	if err := table(c, "tex-id", h.texIDOff, h.texIDCount, 16); err != nil {
		return nil, err
	}
	out := make([]TexIDArray, h.texIDCount)
	err := c.JumpU64(h.texIDOff, func() error {
		for i := range out {
			r := fieldReader{c: c}
			countsOff := r.u64()
			elemsOff := r.u64()
			if r.err != nil {
				return r.err
			}
			var err error
			if out[i].Counts, err = readI32Array(c, countsOff); err != nil {
				return fmt.Errorf("array %d counts: %w", i, err)
			}
			if out[i].Elements, err = readI32Array(c, elemsOff); err != nil {
				return fmt.Errorf("array %d elements: %w", i, err)
			}
		}
		return nil
	})
	return out, err
}

// readI32Array reads an i32 count followed by that many i32 values. A zero
// offset is an empty array.
func readI32Array(c *buf.Cursor, off uint64) ([]int32, error) {
	var out []int32
	if off == 0 {
		return nil, nil
	}
	err := c.JumpU64(off, func() error {
		n, err := c.ReadI32()
		if err != nil {
			return err
		}
		if n < 0 {
			return types.Errorf(types.ErrKindLimitExceeded, "array length %d", n)
		}
		if _, err := buf.CheckTable(c.Len(), c.Tell(), int(n), 4); err != nil {
			return types.Errorf(types.ErrKindTruncated, "array of %d: %v", n, err)
		}
		out = make([]int32, n)
		for i := range out {
			if out[i], err = c.ReadI32(); err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

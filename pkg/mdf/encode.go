package mdf

import (
	"fmt"
	"strings"

	"github.com/joshuapare/reasset/internal/buf"
	"github.com/joshuapare/reasset/internal/deferred"
	"github.com/joshuapare/reasset/pkg/types"
)

// slots records where the patchable fields of one material header were
// written.
type slots struct {
	paramsSize int
	paramHdr   int
	texHdr     int
	gpb        int
	paramsData int
	texIDs     int
	paramRel   []int
}

// Encode serializes f at f.Revision. Hashes, counts and the params size
// are recomputed from the material lists.
func Encode(f *File, opts *Options) ([]byte, error) {
	o := opts.normalize()
	if len(f.Materials) > 0x7FFF {
		return nil, types.Errorf(types.ErrKindLimitExceeded, "mdf: %d materials", len(f.Materials))
	}
	w := buf.NewWriter(o.Limits.MaxBufferSize)
	if err := encodeFile(w, f); err != nil {
		return nil, fmt.Errorf("mdf: %w", err)
	}
	o.Logger.Debug("mdf encoded", "revision", f.Revision, "materials", len(f.Materials), "size", w.Len())
	return w.Bytes(), nil
}

func encodeFile(w *buf.Cursor, f *File) error {
	rev := f.Revision
	for _, m := range f.Materials {
		if err := checkMaterial(m, rev); err != nil {
			return fmt.Errorf("material %q: %w", m.Name, err)
		}
		m.RecomputeHashes()
	}

	w.WriteU32(Magic)
	w.WriteI16(f.HeaderVersion)
	w.WriteI16(int16(len(f.Materials)))
	w.WriteI32(f.Reserved)
	_ = w.Align(headerAlign)

	strs := deferred.New(true)
	all := make([]*slots, len(f.Materials))
	for i, m := range f.Materials {
		all[i] = writeHeader(w, strs, m, rev)
	}

	for i, m := range f.Materials {
		w.PatchHere(all[i].texHdr)
		for _, t := range m.Textures {
			writeTexture(w, strs, t, rev)
		}
	}
	for i, m := range f.Materials {
		s := all[i]
		w.PatchHere(s.paramHdr)
		s.paramRel = make([]int, len(m.Params))
		for j, p := range m.Params {
			s.paramRel[j] = writeParamHeader(w, strs, p, rev)
		}
	}
	if Has(rev, FieldGPUBuffers) {
		for i, m := range f.Materials {
			w.PatchHere(all[i].gpb)
			for _, g := range m.GPUBuffers {
				strs.AddString(w, g.Name)
				w.WriteU32(g.NameHash)
				w.WriteU32(g.NameASCIIHash)
				strs.AddString(w, g.Value)
				w.WriteU32(0)
				w.WriteU32(1)
			}
		}
	}
	if err := strs.Flush(w); err != nil {
		return fmt.Errorf("strings: %w", err)
	}

	for i, m := range f.Materials {
		m.ParamsSize = writeParamValues(w, m, all[i], rev)
	}

	if Has(rev, FieldExtended) {
		tables := deferred.New(false)
		for i, m := range f.Materials {
			if len(m.TexIDArrays) > 0 {
				w.PatchHere(all[i].texIDs)
				writeTexIDTable(w, tables, m.TexIDArrays)
			}
		}
	}
	return w.Err()
}

func checkMaterial(m *Material, rev int) error {
	if Has(rev, FieldParamLayout31) && len(m.Params) > 0xFFFF {
		return types.Errorf(types.ErrKindLimitExceeded, "%d parameters", len(m.Params))
	}
	for _, p := range m.Params {
		if p.Components < 0 || p.Components > 4 {
			return types.Errorf(types.ErrKindUnsupportedType,
				"parameter %q has %d components", p.Name, p.Components)
		}
	}
	return nil
}

func writeHeader(w *buf.Cursor, strs *deferred.Table, m *Material, rev int) *slots {
	s := &slots{}
	strs.AddString(w, m.Name)
	w.WriteU32(m.NameHash)
	if Has(rev, FieldLegacy) {
		w.WriteU64(m.Legacy)
	}
	s.paramsSize = w.Tell()
	w.WriteI32(0)
	w.WriteI32(int32(len(m.Params)))
	w.WriteI32(int32(len(m.Textures)))
	if Has(rev, FieldGPUBuffers) {
		w.WriteI32(int32(len(m.GPUBuffers)))
		w.WriteI32(int32(len(m.GPUBuffers)))
	}
	w.WriteI32(int32(m.ShaderType))
	if Has(rev, FieldExtended) {
		w.WriteU32(m.BakeTextureArraySize)
	}
	flags := m.Flags.Stored(rev)
	w.WriteU32(uint32(flags))
	if Has(rev, FieldExtended) {
		w.WriteU32(uint32(flags >> 32))
		w.WriteI32(int32(len(m.TexIDArrays)))
	}
	s.paramHdr = w.ReserveU64()
	s.texHdr = w.ReserveU64()
	if Has(rev, FieldGPUBuffers) {
		s.gpb = w.ReserveU64()
	}
	s.paramsData = w.ReserveU64()
	strs.AddString(w, m.ShaderPath)
	if Has(rev, FieldExtended) {
		s.texIDs = w.ReserveU64()
	}
	return s
}

func writeTexture(w *buf.Cursor, strs *deferred.Table, t Texture, rev int) {
	if t.Type == "" {
		w.WriteU64(0)
		w.WriteU32(0)
		w.WriteU32(0)
	} else {
		strs.AddString(w, t.Type)
		w.WriteU32(t.Hash)
		w.WriteU32(t.ASCIIHash)
	}
	if t.Path == "" {
		w.WriteU64(0)
	} else {
		strs.AddString(w, t.Path)
	}
	if Has(rev, FieldTextureReserved) {
		w.WriteU64(t.Reserved)
	}
}

// writeParamHeader writes one parameter header and returns the position of
// its value offset field.
func writeParamHeader(w *buf.Cursor, strs *deferred.Table, p Param, rev int) int {
	strs.AddString(w, p.Name)
	w.WriteU32(p.Hash)
	w.WriteU32(p.ASCIIHash)
	var rel int
	switch {
	case Has(rev, FieldParamLayout31):
		rel = w.Tell()
		w.WriteI32(0)
		w.WriteU32(uint32(p.Components)&0xFFFF | uint32(p.Extra)<<16)
	case Has(rev, FieldParamLayout13):
		rel = w.Tell()
		w.WriteI32(0)
		w.WriteI32(int32(p.Components))
	default:
		w.WriteI32(int32(p.Components))
		rel = w.Tell()
		w.WriteI32(0)
	}
	return rel
}

// layerColorChannel returns 0, 1 or 2 for layercolor_* red, green and blue
// parameters.
func layerColorChannel(name string) (int, bool) {
	name = strings.ToLower(name)
	if !strings.HasPrefix(name, "layercolor_") {
		return 0, false
	}
	for i, c := range []string{"red", "green", "blue"} {
		if strings.Contains(name, c) {
			return i, true
		}
	}
	return 0, false
}

// writeParamValues writes the value block of one material and returns its
// size. A recorded gap is written as zeros. Without one, skipped layer
// color channels are backfilled so the channels stay contiguous.
func writeParamValues(w *buf.Cursor, m *Material, s *slots, rev int) int32 {
	w.PatchHere(s.paramsData)
	start := w.Tell()
	size := 0
	prev := -1
	for i, p := range m.Params {
		if p.Gap > 0 {
			w.WriteZeros(p.Gap)
			size += p.Gap
			prev = -1
		} else {
			ch, ok := layerColorChannel(p.Name)
			if ok && prev >= 0 && ch > prev+1 {
				pad := (ch - prev - 1) * 4
				w.WriteZeros(pad)
				size += pad
			}
			prev = -1
			if ok {
				prev = ch
			}
		}

		w.PatchI32At(s.paramRel[i], int32(w.Tell()-start))
		for _, v := range p.Floats() {
			w.WriteF32(v)
		}
		size += p.Components * 4
	}

	var pad int
	if Has(rev, FieldLegacy) {
		if size%paramsAlign != 0 {
			pad = legacyParamsEndAlign
		}
	} else {
		pad = buf.Padding(size, paramsAlign)
	}
	w.WriteZeros(pad)
	size += pad
	w.PatchI32At(s.paramsSize, int32(size))
	return int32(size)
}

// writeTexIDTable writes the (counts, elements) offset table followed by
// every array it points at.
func writeTexIDTable(w *buf.Cursor, tables *deferred.Table, arrays []TexIDArray) {
	for _, a := range arrays {
		tables.AddFunc(w.ReserveU64(), func(c *buf.Cursor) { writeI32Array(c, a.Counts) })
		tables.AddFunc(w.ReserveU64(), func(c *buf.Cursor) { writeI32Array(c, a.Elements) })
	}
	_ = tables.Flush(w)
}

func writeI32Array(w *buf.Cursor, vals []int32) {
	w.WriteI32(int32(len(vals)))
	for _, v := range vals {
		w.WriteI32(v)
	}
}

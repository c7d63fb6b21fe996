package uvar

import (
	"fmt"

	"github.com/joshuapare/reasset/internal/buf"
	"github.com/joshuapare/reasset/internal/deferred"
	"github.com/joshuapare/reasset/pkg/types"
)

// Header field offsets.
const (
	hdrStrings = 0x08
	hdrData    = 0x10
	hdrEmbeds  = 0x18
	hdrIndex   = 0x20
)

// Encode serializes c and its embeds. Name hashes and the hash index of
// every container in the tree are recomputed in place first.
func Encode(c *Container, opts *Options) ([]byte, error) {
	o := opts.normalize()
	c.RecomputeHashes()
	_ = c.Walk(func(ct *Container, _ int) error {
		ct.RebuildIndex()
		return nil
	})

	w := buf.NewWriter(o.Limits.MaxBufferSize)
	if err := encodeContainer(w, c, o, 0); err != nil {
		return nil, fmt.Errorf("uvar: %w", err)
	}
	return w.Bytes(), nil
}

func encodeContainer(w *buf.Cursor, ct *Container, o *Options, depth int) error {
	if n := len(ct.Variables); n > o.Limits.MaxVariables || n > types.AbsoluteMaxVariables {
		return types.Errorf(types.ErrKindLimitExceeded, "variable count %d exceeds maximum %d", n, o.Limits.MaxVariables)
	}
	if n := len(ct.Embeds); n > types.AbsoluteMaxVariables {
		return types.Errorf(types.ErrKindLimitExceeded, "embed count %d", n)
	}
	if len(ct.Embeds) > 0 && depth >= o.Limits.MaxEmbedDepth {
		return types.Errorf(types.ErrKindLimitExceeded, "embeds nested deeper than %d", o.Limits.MaxEmbedDepth)
	}

	strs := deferred.New(false)

	// header
	w.WriteU32(ct.Revision)
	w.WriteU32(Magic)
	strs.AddString(w, ct.Name) // hdrStrings
	w.WriteU64(0)              // hdrData
	w.WriteU64(0)              // hdrEmbeds
	w.WriteU64(0)              // hdrIndex
	if ct.Revision < 3 {
		w.WriteU64(ct.Legacy)
	}
	w.WriteU32(ct.NameHash)
	w.WriteI16(int16(len(ct.Variables)))
	w.WriteI16(int16(len(ct.Embeds)))
	_ = w.Align(16)

	// records, then values
	records := make([]int, len(ct.Variables))
	if len(ct.Variables) > 0 {
		w.PatchHere(hdrData)
		for i, v := range ct.Variables {
			records[i] = w.Tell()
			v.writeRecord(w, strs)
		}
		for i, v := range ct.Variables {
			if err := writeValue(w, v, records[i]); err != nil {
				return fmt.Errorf("variable %q: %w", v.Name, err)
			}
		}
		_ = w.Align(16)
		for i, v := range ct.Variables {
			if v.Expression == nil {
				continue
			}
			w.PatchU64At(records[i]+recExpression, uint64(w.Tell()))
			if err := encodeExpression(w, v.Expression); err != nil {
				return fmt.Errorf("variable %q expression: %w", v.Name, err)
			}
		}
	}

	// display name, then variable names
	if err := strs.Flush(w); err != nil {
		return err
	}

	if len(ct.Embeds) > 0 {
		_ = w.Align(16)
		w.PatchHere(hdrEmbeds)
		table := w.Tell()
		w.WriteZeros(8 * len(ct.Embeds))
		for i, e := range ct.Embeds {
			_ = w.Align(16)
			w.PatchU64At(table+8*i, uint64(w.Tell()))
			sub := buf.NewWriter(o.Limits.MaxBufferSize)
			if err := encodeContainer(sub, e, o, depth+1); err != nil {
				return fmt.Errorf("embed %d: %w", i, err)
			}
			w.WriteBytes(sub.Bytes())
		}
	}

	_ = w.Align(16)
	w.PatchHere(hdrIndex)
	writeIndex(w, &ct.Index)

	if err := w.Err(); err != nil {
		return err
	}
	o.Logger.Debug("uvar encoded", "container", ct.Name, "depth", depth, "bytes", w.Len())
	return nil
}

// writeValue places the value of v at the cursor and patches its record.
func writeValue(w *buf.Cursor, v *Variable, record int) error {
	switch v.Kind {
	case KindUnknown:
		return nil
	case KindTrigger:
		w.PatchU64At(record+recValue, uint64(w.Tell()))
		return nil
	}
	cd, err := lookupCodec(v.Kind, v.IsVector())
	if err != nil {
		return err
	}
	w.PatchU64At(record+recValue, uint64(w.Tell()))
	cd.encode(w, &v.Value)
	return w.Align(4)
}

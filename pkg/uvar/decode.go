package uvar

import (
	"fmt"

	"github.com/joshuapare/reasset/internal/buf"
	"github.com/joshuapare/reasset/pkg/types"
)

// Decode parses a variable container and all of its embeds.
func Decode(data []byte, opts *Options) (*Container, error) {
	o := opts.normalize()
	c, err := decodeContainer(buf.NewReader(data), o, 0)
	if err != nil {
		return nil, fmt.Errorf("uvar: %w", err)
	}
	return c, nil
}

func decodeContainer(c *buf.Cursor, o *Options, depth int) (*Container, error) {
	ct := &Container{}
	var err error
	if ct.Revision, err = c.ReadU32(); err != nil {
		return nil, err
	}
	magic, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, types.Errorf(types.ErrKindBadMagic, "magic 0x%08x, want 0x%08x", magic, Magic)
	}
	for _, dst := range []*uint64{&ct.StringsOffset, &ct.DataOffset, &ct.EmbedsOffset, &ct.IndexOffset} {
		if *dst, err = c.ReadU64(); err != nil {
			return nil, err
		}
	}
	if ct.Revision < 3 {
		if ct.Legacy, err = c.ReadU64(); err != nil {
			return nil, err
		}
	}
	if ct.NameHash, err = c.ReadU32(); err != nil {
		return nil, err
	}
	varCount, err := c.ReadI16()
	if err != nil {
		return nil, err
	}
	embedCount, err := c.ReadI16()
	if err != nil {
		return nil, err
	}

	if ct.StringsOffset != 0 {
		if err := c.JumpU64(ct.StringsOffset, func() error {
			ct.Name, err = c.ReadWString()
			return err
		}); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
	}

	log := o.Logger.With("container", ct.Name, "depth", depth)
	log.Debug("uvar header", "revision", ct.Revision, "variables", varCount, "embeds", embedCount)

	if varCount < 0 || int(varCount) > o.Limits.MaxVariables {
		return nil, types.Errorf(types.ErrKindLimitExceeded,
			"variable count %d exceeds maximum %d", varCount, o.Limits.MaxVariables)
	}
	if embedCount < 0 {
		return nil, types.Errorf(types.ErrKindLimitExceeded, "embed count %d", embedCount)
	}

	if varCount > 0 {
		if ct.DataOffset == 0 || !c.InBounds(ct.DataOffset) {
			return nil, types.Errorf(types.ErrKindInvalidOffset,
				"data offset 0x%x outside buffer (size 0x%x)", ct.DataOffset, c.Len())
		}
		if _, err := buf.CheckTable(c.Len(), int(ct.DataOffset), int(varCount), RecordSize); err != nil {
			return nil, &types.Error{Kind: types.ErrKindTruncated, Msg: "variable records", Err: err}
		}
		if err := c.Seek(int(ct.DataOffset)); err != nil {
			return nil, err
		}
		ct.Variables = make([]*Variable, 0, varCount)
		for i := range int(varCount) {
			v, err := decodeVariable(c)
			if err != nil {
				return nil, fmt.Errorf("variable %d: %w", i, err)
			}
			ct.Variables = append(ct.Variables, v)
		}
	}

	if embedCount > 0 {
		if depth >= o.Limits.MaxEmbedDepth {
			return nil, types.Errorf(types.ErrKindLimitExceeded, "embeds nested deeper than %d", o.Limits.MaxEmbedDepth)
		}
		if ct.EmbedsOffset == 0 {
			return nil, types.Errorf(types.ErrKindInvalidOffset, "%d embeds with a zero table offset", embedCount)
		}
		err := c.JumpU64(ct.EmbedsOffset, func() error {
			for i := range int(embedCount) {
				off, err := c.ReadU64()
				if err != nil {
					return err
				}
				if off == 0 || !c.InBounds(off) {
					return types.Errorf(types.ErrKindInvalidOffset,
						"embed %d at 0x%x outside buffer (size 0x%x)", i, off, c.Len())
				}
				sub, err := c.Sub(int(off))
				if err != nil {
					return err
				}
				e, err := decodeContainer(sub, o, depth+1)
				if err != nil {
					return fmt.Errorf("embed %d: %w", i, err)
				}
				ct.Embeds = append(ct.Embeds, e)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if varCount > 0 && ct.IndexOffset != 0 {
		if err := c.JumpU64(ct.IndexOffset, func() error {
			ct.Index, err = decodeIndex(c, int(varCount))
			return err
		}); err != nil {
			return nil, fmt.Errorf("hash index: %w", err)
		}
	}

	log.Debug("uvar decoded", "variables", len(ct.Variables), "embeds", len(ct.Embeds))
	return ct, nil
}

// Package deferred implements the second pass of the two-phase writers:
// records reserve 64-bit offset fields while they are written, and the
// payloads those fields point at are appended later in one flush.
//
//	strs := deferred.New(true)
//	strs.AddString(c, mat.Name)      // reserves a u64 at c.Tell()
//	...
//	if err := strs.Flush(c); err != nil { // writes the pool, patches every field
//	    return err
//	}
package deferred

import (
	"github.com/joshuapare/reasset/internal/buf"
)

// Table collects pending (reservation, payload) pairs.
type Table struct {
	dedup   bool
	align   int
	entries []entry
}

type entry struct {
	at      int
	payload []byte
	write   func(c *buf.Cursor)
}

// New returns an empty table. With dedup set, byte-identical payloads are
// written once and every reservation pointing at them receives the offset
// of the first copy.
func New(dedup bool) *Table {
	return &Table{dedup: dedup}
}

// WithAlign makes Flush align the cursor to n before each payload.
func (t *Table) WithAlign(n int) *Table {
	t.align = n
	return t
}

// Len returns the number of pending reservations.
func (t *Table) Len() int { return len(t.entries) }

// Add records that the u64 field at offset at must receive the position of
// payload once it is flushed.
func (t *Table) Add(at int, payload []byte) {
	t.entries = append(t.entries, entry{at: at, payload: payload})
}

// AddFunc records a payload produced by fn at flush time. Function payloads
// are never de-duplicated.
func (t *Table) AddFunc(at int, fn func(c *buf.Cursor)) {
	t.entries = append(t.entries, entry{at: at, write: fn})
}

// AddString reserves a u64 at the cursor position and queues s as a
// NUL-terminated UTF-16LE payload for it.
func (t *Table) AddString(c *buf.Cursor, s string) {
	at := c.ReserveU64()
	b, err := buf.EncodeUTF16(s)
	if err != nil {
		t.AddFunc(at, func(c *buf.Cursor) { c.WriteWString(s) })
		return
	}
	t.Add(at, b)
}

// Flush writes every payload in insertion order, patches each reservation
// with the payload's offset and empties the table. The error is the
// cursor's sticky write error.
func (t *Table) Flush(c *buf.Cursor) error {
	var seen map[string]int
	if t.dedup {
		seen = make(map[string]int, len(t.entries))
	}

	for _, e := range t.entries {
		if e.write == nil && t.dedup {
			if off, ok := seen[string(e.payload)]; ok {
				c.PatchU64At(e.at, uint64(off))
				continue
			}
		}

		if t.align > 1 {
			_ = c.Align(t.align)
		}
		off := c.Tell()
		if e.write != nil {
			e.write(c)
		} else {
			c.WriteBytes(e.payload)
			if t.dedup {
				seen[string(e.payload)] = off
			}
		}
		c.PatchU64At(e.at, uint64(off))
	}

	t.entries = t.entries[:0]
	return c.Err()
}

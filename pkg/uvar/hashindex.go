package uvar

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/joshuapare/reasset/internal/buf"
)

// HashIndex holds two permutations of a container's variables: one ordered
// by GUID and one ordered by name hash. Each map entry is the position of
// the variable in Container.Variables.
type HashIndex struct {
	GUIDs   []uuid.UUID
	GUIDMap []uint32
	Hashes  []uint32
	HashMap []uint32
}

// Len returns the number of indexed variables.
func (h *HashIndex) Len() int { return len(h.HashMap) }

// guidKey returns the bytes GUIDs are ordered by: the first three fields
// byte-swapped, as a Windows GUID prints.
func guidKey(g uuid.UUID) [16]byte {
	var k [16]byte
	k[0], k[1], k[2], k[3] = g[3], g[2], g[1], g[0]
	k[4], k[5] = g[5], g[4]
	k[6], k[7] = g[7], g[6]
	copy(k[8:], g[8:])
	return k
}

func compareGUID(a, b uuid.UUID) int {
	ka, kb := guidKey(a), guidKey(b)
	return bytes.Compare(ka[:], kb[:])
}

func buildIndex(vars []*Variable) HashIndex {
	n := len(vars)
	order := func(cmpFn func(a, b *Variable) int) []uint32 {
		idx := make([]uint32, n)
		for i := range idx {
			idx[i] = uint32(i)
		}
		slices.SortStableFunc(idx, func(a, b uint32) int { return cmpFn(vars[a], vars[b]) })
		return idx
	}

	h := HashIndex{
		HashMap: order(func(a, b *Variable) int { return cmp.Compare(a.NameHash, b.NameHash) }),
		GUIDMap: order(func(a, b *Variable) int { return compareGUID(a.GUID, b.GUID) }),
		Hashes:  make([]uint32, n),
		GUIDs:   make([]uuid.UUID, n),
	}
	for i, vi := range h.HashMap {
		h.Hashes[i] = vars[vi].NameHash
	}
	for i, vi := range h.GUIDMap {
		h.GUIDs[i] = vars[vi].GUID
	}
	return h
}

// lookupHash returns the variable indices whose name hash is hash.
func (h *HashIndex) lookupHash(hash uint32) []uint32 {
	lo, _ := slices.BinarySearch(h.Hashes, hash)
	hi := lo
	for hi < len(h.Hashes) && h.Hashes[hi] == hash {
		hi++
	}
	return h.HashMap[lo:hi]
}

func (h *HashIndex) lookupGUID(g uuid.UUID) (uint32, bool) {
	i, ok := slices.BinarySearchFunc(h.GUIDs, g, compareGUID)
	if !ok {
		return 0, false
	}
	return h.GUIDMap[i], true
}

func decodeIndex(c *buf.Cursor, n int) (HashIndex, error) {
	var offs [4]uint64
	for i := range offs {
		v, err := c.ReadU64()
		if err != nil {
			return HashIndex{}, err
		}
		offs[i] = v
	}

	var h HashIndex
	read := func(off uint64, fn func() error) error {
		if off == 0 {
			return nil
		}
		return c.JumpU64(off, func() error {
			for range n {
				if err := fn(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	u32s := func(dst *[]uint32) func() error {
		return func() error {
			v, err := c.ReadU32()
			*dst = append(*dst, v)
			return err
		}
	}

	if err := read(offs[0], func() error {
		g, err := c.ReadGUID()
		h.GUIDs = append(h.GUIDs, g)
		return err
	}); err != nil {
		return HashIndex{}, err
	}
	if err := read(offs[1], u32s(&h.GUIDMap)); err != nil {
		return HashIndex{}, err
	}
	if err := read(offs[2], u32s(&h.Hashes)); err != nil {
		return HashIndex{}, err
	}
	if err := read(offs[3], u32s(&h.HashMap)); err != nil {
		return HashIndex{}, err
	}
	return h, nil
}

// writeIndex writes the four array offsets followed by the arrays.
func writeIndex(c *buf.Cursor, h *HashIndex) {
	n := len(h.HashMap)
	guids := c.Tell() + 32
	guidMap := guids + 16*n
	hashes := guidMap + 4*n
	hashMap := hashes + 4*n

	c.WriteU64(uint64(guids))
	c.WriteU64(uint64(guidMap))
	c.WriteU64(uint64(hashes))
	c.WriteU64(uint64(hashMap))
	for _, g := range h.GUIDs {
		c.WriteGUID(g)
	}
	for _, v := range h.GUIDMap {
		c.WriteU32(v)
	}
	for _, v := range h.Hashes {
		c.WriteU32(v)
	}
	for _, v := range h.HashMap {
		c.WriteU32(v)
	}
}

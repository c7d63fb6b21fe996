package uvar

import (
	"slices"

	"github.com/google/uuid"

	"github.com/joshuapare/reasset/pkg/strhash"
)

// Container is a decoded variable container.
type Container struct {
	Revision  uint32
	Name      string
	Variables []*Variable
	Embeds    []*Container
	Index     HashIndex

	// Values read from the header. Encode recomputes all of them except
	// Legacy, which is written back as-is for revisions below 3.
	StringsOffset uint64
	DataOffset    uint64
	EmbedsOffset  uint64
	IndexOffset   uint64
	Legacy        uint64
	NameHash      uint32
}

// New returns an empty container at DefaultRevision.
func New(name string) *Container {
	return &Container{Revision: DefaultRevision, Name: name, NameHash: strhash.UTF16(name)}
}

// AddVariable appends a variable with a random GUID and the zero value of
// its kind, and rebuilds the index.
func (c *Container) AddVariable(name string, kind Kind, flags uint8) *Variable {
	v := &Variable{
		GUID:     uuid.New(),
		Name:     name,
		NameHash: strhash.UTF16(name),
		Kind:     kind,
		Flags:    flags,
	}
	v.ResetValue()
	c.Variables = append(c.Variables, v)
	c.RebuildIndex()
	return v
}

// RemoveVariable deletes the variable at index i and rebuilds the index,
// since every position after i shifts.
func (c *Container) RemoveVariable(i int) bool {
	if i < 0 || i >= len(c.Variables) {
		return false
	}
	c.Variables = slices.Delete(c.Variables, i, i+1)
	c.RebuildIndex()
	return true
}

// FindByName returns the first variable called name.
func (c *Container) FindByName(name string) (*Variable, int) {
	for i, v := range c.Variables {
		if v.Name == name {
			return v, i
		}
	}
	return nil, -1
}

// FindByGUID returns the variable with the given GUID, using the index when
// it is current.
func (c *Container) FindByGUID(g uuid.UUID) (*Variable, int) {
	if c.indexCurrent() {
		if i, ok := c.Index.lookupGUID(g); ok && c.Variables[i].GUID == g {
			return c.Variables[i], int(i)
		}
	}
	for i, v := range c.Variables {
		if v.GUID == g {
			return v, i
		}
	}
	return nil, -1
}

// FindByHash returns the first variable, in container order, whose name
// hash is hash.
func (c *Container) FindByHash(hash uint32) (*Variable, int) {
	if c.indexCurrent() {
		if hits := c.Index.lookupHash(hash); len(hits) > 0 {
			i := slices.Min(hits)
			if c.Variables[i].NameHash == hash {
				return c.Variables[i], int(i)
			}
		}
	}
	for i, v := range c.Variables {
		if v.NameHash == hash {
			return v, i
		}
	}
	return nil, -1
}

func (c *Container) indexCurrent() bool {
	n := len(c.Variables)
	if c.Index.Len() != n || len(c.Index.Hashes) != n || len(c.Index.GUIDs) != n || len(c.Index.GUIDMap) != n {
		return false
	}
	for _, i := range c.Index.HashMap {
		if int(i) >= n {
			return false
		}
	}
	for _, i := range c.Index.GUIDMap {
		if int(i) >= n {
			return false
		}
	}
	return true
}

// RecomputeHashes refreshes the name hash of this container, its variables
// and every embedded container.
func (c *Container) RecomputeHashes() {
	_ = c.Walk(func(ct *Container, _ int) error {
		ct.NameHash = strhash.UTF16(ct.Name)
		for _, v := range ct.Variables {
			recomputeHash(v)
		}
		return nil
	})
}

// RebuildIndex regenerates the hash index from the current variables.
func (c *Container) RebuildIndex() {
	c.Index = buildIndex(c.Variables)
}

// Walk calls fn for c and then each embedded container, depth first.
// Returning an error stops the walk.
func (c *Container) Walk(fn func(c *Container, depth int) error) error {
	return c.walk(fn, 0)
}

func (c *Container) walk(fn func(*Container, int) error, depth int) error {
	if err := fn(c, depth); err != nil {
		return err
	}
	for _, e := range c.Embeds {
		if err := e.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

package mdf

import (
	"fmt"

	"github.com/joshuapare/reasset/pkg/strhash"
)

// Magic is the "MDF\0" file signature.
const Magic uint32 = 0x0046444D

// File is a decoded material file.
type File struct {
	// Revision selects the layout. It is not stored in the file.
	Revision int `json:"revision" yaml:"revision"`

	HeaderVersion int16       `json:"headerVersion" yaml:"headerVersion"`
	Reserved      int32       `json:"reserved,omitempty" yaml:"reserved,omitempty"`
	Materials     []*Material `json:"materials" yaml:"materials"`
}

// Material is one material header and everything it points at.
type Material struct {
	Name       string     `json:"name" yaml:"name"`
	NameHash   uint32     `json:"nameHash" yaml:"nameHash"`
	ShaderPath string     `json:"shaderPath" yaml:"shaderPath"`
	ShaderType ShaderType `json:"shaderType" yaml:"shaderType"`
	Flags      Flags      `json:"flags" yaml:"flags"`

	// Legacy is the revision 6 extra header field.
	Legacy uint64 `json:"legacy,omitempty" yaml:"legacy,omitempty"`
	// BakeTextureArraySize exists from revision 31 on.
	BakeTextureArraySize uint32 `json:"bakeTextureArraySize,omitempty" yaml:"bakeTextureArraySize,omitempty"`

	Textures    []Texture    `json:"textures" yaml:"textures"`
	Params      []Param      `json:"params" yaml:"params"`
	GPUBuffers  []GPUBuffer  `json:"gpuBuffers,omitempty" yaml:"gpuBuffers,omitempty"`
	// TexIDArrays is the revision 31 shaderLOD redirect table.
	TexIDArrays []TexIDArray `json:"texIDArrays,omitempty" yaml:"texIDArrays,omitempty"`

	// ParamsSize is the stored size of the parameter value block. Encode
	// recomputes it.
	ParamsSize int32 `json:"paramsSize" yaml:"paramsSize"`
}

// Texture binds a texture slot to a resource path.
type Texture struct {
	Type      string `json:"type" yaml:"type"`
	Path      string `json:"path" yaml:"path"`
	Hash      uint32 `json:"hash" yaml:"hash"`
	ASCIIHash uint32 `json:"asciiHash" yaml:"asciiHash"`
	// Reserved is the trailing 8 bytes from revision 13 on.
	Reserved uint64 `json:"reserved,omitempty" yaml:"reserved,omitempty"`
}

// Param is a named float vector of one to four components.
type Param struct {
	Name       string     `json:"name" yaml:"name"`
	Components int        `json:"components" yaml:"components"`
	Values     [4]float32 `json:"values" yaml:"values"`
	Hash       uint32     `json:"hash" yaml:"hash"`
	ASCIIHash  uint32     `json:"asciiHash" yaml:"asciiHash"`
	// Extra is the upper half of the revision 31 count word.
	Extra uint16 `json:"extra,omitempty" yaml:"extra,omitempty"`
	// Gap is the number of bytes between the previous value (or the start
	// of the value block) and this one.
	Gap int `json:"gap,omitempty" yaml:"gap,omitempty"`
}

// Floats returns the used components.
func (p *Param) Floats() []float32 {
	n := min(max(p.Components, 0), 4)
	return p.Values[:n]
}

// GPUBuffer is a revision 19 name/value resource pair.
type GPUBuffer struct {
	Name          string `json:"name" yaml:"name"`
	Value         string `json:"value" yaml:"value"`
	NameHash      uint32 `json:"nameHash" yaml:"nameHash"`
	NameASCIIHash uint32 `json:"nameAsciiHash" yaml:"nameAsciiHash"`
}

// TexIDArray is one revision 31 texture id array: a counts list and an
// elements list.
type TexIDArray struct {
	Counts   []int32 `json:"counts" yaml:"counts"`
	Elements []int32 `json:"elements" yaml:"elements"`
}

// Texture returns the first texture bound to slot typ.
func (m *Material) Texture(typ string) (*Texture, bool) {
	for i := range m.Textures {
		if m.Textures[i].Type == typ {
			return &m.Textures[i], true
		}
	}
	return nil, false
}

// Param returns the parameter with the given name.
func (m *Material) Param(name string) (*Param, bool) {
	for i := range m.Params {
		if m.Params[i].Name == name {
			return &m.Params[i], true
		}
	}
	return nil, false
}

// RecomputeHashes refreshes every stored hash from its string.
func (m *Material) RecomputeHashes() {
	m.NameHash = strhash.UTF16(m.Name)
	for i := range m.Textures {
		t := &m.Textures[i]
		if t.Type == "" {
			t.Hash, t.ASCIIHash = 0, 0
			continue
		}
		t.Hash, t.ASCIIHash = strhash.UTF16(t.Type), strhash.ASCII(t.Type)
	}
	for i := range m.Params {
		p := &m.Params[i]
		p.Hash, p.ASCIIHash = strhash.UTF16(p.Name), strhash.ASCII(p.Name)
	}
	for i := range m.GPUBuffers {
		g := &m.GPUBuffers[i]
		g.NameHash, g.NameASCIIHash = strhash.UTF16(g.Name), strhash.ASCII(g.Name)
	}
}

// Material returns the material with the given name.
func (f *File) Material(name string) (*Material, bool) {
	for _, m := range f.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

func (m *Material) String() string {
	return fmt.Sprintf("%s (%s, %d textures, %d params)", m.Name, m.ShaderType, len(m.Textures), len(m.Params))
}

package main

import (
	"encoding/hex"

	"github.com/joshuapare/reasset/pkg/asset"
	"github.com/joshuapare/reasset/pkg/mdf"
	"github.com/joshuapare/reasset/pkg/uvar"
)

// View types are what dump serializes.

type containerView struct {
	Name      string          `json:"name" yaml:"name"`
	Revision  uint32          `json:"revision" yaml:"revision"`
	Variables []variableView  `json:"variables" yaml:"variables"`
	Embeds    []containerView `json:"embeds,omitempty" yaml:"embeds,omitempty"`
}

type variableView struct {
	Name       string          `json:"name" yaml:"name"`
	GUID       string          `json:"guid" yaml:"guid"`
	Kind       string          `json:"kind" yaml:"kind"`
	Vector     bool            `json:"vector,omitempty" yaml:"vector,omitempty"`
	Hash       uint32          `json:"hash" yaml:"hash"`
	Value      any             `json:"value,omitempty" yaml:"value,omitempty"`
	Expression *expressionView `json:"expression,omitempty" yaml:"expression,omitempty"`
}

type expressionView struct {
	Output    uint16          `json:"output" yaml:"output"`
	Nodes     []nodeView      `json:"nodes" yaml:"nodes"`
	Relations []uvar.Relation `json:"relations" yaml:"relations"`
}

type nodeView struct {
	ID     uint16 `json:"id" yaml:"id"`
	Kind   string `json:"kind" yaml:"kind"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Params int    `json:"params,omitempty" yaml:"params,omitempty"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Data   string `json:"data,omitempty" yaml:"data,omitempty"`
}

func newContainerView(c *uvar.Container) containerView {
	v := containerView{Name: c.Name, Revision: c.Revision, Variables: make([]variableView, 0, len(c.Variables))}
	for _, vr := range c.Variables {
		vv := variableView{
			Name:   vr.Name,
			GUID:   vr.GUID.String(),
			Kind:   vr.Kind.String(),
			Vector: vr.IsVector(),
			Hash:   vr.NameHash,
			Value:  vr.Value.Interface(),
		}
		if vr.Kind == uvar.KindGUID {
			vv.Value = vr.Value.GUID.String()
		}
		if e := vr.Expression; e != nil {
			ev := &expressionView{Output: e.OutputNodeID, Relations: e.Relations}
			for _, n := range e.Nodes {
				nv := nodeView{ID: n.ID, Kind: n.Kind.String(), Name: n.Name, Params: len(n.Params)}
				if n.Target != nil {
					nv.Target = n.Target.GUID.String()
				}
				if len(n.Data) > 0 {
					nv.Data = hex.EncodeToString(n.Data)
				}
				ev.Nodes = append(ev.Nodes, nv)
			}
			vv.Expression = ev
		}
		v.Variables = append(v.Variables, vv)
	}
	for _, e := range c.Embeds {
		v.Embeds = append(v.Embeds, newContainerView(e))
	}
	return v
}

type materialFileView struct {
	Revision      int            `json:"revision" yaml:"revision"`
	HeaderVersion int16          `json:"headerVersion" yaml:"headerVersion"`
	Materials     []materialView `json:"materials" yaml:"materials"`
}

type materialView struct {
	Name                 string           `json:"name" yaml:"name"`
	Hash                 uint32           `json:"hash" yaml:"hash"`
	ShaderPath           string           `json:"shaderPath" yaml:"shaderPath"`
	ShaderType           string           `json:"shaderType" yaml:"shaderType"`
	Flags                uint64           `json:"flags" yaml:"flags"`
	FlagFields           mdf.FlagFields   `json:"flagFields" yaml:"flagFields"`
	BakeTextureArraySize uint32           `json:"bakeTextureArraySize,omitempty" yaml:"bakeTextureArraySize,omitempty"`
	Textures             []mdf.Texture    `json:"textures" yaml:"textures"`
	Params               []paramView      `json:"params" yaml:"params"`
	GPUBuffers           []mdf.GPUBuffer  `json:"gpuBuffers,omitempty" yaml:"gpuBuffers,omitempty"`
	TexIDArrays          []mdf.TexIDArray `json:"texIDArrays,omitempty" yaml:"texIDArrays,omitempty"`
}

type paramView struct {
	Name   string    `json:"name" yaml:"name"`
	Values []float32 `json:"values" yaml:"values"`
	Gap    int       `json:"gap,omitempty" yaml:"gap,omitempty"`
}

func newMaterialFileView(f *mdf.File) materialFileView {
	v := materialFileView{Revision: f.Revision, HeaderVersion: f.HeaderVersion}
	for _, m := range f.Materials {
		mv := materialView{
			Name:                 m.Name,
			Hash:                 m.NameHash,
			ShaderPath:           m.ShaderPath,
			ShaderType:           m.ShaderType.String(),
			Flags:                uint64(m.Flags),
			FlagFields:           m.Flags.Fields(f.Revision),
			BakeTextureArraySize: m.BakeTextureArraySize,
			Textures:             m.Textures,
			GPUBuffers:           m.GPUBuffers,
			TexIDArrays:          m.TexIDArrays,
		}
		for _, p := range m.Params {
			mv.Params = append(mv.Params, paramView{Name: p.Name, Values: append([]float32(nil), p.Floats()...), Gap: p.Gap})
		}
		v.Materials = append(v.Materials, mv)
	}
	return v
}

// newView returns the dump view of a.
func newView(a *asset.Asset) any {
	switch a.Kind {
	case asset.KindUVar:
		return newContainerView(a.UVar)
	case asset.KindMDF:
		return newMaterialFileView(a.MDF)
	}
	return nil
}

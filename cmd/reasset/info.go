package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reasset/pkg/asset"
	"github.com/joshuapare/reasset/pkg/uvar"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Report the format and basic contents of an asset",
		Long: `The info command decodes an asset and prints its format, revision and a
summary of its contents.

Example:
  reasset info game.user.3
  reasset info body.mdf2.31 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
}

type materialInfo struct {
	Name       string `json:"name"`
	Shader     string `json:"shader"`
	ShaderType string `json:"shaderType"`
	Textures   int    `json:"textures"`
	Params     int    `json:"params"`
	GPUBuffers int    `json:"gpuBuffers"`
}

type infoResult struct {
	File        string         `json:"file"`
	Size        int64          `json:"size"`
	Kind        string         `json:"kind"`
	Revision    int            `json:"revision"`
	Name        string         `json:"name,omitempty"`
	Variables   int            `json:"variables,omitempty"`
	Embeds      int            `json:"embeds,omitempty"`
	Expressions int            `json:"expressions,omitempty"`
	Materials   []materialInfo `json:"materials,omitempty"`
}

func collectInfo(path string, a *asset.Asset) infoResult {
	res := infoResult{File: path, Kind: a.Kind.String()}
	if st, err := os.Stat(path); err == nil {
		res.Size = st.Size()
	}
	switch a.Kind {
	case asset.KindUVar:
		res.Revision = int(a.UVar.Revision)
		res.Name = a.UVar.Name
		_ = a.UVar.Walk(func(c *uvar.Container, depth int) error {
			if depth > 0 {
				res.Embeds++
			}
			res.Variables += len(c.Variables)
			for _, v := range c.Variables {
				if v.Expression != nil {
					res.Expressions++
				}
			}
			return nil
		})
	case asset.KindMDF:
		res.Revision = a.MDF.Revision
		res.Materials = make([]materialInfo, 0, len(a.MDF.Materials))
		for _, m := range a.MDF.Materials {
			res.Materials = append(res.Materials, materialInfo{
				Name:       m.Name,
				Shader:     m.ShaderPath,
				ShaderType: m.ShaderType.String(),
				Textures:   len(m.Textures),
				Params:     len(m.Params),
				GPUBuffers: len(m.GPUBuffers),
			})
		}
	}
	return res
}

func runInfo(args []string) error {
	a, err := loadAsset(args[0])
	if err != nil {
		return err
	}
	res := collectInfo(args[0], a)
	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nAsset Information:\n")
	printInfo("  File: %s\n", res.File)
	printInfo("  Size: %s\n", formatSize(res.Size))
	printInfo("  Format: %s (revision %d)\n", res.Kind, res.Revision)
	switch a.Kind {
	case asset.KindUVar:
		printInfo("  Name: %s\n", res.Name)
		printInfo("  Variables: %d\n", res.Variables)
		printInfo("  Embedded containers: %d\n", res.Embeds)
		printInfo("  Expressions: %d\n", res.Expressions)
	case asset.KindMDF:
		printInfo("  Materials: %d\n", len(res.Materials))
		for _, m := range res.Materials {
			printInfo("    %s  %s  %s  (%d textures, %d params)\n",
				m.Name, m.ShaderType, m.Shader, m.Textures, m.Params)
		}
	default:
		return fmt.Errorf("unsupported asset kind %s", res.Kind)
	}
	return nil
}

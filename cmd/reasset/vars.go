package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reasset/pkg/asset"
	"github.com/joshuapare/reasset/pkg/uvar"
)

var (
	varsEmbeds bool
	varsFilter string
)

func init() {
	cmd := newVarsCmd()
	cmd.Flags().BoolVar(&varsEmbeds, "embeds", false, "Include variables of embedded containers")
	cmd.Flags().StringVar(&varsFilter, "filter", "", "Only list variables whose name contains this text")
	rootCmd.AddCommand(cmd)
}

func newVarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vars <file>",
		Short: "List the variables of a variable container",
		Long: `The vars command lists each variable with its type, name hash and value.

Example:
  reasset vars game.user.3
  reasset vars game.user.3 --embeds --filter Color
  reasset vars game.user.3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVars(args)
		},
	}
}

type varEntry struct {
	Container string `json:"container"`
	Depth     int    `json:"depth"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Hash      string `json:"hash"`
	Value     string `json:"value"`
	HasExpr   bool   `json:"hasExpression,omitempty"`
}

func requireUVar(a *asset.Asset, path string) (*uvar.Container, error) {
	if a.Kind != asset.KindUVar {
		return nil, fmt.Errorf("%s is a %s file, not a variable container", path, a.Kind)
	}
	return a.UVar, nil
}

func formatValue(v *uvar.Variable) string {
	if v.Kind == uvar.KindTrigger {
		return "-"
	}
	return fmt.Sprint(v.Value.Interface())
}

func runVars(args []string) error {
	a, err := loadAsset(args[0])
	if err != nil {
		return err
	}
	root, err := requireUVar(a, args[0])
	if err != nil {
		return err
	}

	var entries []varEntry
	_ = root.Walk(func(c *uvar.Container, depth int) error {
		if depth > 0 && !varsEmbeds {
			return nil
		}
		for _, v := range c.Variables {
			if varsFilter != "" && !strings.Contains(v.Name, varsFilter) {
				continue
			}
			kind := v.Kind.String()
			if v.IsVector() {
				kind += "x3"
			}
			entries = append(entries, varEntry{
				Container: c.Name,
				Depth:     depth,
				Name:      v.Name,
				Kind:      kind,
				Hash:      fmt.Sprintf("0x%08x", v.NameHash),
				Value:     formatValue(v),
				HasExpr:   v.Expression != nil,
			})
		}
		return nil
	})

	if jsonOut {
		return printJSON(entries)
	}
	for _, e := range entries {
		indent := strings.Repeat("  ", e.Depth)
		expr := ""
		if e.HasExpr {
			expr = " (expression)"
		}
		printInfo("%s%-10s %-32s %s = %s%s\n", indent, e.Kind, e.Name, e.Hash, e.Value, expr)
	}
	printVerbose("%d variables\n", len(entries))
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dumpFormat string
	dumpOut    string
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "json", "Output format: json, yaml, cbor")
	cmd.Flags().StringVarP(&dumpOut, "out", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Serialize the decoded contents of an asset",
		Long: `The dump command decodes an asset and writes its full contents as JSON,
YAML or CBOR. CBOR output uses core deterministic encoding, so the same
asset always produces the same bytes.

Example:
  reasset dump game.user.3
  reasset dump body.mdf2.31 --format yaml
  reasset dump body.mdf2.31 --format cbor -o body.cbor`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
}

var cborMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.TextMarshaler = cbor.TextMarshalerTextString
	var err error
	if cborMode, err = opts.EncMode(); err != nil {
		panic("dump: CBOR encoder initialization failed: " + err.Error())
	}
}

// encodeView serializes v in the named format.
func encodeView(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		data, err := cborMode.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown format %q (want json, yaml or cbor)", format)
}

func runDump(args []string) error {
	a, err := loadAsset(args[0])
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if dumpOut != "" {
		f, err := os.Create(dumpOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := encodeView(w, dumpFormat, newView(a)); err != nil {
		return fmt.Errorf("dump %s: %w", args[0], err)
	}
	if dumpOut != "" {
		printVerbose("Wrote %s\n", dumpOut)
	}
	return nil
}

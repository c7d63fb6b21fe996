package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"

	"github.com/joshuapare/reasset/pkg/asset"
)

var verifyStrict bool

func init() {
	cmd := newVerifyCmd()
	cmd.Flags().BoolVar(&verifyStrict, "strict", false, "Fail unless the re-encoded bytes are identical")
	rootCmd.AddCommand(cmd)
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>...",
		Short: "Check that assets decode and re-encode cleanly",
		Long: `The verify command decodes each file, encodes it again and compares
BLAKE3 digests of the source and re-encoded bytes. Files written by older
tools may legitimately differ (recomputed hashes, rebuilt indexes); use
--strict to treat any difference as a failure.

Example:
  reasset verify game.user.3 body.mdf2.31
  reasset verify --strict --json *.user.3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
}

type verifyResult struct {
	File        string `json:"file"`
	Kind        string `json:"kind"`
	Size        int    `json:"size"`
	Digest      string `json:"digest"`
	Reencoded   string `json:"reencoded"`
	Identical   bool   `json:"identical"`
	FirstDiffAt *int   `json:"firstDiffAt,omitempty"`
	Error       string `json:"error,omitempty"`
}

func digest(data []byte) string {
	h := blake3.New()
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// firstDiff returns the first offset at which a and b differ, or -1.
func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

func verifyFile(path string) verifyResult {
	res := verifyResult{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Size = len(data)
	res.Digest = digest(data)

	a, err := asset.Decode(data, path, assetOptions())
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Kind = a.Kind.String()
	out, err := a.Encode(assetOptions())
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.compare(data, out)
	return res
}

// compare records whether out reproduces data and, if not, where the two
// first differ. Offset 0 is a valid difference and is kept in JSON output.
func (r *verifyResult) compare(data, out []byte) {
	r.Reencoded = digest(out)
	r.Identical = bytes.Equal(data, out)
	r.FirstDiffAt = nil
	if !r.Identical {
		d := firstDiff(data, out)
		r.FirstDiffAt = &d
	}
}

var errVerifyFailed = errors.New("verification failed")

func runVerify(args []string) error {
	results := make([]verifyResult, 0, len(args))
	failed := 0
	for _, path := range args {
		res := verifyFile(path)
		if res.Error != "" || (verifyStrict && !res.Identical) {
			failed++
		}
		results = append(results, res)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			switch {
			case r.Error != "":
				printInfo("✗ %s: %s\n", r.File, r.Error)
			case r.Identical:
				printInfo("✓ %s (%s, %s) blake3 %s\n", r.File, r.Kind, formatSize(int64(r.Size)), r.Digest)
			default:
				printInfo("~ %s (%s) re-encodes differently from offset 0x%x\n", r.File, r.Kind, *r.FirstDiffAt)
				printVerbose("    source    %s\n    reencoded %s\n", r.Digest, r.Reencoded)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errVerifyFailed, failed, len(args))
	}
	return nil
}

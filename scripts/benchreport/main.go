// Command benchreport turns `go test -bench` output into a markdown table,
// optionally comparing it against a baseline run.
//
//	go test -bench . -benchmem ./pkg/... > new.txt
//	go run ./scripts/benchreport -base old.txt -input new.txt
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult is one parsed benchmark line.
type BenchmarkResult struct {
	Name        string
	Operation   string // e.g. "MDFDecode"
	Case        string // sub-benchmark, e.g. "rev31"
	Iterations  int
	NsPerOp     float64
	MBPerSec    float64
	BytesPerOp  int64
	AllocsPerOp int64
}

type key struct {
	operation string
	cas       string
}

var (
	inputFile  = flag.String("input", "", "Benchmark output to report (stdin if not specified)")
	baseFile   = flag.String("base", "", "Baseline benchmark output to compare against")
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// Benchmark<Op>/<case>-8   10000   12450 ns/op   52.1 MB/s   4096 B/op   8 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+MB/s)?(?:\s+(\d+)\s+B/op)?(?:\s+(\d+)\s+allocs/op)?`,
)

func main() {
	flag.Parse()

	current, err := readResults(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	var base map[key]BenchmarkResult
	if *baseFile != "" {
		b, err := readResults(*baseFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading baseline: %v\n", err)
			os.Exit(1)
		}
		base = index(b)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results (%d baseline)\n", len(current), len(base))
	}

	report := generateMarkdownReport(current, base)
	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

func readResults(path string) ([]BenchmarkResult, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseBenchmarks(bufio.NewScanner(r)), nil
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult
	for scanner.Scan() {
		line := scanner.Text()

		// go test -json wraps each output line in an event
		var event struct{ Output string }
		if err := json.Unmarshal([]byte(line), &event); err == nil && event.Output != "" {
			line = event.Output
		}

		m := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		res := BenchmarkResult{Name: m[1]}
		res.Iterations, _ = strconv.Atoi(m[2])
		res.NsPerOp, _ = strconv.ParseFloat(m[3], 64)
		if m[4] != "" {
			res.MBPerSec, _ = strconv.ParseFloat(m[4], 64)
		}
		if m[5] != "" {
			res.BytesPerOp, _ = strconv.ParseInt(m[5], 10, 64)
		}
		if m[6] != "" {
			res.AllocsPerOp, _ = strconv.ParseInt(m[6], 10, 64)
		}
		res.Operation, res.Case = splitName(m[1])
		results = append(results, res)
	}
	return results
}

// splitName splits "BenchmarkMDFDecode/rev31-8" into "MDFDecode" and
// "rev31".
func splitName(name string) (string, string) {
	name = strings.TrimPrefix(name, "Benchmark")
	if i := strings.LastIndexByte(name, '-'); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	op, cas, _ := strings.Cut(name, "/")
	return op, cas
}

func index(results []BenchmarkResult) map[key]BenchmarkResult {
	m := make(map[key]BenchmarkResult, len(results))
	for _, r := range results {
		m[key{r.Operation, r.Case}] = r
	}
	return m
}

func generateMarkdownReport(results []BenchmarkResult, base map[key]BenchmarkResult) string {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Operation != results[j].Operation {
			return results[i].Operation < results[j].Operation
		}
		return results[i].Case < results[j].Case
	})

	var sb strings.Builder
	sb.WriteString("# Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	if base != nil {
		faster, slower := 0, 0
		for _, r := range results {
			if b, ok := base[key{r.Operation, r.Case}]; ok {
				if r.NsPerOp < b.NsPerOp {
					faster++
				} else if r.NsPerOp > b.NsPerOp {
					slower++
				}
			}
		}
		sb.WriteString("## Summary\n\n")
		fmt.Fprintf(&sb, "- **Benchmarks**: %d\n", len(results))
		fmt.Fprintf(&sb, "- **Faster than baseline**: %d\n", faster)
		fmt.Fprintf(&sb, "- **Slower than baseline**: %d\n\n", slower)
	}

	sb.WriteString("## Results\n\n")
	sb.WriteString("| Operation | Case | ns/op | MB/s | Memory (B/op) | Allocs | vs baseline |\n")
	sb.WriteString("|-----------|------|-------|------|---------------|--------|-------------|\n")
	for _, r := range results {
		delta := "*N/A*"
		if b, ok := base[key{r.Operation, r.Case}]; ok && r.NsPerOp > 0 {
			speedup := b.NsPerOp / r.NsPerOp
			indicator := "✓"
			if speedup < 1 {
				indicator = "✗"
			}
			delta = fmt.Sprintf("%.2fx %s", speedup, indicator)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %.1f | %s | %d | %s |\n",
			r.Operation, r.Case, formatNumber(r.NsPerOp), r.MBPerSec,
			formatBytes(r.BytesPerOp), r.AllocsPerOp, delta)
	}
	return sb.String()
}

func formatNumber(n float64) string {
	switch {
	case n >= 1e9:
		return fmt.Sprintf("%.2fs", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.2fms", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.2fµs", n/1e3)
	}
	return fmt.Sprintf("%.0fns", n)
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `goos: linux
BenchmarkMDFDecode/rev31-8         50000         24100 ns/op        52.10 MB/s        4096 B/op          38 allocs/op
{"Action":"output","Output":"BenchmarkUVarEncode-8   	   20000	     61000 ns/op\n"}
PASS
`

func TestParseBenchmarks(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	require.Len(t, results, 2)

	assert.Equal(t, "MDFDecode", results[0].Operation)
	assert.Equal(t, "rev31", results[0].Case)
	assert.Equal(t, 24100.0, results[0].NsPerOp)
	assert.Equal(t, 52.1, results[0].MBPerSec)
	assert.Equal(t, int64(4096), results[0].BytesPerOp)
	assert.Equal(t, int64(38), results[0].AllocsPerOp)

	assert.Equal(t, "UVarEncode", results[1].Operation)
	assert.Empty(t, results[1].Case)
	assert.Equal(t, 61000.0, results[1].NsPerOp)
}

func TestReportAgainstBaseline(t *testing.T) {
	current := []BenchmarkResult{{Operation: "MDFDecode", Case: "rev31", NsPerOp: 1000}}
	base := index([]BenchmarkResult{{Operation: "MDFDecode", Case: "rev31", NsPerOp: 2000}})

	report := generateMarkdownReport(current, base)
	assert.Contains(t, report, "**Faster than baseline**: 1")
	assert.Contains(t, report, "2.00x ✓")
	assert.Contains(t, report, "| MDFDecode | rev31 | 1.00µs |")
}

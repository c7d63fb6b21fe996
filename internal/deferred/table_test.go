package deferred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/reasset/internal/buf"
)

func readOffsets(t *testing.T, data []byte, n int) []uint64 {
	t.Helper()
	r := buf.NewReader(data)
	out := make([]uint64, n)
	for i := range out {
		v, err := r.ReadU64()
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func TestFlushDedupSharesFirstOffset(t *testing.T) {
	c := buf.NewWriter(0)
	tab := New(true)
	tab.AddString(c, "alpha")
	tab.AddString(c, "beta")
	tab.AddString(c, "alpha")
	require.Equal(t, 3, tab.Len())

	require.NoError(t, tab.Flush(c))
	assert.Equal(t, 0, tab.Len())

	offs := readOffsets(t, c.Bytes(), 3)
	assert.Equal(t, uint64(24), offs[0])
	assert.Equal(t, uint64(24+12), offs[1]) // "alpha\0" is 12 bytes
	assert.Equal(t, offs[0], offs[2])
	// two payloads written, not three
	assert.Equal(t, 24+12+10, c.Tell())

	r := buf.NewReader(c.Bytes())
	require.NoError(t, r.Seek(int(offs[1])))
	s, err := r.ReadWString()
	require.NoError(t, err)
	assert.Equal(t, "beta", s)
}

func TestFlushWithoutDedupWritesEveryPayload(t *testing.T) {
	c := buf.NewWriter(0)
	tab := New(false)
	tab.AddString(c, "x")
	tab.AddString(c, "x")
	require.NoError(t, tab.Flush(c))

	offs := readOffsets(t, c.Bytes(), 2)
	assert.Equal(t, uint64(16), offs[0])
	assert.Equal(t, uint64(20), offs[1])
	assert.Equal(t, 24, c.Tell())
}

func TestFlushFuncPayloadAndAlign(t *testing.T) {
	c := buf.NewWriter(0)
	tab := New(true).WithAlign(16)
	at := c.ReserveU64()
	c.WriteU8(1)
	tab.AddFunc(at, func(c *buf.Cursor) {
		c.WriteI32(2)
		c.WriteI32(7)
		c.WriteI32(9)
	})
	tab.Add(c.ReserveU64(), []byte{0xAA})

	require.NoError(t, tab.Flush(c))
	offs := readOffsets(t, c.Bytes(), 1)
	assert.Equal(t, uint64(32), offs[0])

	r := buf.NewReader(c.Bytes())
	require.NoError(t, r.Seek(9))
	second, err := r.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(48), second)
	assert.Equal(t, 49, c.Tell())
}

func TestFlushPropagatesCursorError(t *testing.T) {
	c := buf.NewWriter(16)
	tab := New(false)
	tab.AddString(c, "long enough to overflow")
	require.Error(t, tab.Flush(c))
}

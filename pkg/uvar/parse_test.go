package uvar

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/reasset/pkg/types"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		kind   Kind
		vector bool
		in     string
		want   any
	}{
		{KindBool, false, "true", true},
		{KindInt8, false, "-128", int64(-128)},
		{KindUint16, false, "0xFFFF", uint64(0xFFFF)},
		{KindEnum, false, "7", int64(7)},
		{KindFloat32, false, "0.5", float64(0.5)},
		{KindVec3, false, "1, 2,3", []float64{1, 2, 3}},
		{KindInt32, true, "1,-2,3", []int64{1, -2, 3}},
		{KindString, false, "hello, world", "hello, world"},
		{KindGUID, false, "01234567-89ab-cdef-0123-456789abcdef", uuid.MustParse("01234567-89ab-cdef-0123-456789abcdef")},
		{KindTrigger, false, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+" "+tt.in, func(t *testing.T) {
			v, err := ParseValue(tt.kind, tt.vector, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.want, v.Interface())
		})
	}
}

func TestParseValueErrors(t *testing.T) {
	_, err := ParseValue(KindInt8, false, "300")
	require.Error(t, err)

	_, err = ParseValue(KindVec2, false, "1,2,3")
	require.Error(t, err)

	_, err = ParseValue(KindBool, true, "true")
	require.ErrorIs(t, err, types.ErrUnsupportedType)

	_, err = ParseValue(KindGUID, false, "not-a-guid")
	require.Error(t, err)

	_, err = ParseValue(KindTrigger, false, "1")
	require.ErrorIs(t, err, types.ErrUnsupportedType)
}

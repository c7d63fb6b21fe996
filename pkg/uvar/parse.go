package uvar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/joshuapare/reasset/pkg/types"
)

// bitSize returns the element width in bits of a numeric kind.
func bitSize(k Kind) int {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt64, KindUint64, KindFloat64:
		return 64
	}
	return 32
}

// ParseValue parses the text form of a value of kind k. Numeric tuples are
// comma separated, booleans use strconv.ParseBool and GUIDs the canonical
// hyphenated form.
//
//	v, err := uvar.ParseValue(uvar.KindVec3, false, "1, 0.5, 0")
func ParseValue(k Kind, vector bool, s string) (Value, error) {
	if _, err := lookupCodec(k, vector); err != nil {
		return Value{}, err
	}
	v := ZeroValue(k, vector)
	switch k {
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return Value{}, fmt.Errorf("bool value %q: %w", s, err)
		}
		v.Bool = b
		return v, nil
	case KindC8, KindC16, KindString:
		v.Str = s
		return v, nil
	case KindGUID:
		g, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return Value{}, fmt.Errorf("guid value %q: %w", s, err)
		}
		v.GUID = g
		return v, nil
	case KindTrigger:
		if strings.TrimSpace(s) != "" {
			return Value{}, types.Errorf(types.ErrKindUnsupportedType, "trigger takes no value")
		}
		return v, nil
	}

	fields := strings.Split(s, ",")
	if len(fields) != v.Len() {
		return Value{}, fmt.Errorf("%s value needs %d elements, got %d", k, v.Len(), len(fields))
	}
	bits := bitSize(k)
	for i, f := range fields {
		f = strings.TrimSpace(f)
		var err error
		switch {
		case v.Ints != nil:
			v.Ints[i], err = strconv.ParseInt(f, 0, bits)
		case v.Uints != nil:
			v.Uints[i], err = strconv.ParseUint(f, 0, bits)
		default:
			v.Floats[i], err = strconv.ParseFloat(f, bits)
		}
		if err != nil {
			return Value{}, fmt.Errorf("%s element %d: %w", k, i, err)
		}
	}
	return v, nil
}

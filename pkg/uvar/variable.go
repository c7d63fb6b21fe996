package uvar

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/joshuapare/reasset/internal/buf"
	"github.com/joshuapare/reasset/internal/deferred"
	"github.com/joshuapare/reasset/pkg/strhash"
)

// RecordSize is the on-disk size of a variable record.
const RecordSize = 48

// Field offsets inside a variable record.
const (
	recValue      = 24
	recExpression = 32
)

// Variable is a typed, named value with an optional expression graph.
type Variable struct {
	GUID       uuid.UUID
	Name       string
	NameHash   uint32
	Kind       Kind
	Flags      uint8
	Value      Value
	Expression *Expression
}

// IsVector reports whether FlagVector3 is set.
func (v *Variable) IsVector() bool { return v.Flags&FlagVector3 != 0 }

// ResetValue replaces the value with the zero value of the variable's kind.
func (v *Variable) ResetValue() {
	v.Value = ZeroValue(v.Kind, v.IsVector())
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s %s = %v", v.Kind, v.Name, v.Value.Interface())
}

func decodeVariable(c *buf.Cursor) (*Variable, error) {
	v := &Variable{}
	var err error
	if v.GUID, err = c.ReadGUID(); err != nil {
		return nil, err
	}
	nameOff, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	valueOff, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	exprOff, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	w, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	v.Kind, v.Flags = splitTypeWord(w)
	if v.NameHash, err = c.ReadU32(); err != nil {
		return nil, err
	}

	if nameOff != 0 {
		if err := c.JumpU64(nameOff, func() error {
			v.Name, err = c.ReadWString()
			return err
		}); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
	}

	switch {
	case v.Kind == KindTrigger:
		v.Value = Value{Kind: KindTrigger}
	case valueOff == 0:
		v.ResetValue()
	default:
		if err := c.JumpU64(valueOff, func() error {
			v.Value, err = decodeValue(c, v.Kind, v.IsVector())
			return err
		}); err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}
	}

	if exprOff != 0 {
		if err := c.JumpU64(exprOff, func() error {
			v.Expression, err = decodeExpression(c)
			return err
		}); err != nil {
			return nil, fmt.Errorf("variable %q expression: %w", v.Name, err)
		}
	}
	return v, nil
}

// writeRecord writes the fixed record with zero indirections. The name
// offset is queued on strs.
func (v *Variable) writeRecord(c *buf.Cursor, strs *deferred.Table) {
	c.WriteGUID(v.GUID)
	strs.AddString(c, v.Name)
	c.WriteU64(0) // value
	c.WriteU64(0) // expression
	c.WriteU32(typeWord(v.Kind, v.Flags))
	c.WriteU32(v.NameHash)
}

func recomputeHash(v *Variable) {
	v.NameHash = strhash.UTF16(v.Name)
}

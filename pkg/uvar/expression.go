package uvar

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/joshuapare/reasset/internal/buf"
	"github.com/joshuapare/reasset/pkg/types"
)

// Expression graph layout:
//
//	header    u64 nodes, u64 relations, u16 node count, u16 output node id, u32 reserved
//	node      u64 name, u64 data, u16 kind, u16 id, u16 param count, u16 reserved,
//	          u32 data size, u32 reserved
//	relation  u16 src node, u16 src port, u16 dst node, u16 dst port
//
// Node names are single-byte strings. The relation list ends at an all-zero
// record.
const (
	nodeRecordSize = 32
	relationSize   = 8
)

// NodeKind identifies what a node does.
type NodeKind uint16

const (
	NodeGeneric     NodeKind = 0
	NodeSetVariable NodeKind = 1
	NodeGetVariable NodeKind = 2
)

func (k NodeKind) String() string {
	switch k {
	case NodeGeneric:
		return "generic"
	case NodeSetVariable:
		return "set-variable"
	case NodeGetVariable:
		return "get-variable"
	}
	return fmt.Sprintf("NodeKind(%d)", uint16(k))
}

// ParamType is the wire type code of a node parameter. Several codes share
// an encoding; the raw code is kept so it is written back unchanged.
type ParamType int32

const (
	ParamUint32   ParamType = 6
	ParamInt32    ParamType = 7
	ParamFloat    ParamType = 8
	ParamFloatAlt ParamType = 10
	ParamGUID     ParamType = 18
	ParamGUIDAlt  ParamType = 20
)

// Kind returns the value kind a parameter of this type carries.
func (t ParamType) Kind() (Kind, bool) {
	switch t {
	case ParamUint32:
		return KindUint32, true
	case ParamInt32:
		return KindInt32, true
	case ParamFloat, ParamFloatAlt:
		return KindFloat32, true
	case ParamGUID, ParamGUIDAlt:
		return KindGUID, true
	}
	return KindUnknown, false
}

// NodeParam is one typed parameter of a node.
type NodeParam struct {
	NameHash uint32
	Type     ParamType
	Value    Value
}

// VariableRef points a set-variable node at its target.
type VariableRef struct {
	GUID     uuid.UUID
	NameHash uint32
}

// Node is one vertex of an expression graph. A node carries at most one
// payload: Target for NodeSetVariable, else Params, else the opaque Data.
type Node struct {
	ID     uint16
	Kind   NodeKind
	Name   string
	Data   []byte
	Params []NodeParam
	Target *VariableRef
}

// Relation connects an output port of one node to an input port of another.
type Relation struct {
	SrcNode uint16
	SrcPort uint16
	DstNode uint16
	DstPort uint16
}

func (r Relation) isZero() bool { return r == Relation{} }

// Expression is a node graph computing a variable's value.
type Expression struct {
	Nodes        []*Node
	Relations    []Relation
	OutputNodeID uint16
}

// Node returns the node with the given id.
func (e *Expression) Node(id uint16) (*Node, bool) {
	for _, n := range e.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// AddNode appends a node with the next free id.
func (e *Expression) AddNode(kind NodeKind, name string) *Node {
	var id uint16
	for _, n := range e.Nodes {
		if n.ID >= id {
			id = n.ID + 1
		}
	}
	n := &Node{ID: id, Kind: kind, Name: name}
	e.Nodes = append(e.Nodes, n)
	return n
}

// AddRelation validates r against the current nodes and appends it.
func (e *Expression) AddRelation(r Relation) error {
	if err := e.checkRelation(r); err != nil {
		return err
	}
	e.Relations = append(e.Relations, r)
	return nil
}

// Validate checks that every relation joins two distinct existing nodes.
func (e *Expression) Validate() error {
	for i, r := range e.Relations {
		if err := e.checkRelation(r); err != nil {
			return fmt.Errorf("relation %d: %w", i, err)
		}
	}
	return nil
}

func (e *Expression) checkRelation(r Relation) error {
	if r.SrcNode == r.DstNode {
		return types.Errorf(types.ErrKindInvalidGraph, "node %d is related to itself", r.SrcNode)
	}
	for _, id := range []uint16{r.SrcNode, r.DstNode} {
		if _, ok := e.Node(id); !ok {
			return types.Errorf(types.ErrKindInvalidGraph, "relation references missing node %d", id)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Decode
// -----------------------------------------------------------------------------

func decodeExpression(c *buf.Cursor) (*Expression, error) {
	nodesOff, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	relOff, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	count, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	e := &Expression{}
	if e.OutputNodeID, err = c.ReadU16(); err != nil {
		return nil, err
	}
	if err := c.Skip(4); err != nil {
		return nil, err
	}

	if count > 0 {
		if nodesOff == 0 {
			return nil, types.Errorf(types.ErrKindInvalidOffset, "%d nodes with a zero node table offset", count)
		}
		err := c.JumpU64(nodesOff, func() error {
			for i := range int(count) {
				n, err := decodeNode(c)
				if err != nil {
					return fmt.Errorf("node %d: %w", i, err)
				}
				e.Nodes = append(e.Nodes, n)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if relOff != 0 {
		err := c.JumpU64(relOff, func() error {
			e.Relations = scanRelations(c, count)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// scanRelations reads relation records until an all-zero record, a record
// whose source id is not below the node count, or the end of the buffer.
// The source-id stop is a heuristic for lists written without a terminator.
func scanRelations(c *buf.Cursor, nodeCount uint16) []Relation {
	var out []Relation
	for c.Len()-c.Tell() >= relationSize {
		var r Relation
		r.SrcNode, _ = c.ReadU16()
		r.SrcPort, _ = c.ReadU16()
		r.DstNode, _ = c.ReadU16()
		r.DstPort, _ = c.ReadU16()
		if r.isZero() || r.SrcNode >= nodeCount {
			break
		}
		out = append(out, r)
	}
	return out
}

func decodeNode(c *buf.Cursor) (*Node, error) {
	nameOff, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	dataOff, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	kind, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	n := &Node{Kind: NodeKind(kind)}
	if n.ID, err = c.ReadU16(); err != nil {
		return nil, err
	}
	paramCount, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	if err := c.Skip(2); err != nil {
		return nil, err
	}
	size, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if err := c.Skip(4); err != nil {
		return nil, err
	}

	if nameOff != 0 {
		if err := c.JumpU64(nameOff, func() error {
			n.Name, err = c.ReadCString()
			return err
		}); err != nil {
			return nil, err
		}
	}
	if dataOff == 0 {
		return n, nil
	}

	err = c.JumpU64(dataOff, func() error {
		switch {
		case n.Kind == NodeSetVariable:
			ref := &VariableRef{}
			if ref.GUID, err = c.ReadGUID(); err != nil {
				return err
			}
			if ref.NameHash, err = c.ReadU32(); err != nil {
				return err
			}
			n.Target = ref
		case paramCount > 0:
			for range int(paramCount) {
				p, err := decodeParam(c)
				if err != nil {
					return err
				}
				n.Params = append(n.Params, p)
			}
		default:
			n.Data, err = c.ReadBytes(int(size))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.Name, err)
	}
	return n, nil
}

func decodeParam(c *buf.Cursor) (NodeParam, error) {
	var p NodeParam
	var err error
	if p.NameHash, err = c.ReadU32(); err != nil {
		return p, err
	}
	t, err := c.ReadI32()
	if err != nil {
		return p, err
	}
	p.Type = ParamType(t)
	kind, ok := p.Type.Kind()
	if !ok {
		return p, types.Errorf(types.ErrKindUnsupportedType, "node parameter type %d", t)
	}

	if kind == KindGUID {
		off, err := c.ReadU64()
		if err != nil {
			return p, err
		}
		if err := c.JumpU64(off, func() error {
			p.Value, err = decodeValue(c, KindGUID, false)
			return err
		}); err != nil {
			return p, err
		}
		// inline GUIDs directly follow their offset
		if off == uint64(c.Tell()) {
			if err := c.Skip(16); err != nil {
				return p, err
			}
		}
	} else if p.Value, err = decodeValue(c, kind, false); err != nil {
		return p, err
	}
	return p, c.Align(16)
}

// -----------------------------------------------------------------------------
// Encode
// -----------------------------------------------------------------------------

func encodeExpression(c *buf.Cursor, e *Expression) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if len(e.Nodes) > 0xFFFF {
		return types.Errorf(types.ErrKindLimitExceeded, "%d expression nodes", len(e.Nodes))
	}

	nodesAt := c.ReserveU64()
	relAt := c.ReserveU64()
	c.WriteU16(uint16(len(e.Nodes)))
	c.WriteU16(e.OutputNodeID)
	c.WriteU32(0)

	type slots struct{ name, data, size int }
	fields := make([]slots, len(e.Nodes))

	if len(e.Nodes) > 0 {
		_ = c.Align(16)
		c.PatchHere(nodesAt)
		for i, n := range e.Nodes {
			fields[i].name = c.ReserveU64()
			fields[i].data = c.ReserveU64()
			c.WriteU16(uint16(n.Kind))
			c.WriteU16(n.ID)
			c.WriteU16(uint16(len(n.Params)))
			c.WriteU16(0)
			fields[i].size = c.Tell()
			c.WriteU32(0)
			c.WriteU32(0)
		}
	}

	for i, n := range e.Nodes {
		if n.Name != "" {
			c.PatchHere(fields[i].name)
			c.WriteCString(n.Name)
			_ = c.Align(16)
		}
		if !n.hasPayload() {
			continue
		}
		start := c.Tell()
		c.PatchHere(fields[i].data)
		if err := n.writePayload(c); err != nil {
			return fmt.Errorf("node %d: %w", n.ID, err)
		}
		c.PatchU32At(fields[i].size, uint32(c.Tell()-start))
		_ = c.Align(16)
	}

	if len(e.Relations) > 0 {
		_ = c.Align(16)
		c.PatchHere(relAt)
		for _, r := range e.Relations {
			c.WriteU16(r.SrcNode)
			c.WriteU16(r.SrcPort)
			c.WriteU16(r.DstNode)
			c.WriteU16(r.DstPort)
		}
		c.WriteZeros(relationSize)
	}
	return c.Err()
}

func (n *Node) hasPayload() bool {
	return n.Kind == NodeSetVariable || len(n.Params) > 0 || len(n.Data) > 0
}

func (n *Node) writePayload(c *buf.Cursor) error {
	switch {
	case n.Kind == NodeSetVariable:
		ref := n.Target
		if ref == nil {
			ref = &VariableRef{}
		}
		c.WriteGUID(ref.GUID)
		c.WriteU32(ref.NameHash)
	case len(n.Params) > 0:
		for _, p := range n.Params {
			kind, ok := p.Type.Kind()
			if !ok {
				return types.Errorf(types.ErrKindUnsupportedType, "node parameter type %d", int32(p.Type))
			}
			c.WriteU32(p.NameHash)
			c.WriteI32(int32(p.Type))
			if kind == KindGUID {
				c.WriteU64(uint64(c.Tell() + 8))
			}
			cd, err := lookupCodec(kind, false)
			if err != nil {
				return err
			}
			cd.encode(c, &p.Value)
			_ = c.Align(16)
		}
	default:
		c.WriteBytes(n.Data)
	}
	return nil
}

// Clone returns a deep copy of the expression.
func (e *Expression) Clone() *Expression {
	if e == nil {
		return nil
	}
	out := &Expression{OutputNodeID: e.OutputNodeID, Relations: slices.Clone(e.Relations)}
	for _, n := range e.Nodes {
		cp := *n
		cp.Data = slices.Clone(n.Data)
		cp.Params = slices.Clone(n.Params)
		if n.Target != nil {
			t := *n.Target
			cp.Target = &t
		}
		out.Nodes = append(out.Nodes, &cp)
	}
	return out
}

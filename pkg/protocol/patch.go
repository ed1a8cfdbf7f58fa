package protocol

// PatchOp is the type of a tree update operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchInsertNode  PatchOp = 0x04 // Insert new subtree
	PatchRemoveNode  PatchOp = 0x05 // Remove node
	PatchMoveNode    PatchOp = 0x06 // Move node within its parent
	PatchReplaceNode PatchOp = 0x07 // Replace node with a new subtree
	PatchSetProp     PatchOp = 0x08 // Set DOM property
	PatchAddEvent    PatchOp = 0x09 // Subscribe to a client event
	PatchRemoveEvent PatchOp = 0x0A // Unsubscribe from a client event
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	case PatchSetProp:
		return "SetProp"
	case PatchAddEvent:
		return "AddEvent"
	case PatchRemoveEvent:
		return "RemoveEvent"
	default:
		return "Unknown"
	}
}

// Patch is a single tree operation, targeting a node by its stable
// numeric ID.
type Patch struct {
	Op     PatchOp
	Node   uint64    // Target node ID
	Key    string    // Attribute/property/event key
	Value  string    // Value for text/attr ops
	Parent uint64    // Parent ID for InsertNode/MoveNode
	Ref    uint64    // Insert-before reference; 0 means append
	Tree   *WireNode // Subtree for InsertNode/ReplaceNode
}

// PatchesFrame is one flush worth of patches with a session sequence
// number.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame to bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame using the provided encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
}

func encodePatch(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))
	e.WriteUvarint(p.Node)

	switch p.Op {
	case PatchSetText:
		e.WriteString(p.Value)

	case PatchSetAttr, PatchSetProp:
		e.WriteString(p.Key)
		e.WriteString(p.Value)

	case PatchRemoveAttr, PatchAddEvent, PatchRemoveEvent:
		e.WriteString(p.Key)

	case PatchInsertNode:
		e.WriteUvarint(p.Parent)
		e.WriteUvarint(p.Ref)
		EncodeWireNode(e, p.Tree)

	case PatchRemoveNode:
		// Node ID is sufficient.

	case PatchMoveNode:
		e.WriteUvarint(p.Parent)
		e.WriteUvarint(p.Ref)

	case PatchReplaceNode:
		EncodeWireNode(e, p.Tree)
	}
}

// DecodePatches decodes a patches frame from bytes.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	return DecodePatchesFrom(NewDecoder(data))
}

// DecodePatchesFrom decodes a patches frame from a decoder.
func DecodePatchesFrom(d *Decoder) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	patches := make([]Patch, count)
	for i := 0; i < count; i++ {
		if err := decodePatch(d, &patches[i]); err != nil {
			return nil, err
		}
	}
	return &PatchesFrame{Seq: seq, Patches: patches}, nil
}

func decodePatch(d *Decoder, p *Patch) error {
	opByte, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = PatchOp(opByte)

	if p.Node, err = d.ReadUvarint(); err != nil {
		return err
	}

	switch p.Op {
	case PatchSetText:
		p.Value, err = d.ReadString()

	case PatchSetAttr, PatchSetProp:
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()

	case PatchRemoveAttr, PatchAddEvent, PatchRemoveEvent:
		p.Key, err = d.ReadString()

	case PatchInsertNode:
		if p.Parent, err = d.ReadUvarint(); err != nil {
			return err
		}
		if p.Ref, err = d.ReadUvarint(); err != nil {
			return err
		}
		p.Tree, err = DecodeWireNode(d)

	case PatchRemoveNode:
		// No additional data.

	case PatchMoveNode:
		if p.Parent, err = d.ReadUvarint(); err != nil {
			return err
		}
		p.Ref, err = d.ReadUvarint()

	case PatchReplaceNode:
		p.Tree, err = DecodeWireNode(d)

	default:
		// Unknown op with no known payload shape. Tolerated for forward
		// compatibility; the remaining frame may still decode if the op
		// carried no data.
	}
	return err
}

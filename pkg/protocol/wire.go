package protocol

import (
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// WireNode is the serializable projection of a vnode subtree. Event
// handlers do not cross the wire; instead Events lists the event types
// the client must forward back as EventFrames.
type WireNode struct {
	Kind     vdom.Kind
	Tag      string
	ID       uint64
	Attrs    map[string]string
	Events   []string
	Children []*WireNode
	Text     string
}

// nullNode marks a nil node on the wire.
const nullNode = 0xFF

// EncodeWireNode encodes a wire tree using the provided encoder.
func EncodeWireNode(e *Encoder, node *WireNode) {
	if node == nil {
		e.WriteByte(nullNode)
		return
	}

	e.WriteByte(byte(node.Kind))

	switch node.Kind {
	case vdom.KindElement:
		e.WriteString(node.Tag)
		e.WriteUvarint(node.ID)

		e.WriteUvarint(uint64(len(node.Attrs)))
		for k, v := range node.Attrs {
			e.WriteString(k)
			e.WriteString(v)
		}

		e.WriteUvarint(uint64(len(node.Events)))
		for _, ev := range node.Events {
			e.WriteString(ev)
		}

		e.WriteUvarint(uint64(len(node.Children)))
		for _, child := range node.Children {
			EncodeWireNode(e, child)
		}

	case vdom.KindText, vdom.KindComment:
		e.WriteUvarint(node.ID)
		e.WriteString(node.Text)

	default:
		// Component placeholders are rendered before encoding; anything
		// else goes out as an empty comment.
		e.WriteUvarint(node.ID)
		e.WriteString("")
	}
}

// DecodeWireNode decodes a wire tree, enforcing MaxNodeDepth.
func DecodeWireNode(d *Decoder) (*WireNode, error) {
	return decodeWireNode(d, 0)
}

func decodeWireNode(d *Decoder, depth int) (*WireNode, error) {
	if depth > MaxNodeDepth {
		return nil, ErrDepthExceeded
	}

	kindByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kindByte == nullNode {
		return nil, nil
	}

	node := &WireNode{Kind: vdom.Kind(kindByte)}

	switch node.Kind {
	case vdom.KindElement:
		if node.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}
		if node.ID, err = d.ReadUvarint(); err != nil {
			return nil, err
		}

		attrCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		if attrCount > 0 {
			node.Attrs = make(map[string]string, attrCount)
			for i := 0; i < attrCount; i++ {
				k, err := d.ReadString()
				if err != nil {
					return nil, err
				}
				v, err := d.ReadString()
				if err != nil {
					return nil, err
				}
				node.Attrs[k] = v
			}
		}

		evCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		for i := 0; i < evCount; i++ {
			ev, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			node.Events = append(node.Events, ev)
		}

		childCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		if childCount > 0 {
			node.Children = make([]*WireNode, childCount)
			for i := 0; i < childCount; i++ {
				child, err := decodeWireNode(d, depth+1)
				if err != nil {
					return nil, err
				}
				node.Children[i] = child
			}
		}

	default:
		if node.ID, err = d.ReadUvarint(); err != nil {
			return nil, err
		}
		if node.Text, err = d.ReadString(); err != nil {
			return nil, err
		}
	}

	return node, nil
}

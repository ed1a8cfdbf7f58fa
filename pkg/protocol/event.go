package protocol

// EventFrame is a client interaction forwarded to the server runtime: an
// event of the given type fired on the node with the given ID. Value
// carries the input value for form controls, empty otherwise.
type EventFrame struct {
	Seq   uint64
	Node  uint64
	Type  string
	Value string
}

// EncodeEvent encodes an event frame to bytes.
func EncodeEvent(ef *EventFrame) []byte {
	e := NewEncoder()
	EncodeEventTo(e, ef)
	return e.Bytes()
}

// EncodeEventTo encodes an event frame using the provided encoder.
func EncodeEventTo(e *Encoder, ef *EventFrame) {
	e.WriteUvarint(ef.Seq)
	e.WriteUvarint(ef.Node)
	e.WriteString(ef.Type)
	e.WriteString(ef.Value)
}

// DecodeEvent decodes an event frame from bytes.
func DecodeEvent(data []byte) (*EventFrame, error) {
	return DecodeEventFrom(NewDecoder(data))
}

// DecodeEventFrom decodes an event frame from a decoder.
func DecodeEventFrom(d *Decoder) (*EventFrame, error) {
	ef := &EventFrame{}
	var err error
	if ef.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ef.Node, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ef.Type, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ef.Value, err = d.ReadString(); err != nil {
		return nil, err
	}
	return ef, nil
}

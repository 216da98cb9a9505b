package layout

// Meta is per-instance layout metadata (arrmeta) paired with a Type Descriptor.
//
// Which fields are meaningful depends on the kind:
//   - fixed dim: DimSize, Stride, Elem
//   - var dim: Stride, Offset, Elem
//   - tuple, struct: FieldOffsets, Fields
//   - option: PayloadOffset, Elem
//   - categorical: Elem (layout of the category type)
//
// Scalars carry no metadata and use a nil *Meta. A Meta must match its type;
// mismatches are not detected.
type Meta struct {
	Elem          *Meta
	Fields        []*Meta
	FieldOffsets  []uint32
	DimSize       uint32
	Stride        uint32
	Offset        uint32
	PayloadOffset uint32
}

// Field returns the metadata of field i, nil when m is nil.
func (m *Meta) Field(i int) *Meta {
	if m == nil || i >= len(m.Fields) {
		return nil
	}
	return m.Fields[i]
}

// ElemMeta returns m.Elem, nil when m is nil.
func (m *Meta) ElemMeta() *Meta {
	if m == nil {
		return nil
	}
	return m.Elem
}

package value

// FieldDecl is one declared field of a struct blueprint: its name and
// declared type. Its slot is its position in Struct.Fields (order of
// declaration, and the order instantiation expressions must supply
// values in).
type FieldDecl struct {
	Name string
	Type Type
}

// Struct is a blueprint: the compile-time-known shape of a struct
// declaration, shared by every Instance created from it.
type Struct struct {
	Name        string
	Fields      []FieldDecl
	FieldIndex  map[string]int // field name -> slot in Fields/Instance.Values
}

func (s *Struct) String() string { return "<struct " + s.Name + ">" }
func (s *Struct) Kind() Kind     { return KindStruct }

// NewStruct builds a Struct blueprint from an ordered field list.
func NewStruct(name string, fields []FieldDecl) *Struct {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Name] = i
	}
	return &Struct{Name: name, Fields: fields, FieldIndex: idx}
}

// Instance is a blueprint handle plus its ordered field cells. Fields
// are held as Cells (not bare Values) so that GetField returns a
// shared alias consistent with GetLocal/GetGlobal's aliasing contract.
type Instance struct {
	Blueprint *Struct
	Values    []*Cell
}

func (i *Instance) String() string { return "<instance of " + i.Blueprint.Name + ">" }
func (i *Instance) Kind() Kind     { return KindStruct }

// Field returns the cell for the named field, or nil if no such field
// exists on the instance's blueprint.
func (i *Instance) Field(name string) *Cell {
	idx, ok := i.Blueprint.FieldIndex[name]
	if !ok {
		return nil
	}
	return i.Values[idx]
}

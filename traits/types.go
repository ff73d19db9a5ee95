package traits

import "github.com/fragnova/protos/categories"

// Tag identifies a VariableType case on the wire. Assignments are pinned
// explicitly; wire stability depends on them never being renumbered.
type Tag uint64

const (
	TagNone    Tag = 0
	TagAny     Tag = 1
	TagEnum    Tag = 2
	TagBool    Tag = 3
	TagInt     Tag = 4
	TagInt2    Tag = 5
	TagInt3    Tag = 6
	TagInt4    Tag = 7
	TagInt8    Tag = 8
	TagInt16   Tag = 9
	TagFloat   Tag = 10
	TagFloat2  Tag = 11
	TagFloat3  Tag = 12
	TagFloat4  Tag = 13
	TagColor   Tag = 14
	TagBytes   Tag = 15
	TagString  Tag = 16
	TagImage   Tag = 17
	TagSeq     Tag = 18
	TagTable   Tag = 19
	TagObject  Tag = 20
	TagAudio   Tag = 21
	TagMesh    Tag = 22
	TagCode    Tag = 23
	TagChannel Tag = 24
	TagEvent   Tag = 25
	TagProto   Tag = 26
)

// VariableType describes the shape a variable may take. It is a closed
// tagged union: the only implementations are the variant types in this
// package. Recursive cases (Channel, Event, Code) own their nested types
// exclusively, so a value is always a tree, never a cycle.
type VariableType interface {
	variableType()
}

// None.
type None struct{}

// Any matches any shape.
type Any struct{}

// Enum identifies an enumeration by vendor and type id.
type Enum struct {
	VendorID uint32
	TypeID   uint32
}

// Bool.
type Bool struct{}

// Int is a 64-bit integer with optional bounds.
type Int struct {
	Limits *Limits
}

// Int2 is a vector of 2 64-bit integers.
type Int2 struct {
	Limits [2]*Limits
}

// Int3 is a vector of 3 32-bit integers.
type Int3 struct {
	Limits [3]*Limits
}

// Int4 is a vector of 4 32-bit integers.
type Int4 struct {
	Limits [4]*Limits
}

// Int8 is a vector of 8 16-bit integers.
type Int8 struct {
	Limits [8]*Limits
}

// Int16 is a vector of 16 8-bit integers.
type Int16 struct {
	Limits [16]*Limits
}

// Float is a 64-bit float with optional fixed-point bounds.
type Float struct {
	Limits *Limits
}

// Float2 is a vector of 2 64-bit floats.
type Float2 struct {
	Limits [2]*Limits
}

// Float3 is a vector of 3 32-bit floats.
type Float3 struct {
	Limits [3]*Limits
}

// Float4 is a vector of 4 32-bit floats.
type Float4 struct {
	Limits [4]*Limits
}

// Color is a vector of 4 uint8.
type Color struct{}

// Bytes is an opaque byte blob.
type Bytes struct{}

// String is a text value.
type String struct{}

// Image.
type Image struct{}

// Seq is a sequence whose elements may take any of the listed types.
// LengthLimits bounds the element count: absent means unbounded, and a
// bound with Min == Max pins a fixed length.
type Seq struct {
	Types        []VariableType
	LengthLimits *Limits
}

// Table is a keyed table described by two parallel arrays: Keys[i] names
// the field whose value takes one of Types[i]. The arrays must be the same
// length by construction. An empty key is a wildcard meaning "any field
// name here", enabling repeatable slots.
type Table struct {
	Keys  []string
	Types [][]VariableType
}

// Object identifies an object by vendor and type id.
type Object struct {
	VendorID uint32
	TypeID   uint32
}

// Audio.
type Audio struct{}

// Mesh.
type Mesh struct{}

// Code is a function-like descriptor: the variables it requires in scope,
// the variables it exposes, its input types and its output type.
type Code struct {
	Kind     CodeKind
	Requires []NamedType
	Exposes  []NamedType
	Inputs   []VariableType
	Output   VariableType
}

// Channel carries values of one nested type.
type Channel struct {
	Type VariableType
}

// Event carries values of one nested type.
type Event struct {
	Type VariableType
}

// Proto references content by taxonomy category, including other traits by
// content hash.
type Proto struct {
	Category categories.Category
}

func (None) variableType()    {}
func (Any) variableType()     {}
func (Enum) variableType()    {}
func (Bool) variableType()    {}
func (Int) variableType()     {}
func (Int2) variableType()    {}
func (Int3) variableType()    {}
func (Int4) variableType()    {}
func (Int8) variableType()    {}
func (Int16) variableType()   {}
func (Float) variableType()   {}
func (Float2) variableType()  {}
func (Float3) variableType()  {}
func (Float4) variableType()  {}
func (Color) variableType()   {}
func (Bytes) variableType()   {}
func (String) variableType()  {}
func (Image) variableType()   {}
func (Seq) variableType()     {}
func (Table) variableType()   {}
func (Object) variableType()  {}
func (Audio) variableType()   {}
func (Mesh) variableType()    {}
func (Code) variableType()    {}
func (Channel) variableType() {}
func (Event) variableType()   {}
func (Proto) variableType()   {}

// NamedType pairs a variable name with its type.
type NamedType struct {
	Name string
	Type VariableType
}

// CodeKind is the closed sum of code kinds: a list of shards to be injected
// into larger blocks, or an actual wire.
type CodeKind interface {
	codeKind()
}

// Shards is a list of shards.
type Shards struct{}

// Wire is an actual wire, optionally marked as looped.
type Wire struct {
	Looped *bool
}

func (Shards) codeKind() {}
func (Wire) codeKind()   {}

const (
	codeKindShards = 0
	codeKindWire   = 1
)

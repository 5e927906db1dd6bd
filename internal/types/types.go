// Package types holds the primitive type lattice of the specification's §3
// and the expression-class enumeration of §4.4. The classification rules
// themselves live in internal/classify.
package types

// Primitive is the closed set of TPC primitive types. Unauthorized is an
// internal sentinel used only to signal a parse-time type error; it never
// appears in a well-formed program table.
type Primitive int

const (
	Void Primitive = iota
	Char
	Int
	Unauthorized
)

// Size returns the layout width in bytes of a scalar of this type, per the
// size rule in §3: char=1, int=4, void=0.
func (p Primitive) Size() int {
	switch p {
	case Char:
		return 1
	case Int:
		return 4
	default:
		return 0
	}
}

func (p Primitive) String() string {
	switch p {
	case Void:
		return "void"
	case Char:
		return "char"
	case Int:
		return "int"
	default:
		return "unauthorized"
	}
}

// Parse maps a type-name string to its Primitive, satisfying the
// name->kind->name round trip for {"char","int","void"}.
func Parse(name string) (Primitive, bool) {
	switch name {
	case "void":
		return Void, true
	case "char":
		return Char, true
	case "int":
		return Int, true
	default:
		return Unauthorized, false
	}
}

// Class is the coarse semantic class assigned to an expression for error
// detection purposes (§4.4). It does not drive code shape.
type Class int

const (
	VoidClass Class = iota
	IntValued
	CharValued
	AddressValued
)

func (c Class) String() string {
	switch c {
	case IntValued:
		return "int"
	case CharValued:
		return "char"
	case AddressValued:
		return "address"
	default:
		return "void"
	}
}

// FromPrimitive maps a resolved scalar's primitive type to its expression
// class, used when classifying a scalar identifier or literal.
func FromPrimitive(p Primitive) Class {
	switch p {
	case Char:
		return CharClass()
	case Int:
		return IntValued
	default:
		return VoidClass
	}
}

// CharClass exists so call sites read types.CharClass() alongside
// types.IntValued for symmetry; it is simply CharValued.
func CharClass() Class { return CharValued }

// AddressClass exists for the same symmetry as CharClass; it is simply
// AddressValued.
func AddressClass() Class { return AddressValued }

// IsVoid reports whether p is the void primitive.
func (p Primitive) IsVoid() bool { return p == Void }

// IsScalarDeclarable reports whether p is legal as a declared variable type
// (char or int only -- void is legal only as a return type or as the
// parameter-list "no parameters" marker).
func (p Primitive) IsScalarDeclarable() bool { return p == Char || p == Int }

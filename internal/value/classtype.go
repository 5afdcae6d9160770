package value

// ClassType is a declared-type annotation: used at parse time for variable
// and parameter annotations, and at runtime for coercion on store, assign,
// argument bind, and return.
type ClassType struct {
	Tag        Tag
	StructName string // only meaningful when Tag == TagStruct
}

var (
	ClassAny     = ClassType{Tag: TagNone} // Any is represented by the zero tag; see IsAny
	ClassUint    = ClassType{Tag: TagUint}
	ClassInt     = ClassType{Tag: TagInt}
	ClassDecimal = ClassType{Tag: TagDecimal}
	ClassStr     = ClassType{Tag: TagStr}
	ClassBool    = ClassType{Tag: TagBool}
)

// IsAny distinguishes "Any" from "None" tag reuse: ClassType never
// legitimately needs to represent a None-typed variable (the language has
// no "none" annotation), so Tag==TagNone always means Any here.
func (c ClassType) IsAny() bool { return c.Tag == TagNone }

func ClassStruct(name string) ClassType {
	return ClassType{Tag: TagStruct, StructName: name}
}

func (c ClassType) String() string {
	if c.IsAny() {
		return "any"
	}
	if c.Tag == TagStruct {
		return c.StructName
	}
	return c.Tag.String()
}

// InferClassType derives a ClassType from a value's runtime tag, for
// InferDeclaration / AddInferVariable.
func InferClassType(v Value) ClassType {
	switch v.Tag {
	case TagNone:
		return ClassAny
	case TagUint:
		return ClassUint
	case TagInt:
		return ClassInt
	case TagDecimal:
		return ClassDecimal
	case TagStr:
		return ClassStr
	case TagBool:
		return ClassBool
	case TagStruct:
		return ClassStruct(v.Struct.Name)
	}
	return ClassAny
}

// Coerce applies this declared type's conversion rule to val, per §4.7 /
// §4.5. Any is pass-through.
func (c ClassType) Coerce(val Value) Value {
	switch {
	case c.IsAny():
		return val
	case c.Tag == TagUint:
		return Uint(val.UintS())
	case c.Tag == TagInt:
		return Int(val.IntS())
	case c.Tag == TagDecimal:
		return Decimal(val.DecimalS())
	case c.Tag == TagStr:
		return Str(val.StringS())
	case c.Tag == TagBool:
		return Bool(val.BoolS())
	case c.Tag == TagStruct:
		return FromStruct(val.StructS(c.StructName))
	}
	fatal("cannot coerce to an unknown type")
	return None()
}

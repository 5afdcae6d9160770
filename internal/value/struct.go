package value

// StructInstance is a named, ordered set of (field name, value) pairs.
// Field order is significant: positional construction assigns the i-th
// argument to the i-th declared field.
type StructInstance struct {
	Name        string
	FieldNames  []string
	FieldValues []Value
}

// NewStructInstance returns a template instance with the given field names,
// each defaulted to None. Used both for a struct declaration's registered
// template and for NewStruct at runtime.
func NewStructInstance(name string, fieldNames []string) StructInstance {
	values := make([]Value, len(fieldNames))
	for i := range values {
		values[i] = None()
	}
	names := make([]string, len(fieldNames))
	copy(names, fieldNames)
	return StructInstance{Name: name, FieldNames: names, FieldValues: values}
}

// clone deep-copies the field value slice so struct assignment never
// aliases another instance's storage.
func (s StructInstance) clone() StructInstance {
	values := make([]Value, len(s.FieldValues))
	for i, v := range s.FieldValues {
		values[i] = v.Clone()
	}
	names := make([]string, len(s.FieldNames))
	copy(names, s.FieldNames)
	return StructInstance{Name: s.Name, FieldNames: names, FieldValues: values}
}

// Get returns the value of a named field. Missing field is fatal.
func (s StructInstance) Get(name string) Value {
	for i, n := range s.FieldNames {
		if n == name {
			return s.FieldValues[i]
		}
	}
	fatal("cannot get field '%s' on structure '%s' as it doesn't exist", name, s.Name)
	return None()
}

// SetByIndex returns a copy of s with field i set to val. i out of range is
// the caller's responsibility to reject (the generator rejects arity
// mismatches before this ever runs — see StructSetByIndex in internal/vm).
func (s StructInstance) SetByIndex(i int, val Value) StructInstance {
	out := s.clone()
	out.FieldValues[i] = val.Clone()
	return out
}

// SetPath walks fields[:len-1] as nested struct fields and writes val into
// the final named field, returning the updated top-level struct. Any
// intermediate name that isn't a struct-valued field, or a final name that
// doesn't exist, is fatal.
func (s StructInstance) SetPath(fields []string, val Value) StructInstance {
	if len(fields) == 0 {
		fatal("cannot set a structure with no field path")
	}

	root := s.clone()
	cur := &root

	for _, name := range fields[:len(fields)-1] {
		idx := -1
		for i, n := range cur.FieldNames {
			if n == name {
				idx = i
				break
			}
		}
		if idx == -1 {
			fatal("cannot set fields %v on structure as it doesn't exist", fields)
		}
		if cur.FieldValues[idx].Tag != TagStruct {
			fatal("expected to find a structure at field '%s'", name)
		}
		next := cur.FieldValues[idx].Struct
		cur.FieldValues[idx] = FromStruct(next)
		cur = &cur.FieldValues[idx].Struct
	}

	last := fields[len(fields)-1]
	for i, n := range cur.FieldNames {
		if n == last {
			cur.FieldValues[i] = val.Clone()
			return root
		}
	}
	fatal("cannot set fields %v on structure as it doesn't exist", fields)
	return root
}

// FieldIndex returns the declared index of name, or -1.
func (s StructInstance) FieldIndex(name string) int {
	for i, n := range s.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

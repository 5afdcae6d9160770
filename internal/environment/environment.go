// Package environment implements Copper's scope-stamped variable table plus
// the function/struct registry shape it shares with internal/chunk.
package environment

import (
	"fmt"

	"github.com/copperlang/copper/internal/value"
)

// EntryKind discriminates the variants of EnvEntry.
type EntryKind uint8

const (
	EntryFunction EntryKind = iota
	EntryNativeFunction
	EntryVariable
	EntryStruct
)

// NativeFunc is the calling convention the VM uses to invoke a
// host-provided native: values arrive in left-to-right (source) order and
// it returns exactly one value.
type NativeFunc func(args []value.Value) value.Value

// EnvEntry is one binding. Only the fields for Kind are meaningful.
type EnvEntry struct {
	Kind EntryKind

	Name string

	// Function / NativeFunction
	ReturnType value.ClassType
	ArgCount   int
	CodeOffset int        // Function only
	Native     NativeFunc // NativeFunction only

	// Variable
	Value        value.Value
	DeclaredType value.ClassType
	ScopeDepth   int

	// Struct
	Template value.StructInstance
}

func (e EnvEntry) String() string {
	switch e.Kind {
	case EntryFunction:
		return fmt.Sprintf("Function: name[%q], bytecode_position[%d]", e.Name, e.CodeOffset)
	case EntryNativeFunction:
		return fmt.Sprintf("NativeFunction: name[%q]", e.Name)
	case EntryVariable:
		return fmt.Sprintf("Variable: name[%q], type[%s], val[%v], scope[%d]", e.Name, e.DeclaredType, e.Value, e.ScopeDepth)
	case EntryStruct:
		return fmt.Sprintf("Struct: name[%q]", e.Template.Name)
	}
	return "unknown entry"
}

// RuntimeError mirrors value.RuntimeError so callers of this package can
// recover a single error type; the VM is the only recovery site.
type RuntimeError struct{ Message string }

func (e *RuntimeError) Error() string { return e.Message }

func fatal(format string, args ...any) {
	panic(&RuntimeError{Message: fmt.Sprintf(format, args...)})
}

// Environment is a flat list of entries plus a current-scope counter.
// Variable lookup walks from current_scope down to 0; function/struct
// lookup is scope-agnostic. This mirrors the reference implementation's
// linear-scan-over-a-flat-list design rather than a stack of maps: the
// observable semantics (innermost-wins, scope-bound eviction) are
// identical either way, and this is the simpler one to keep correct
// alongside the parallel code-offset bookkeeping in internal/chunk.
type Environment struct {
	Entries      []EnvEntry
	CurrentScope int
}

// New returns an empty environment at scope 0.
func New() *Environment {
	return &Environment{}
}

// AddStruct registers a struct declaration's template. Struct names are not
// namespace-checked against functions (they're looked up separately).
func (e *Environment) AddStruct(template value.StructInstance) {
	e.Entries = append(e.Entries, EnvEntry{Kind: EntryStruct, Name: template.Name, Template: template})
}

func (e *Environment) nameTaken(name string) bool {
	for _, entry := range e.Entries {
		if (entry.Kind == EntryFunction || entry.Kind == EntryNativeFunction) && entry.Name == name {
			return true
		}
	}
	return false
}

// AddFunction registers a user function. Fatal if name is already bound to
// any function kind.
func (e *Environment) AddFunction(name string, ret value.ClassType, argCount, codeOffset int) {
	if e.nameTaken(name) {
		fatal("cannot assign a function with name '%s' as one already exists", name)
	}
	e.Entries = append(e.Entries, EnvEntry{
		Kind: EntryFunction, Name: name, ReturnType: ret, ArgCount: argCount, CodeOffset: codeOffset,
	})
}

// AddNativeFunction registers a host-provided native.
func (e *Environment) AddNativeFunction(name string, argCount int, fn NativeFunc) {
	if e.nameTaken(name) {
		fatal("cannot assign a function with name '%s' as one already exists", name)
	}
	e.Entries = append(e.Entries, EnvEntry{Kind: EntryNativeFunction, Name: name, ArgCount: argCount, Native: fn})
}

// GetFunction resolves name to a Function or NativeFunction entry. Fatal if
// absent.
func (e *Environment) GetFunction(name string) EnvEntry {
	for _, entry := range e.Entries {
		if (entry.Kind == EntryFunction || entry.Kind == EntryNativeFunction) && entry.Name == name {
			return entry
		}
	}
	fatal("couldn't find a function by the name of '%s'", name)
	return EnvEntry{}
}

// HasFunction reports whether name is already registered as a user or
// native function.
func (e *Environment) HasFunction(name string) bool {
	return e.nameTaken(name)
}

// GetStruct returns a fresh copy of the template registered for name.
// Fatal if absent.
func (e *Environment) GetStruct(name string) value.StructInstance {
	for _, entry := range e.Entries {
		if entry.Kind == EntryStruct && entry.Name == name {
			return value.FromStruct(entry.Template).Clone().Struct
		}
	}
	fatal("cannot find a struct by the name of '%s'", name)
	return value.StructInstance{}
}

// HasStruct reports whether name is a registered struct declaration.
func (e *Environment) HasStruct(name string) bool {
	for _, entry := range e.Entries {
		if entry.Kind == EntryStruct && entry.Name == name {
			return true
		}
	}
	return false
}

// RemoveFromScope drops every variable whose scope stamp is >= s.
func (e *Environment) RemoveFromScope(s int) {
	kept := e.Entries[:0]
	for _, entry := range e.Entries {
		if entry.Kind == EntryVariable && entry.ScopeDepth >= s {
			continue
		}
		kept = append(kept, entry)
	}
	e.Entries = kept
}

// AddVariable inserts a type-coerced variable at current_scope, first
// removing any existing same-name entry already at this exact scope
// (shadow-on-redeclare within one scope).
func (e *Environment) AddVariable(name string, ctype value.ClassType, val value.Value) {
	e.removeSameScope(name)
	coerced := ctype.Coerce(val).Clone()
	e.Entries = append(e.Entries, EnvEntry{
		Kind: EntryVariable, Name: name, Value: coerced, DeclaredType: ctype, ScopeDepth: e.CurrentScope,
	})
}

// AddInferVariable inserts a variable whose ClassType is derived from val's
// runtime tag.
func (e *Environment) AddInferVariable(name string, val value.Value) {
	e.removeSameScope(name)
	ctype := value.InferClassType(val)
	e.Entries = append(e.Entries, EnvEntry{
		Kind: EntryVariable, Name: name, Value: val.Clone(), DeclaredType: ctype, ScopeDepth: e.CurrentScope,
	})
}

func (e *Environment) removeSameScope(name string) {
	for i, entry := range e.Entries {
		if entry.Kind == EntryVariable && entry.Name == name && entry.ScopeDepth == e.CurrentScope {
			e.Entries = append(e.Entries[:i], e.Entries[i+1:]...)
			return
		}
	}
}

// GetVariable scans scopes from current_scope down to 0, returning the
// first match. Fatal if absent.
func (e *Environment) GetVariable(name string) EnvEntry {
	for scope := e.CurrentScope; scope >= 0; scope-- {
		for _, entry := range e.Entries {
			if entry.Kind == EntryVariable && entry.Name == name && entry.ScopeDepth == scope {
				return entry
			}
		}
	}
	fatal("couldn't get a variable by the name of '%s'", name)
	return EnvEntry{}
}

// AssignVariable performs the same scoping walk as GetVariable and
// overwrites the matched entry's value, coercing per its declared type. A
// miss is a silent no-op: neither the parser nor the generator checks that
// an assigned name was declared, so assigning to an undeclared name has no
// effect.
func (e *Environment) AssignVariable(name string, val value.Value) {
	for scope := e.CurrentScope; scope >= 0; scope-- {
		for i, entry := range e.Entries {
			if entry.Kind == EntryVariable && entry.Name == name && entry.ScopeDepth == scope {
				e.Entries[i].Value = entry.DeclaredType.Coerce(val).Clone()
				return
			}
		}
	}
}

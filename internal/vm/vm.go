// Package vm executes a compiled internal/chunk.Chunk: a fetch-decode-execute
// loop over a value stack, a separate call-argument staging stack, and the
// three return-discipline stacks that give user functions their call/return
// ABI.
package vm

import (
	"fmt"

	"github.com/copperlang/copper/internal/chunk"
	"github.com/copperlang/copper/internal/config"
	"github.com/copperlang/copper/internal/diagnostics"
	"github.com/copperlang/copper/internal/environment"
	"github.com/copperlang/copper/internal/value"
)

// VM holds all mutable interpreter state for one Chunk's execution.
type VM struct {
	Chunk *chunk.Chunk
	idx   int

	stack     []value.Value
	callStack []value.Value

	Environment *environment.Environment

	functionStartingScope []int
	functionJumpBack      []int
	functionReturnTypes   []value.ClassType

	maxStackSize int
	maxCallDepth int
}

// New returns a VM ready to interpret c, using config.Default() tunables.
func New(c *chunk.Chunk) *VM {
	return NewWithConfig(c, config.Default())
}

// NewWithConfig returns a VM ready to interpret c, enforcing cfg's stack and
// call-depth ceilings.
func NewWithConfig(c *chunk.Chunk, cfg config.Config) *VM {
	vm := &VM{
		Chunk:        c,
		Environment:  environment.New(),
		maxStackSize: cfg.Stack.MaxSize,
		maxCallDepth: cfg.Call.MaxDepth,
	}
	vm.stack = make([]value.Value, 0, cfg.Stack.InitialSize)
	return vm
}

func (vm *VM) push(v value.Value) {
	if vm.maxStackSize > 0 && len(vm.stack) >= vm.maxStackSize {
		fatalDepth(len(vm.stack), "stack overflow: exceeded maximum of %d value(s)", vm.maxStackSize)
	}
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() value.Value {
	if len(vm.stack) == 0 {
		fatal("expected a value when popping from the stack")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) popCallArg() value.Value {
	if len(vm.callStack) == 0 {
		fatal("expected a value when popping from the call stack")
	}
	v := vm.callStack[len(vm.callStack)-1]
	vm.callStack = vm.callStack[:len(vm.callStack)-1]
	return v
}

func fatal(format string, args ...any) {
	panic(&diagnostics.FatalError{Message: fmt.Sprintf(format, args...)})
}

// fatalDepth is fatal but also records the stack/call depth observed at the
// overflow, which the reporter formats with humanize.Comma.
func fatalDepth(depth int, format string, args ...any) {
	panic(&diagnostics.FatalError{Message: fmt.Sprintf(format, args...), StackDepth: depth})
}

// binaryOperands pops the right then the left operand of a binary op, so
// the left one (pushed first) comes back first.
func (vm *VM) binaryOperands() (value.Value, value.Value) {
	b := vm.pop()
	a := vm.pop()
	return a, b
}

// Interpret runs the chunk to completion (OpEndScript or falling off the end
// of the code), recovering any fatal runtime condition into a returned
// *diagnostics.FatalError.
func (vm *VM) Interpret() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*diagnostics.FatalError); ok {
				err = fe
				return
			}
			if re, ok := r.(*value.RuntimeError); ok {
				err = &diagnostics.FatalError{Message: re.Message}
				return
			}
			if re, ok := r.(*environment.RuntimeError); ok {
				err = &diagnostics.FatalError{Message: re.Message}
				return
			}
			panic(r)
		}
	}()

	vm.run()
	return nil
}

func (vm *VM) run() {
	for {
		if vm.idx >= len(vm.Chunk.Code) {
			return
		}
		instr := vm.Chunk.Code[vm.idx]
		vm.idx++

		switch instr.Op {
		case chunk.OpReturn:
			vm.execReturn()

		case chunk.OpEndScript:
			vm.Environment.Entries = nil
			return

		case chunk.OpPush:
			vm.push(instr.Value)

		case chunk.OpPop:
			if len(vm.stack) > 0 {
				vm.stack = vm.stack[:len(vm.stack)-1]
			}

		case chunk.OpAdd:
			a, b := vm.binaryOperands()
			vm.push(value.AddS(a, b))

		case chunk.OpSub:
			a, b := vm.binaryOperands()
			vm.push(value.SubS(a, b))

		case chunk.OpMul:
			a, b := vm.binaryOperands()
			vm.push(value.MulS(a, b))

		case chunk.OpDiv:
			a, b := vm.binaryOperands()
			vm.push(value.DivS(a, b))

		case chunk.OpNegate:
			vm.push(value.Negate(vm.pop()))

		case chunk.OpNot:
			vm.push(value.Not(vm.pop()))

		case chunk.OpTransformToType:
			vm.push(instr.Type.Coerce(vm.pop()))

		case chunk.OpCmpLess:
			a, b := vm.binaryOperands()
			vm.push(value.Bool(value.OrderCompare(a, b, value.OpLess, true, false)))

		case chunk.OpCmpLessEqual:
			a, b := vm.binaryOperands()
			vm.push(value.Bool(value.OrderCompare(a, b, value.OpLessEqual, true, true)))

		case chunk.OpCmpGreater:
			a, b := vm.binaryOperands()
			vm.push(value.Bool(value.OrderCompare(a, b, value.OpGreater, false, false)))

		case chunk.OpCmpGreaterEqual:
			a, b := vm.binaryOperands()
			vm.push(value.Bool(value.OrderCompare(a, b, value.OpGreaterEqual, false, true)))

		case chunk.OpCmpEqual:
			a, b := vm.binaryOperands()
			vm.push(value.Bool(value.EqualCompare(a, b, false)))

		case chunk.OpCmpNotEqual:
			a, b := vm.binaryOperands()
			vm.push(value.Bool(value.EqualCompare(a, b, true)))

		case chunk.OpCmpAnd:
			a, b := vm.binaryOperands()
			vm.push(value.Bool(value.LogicalAnd(a, b)))

		case chunk.OpCmpOr:
			a, b := vm.binaryOperands()
			vm.push(value.Bool(value.LogicalOr(a, b)))

		case chunk.OpJmp:
			vm.idx = instr.Target

		case chunk.OpJmpIfFalse:
			if !vm.pop().BoolS() {
				vm.idx = instr.Target
			}

		case chunk.OpStore:
			val := vm.pop()
			vm.Environment.AddVariable(instr.Name, instr.Type, val)

		case chunk.OpInferStore:
			val := vm.pop()
			vm.Environment.AddInferVariable(instr.Name, val)

		case chunk.OpArgumentStore:
			vm.Environment.AddVariable(instr.Name, instr.Type, vm.popCallArg())

		case chunk.OpLoad:
			entry := vm.Environment.GetVariable(instr.Name)
			vm.push(entry.Value)

		case chunk.OpAssign:
			vm.Environment.AssignVariable(instr.Name, vm.pop())

		case chunk.OpNewStruct:
			template := vm.Chunk.Functions.GetStruct(instr.StructName)
			vm.push(value.FromStruct(value.NewStructInstance(template.Name, template.FieldNames)))

		case chunk.OpStructGet:
			left := vm.pop()
			vm.push(left.Struct.Get(instr.Name))

		case chunk.OpStructSet:
			val := vm.pop()
			current := vm.Environment.GetVariable(instr.Name)
			if current.Value.Tag != value.TagStruct {
				fatal("cannot set a field path on '%s': not a struct", instr.Name)
			}
			updated := current.Value.Struct.SetPath(instr.Fields, val)
			vm.Environment.AssignVariable(instr.Name, value.FromStruct(updated))

		case chunk.OpStructSetByIndex:
			s := vm.pop()
			val := vm.pop()
			if instr.Index < 0 || instr.Index >= len(s.Struct.FieldNames) {
				fatal("cannot set field at index %d on struct '%s': out of range", instr.Index, s.Struct.Name)
			}
			vm.push(value.FromStruct(s.Struct.SetByIndex(instr.Index, val)))

		case chunk.OpCallFunc:
			vm.execCallFunc(instr.Name)

		case chunk.OpPopToCall:
			vm.callStack = append(vm.callStack, vm.pop())

		case chunk.OpStartScope:
			vm.Environment.CurrentScope++

		case chunk.OpEndScope:
			if vm.Environment.CurrentScope != 0 {
				vm.Environment.CurrentScope--
			}
			vm.Environment.RemoveFromScope(vm.Environment.CurrentScope + 1)

		default:
			fatal("unknown opcode encountered during execution")
		}
	}
}

func (vm *VM) execReturn() {
	if len(vm.functionJumpBack) == 0 {
		fatal("cannot return out of a function")
	}

	last := len(vm.functionJumpBack) - 1
	vm.idx = vm.functionJumpBack[last]
	vm.functionJumpBack = vm.functionJumpBack[:last]

	lastScope := len(vm.functionStartingScope) - 1
	startingScope := vm.functionStartingScope[lastScope]
	vm.functionStartingScope = vm.functionStartingScope[:lastScope]
	vm.Environment.RemoveFromScope(startingScope)

	lastType := len(vm.functionReturnTypes) - 1
	ctype := vm.functionReturnTypes[lastType]
	vm.functionReturnTypes = vm.functionReturnTypes[:lastType]

	if !ctype.IsAny() {
		vm.push(ctype.Coerce(vm.pop()))
	}
}

// execCallFunc resolves name to a user function or a native, and dispatches
// per the language's call ABI: a user function stages a return frame and
// jumps into the chunk; a native receives its arguments left-to-right (the
// call stack arrives in reverse call order, so it is reversed once before
// invocation) and returns exactly one value.
func (vm *VM) execCallFunc(name string) {
	entry := vm.Chunk.Functions.GetFunction(name)

	switch entry.Kind {
	case environment.EntryFunction:
		if len(vm.callStack) != entry.ArgCount {
			fatal("expected %d argument(s) for '%s', but got %d", entry.ArgCount, name, len(vm.callStack))
		}
		if vm.maxCallDepth > 0 && len(vm.functionJumpBack) >= vm.maxCallDepth {
			fatalDepth(len(vm.functionJumpBack), "call stack overflow: exceeded maximum depth of %d", vm.maxCallDepth)
		}
		vm.functionJumpBack = append(vm.functionJumpBack, vm.idx)
		vm.functionStartingScope = append(vm.functionStartingScope, vm.Environment.CurrentScope+1)
		vm.functionReturnTypes = append(vm.functionReturnTypes, entry.ReturnType)
		vm.idx = entry.CodeOffset

	case environment.EntryNativeFunction:
		if len(vm.callStack) != entry.ArgCount {
			fatal("expected %d argument(s) for '%s', but got %d", entry.ArgCount, name, len(vm.callStack))
		}
		args := make([]value.Value, len(vm.callStack))
		for i, v := range vm.callStack {
			args[len(vm.callStack)-1-i] = v
		}
		vm.callStack = vm.callStack[:0]
		vm.push(entry.Native(args))

	default:
		fatal("expected to get a function named '%s'", name)
	}
}

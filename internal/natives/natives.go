// Package natives provides the default host functions bound into a Chunk
// before a program runs: print, println, input, inputln, abs, type_str.
// Each has arity 1 and returns exactly one value, matching the language's
// native calling convention.
package natives

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/copperlang/copper/internal/environment"
	"github.com/copperlang/copper/internal/value"
)

// IO bundles the streams natives read from and write to, so tests can swap
// in buffers instead of the real terminal.
type IO struct {
	Out io.Writer
	In  *bufio.Reader
}

func readLine(r *bufio.Reader) string {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return line
}

func print_(io IO) environment.NativeFunc {
	return func(args []value.Value) value.Value {
		fmt.Fprint(io.Out, args[0].StringS())
		return value.None()
	}
}

func println_(io IO) environment.NativeFunc {
	return func(args []value.Value) value.Value {
		fmt.Fprintln(io.Out, args[0].StringS())
		return value.None()
	}
}

func input_(io IO) environment.NativeFunc {
	return func(args []value.Value) value.Value {
		fmt.Fprint(io.Out, args[0].StringS())
		line := readLine(io.In)
		return value.Str(strings.TrimRight(line, "\r\n"))
	}
}

func inputln_(io IO) environment.NativeFunc {
	return func(args []value.Value) value.Value {
		fmt.Fprintln(io.Out, args[0].StringS())
		line := readLine(io.In)
		return value.Str(line)
	}
}

func abs_() environment.NativeFunc {
	return func(args []value.Value) value.Value {
		v := args[0]
		switch v.Tag {
		case value.TagInt:
			n := v.Int
			if n < 0 {
				n = -n
			}
			return value.Int(n)
		case value.TagDecimal:
			d := v.Decimal
			if d < 0 {
				d = -d
			}
			return value.Decimal(d)
		case value.TagUint:
			return v
		default:
			panic(&value.RuntimeError{Message: fmt.Sprintf("cannot take 'abs' of a value of type '%s'", v.Tag)})
		}
	}
}

func typeStr_() environment.NativeFunc {
	return func(args []value.Value) value.Value {
		return value.Str(args[0].TypeName())
	}
}

// BindAll registers the six default natives through bind, reading from io.In and
// writing to io.Out.
func BindAll(bind func(name string, argCount int, fn environment.NativeFunc), io IO) {
	bind("print", 1, print_(io))
	bind("println", 1, println_(io))
	bind("input", 1, input_(io))
	bind("inputln", 1, inputln_(io))
	bind("abs", 1, abs_())
	bind("type_str", 1, typeStr_())
}

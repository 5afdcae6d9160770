package natives

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/copperlang/copper/internal/environment"
	"github.com/copperlang/copper/internal/value"
)

func bind(t *testing.T, io IO) map[string]environment.NativeFunc {
	t.Helper()
	fns := map[string]environment.NativeFunc{}
	BindAll(func(name string, argCount int, fn environment.NativeFunc) {
		fns[name] = fn
	}, io)
	return fns
}

func TestPrintWritesWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	fns := bind(t, IO{Out: &out, In: bufio.NewReader(strings.NewReader(""))})
	fns["print"]([]value.Value{value.Str("hi")})
	if out.String() != "hi" {
		t.Errorf("out = %q, want %q", out.String(), "hi")
	}
}

func TestPrintlnWritesWithNewline(t *testing.T) {
	var out bytes.Buffer
	fns := bind(t, IO{Out: &out, In: bufio.NewReader(strings.NewReader(""))})
	fns["println"]([]value.Value{value.Str("hi")})
	if out.String() != "hi\n" {
		t.Errorf("out = %q, want %q", out.String(), "hi\n")
	}
}

func TestInputPromptsWithoutNewlineAndTrims(t *testing.T) {
	var out bytes.Buffer
	fns := bind(t, IO{Out: &out, In: bufio.NewReader(strings.NewReader("world\n"))})
	got := fns["input"]([]value.Value{value.Str("name? ")})
	if out.String() != "name? " {
		t.Errorf("prompt = %q, want %q", out.String(), "name? ")
	}
	if got.StringS() != "world" {
		t.Errorf("input = %q, want %q", got.StringS(), "world")
	}
}

func TestInputlnPromptsWithNewlineAndKeepsLine(t *testing.T) {
	var out bytes.Buffer
	fns := bind(t, IO{Out: &out, In: bufio.NewReader(strings.NewReader("world\n"))})
	got := fns["inputln"]([]value.Value{value.Str("name?")})
	if out.String() != "name?\n" {
		t.Errorf("prompt = %q, want %q", out.String(), "name?\n")
	}
	if got.StringS() != "world\n" {
		t.Errorf("inputln = %q, want %q", got.StringS(), "world\n")
	}
}

func TestAbsHandlesIntDecimalAndUint(t *testing.T) {
	fns := bind(t, IO{Out: &bytes.Buffer{}, In: bufio.NewReader(strings.NewReader(""))})
	if got := fns["abs"]([]value.Value{value.Int(-5)}); got.IntS() != 5 {
		t.Errorf("abs(-5) = %d, want 5", got.IntS())
	}
	if got := fns["abs"]([]value.Value{value.Decimal(-2.5)}); got.DecimalS() != 2.5 {
		t.Errorf("abs(-2.5) = %v, want 2.5", got.DecimalS())
	}
	if got := fns["abs"]([]value.Value{value.Uint(7)}); got.UintS() != 7 {
		t.Errorf("abs(7u) = %d, want 7", got.UintS())
	}
}

func TestTypeStrReportsTypeName(t *testing.T) {
	fns := bind(t, IO{Out: &bytes.Buffer{}, In: bufio.NewReader(strings.NewReader(""))})
	got := fns["type_str"]([]value.Value{value.Bool(true)})
	if got.StringS() != "bool" {
		t.Errorf("type_str(true) = %q, want %q", got.StringS(), "bool")
	}
}

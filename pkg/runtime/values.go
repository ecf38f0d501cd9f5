package runtime

import (
	"fmt"

	"mica/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindBool
	KindArray
	KindFunction
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. Values are immutable
// once produced; nothing in the evaluator mutates a composite value in place.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// ArrayValue holds a fixed-length, possibly heterogeneous element sequence.
// The language has no element assignment; the slice is never written after
// construction.
type ArrayValue struct {
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// FunctionValue is a user-declared function: an ordered parameter list and a
// single expression body. It is a distinct variant so that it can never be
// confused with an array holding its parts.
type FunctionValue struct {
	Name   string
	Params []string
	Body   ast.Expression
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// NativeFunctionValue is a host-provided callable with a fixed arity over
// numbers. The transform is pure; it never observes the environment.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  func(args []float64) float64
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

package interpreter

import (
	"math"

	"mica/interpreter-go/pkg/runtime"
)

// nativeFunctions is the fixed built-in namespace. Hosts re-exposing the
// language must provide exactly this name set with matching arity.
var nativeFunctions = []runtime.NativeFunctionValue{
	{Name: "sqrt", Arity: 1, Impl: func(args []float64) float64 { return math.Sqrt(args[0]) }},
	{Name: "sin", Arity: 1, Impl: func(args []float64) float64 { return math.Sin(args[0]) }},
	{Name: "cos", Arity: 1, Impl: func(args []float64) float64 { return math.Cos(args[0]) }},
	{Name: "ln", Arity: 1, Impl: func(args []float64) float64 { return math.Log(args[0]) }},
	{Name: "exp", Arity: 1, Impl: func(args []float64) float64 { return math.Exp(args[0]) }},
	{Name: "hypot", Arity: 2, Impl: func(args []float64) float64 { return math.Hypot(args[0], args[1]) }},
}

// NewGlobalEnvironment seeds a fresh environment with the built-in constant
// and function bindings. All of them are protected: no program statement may
// rebind or re-declare them.
func NewGlobalEnvironment() *runtime.Environment {
	env := runtime.NewEnvironment().BindProtected("pi", runtime.NumberValue{Val: math.Pi})
	for _, fn := range nativeFunctions {
		env = env.BindProtected(fn.Name, fn)
	}
	return env
}

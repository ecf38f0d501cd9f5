package interpreter

import (
	"math"
	"testing"

	"mica/interpreter-go/pkg/ast"
	"mica/interpreter-go/pkg/runtime"
)

func evalExpr(t *testing.T, expr ast.Expression) runtime.Value {
	t.Helper()
	interp := New()
	val, err := interp.evaluateExpression(expr, interp.GlobalEnvironment())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return val
}

func numberOf(t *testing.T, val runtime.Value) float64 {
	t.Helper()
	num, ok := val.(runtime.NumberValue)
	if !ok {
		t.Fatalf("expected number, got %#v", val)
	}
	return num.Val
}

func boolOf(t *testing.T, val runtime.Value) bool {
	t.Helper()
	b, ok := val.(runtime.BoolValue)
	if !ok {
		t.Fatalf("expected bool, got %#v", val)
	}
	return b.Val
}

func TestEvaluateNumberLiteral(t *testing.T) {
	if got := numberOf(t, evalExpr(t, ast.Num(42.5))); got != 42.5 {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestEvaluateBooleanLiteral(t *testing.T) {
	if got := boolOf(t, evalExpr(t, ast.Bool(true))); !got {
		t.Fatalf("expected true")
	}
}

func TestEvaluateIdentifierLookup(t *testing.T) {
	interp := New()
	env := interp.GlobalEnvironment().Bind("greeting", runtime.NumberValue{Val: 7})

	val, err := interp.evaluateExpression(ast.ID("greeting"), env)
	if err != nil {
		t.Fatalf("identifier lookup failed: %v", err)
	}
	if numberOf(t, val) != 7 {
		t.Fatalf("unexpected value %#v", val)
	}
}

func TestEvaluateUnaryOperators(t *testing.T) {
	if got := numberOf(t, evalExpr(t, ast.Un("-", ast.Num(3)))); got != -3 {
		t.Fatalf("unary '-' produced %v", got)
	}
	if got := boolOf(t, evalExpr(t, ast.Un("!", ast.Bool(false)))); !got {
		t.Fatalf("unary '!' produced %v", got)
	}
}

func TestEvaluateArithmeticMatchesFloat64(t *testing.T) {
	cases := []struct {
		op   string
		a, b float64
		want float64
	}{
		{"+", 1.5, 2.25, 3.75},
		{"-", 1, 2, -1},
		{"*", 3, 4, 12},
		{"/", 7, 2, 3.5},
		{"%", 7, 3, math.Mod(7, 3)},
		{"**", 2, 10, 1024},
	}
	for _, tc := range cases {
		got := numberOf(t, evalExpr(t, ast.Bin(tc.op, ast.Num(tc.a), ast.Num(tc.b))))
		if got != tc.want {
			t.Fatalf("%v %s %v = %v, want %v", tc.a, tc.op, tc.b, got, tc.want)
		}
	}
}

func TestEvaluateComparisons(t *testing.T) {
	cases := []struct {
		op   string
		a, b float64
		want bool
	}{
		{">", 2, 1, true},
		{"<", 2, 1, false},
		{">=", 2, 2, true},
		{"<=", 3, 2, false},
		{"==", 2, 2, true},
		{"!=", 2, 2, false},
	}
	for _, tc := range cases {
		got := boolOf(t, evalExpr(t, ast.Bin(tc.op, ast.Num(tc.a), ast.Num(tc.b))))
		if got != tc.want {
			t.Fatalf("%v %s %v = %v, want %v", tc.a, tc.op, tc.b, got, tc.want)
		}
	}
}

func TestEvaluateLogicalOperators(t *testing.T) {
	if got := boolOf(t, evalExpr(t, ast.Bin("&&", ast.Bool(true), ast.Bool(false)))); got {
		t.Fatalf("true && false = %v", got)
	}
	if got := boolOf(t, evalExpr(t, ast.Bin("||", ast.Bool(false), ast.Bool(true)))); !got {
		t.Fatalf("false || true = %v", got)
	}
}

func TestLogicalOperatorsEvaluateBothOperands(t *testing.T) {
	// '||' does not short-circuit: a failing right operand surfaces even when
	// the left operand alone would decide the result.
	interp := New()
	expr := ast.Bin("||", ast.Bool(true), ast.Bin("==", ast.Num(1), ast.Bin("/", ast.Num(1), ast.Num(0))))
	_, err := interp.evaluateExpression(expr, interp.GlobalEnvironment())
	if kind, ok := KindOf(err); !ok || kind != ErrDivisionByZero {
		t.Fatalf("expected DivisionByZero from right operand, got %v", err)
	}
}

func TestConditionalEvaluatesExactlyOneBranch(t *testing.T) {
	// The untaken branch would raise DivisionByZero if it were evaluated.
	val := evalExpr(t, ast.Cond(ast.Bool(true), ast.Num(1), ast.Bin("/", ast.Num(1), ast.Num(0))))
	if numberOf(t, val) != 1 {
		t.Fatalf("unexpected conditional result %#v", val)
	}

	val = evalExpr(t, ast.Cond(ast.Bool(false), ast.Bin("/", ast.Num(1), ast.Num(0)), ast.Num(2)))
	if numberOf(t, val) != 2 {
		t.Fatalf("unexpected conditional result %#v", val)
	}
}

func TestEvaluateArrayLiteralAndSubscript(t *testing.T) {
	arr := ast.Arr(ast.Num(1), ast.Num(2), ast.Num(3))
	for idx, want := range []float64{1, 2, 3} {
		got := numberOf(t, evalExpr(t, ast.Sub(arr, ast.Num(float64(idx)))))
		if got != want {
			t.Fatalf("subscript %d = %v, want %v", idx, got, want)
		}
	}
}

func TestArrayElementsEvaluateLeftToRight(t *testing.T) {
	interp := New()
	env := interp.GlobalEnvironment().Bind("x", runtime.NumberValue{Val: 10})
	val, err := interp.evaluateExpression(ast.Arr(ast.ID("x"), ast.Bin("+", ast.ID("x"), ast.Num(1)), ast.Bool(true)), env)
	if err != nil {
		t.Fatalf("array literal failed: %v", err)
	}
	arr, ok := val.(*runtime.ArrayValue)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("unexpected array %#v", val)
	}
	if numberOf(t, arr.Elements[1]) != 11 {
		t.Fatalf("unexpected element %#v", arr.Elements[1])
	}
	if !boolOf(t, arr.Elements[2]) {
		t.Fatalf("heterogeneous element lost: %#v", arr.Elements[2])
	}
}

func TestEvaluateBuiltinConstantsAndFunctions(t *testing.T) {
	if got := numberOf(t, evalExpr(t, ast.ID("pi"))); got != math.Pi {
		t.Fatalf("pi = %v", got)
	}
	if got := numberOf(t, evalExpr(t, ast.Call("sqrt", ast.Num(9)))); got != 3 {
		t.Fatalf("sqrt(9) = %v", got)
	}
	if got := numberOf(t, evalExpr(t, ast.Call("ln", ast.Call("exp", ast.Num(1))))); got != 1 {
		t.Fatalf("ln(exp(1)) = %v", got)
	}
	if got := numberOf(t, evalExpr(t, ast.Call("hypot", ast.Num(3), ast.Num(4)))); got != 5 {
		t.Fatalf("hypot(3,4) = %v", got)
	}
	if got := numberOf(t, evalExpr(t, ast.Call("sin", ast.Num(0)))); got != 0 {
		t.Fatalf("sin(0) = %v", got)
	}
	if got := numberOf(t, evalExpr(t, ast.Call("cos", ast.Num(0)))); got != 1 {
		t.Fatalf("cos(0) = %v", got)
	}
}

func TestCallBindsParametersInFreshFrame(t *testing.T) {
	interp := New()
	env := interp.GlobalEnvironment().
		Bind("x", runtime.NumberValue{Val: 100}).
		Bind("add", &runtime.FunctionValue{
			Name:   "add",
			Params: []string{"a", "b"},
			Body:   ast.Bin("+", ast.ID("a"), ast.ID("b")),
		})

	val, err := interp.evaluateExpression(ast.Call("add", ast.Num(2), ast.Num(3)), env)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if numberOf(t, val) != 5 {
		t.Fatalf("add(2,3) = %#v", val)
	}

	// The frame extended the call-site environment, so free names resolve.
	env = env.Bind("addx", &runtime.FunctionValue{
		Name:   "addx",
		Params: []string{"a"},
		Body:   ast.Bin("+", ast.ID("a"), ast.ID("x")),
	})
	val, err = interp.evaluateExpression(ast.Call("addx", ast.Num(1)), env)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if numberOf(t, val) != 101 {
		t.Fatalf("addx(1) = %#v", val)
	}
}

func TestCallArgumentsEvaluateBeforeDispatch(t *testing.T) {
	// A failing argument aborts the call before the body runs.
	interp := New()
	env := interp.GlobalEnvironment().Bind("id", &runtime.FunctionValue{
		Name:   "id",
		Params: []string{"a"},
		Body:   ast.ID("a"),
	})
	_, err := interp.evaluateExpression(ast.Call("id", ast.ID("missing")), env)
	if kind, ok := KindOf(err); !ok || kind != ErrUnboundIdentifier {
		t.Fatalf("expected UnboundIdentifier from argument, got %v", err)
	}
}

func TestRecursiveUserFunction(t *testing.T) {
	interp := New()
	env := interp.GlobalEnvironment()
	var output []runtime.Value
	env, output, err := interp.executeStatement(
		ast.FnDecl("fact", []string{"n"},
			ast.Cond(ast.Bin("<=", ast.ID("n"), ast.Num(1)),
				ast.Num(1),
				ast.Bin("*", ast.ID("n"), ast.Call("fact", ast.Bin("-", ast.ID("n"), ast.Num(1)))))),
		env, output)
	if err != nil {
		t.Fatalf("declaration failed: %v", err)
	}
	if len(output) != 0 {
		t.Fatalf("declaration extended output: %#v", output)
	}
	val, err := interp.evaluateExpression(ast.Call("fact", ast.Num(6)), env)
	if err != nil {
		t.Fatalf("fact(6) failed: %v", err)
	}
	if numberOf(t, val) != 720 {
		t.Fatalf("fact(6) = %#v", val)
	}
}

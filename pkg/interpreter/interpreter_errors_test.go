package interpreter

import (
	"testing"

	"mica/interpreter-go/pkg/ast"
)

func expectProgramError(t *testing.T, kind ErrorKind, program *ast.Program) {
	t.Helper()
	_, err := New().EvaluateProgram(program)
	if err == nil {
		t.Fatalf("expected %s, program succeeded", kind)
	}
	got, ok := KindOf(err)
	if !ok {
		t.Fatalf("expected %s, got untyped error %v", kind, err)
	}
	if got != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, got, err)
	}
}

func TestUnboundIdentifierInExpression(t *testing.T) {
	expectProgramError(t, ErrUnboundIdentifier, ast.Prog(ast.Print(ast.ID("nope"))))
}

func TestUnboundIdentifierAsCallee(t *testing.T) {
	expectProgramError(t, ErrUnboundIdentifier, ast.Prog(ast.Print(ast.Call("nope", ast.Num(1)))))
}

func TestDuplicateVariableDeclaration(t *testing.T) {
	expectProgramError(t, ErrDuplicateDeclaration, ast.Prog(
		ast.Let("x", ast.Num(1)),
		ast.Let("x", ast.Num(2)),
	))
}

func TestDuplicateDeclarationAcrossKinds(t *testing.T) {
	// A function may not reuse a variable name, and vice versa.
	expectProgramError(t, ErrDuplicateDeclaration, ast.Prog(
		ast.Let("f", ast.Num(1)),
		ast.FnDecl("f", []string{"a"}, ast.ID("a")),
	))
	expectProgramError(t, ErrDuplicateDeclaration, ast.Prog(
		ast.FnDecl("g", []string{"a"}, ast.ID("a")),
		ast.Let("g", ast.Num(1)),
	))
}

func TestDeclarationShadowingBuiltinIsDuplicate(t *testing.T) {
	expectProgramError(t, ErrDuplicateDeclaration, ast.Prog(ast.Let("pi", ast.Num(3))))
	expectProgramError(t, ErrDuplicateDeclaration, ast.Prog(ast.FnDecl("sqrt", []string{"n"}, ast.ID("n"))))
}

func TestDeclarationCannotReferenceItself(t *testing.T) {
	expectProgramError(t, ErrUnboundIdentifier, ast.Prog(ast.Let("x", ast.Bin("+", ast.ID("x"), ast.Num(1)))))
}

func TestAssignToUndeclaredName(t *testing.T) {
	expectProgramError(t, ErrUnboundIdentifier, ast.Prog(ast.Set("x", ast.Num(1))))
}

func TestAssignToFunctionBinding(t *testing.T) {
	expectProgramError(t, ErrNotAssignable, ast.Prog(
		ast.FnDecl("f", []string{"a"}, ast.ID("a")),
		ast.Set("f", ast.Num(1)),
	))
}

func TestAssignToBuiltinFunction(t *testing.T) {
	expectProgramError(t, ErrNotAssignable, ast.Prog(ast.Set("sqrt", ast.Num(1))))
}

func TestAssignToPi(t *testing.T) {
	expectProgramError(t, ErrNotAssignable, ast.Prog(ast.Set("pi", ast.Num(3))))
}

func TestUnaryTypeMismatch(t *testing.T) {
	expectProgramError(t, ErrTypeMismatch, ast.Prog(ast.Print(ast.Un("-", ast.Bool(true)))))
	expectProgramError(t, ErrTypeMismatch, ast.Prog(ast.Print(ast.Un("!", ast.Num(1)))))
}

func TestUnknownUnaryOperator(t *testing.T) {
	expectProgramError(t, ErrUnknownOperator, ast.Prog(ast.Print(ast.Un("~", ast.Num(1)))))
}

func TestBinaryTypeMismatch(t *testing.T) {
	expectProgramError(t, ErrTypeMismatch, ast.Prog(ast.Print(ast.Bin("+", ast.Num(1), ast.Bool(true)))))
	expectProgramError(t, ErrTypeMismatch, ast.Prog(ast.Print(ast.Bin("&&", ast.Num(1), ast.Bool(true)))))
	// Equality sits in the numeric operator set, so bools cannot use it.
	expectProgramError(t, ErrTypeMismatch, ast.Prog(ast.Print(ast.Bin("==", ast.Bool(true), ast.Bool(true)))))
}

func TestUnknownBinaryOperator(t *testing.T) {
	expectProgramError(t, ErrUnknownOperator, ast.Prog(ast.Print(ast.Bin("^", ast.Num(1), ast.Num(2)))))
}

func TestDivisionByZeroRegardlessOfLeftOperand(t *testing.T) {
	for _, left := range []float64{0, 1, -3.5} {
		expectProgramError(t, ErrDivisionByZero, ast.Prog(ast.Print(ast.Bin("/", ast.Num(left), ast.Num(0)))))
	}
}

func TestConditionalTestTypeMismatch(t *testing.T) {
	expectProgramError(t, ErrTypeMismatch, ast.Prog(ast.Print(ast.Cond(ast.Num(1), ast.Num(2), ast.Num(3)))))
}

func TestSubscriptTypeMismatches(t *testing.T) {
	expectProgramError(t, ErrTypeMismatch, ast.Prog(ast.Print(ast.Sub(ast.Num(1), ast.Num(0)))))
	expectProgramError(t, ErrTypeMismatch, ast.Prog(ast.Print(ast.Sub(ast.Arr(ast.Num(1)), ast.Bool(true)))))
}

func TestSubscriptOutOfBounds(t *testing.T) {
	arr := func() *ast.ArrayLiteral { return ast.Arr(ast.Num(1), ast.Num(2), ast.Num(3)) }
	expectProgramError(t, ErrOutOfBounds, ast.Prog(ast.Print(ast.Sub(arr(), ast.Num(3)))))
	expectProgramError(t, ErrOutOfBounds, ast.Prog(ast.Print(ast.Sub(arr(), ast.Num(-1)))))
	expectProgramError(t, ErrOutOfBounds, ast.Prog(ast.Print(ast.Sub(arr(), ast.Num(1.5)))))
}

func TestArityMismatch(t *testing.T) {
	decl := func() *ast.FunctionDeclaration {
		return ast.FnDecl("add", []string{"a", "b"}, ast.Bin("+", ast.ID("a"), ast.ID("b")))
	}
	expectProgramError(t, ErrArityMismatch, ast.Prog(decl(), ast.Print(ast.Call("add", ast.Num(1)))))
	expectProgramError(t, ErrArityMismatch, ast.Prog(decl(), ast.Print(ast.Call("add", ast.Num(1), ast.Num(2), ast.Num(3)))))
}

func TestNativeArityMismatch(t *testing.T) {
	expectProgramError(t, ErrArityMismatch, ast.Prog(ast.Print(ast.Call("sqrt", ast.Num(1), ast.Num(2)))))
	expectProgramError(t, ErrArityMismatch, ast.Prog(ast.Print(ast.Call("hypot", ast.Num(1)))))
}

func TestNativeArgumentTypeMismatch(t *testing.T) {
	expectProgramError(t, ErrTypeMismatch, ast.Prog(ast.Print(ast.Call("sqrt", ast.Bool(true)))))
}

func TestRepeatedParameter(t *testing.T) {
	expectProgramError(t, ErrRepeatedParameter, ast.Prog(
		ast.FnDecl("f", []string{"a", "a"}, ast.ID("a")),
	))
}

func TestNotCallable(t *testing.T) {
	expectProgramError(t, ErrNotCallable, ast.Prog(
		ast.Let("x", ast.Num(1)),
		ast.Print(ast.Call("x", ast.Num(2))),
	))
	expectProgramError(t, ErrNotCallable, ast.Prog(ast.Print(ast.Call("pi"))))
}

func TestGuardErrorPropagatesFromLoop(t *testing.T) {
	expectProgramError(t, ErrUnboundIdentifier, ast.Prog(
		ast.While(ast.Bin(">", ast.ID("missing"), ast.Num(0))),
	))
}

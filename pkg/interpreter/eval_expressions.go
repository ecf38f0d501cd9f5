package interpreter

import (
	"fmt"
	"math"

	"mica/interpreter-go/pkg/ast"
	"mica/interpreter-go/pkg/runtime"
)

// evaluateExpression is read-only over env and produces exactly one value or
// fails with an EvalError.
func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.Identifier:
		val, ok := env.Get(n.Name)
		if !ok {
			return nil, evalErrorf(ErrUnboundIdentifier, "identifier '%s' is not bound", n.Name)
		}
		return val, nil
	case *ast.ArrayLiteral:
		values := make([]runtime.Value, 0, len(n.Elements))
		for _, el := range n.Elements {
			val, err := i.evaluateExpression(el, env)
			if err != nil {
				return nil, err
			}
			values = append(values, val)
		}
		return &runtime.ArrayValue{Elements: values}, nil
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.ConditionalExpression:
		return i.evaluateConditionalExpression(n, env)
	case *ast.SubscriptExpression:
		return i.evaluateSubscriptExpression(n, env)
	case *ast.CallExpression:
		return i.evaluateCallExpression(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "-":
		num, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, evalErrorf(ErrTypeMismatch, "unary '-' requires a number, got %s", operand.Kind())
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	case "!":
		b, ok := operand.(runtime.BoolValue)
		if !ok {
			return nil, evalErrorf(ErrTypeMismatch, "unary '!' requires a bool, got %s", operand.Kind())
		}
		return runtime.BoolValue{Val: !b.Val}, nil
	default:
		return nil, evalErrorf(ErrUnknownOperator, "unknown unary operator '%s'", expr.Operator)
	}
}

// Binary operands are evaluated eagerly, left then right. There is no
// short-circuit: '&&' and '||' see both operands evaluated as well.
func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "+", "-", "*", "/", "%", "**", ">", "<", ">=", "<=", "==", "!=":
		return applyNumericOperator(expr.Operator, left, right)
	case "&&", "||":
		return applyLogicalOperator(expr.Operator, left, right)
	default:
		return nil, evalErrorf(ErrUnknownOperator, "unknown binary operator '%s'", expr.Operator)
	}
}

func applyNumericOperator(op string, left, right runtime.Value) (runtime.Value, error) {
	ln, ok := left.(runtime.NumberValue)
	if !ok {
		return nil, evalErrorf(ErrTypeMismatch, "operator '%s' requires number operands, got %s", op, left.Kind())
	}
	rn, ok := right.(runtime.NumberValue)
	if !ok {
		return nil, evalErrorf(ErrTypeMismatch, "operator '%s' requires number operands, got %s", op, right.Kind())
	}
	switch op {
	case "+":
		return runtime.NumberValue{Val: ln.Val + rn.Val}, nil
	case "-":
		return runtime.NumberValue{Val: ln.Val - rn.Val}, nil
	case "*":
		return runtime.NumberValue{Val: ln.Val * rn.Val}, nil
	case "/":
		// Checked before dividing; an exact-zero divisor never yields Inf/NaN.
		if rn.Val == 0 {
			return nil, evalErrorf(ErrDivisionByZero, "division by zero")
		}
		return runtime.NumberValue{Val: ln.Val / rn.Val}, nil
	case "%":
		return runtime.NumberValue{Val: math.Mod(ln.Val, rn.Val)}, nil
	case "**":
		return runtime.NumberValue{Val: math.Pow(ln.Val, rn.Val)}, nil
	case ">":
		return runtime.BoolValue{Val: ln.Val > rn.Val}, nil
	case "<":
		return runtime.BoolValue{Val: ln.Val < rn.Val}, nil
	case ">=":
		return runtime.BoolValue{Val: ln.Val >= rn.Val}, nil
	case "<=":
		return runtime.BoolValue{Val: ln.Val <= rn.Val}, nil
	case "==":
		return runtime.BoolValue{Val: ln.Val == rn.Val}, nil
	case "!=":
		return runtime.BoolValue{Val: ln.Val != rn.Val}, nil
	default:
		return nil, evalErrorf(ErrUnknownOperator, "unknown binary operator '%s'", op)
	}
}

func applyLogicalOperator(op string, left, right runtime.Value) (runtime.Value, error) {
	lb, ok := left.(runtime.BoolValue)
	if !ok {
		return nil, evalErrorf(ErrTypeMismatch, "operator '%s' requires bool operands, got %s", op, left.Kind())
	}
	rb, ok := right.(runtime.BoolValue)
	if !ok {
		return nil, evalErrorf(ErrTypeMismatch, "operator '%s' requires bool operands, got %s", op, right.Kind())
	}
	switch op {
	case "&&":
		return runtime.BoolValue{Val: lb.Val && rb.Val}, nil
	case "||":
		return runtime.BoolValue{Val: lb.Val || rb.Val}, nil
	default:
		return nil, evalErrorf(ErrUnknownOperator, "unknown binary operator '%s'", op)
	}
}

// evaluateConditionalExpression is the one lazy construct: exactly one branch
// is evaluated.
func (i *Interpreter) evaluateConditionalExpression(expr *ast.ConditionalExpression, env *runtime.Environment) (runtime.Value, error) {
	test, err := i.evaluateExpression(expr.Test, env)
	if err != nil {
		return nil, err
	}
	cond, ok := test.(runtime.BoolValue)
	if !ok {
		return nil, evalErrorf(ErrTypeMismatch, "conditional test requires a bool, got %s", test.Kind())
	}
	if cond.Val {
		return i.evaluateExpression(expr.Consequent, env)
	}
	return i.evaluateExpression(expr.Alternate, env)
}

func (i *Interpreter) evaluateSubscriptExpression(expr *ast.SubscriptExpression, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.evaluateExpression(expr.Array, env)
	if err != nil {
		return nil, err
	}
	arr, ok := target.(*runtime.ArrayValue)
	if !ok {
		return nil, evalErrorf(ErrTypeMismatch, "subscript target must be an array, got %s", target.Kind())
	}
	idxVal, err := i.evaluateExpression(expr.Subscript, env)
	if err != nil {
		return nil, err
	}
	num, ok := idxVal.(runtime.NumberValue)
	if !ok {
		return nil, evalErrorf(ErrTypeMismatch, "subscript index must be a number, got %s", idxVal.Kind())
	}
	if num.Val != math.Trunc(num.Val) || num.Val < 0 || num.Val >= float64(len(arr.Elements)) {
		return nil, evalErrorf(ErrOutOfBounds, "index %v is out of bounds for array of length %d", num.Val, len(arr.Elements))
	}
	return arr.Elements[int(num.Val)], nil
}

// evaluateCallExpression resolves the callee and evaluates every argument
// left to right before dispatching on the callee's kind.
func (i *Interpreter) evaluateCallExpression(call *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, ok := env.Get(call.Callee.Name)
	if !ok {
		return nil, evalErrorf(ErrUnboundIdentifier, "identifier '%s' is not bound", call.Callee.Name)
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.invokeFunction(fn, args, env)
	case runtime.NativeFunctionValue:
		return invokeNativeFunction(fn, args)
	default:
		return nil, evalErrorf(ErrNotCallable, "'%s' is a %s, not a function", call.Callee.Name, callee.Kind())
	}
}

// invokeFunction builds the call frame by extending the environment at the
// point of use with one binding per parameter, then evaluates the body there.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, evalErrorf(ErrArityMismatch, "function '%s' expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	frame := env
	for idx, param := range fn.Params {
		frame = frame.Bind(param, args[idx])
	}
	return i.evaluateExpression(fn.Body, frame)
}

func invokeNativeFunction(fn runtime.NativeFunctionValue, args []runtime.Value) (runtime.Value, error) {
	if len(args) != fn.Arity {
		return nil, evalErrorf(ErrArityMismatch, "function '%s' expects %d arguments, got %d", fn.Name, fn.Arity, len(args))
	}
	nums := make([]float64, len(args))
	for idx, arg := range args {
		num, ok := arg.(runtime.NumberValue)
		if !ok {
			return nil, evalErrorf(ErrTypeMismatch, "function '%s' requires number arguments, got %s", fn.Name, arg.Kind())
		}
		nums[idx] = num.Val
	}
	return runtime.NumberValue{Val: fn.Impl(nums)}, nil
}

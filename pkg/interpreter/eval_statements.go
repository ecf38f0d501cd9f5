package interpreter

import (
	"fmt"

	"mica/interpreter-go/pkg/ast"
	"mica/interpreter-go/pkg/runtime"
)

// executeStatement threads the environment and the output sequence through one
// statement. Statements only ever extend the environment or replace a single
// binding, and only ever append to output.
func (i *Interpreter) executeStatement(node ast.Statement, env *runtime.Environment, output []runtime.Value) (*runtime.Environment, []runtime.Value, error) {
	switch n := node.(type) {
	case *ast.VariableDeclaration:
		return i.executeVariableDeclaration(n, env, output)
	case *ast.FunctionDeclaration:
		return i.executeFunctionDeclaration(n, env, output)
	case *ast.Assignment:
		return i.executeAssignment(n, env, output)
	case *ast.PrintStatement:
		return i.executePrintStatement(n, env, output)
	case *ast.WhileStatement:
		return i.executeWhileStatement(n, env, output)
	default:
		return nil, nil, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

func (i *Interpreter) executeVariableDeclaration(decl *ast.VariableDeclaration, env *runtime.Environment, output []runtime.Value) (*runtime.Environment, []runtime.Value, error) {
	name := decl.Name.Name
	if env.IsBound(name) {
		return nil, nil, evalErrorf(ErrDuplicateDeclaration, "'%s' is already declared", name)
	}
	// The initializer sees the environment without the new binding, so a
	// declaration cannot reference itself.
	val, err := i.evaluateExpression(decl.Initializer, env)
	if err != nil {
		return nil, nil, err
	}
	return env.Bind(name, val), output, nil
}

func (i *Interpreter) executeFunctionDeclaration(decl *ast.FunctionDeclaration, env *runtime.Environment, output []runtime.Value) (*runtime.Environment, []runtime.Value, error) {
	name := decl.Name.Name
	if env.IsBound(name) {
		return nil, nil, evalErrorf(ErrDuplicateDeclaration, "'%s' is already declared", name)
	}
	params := make([]string, 0, len(decl.Params))
	seen := make(map[string]struct{}, len(decl.Params))
	for _, param := range decl.Params {
		if _, dup := seen[param.Name]; dup {
			return nil, nil, evalErrorf(ErrRepeatedParameter, "function '%s' repeats parameter '%s'", name, param.Name)
		}
		seen[param.Name] = struct{}{}
		params = append(params, param.Name)
	}
	fn := &runtime.FunctionValue{Name: name, Params: params, Body: decl.Body}
	return env.Bind(name, fn), output, nil
}

func (i *Interpreter) executeAssignment(assign *ast.Assignment, env *runtime.Environment, output []runtime.Value) (*runtime.Environment, []runtime.Value, error) {
	name := assign.Target.Name
	current, ok := env.Get(name)
	if !ok {
		return nil, nil, evalErrorf(ErrUnboundIdentifier, "identifier '%s' is not bound", name)
	}
	if env.IsProtected(name) {
		return nil, nil, evalErrorf(ErrNotAssignable, "'%s' is a built-in and cannot be assigned", name)
	}
	switch current.Kind() {
	case runtime.KindFunction, runtime.KindNativeFunction:
		return nil, nil, evalErrorf(ErrNotAssignable, "'%s' is a function and cannot be assigned", name)
	}
	val, err := i.evaluateExpression(assign.Value, env)
	if err != nil {
		return nil, nil, err
	}
	return env.Bind(name, val), output, nil
}

func (i *Interpreter) executePrintStatement(stmt *ast.PrintStatement, env *runtime.Environment, output []runtime.Value) (*runtime.Environment, []runtime.Value, error) {
	val, err := i.evaluateExpression(stmt.Argument, env)
	if err != nil {
		return nil, nil, err
	}
	return env, append(output, val), nil
}

// executeWhileStatement re-tests the guard against the environment returned by
// the previous iteration's body, not the pre-loop snapshot. A declaration made
// inside the body therefore survives into the next iteration's guard and body,
// and re-declaring the same name on the next pass is a duplicate.
func (i *Interpreter) executeWhileStatement(loop *ast.WhileStatement, env *runtime.Environment, output []runtime.Value) (*runtime.Environment, []runtime.Value, error) {
	for {
		guard, err := i.evaluateExpression(loop.Guard, env)
		if err != nil {
			return nil, nil, err
		}
		// Only the boolean true continues the loop; any other value ends it.
		b, ok := guard.(runtime.BoolValue)
		if !ok || !b.Val {
			return env, output, nil
		}
		env, output, err = i.executeBlock(loop.Body, env, output)
		if err != nil {
			return nil, nil, err
		}
	}
}

// executeBlock runs the statements strictly in order, threading (env, output)
// through each. A block introduces no scope of its own.
func (i *Interpreter) executeBlock(block *ast.Block, env *runtime.Environment, output []runtime.Value) (*runtime.Environment, []runtime.Value, error) {
	var err error
	for _, stmt := range block.Statements {
		env, output, err = i.executeStatement(stmt, env, output)
		if err != nil {
			return nil, nil, err
		}
	}
	return env, output, nil
}

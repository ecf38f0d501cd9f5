package interpreter

import (
	"fmt"

	"mica/interpreter-go/pkg/ast"
	"mica/interpreter-go/pkg/runtime"
)

// Interpreter drives evaluation of Mica AST nodes.
type Interpreter struct {
	global *runtime.Environment
}

// New returns an interpreter whose global environment holds the built-in
// constants and functions.
func New() *Interpreter {
	return &Interpreter{global: NewGlobalEnvironment()}
}

// GlobalEnvironment returns the interpreter's initial environment snapshot.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// EvaluateProgram executes a program's top-level block against the global
// environment and an empty output sequence. It returns the ordered values the
// program printed; the final environment is discarded. The global snapshot is
// never modified, so one interpreter can run any number of programs.
func (i *Interpreter) EvaluateProgram(program *ast.Program) ([]runtime.Value, error) {
	if program == nil || program.Body == nil {
		return nil, fmt.Errorf("program has no body")
	}
	_, output, err := i.executeBlock(program.Body, i.global, nil)
	if err != nil {
		return nil, err
	}
	return output, nil
}

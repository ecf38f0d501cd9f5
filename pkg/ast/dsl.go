package ast

// Terse constructors for building AST fragments in tests and tools.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func Un(operator string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(operator, operand)
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Cond(test, consequent, alternate Expression) *ConditionalExpression {
	return NewConditionalExpression(test, consequent, alternate)
}

func Sub(array, subscript Expression) *SubscriptExpression {
	return NewSubscriptExpression(array, subscript)
}

func Call(name string, args ...Expression) *CallExpression {
	return NewCallExpression(NewIdentifier(name), args)
}

func Let(name string, initializer Expression) *VariableDeclaration {
	return NewVariableDeclaration(NewIdentifier(name), initializer)
}

func FnDecl(name string, params []string, body Expression) *FunctionDeclaration {
	ids := make([]*Identifier, 0, len(params))
	for _, p := range params {
		ids = append(ids, NewIdentifier(p))
	}
	return NewFunctionDeclaration(NewIdentifier(name), ids, body)
}

func Set(name string, value Expression) *Assignment {
	return NewAssignment(NewIdentifier(name), value)
}

func Print(argument Expression) *PrintStatement {
	return NewPrintStatement(argument)
}

func While(guard Expression, body ...Statement) *WhileStatement {
	return NewWhileStatement(guard, NewBlock(body))
}

func BlockOf(statements ...Statement) *Block {
	return NewBlock(statements)
}

func Prog(statements ...Statement) *Program {
	return NewProgram(NewBlock(statements))
}

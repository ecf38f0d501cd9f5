package ast

type NodeType string

const (
	NodeProgram               NodeType = "Program"
	NodeBlock                 NodeType = "Block"
	NodeVariableDeclaration   NodeType = "VariableDeclaration"
	NodeFunctionDeclaration   NodeType = "FunctionDeclaration"
	NodeAssignment            NodeType = "Assignment"
	NodePrintStatement        NodeType = "PrintStatement"
	NodeWhileStatement        NodeType = "WhileStatement"
	NodeNumberLiteral         NodeType = "NumberLiteral"
	NodeBooleanLiteral        NodeType = "BooleanLiteral"
	NodeArrayLiteral          NodeType = "ArrayLiteral"
	NodeIdentifier            NodeType = "Identifier"
	NodeUnaryExpression       NodeType = "UnaryExpression"
	NodeBinaryExpression      NodeType = "BinaryExpression"
	NodeConditionalExpression NodeType = "ConditionalExpression"
	NodeSubscriptExpression   NodeType = "SubscriptExpression"
	NodeCallExpression        NodeType = "CallExpression"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

// Compound expressions

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type ConditionalExpression struct {
	nodeImpl
	expressionMarker

	Test       Expression `json:"test"`
	Consequent Expression `json:"consequent"`
	Alternate  Expression `json:"alternate"`
}

func NewConditionalExpression(test, consequent, alternate Expression) *ConditionalExpression {
	return &ConditionalExpression{nodeImpl: newNodeImpl(NodeConditionalExpression), Test: test, Consequent: consequent, Alternate: alternate}
}

type SubscriptExpression struct {
	nodeImpl
	expressionMarker

	Array     Expression `json:"array"`
	Subscript Expression `json:"subscript"`
}

func NewSubscriptExpression(array, subscript Expression) *SubscriptExpression {
	return &SubscriptExpression{nodeImpl: newNodeImpl(NodeSubscriptExpression), Array: array, Subscript: subscript}
}

// CallExpression targets a named binding; the language has no computed callees.
type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee    *Identifier  `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee *Identifier, arguments []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: arguments}
}

// Statements

type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Name        *Identifier `json:"name"`
	Initializer Expression  `json:"initializer"`
}

func NewVariableDeclaration(name *Identifier, initializer Expression) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Name: name, Initializer: initializer}
}

// FunctionDeclaration binds a name to a parameter list and a single expression
// body; the language has no statement-bodied functions.
type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Name   *Identifier   `json:"name"`
	Params []*Identifier `json:"params"`
	Body   Expression    `json:"body"`
}

func NewFunctionDeclaration(name *Identifier, params []*Identifier, body Expression) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Params: params, Body: body}
}

type Assignment struct {
	nodeImpl
	statementMarker

	Target *Identifier `json:"target"`
	Value  Expression  `json:"value"`
}

func NewAssignment(target *Identifier, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Value: value}
}

type PrintStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument"`
}

func NewPrintStatement(argument Expression) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Argument: argument}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Guard Expression `json:"guard"`
	Body  *Block     `json:"body"`
}

func NewWhileStatement(guard Expression, body *Block) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Guard: guard, Body: body}
}

// Block and Program

type Block struct {
	nodeImpl

	Statements []Statement `json:"statements"`
}

func NewBlock(statements []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Statements: statements}
}

type Program struct {
	nodeImpl

	Body *Block `json:"body"`
}

func NewProgram(body *Block) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

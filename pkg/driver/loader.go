package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mica/interpreter-go/pkg/ast"
)

// Loader resolves and decodes JSON AST documents into programs. The evaluator
// itself never touches files; everything entering it goes through here or an
// equivalent host-side builder.
type Loader struct {
	searchPaths []string
}

// NewLoader builds a loader over an ordered list of search directories.
func NewLoader(searchPaths []string) *Loader {
	cleaned := make([]string, 0, len(searchPaths))
	for _, path := range searchPaths {
		if path == "" {
			continue
		}
		cleaned = append(cleaned, filepath.Clean(path))
	}
	return &Loader{searchPaths: cleaned}
}

// Load resolves entry against the search paths and decodes it.
func (l *Loader) Load(entry string) (*ast.Program, error) {
	path, err := l.resolve(entry)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	program, err := DecodeProgram(data)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	return program, nil
}

func (l *Loader) resolve(entry string) (string, error) {
	if entry == "" {
		return "", fmt.Errorf("loader: empty entry path")
	}
	if filepath.IsAbs(entry) {
		if _, err := os.Stat(entry); err != nil {
			return "", fmt.Errorf("loader: stat %s: %w", entry, err)
		}
		return filepath.Clean(entry), nil
	}
	for _, base := range l.searchPaths {
		candidate := filepath.Join(base, filepath.FromSlash(entry))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	if info, err := os.Stat(entry); err == nil && !info.IsDir() {
		return filepath.Clean(entry), nil
	}
	return "", fmt.Errorf("loader: %s not found in search paths %v", entry, l.searchPaths)
}

// DecodeProgram decodes a JSON AST document into a program.
func DecodeProgram(data []byte) (*ast.Program, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	program, ok := node.(*ast.Program)
	if !ok {
		return nil, fmt.Errorf("document is a %s, not a program", node.NodeType())
	}
	return program, nil
}

func decodeNode(node map[string]any) (ast.Node, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodeProgram:
		body, err := decodeBlockField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewProgram(body), nil
	case ast.NodeBlock:
		return decodeBlock(node)
	case ast.NodeNumberLiteral:
		val, ok := node["value"].(float64)
		if !ok {
			return nil, fmt.Errorf("number literal requires a numeric value")
		}
		return ast.NewNumberLiteral(val), nil
	case ast.NodeBooleanLiteral:
		val, ok := node["value"].(bool)
		if !ok {
			return nil, fmt.Errorf("boolean literal requires a boolean value")
		}
		return ast.NewBooleanLiteral(val), nil
	case ast.NodeIdentifier:
		name, _ := node["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("identifier requires a name")
		}
		return ast.NewIdentifier(name), nil
	case ast.NodeArrayLiteral:
		elements, err := decodeExpressionList(node, "elements")
		if err != nil {
			return nil, err
		}
		return ast.NewArrayLiteral(elements), nil
	case ast.NodeUnaryExpression:
		op, _ := node["operator"].(string)
		operand, err := decodeExpressionField(node, "operand")
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpression(op, operand), nil
	case ast.NodeBinaryExpression:
		op, _ := node["operator"].(string)
		left, err := decodeExpressionField(node, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExpressionField(node, "right")
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryExpression(op, left, right), nil
	case ast.NodeConditionalExpression:
		test, err := decodeExpressionField(node, "test")
		if err != nil {
			return nil, err
		}
		consequent, err := decodeExpressionField(node, "consequent")
		if err != nil {
			return nil, err
		}
		alternate, err := decodeExpressionField(node, "alternate")
		if err != nil {
			return nil, err
		}
		return ast.NewConditionalExpression(test, consequent, alternate), nil
	case ast.NodeSubscriptExpression:
		array, err := decodeExpressionField(node, "array")
		if err != nil {
			return nil, err
		}
		subscript, err := decodeExpressionField(node, "subscript")
		if err != nil {
			return nil, err
		}
		return ast.NewSubscriptExpression(array, subscript), nil
	case ast.NodeCallExpression:
		callee, err := decodeIdentifierField(node, "callee")
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressionList(node, "arguments")
		if err != nil {
			return nil, err
		}
		return ast.NewCallExpression(callee, args), nil
	case ast.NodeVariableDeclaration:
		name, err := decodeIdentifierField(node, "name")
		if err != nil {
			return nil, err
		}
		initializer, err := decodeExpressionField(node, "initializer")
		if err != nil {
			return nil, err
		}
		return ast.NewVariableDeclaration(name, initializer), nil
	case ast.NodeFunctionDeclaration:
		name, err := decodeIdentifierField(node, "name")
		if err != nil {
			return nil, err
		}
		paramsRaw, _ := node["params"].([]any)
		params := make([]*ast.Identifier, 0, len(paramsRaw))
		for _, raw := range paramsRaw {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid parameter entry %T", raw)
			}
			param, err := decodeNode(child)
			if err != nil {
				return nil, err
			}
			id, ok := param.(*ast.Identifier)
			if !ok {
				return nil, fmt.Errorf("parameter is a %s, not an identifier", param.NodeType())
			}
			params = append(params, id)
		}
		body, err := decodeExpressionField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionDeclaration(name, params, body), nil
	case ast.NodeAssignment:
		target, err := decodeIdentifierField(node, "target")
		if err != nil {
			return nil, err
		}
		value, err := decodeExpressionField(node, "value")
		if err != nil {
			return nil, err
		}
		return ast.NewAssignment(target, value), nil
	case ast.NodePrintStatement:
		argument, err := decodeExpressionField(node, "argument")
		if err != nil {
			return nil, err
		}
		return ast.NewPrintStatement(argument), nil
	case ast.NodeWhileStatement:
		guard, err := decodeExpressionField(node, "guard")
		if err != nil {
			return nil, err
		}
		body, err := decodeBlockField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewWhileStatement(guard, body), nil
	default:
		return nil, fmt.Errorf("unknown node type %q", typ)
	}
}

func decodeBlock(node map[string]any) (*ast.Block, error) {
	stmtsRaw, _ := node["statements"].([]any)
	stmts := make([]ast.Statement, 0, len(stmtsRaw))
	for _, raw := range stmtsRaw {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid statement entry %T", raw)
		}
		decoded, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		stmt, ok := decoded.(ast.Statement)
		if !ok {
			return nil, fmt.Errorf("node %s is not a statement", decoded.NodeType())
		}
		stmts = append(stmts, stmt)
	}
	return ast.NewBlock(stmts), nil
}

func decodeBlockField(node map[string]any, field string) (*ast.Block, error) {
	raw, ok := node[field].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing %s block", field)
	}
	if typ, _ := raw["type"].(string); ast.NodeType(typ) != ast.NodeBlock {
		return nil, fmt.Errorf("%s is a %q, not a block", field, typ)
	}
	return decodeBlock(raw)
}

func decodeExpressionField(node map[string]any, field string) (ast.Expression, error) {
	raw, ok := node[field].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing %s expression", field)
	}
	decoded, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	expr, ok := decoded.(ast.Expression)
	if !ok {
		return nil, fmt.Errorf("node %s is not an expression", decoded.NodeType())
	}
	return expr, nil
}

func decodeExpressionList(node map[string]any, field string) ([]ast.Expression, error) {
	rawList, _ := node[field].([]any)
	exprs := make([]ast.Expression, 0, len(rawList))
	for _, raw := range rawList {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid %s entry %T", field, raw)
		}
		decoded, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		expr, ok := decoded.(ast.Expression)
		if !ok {
			return nil, fmt.Errorf("node %s is not an expression", decoded.NodeType())
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func decodeIdentifierField(node map[string]any, field string) (*ast.Identifier, error) {
	raw, ok := node[field].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing %s identifier", field)
	}
	decoded, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	id, ok := decoded.(*ast.Identifier)
	if !ok {
		return nil, fmt.Errorf("%s is a %s, not an identifier", field, decoded.NodeType())
	}
	return id, nil
}

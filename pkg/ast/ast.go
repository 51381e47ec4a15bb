package ast

import (
	"sync/atomic"

	"lox/interpreter-go/pkg/token"
)

type NodeType string

const (
	NodeLiteral             NodeType = "Literal"
	NodeGrouping            NodeType = "Grouping"
	NodeUnaryExpression     NodeType = "UnaryExpression"
	NodeBinaryExpression    NodeType = "BinaryExpression"
	NodeLogicalExpression   NodeType = "LogicalExpression"
	NodeVariable            NodeType = "Variable"
	NodeAssignment          NodeType = "Assignment"
	NodeCall                NodeType = "Call"
	NodeGet                 NodeType = "Get"
	NodeSet                 NodeType = "Set"
	NodeThis                NodeType = "This"
	NodeSuper               NodeType = "Super"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodePrintStatement      NodeType = "PrintStatement"
	NodeVarDeclaration      NodeType = "VarDeclaration"
	NodeBlock               NodeType = "Block"
	NodeIfStatement         NodeType = "IfStatement"
	NodeWhileLoop           NodeType = "WhileLoop"
	NodeFunctionDeclaration NodeType = "FunctionDeclaration"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeClassDeclaration    NodeType = "ClassDeclaration"
	NodeBreakStatement      NodeType = "BreakStatement"
)

// NodeID is the stable identity of a node. The resolver keys its side table
// by NodeID, so two structurally equal nodes never share an entry.
type NodeID int64

var lastNodeID atomic.Int64

// NextID hands out a fresh, process-wide unique node id.
func NextID() NodeID {
	return NodeID(lastNodeID.Add(1))
}

type Node interface {
	NodeType() NodeType
	ID() NodeID
	Line() int
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	id   NodeID
	line int
}

func newNodeImpl(kind NodeType, line int) nodeImpl {
	return nodeImpl{Type: kind, id: NextID(), line: line}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) ID() NodeID         { return n.id }
func (n nodeImpl) Line() int          { return n.line }
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

// Literal holds nil, a bool, a float64 or a string.
type Literal struct {
	nodeImpl
	expressionMarker

	Value any `json:"value"`
}

func NewLiteral(value any, line int) *Literal {
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral, line), Value: value}
}

type Grouping struct {
	nodeImpl
	expressionMarker

	Expression Expression `json:"expression"`
}

func NewGrouping(expr Expression, line int) *Grouping {
	return &Grouping{nodeImpl: newNodeImpl(NodeGrouping, line), Expression: expr}
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewUnaryExpression(operator token.Token, right Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression, operator.Line), Operator: operator, Right: right}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Left     Expression  `json:"left"`
	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewBinaryExpression(left Expression, operator token.Token, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression, operator.Line), Left: left, Operator: operator, Right: right}
}

// LogicalExpression covers `and` / `or`, kept apart from BinaryExpression so
// evaluation can short-circuit.
type LogicalExpression struct {
	nodeImpl
	expressionMarker

	Left     Expression  `json:"left"`
	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewLogicalExpression(left Expression, operator token.Token, right Expression) *LogicalExpression {
	return &LogicalExpression{nodeImpl: newNodeImpl(NodeLogicalExpression, operator.Line), Left: left, Operator: operator, Right: right}
}

type Variable struct {
	nodeImpl
	expressionMarker

	Name token.Token `json:"name"`
}

func NewVariable(name token.Token) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable, name.Line), Name: name}
}

type Assignment struct {
	nodeImpl
	expressionMarker

	Name  token.Token `json:"name"`
	Value Expression  `json:"value"`
}

func NewAssignment(name token.Token, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment, name.Line), Name: name, Value: value}
}

// Call records the closing paren so runtime errors point at the call site.
type Call struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Paren     token.Token  `json:"paren"`
	Arguments []Expression `json:"arguments"`
}

func NewCall(callee Expression, paren token.Token, arguments []Expression) *Call {
	return &Call{nodeImpl: newNodeImpl(NodeCall, paren.Line), Callee: callee, Paren: paren, Arguments: arguments}
}

type Get struct {
	nodeImpl
	expressionMarker

	Object Expression  `json:"object"`
	Name   token.Token `json:"name"`
}

func NewGet(object Expression, name token.Token) *Get {
	return &Get{nodeImpl: newNodeImpl(NodeGet, name.Line), Object: object, Name: name}
}

type Set struct {
	nodeImpl
	expressionMarker

	Object Expression  `json:"object"`
	Name   token.Token `json:"name"`
	Value  Expression  `json:"value"`
}

func NewSet(object Expression, name token.Token, value Expression) *Set {
	return &Set{nodeImpl: newNodeImpl(NodeSet, name.Line), Object: object, Name: name, Value: value}
}

type This struct {
	nodeImpl
	expressionMarker

	Keyword token.Token `json:"keyword"`
}

func NewThis(keyword token.Token) *This {
	return &This{nodeImpl: newNodeImpl(NodeThis, keyword.Line), Keyword: keyword}
}

type Super struct {
	nodeImpl
	expressionMarker

	Keyword token.Token `json:"keyword"`
	Method  token.Token `json:"method"`
}

func NewSuper(keyword, method token.Token) *Super {
	return &Super{nodeImpl: newNodeImpl(NodeSuper, keyword.Line), Keyword: keyword, Method: method}
}

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a node as a parenthesised prefix expression. It exists for
// debugging and for asserting parse shapes in tests.
func Print(node Node) string {
	var b strings.Builder
	writeNode(&b, node)
	return b.String()
}

// PrintProgram renders each statement on its own line.
func PrintProgram(stmts []Statement) string {
	lines := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		lines = append(lines, Print(stmt))
	}
	return strings.Join(lines, "\n")
}

func writeNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Literal:
		b.WriteString(literalText(n.Value))
	case *Grouping:
		parenthesize(b, "group", n.Expression)
	case *UnaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Right)
	case *BinaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *LogicalExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *Variable:
		b.WriteString(n.Name.Lexeme)
	case *Assignment:
		b.WriteString("(= ")
		b.WriteString(n.Name.Lexeme)
		b.WriteByte(' ')
		writeNode(b, n.Value)
		b.WriteByte(')')
	case *Call:
		nodes := make([]Node, 0, len(n.Arguments)+1)
		nodes = append(nodes, n.Callee)
		for _, arg := range n.Arguments {
			nodes = append(nodes, arg)
		}
		parenthesize(b, "call", nodes...)
	case *Get:
		b.WriteString("(. ")
		writeNode(b, n.Object)
		b.WriteByte(' ')
		b.WriteString(n.Name.Lexeme)
		b.WriteByte(')')
	case *Set:
		b.WriteString("(set ")
		writeNode(b, n.Object)
		b.WriteByte(' ')
		b.WriteString(n.Name.Lexeme)
		b.WriteByte(' ')
		writeNode(b, n.Value)
		b.WriteByte(')')
	case *This:
		b.WriteString("this")
	case *Super:
		b.WriteString("(super ")
		b.WriteString(n.Method.Lexeme)
		b.WriteByte(')')
	case *ExpressionStatement:
		parenthesize(b, "expr", n.Expression)
	case *PrintStatement:
		parenthesize(b, "print", n.Expression)
	case *VarDeclaration:
		b.WriteString("(var ")
		b.WriteString(n.Name.Lexeme)
		if n.Initializer != nil {
			b.WriteByte(' ')
			writeNode(b, n.Initializer)
		}
		b.WriteByte(')')
	case *Block:
		parenthesize(b, "block", statementNodes(n.Statements)...)
	case *IfStatement:
		if n.ElseBranch != nil {
			parenthesize(b, "if", n.Condition, n.ThenBranch, n.ElseBranch)
		} else {
			parenthesize(b, "if", n.Condition, n.ThenBranch)
		}
	case *WhileLoop:
		parenthesize(b, "while", n.Condition, n.Body)
	case *FunctionDeclaration:
		writeFunction(b, "fun", n)
	case *ReturnStatement:
		if n.Value != nil {
			parenthesize(b, "return", n.Value)
		} else {
			b.WriteString("(return)")
		}
	case *ClassDeclaration:
		b.WriteString("(class ")
		b.WriteString(n.Name.Lexeme)
		if n.Superclass != nil {
			b.WriteString(" < ")
			b.WriteString(n.Superclass.Name.Lexeme)
		}
		for _, method := range n.Methods {
			b.WriteByte(' ')
			writeFunction(b, "method", method)
		}
		b.WriteByte(')')
	case *BreakStatement:
		b.WriteString("(break)")
	default:
		fmt.Fprintf(b, "<unknown %s>", node.NodeType())
	}
}

func writeFunction(b *strings.Builder, label string, fn *FunctionDeclaration) {
	b.WriteByte('(')
	b.WriteString(label)
	b.WriteByte(' ')
	b.WriteString(fn.Name.Lexeme)
	b.WriteString(" (")
	for idx, param := range fn.Params {
		if idx > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(param.Lexeme)
	}
	b.WriteByte(')')
	for _, stmt := range fn.Body {
		b.WriteByte(' ')
		writeNode(b, stmt)
	}
	b.WriteByte(')')
}

func parenthesize(b *strings.Builder, name string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, node := range nodes {
		b.WriteByte(' ')
		writeNode(b, node)
	}
	b.WriteByte(')')
}

func statementNodes(stmts []Statement) []Node {
	out := make([]Node, len(stmts))
	for idx, stmt := range stmts {
		out[idx] = stmt
	}
	return out
}

func literalText(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

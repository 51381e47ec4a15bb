package interpreter

import (
	"errors"
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func (i *Interpreter) evaluate(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return literalValue(n.Value), nil
	case *ast.Grouping:
		return i.evaluate(n.Expression, env)
	case *ast.UnaryExpression:
		return i.evaluateUnary(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinary(n, env)
	case *ast.LogicalExpression:
		return i.evaluateLogical(n, env)
	case *ast.Variable:
		return i.lookUpVariable(n.Name, n.ID(), env)
	case *ast.Assignment:
		return i.evaluateAssignment(n, env)
	case *ast.Call:
		return i.evaluateCall(n, env)
	case *ast.Get:
		return i.evaluateGet(n, env)
	case *ast.Set:
		return i.evaluateSet(n, env)
	case *ast.This:
		return i.lookUpVariable(n.Keyword, n.ID(), env)
	case *ast.Super:
		return i.evaluateSuper(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", node.NodeType())
	}
}

func literalValue(v any) runtime.Value {
	switch val := v.(type) {
	case bool:
		return runtime.BoolValue{Val: val}
	case float64:
		return runtime.NumberValue{Val: val}
	case string:
		return runtime.StringValue{Val: val}
	default:
		return runtime.Nil
	}
}

// lookUpVariable reads a resolved local at its recorded distance, or a
// global when the resolver left the reference unannotated.
func (i *Interpreter) lookUpVariable(name token.Token, id ast.NodeID, env *runtime.Environment) (runtime.Value, error) {
	var (
		val runtime.Value
		err error
	)
	if distance, ok := i.locals[id]; ok {
		val, err = env.GetAt(distance, name.Lexeme)
	} else {
		val, err = i.global.Get(name.Lexeme)
	}
	if err != nil {
		return nil, i.fromEnvironmentError(name.Line, err)
	}
	return val, nil
}

func (i *Interpreter) evaluateAssignment(n *ast.Assignment, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluate(n.Value, env)
	if err != nil {
		return nil, err
	}
	if distance, ok := i.locals[n.ID()]; ok {
		env.AssignAt(distance, n.Name.Lexeme, val)
		return val, nil
	}
	if err := i.global.Assign(n.Name.Lexeme, val); err != nil {
		return nil, i.fromEnvironmentError(n.Name.Line, err)
	}
	return val, nil
}

func (i *Interpreter) fromEnvironmentError(line int, err error) error {
	var undefined *runtime.UndefinedVariableError
	if errors.As(err, &undefined) {
		return i.runtimeError(line, "%s", undefined.Error())
	}
	return err
}

func (i *Interpreter) evaluateUnary(n *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	right, err := i.evaluate(n.Right, env)
	if err != nil {
		return nil, err
	}
	switch n.Operator.Kind {
	case token.Bang:
		return runtime.BoolValue{Val: !runtime.IsTruthy(right)}, nil
	case token.Minus:
		num, ok := right.(runtime.NumberValue)
		if !ok {
			return nil, i.runtimeError(n.Operator.Line, "Operand must be a number.")
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator %s", n.Operator.Lexeme)
	}
}

func (i *Interpreter) evaluateLogical(n *ast.LogicalExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluate(n.Left, env)
	if err != nil {
		return nil, err
	}
	if n.Operator.Kind == token.Or {
		if runtime.IsTruthy(left) {
			return left, nil
		}
	} else if !runtime.IsTruthy(left) {
		return left, nil
	}
	return i.evaluate(n.Right, env)
}

func (i *Interpreter) evaluateBinary(n *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluate(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Operator.Kind {
	case token.EqualEqual:
		return runtime.BoolValue{Val: runtime.Equal(left, right)}, nil
	case token.BangEqual:
		return runtime.BoolValue{Val: !runtime.Equal(left, right)}, nil
	case token.Plus:
		switch l := left.(type) {
		case runtime.NumberValue:
			if r, ok := right.(runtime.NumberValue); ok {
				return runtime.NumberValue{Val: l.Val + r.Val}, nil
			}
		case runtime.StringValue:
			if r, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: l.Val + r.Val}, nil
			}
		}
		return nil, i.runtimeError(n.Operator.Line, "Operands must be two numbers or two strings.")
	}

	l, r, err := i.numberOperands(n.Operator, left, right)
	if err != nil {
		return nil, err
	}
	switch n.Operator.Kind {
	case token.Minus:
		return runtime.NumberValue{Val: l - r}, nil
	case token.Star:
		return runtime.NumberValue{Val: l * r}, nil
	case token.Slash:
		// Division by zero yields ±Inf or NaN.
		return runtime.NumberValue{Val: l / r}, nil
	case token.Greater:
		return runtime.BoolValue{Val: l > r}, nil
	case token.GreaterEqual:
		return runtime.BoolValue{Val: l >= r}, nil
	case token.Less:
		return runtime.BoolValue{Val: l < r}, nil
	case token.LessEqual:
		return runtime.BoolValue{Val: l <= r}, nil
	default:
		return nil, fmt.Errorf("unsupported binary operator %s", n.Operator.Lexeme)
	}
}

// numberOperands unwraps both operands, naming the first one that is not a
// number in the error.
func (i *Interpreter) numberOperands(operator token.Token, left, right runtime.Value) (float64, float64, error) {
	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	switch {
	case !lok:
		return 0, 0, i.runtimeError(operator.Line, "Operands must be numbers (left operand is %s).", left.Kind())
	case !rok:
		return 0, 0, i.runtimeError(operator.Line, "Operands must be numbers (right operand is %s).", right.Kind())
	}
	return l.Val, r.Val, nil
}

package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) execute(node ast.Statement, env *runtime.Environment) (signal, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		if _, err := i.evaluate(n.Expression, env); err != nil {
			return normal, err
		}
		return normal, nil
	case *ast.PrintStatement:
		return i.executePrint(n, env)
	case *ast.VarDeclaration:
		return i.executeVarDeclaration(n, env)
	case *ast.Block:
		return i.executeBlock(n.Statements, env.Extend())
	case *ast.IfStatement:
		return i.executeIf(n, env)
	case *ast.WhileLoop:
		return i.executeWhileLoop(n, env)
	case *ast.FunctionDeclaration:
		env.Define(n.Name.Lexeme, &runtime.FunctionValue{Declaration: n, Closure: env})
		return normal, nil
	case *ast.ClassDeclaration:
		return normal, i.executeClassDeclaration(n, env)
	case *ast.ReturnStatement:
		return i.executeReturn(n, env)
	case *ast.BreakStatement:
		return breakLoop, nil
	default:
		return normal, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

// executeBlock runs statements in env, stopping at the first non-normal
// signal. Callers decide whether env is a fresh scope.
func (i *Interpreter) executeBlock(stmts []ast.Statement, env *runtime.Environment) (signal, error) {
	for _, stmt := range stmts {
		sig, err := i.execute(stmt, env)
		if err != nil || sig.kind != signalNormal {
			return sig, err
		}
	}
	return normal, nil
}

func (i *Interpreter) executePrint(n *ast.PrintStatement, env *runtime.Environment) (signal, error) {
	val, err := i.evaluate(n.Expression, env)
	if err != nil {
		return normal, err
	}
	if _, err := fmt.Fprintln(i.out, Stringify(val)); err != nil {
		return normal, fmt.Errorf("print: %w", err)
	}
	return normal, nil
}

func (i *Interpreter) executeVarDeclaration(n *ast.VarDeclaration, env *runtime.Environment) (signal, error) {
	var val runtime.Value = runtime.Nil
	if n.Initializer != nil {
		var err error
		if val, err = i.evaluate(n.Initializer, env); err != nil {
			return normal, err
		}
	}
	env.Define(n.Name.Lexeme, val)
	return normal, nil
}

func (i *Interpreter) executeIf(n *ast.IfStatement, env *runtime.Environment) (signal, error) {
	cond, err := i.evaluate(n.Condition, env)
	if err != nil {
		return normal, err
	}
	if runtime.IsTruthy(cond) {
		return i.execute(n.ThenBranch, env)
	}
	if n.ElseBranch != nil {
		return i.execute(n.ElseBranch, env)
	}
	return normal, nil
}

func (i *Interpreter) executeWhileLoop(loop *ast.WhileLoop, env *runtime.Environment) (signal, error) {
	for {
		cond, err := i.evaluate(loop.Condition, env)
		if err != nil {
			return normal, err
		}
		if !runtime.IsTruthy(cond) {
			return normal, nil
		}
		sig, err := i.execute(loop.Body, env)
		if err != nil {
			return normal, err
		}
		switch sig.kind {
		case signalBreak:
			return normal, nil
		case signalReturn:
			return sig, nil
		}
	}
}

func (i *Interpreter) executeReturn(n *ast.ReturnStatement, env *runtime.Environment) (signal, error) {
	if n.Value == nil {
		return returnWith(runtime.Nil), nil
	}
	val, err := i.evaluate(n.Value, env)
	if err != nil {
		return normal, err
	}
	return returnWith(val), nil
}

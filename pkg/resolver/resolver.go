// Package resolver computes, before execution, how many environments separate
// each local variable reference from its declaration.
package resolver

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/token"
)

// Locals maps a resolved expression to its scope distance. Expressions that
// are absent refer to globals.
type Locals map[ast.NodeID]int

type functionType int

const (
	functionNone functionType = iota
	functionPlain
	functionMethod
	functionInitializer
)

type classType int

const (
	classNone classType = iota
	classPlain
	classSubclass
)

// Resolver walks the AST with its own scope stack. Each scope maps a name to
// whether its initializer has finished (declared=false, defined=true). The
// scopes it opens must match the environments the interpreter creates: one
// per block, one per call (parameters and body together), one for `this`
// around methods and one for `super` around a subclass's methods.
type Resolver struct {
	scopes          []map[string]bool
	locals          Locals
	currentFunction functionType
	currentClass    classType
	errors          []*diag.ResolutionError
}

// New returns a resolver with an empty side table.
func New() *Resolver {
	return &Resolver{locals: make(Locals)}
}

// Resolve is a convenience wrapper around New().Resolve.
func Resolve(stmts []ast.Statement) (Locals, []*diag.ResolutionError) {
	return New().Resolve(stmts)
}

// Resolve annotates the statements. Errors are collected rather than fatal so
// that every problem in the program is reported at once.
func (r *Resolver) Resolve(stmts []ast.Statement) (Locals, []*diag.ResolutionError) {
	r.resolveStatements(stmts)
	return r.locals, r.errors
}

func (r *Resolver) resolveStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		r.resolveStatement(stmt)
	}
}

func (r *Resolver) resolveStatement(node ast.Statement) {
	switch n := node.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStatements(n.Statements)
		r.endScope()
	case *ast.VarDeclaration:
		r.declare(n.ID(), n.Name)
		if n.Initializer != nil {
			r.resolveExpression(n.Initializer)
		}
		r.define(n.Name)
	case *ast.FunctionDeclaration:
		// Defined before the body so the function can recurse.
		r.declare(n.ID(), n.Name)
		r.define(n.Name)
		r.resolveFunction(n, functionPlain)
	case *ast.ClassDeclaration:
		r.resolveClass(n)
	case *ast.ExpressionStatement:
		r.resolveExpression(n.Expression)
	case *ast.PrintStatement:
		r.resolveExpression(n.Expression)
	case *ast.IfStatement:
		r.resolveExpression(n.Condition)
		r.resolveStatement(n.ThenBranch)
		if n.ElseBranch != nil {
			r.resolveStatement(n.ElseBranch)
		}
	case *ast.WhileLoop:
		r.resolveExpression(n.Condition)
		r.resolveStatement(n.Body)
	case *ast.ReturnStatement:
		if r.currentFunction == functionNone {
			r.errorAt(n.ID(), n.Keyword, "Can't return from top-level code.")
		}
		if n.Value != nil {
			if r.currentFunction == functionInitializer {
				r.errorAt(n.ID(), n.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpression(n.Value)
		}
	case *ast.BreakStatement:
	default:
		panic(fmt.Sprintf("resolver: unsupported statement type %s", node.NodeType()))
	}
}

func (r *Resolver) resolveClass(n *ast.ClassDeclaration) {
	enclosingClass := r.currentClass
	r.currentClass = classPlain
	defer func() { r.currentClass = enclosingClass }()

	r.declare(n.ID(), n.Name)
	r.define(n.Name)

	if n.Superclass != nil {
		if n.Superclass.Name.Lexeme == n.Name.Lexeme {
			r.errorAt(n.Superclass.ID(), n.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpression(n.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true
	for _, method := range n.Methods {
		kind := functionMethod
		if method.Name.Lexeme == "init" {
			kind = functionInitializer
		}
		r.resolveFunction(method, kind)
	}
	r.endScope()

	if n.Superclass != nil {
		r.endScope()
	}
}

func (r *Resolver) resolveFunction(fn *ast.FunctionDeclaration, kind functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind
	defer func() { r.currentFunction = enclosingFunction }()

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(fn.ID(), param)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()
}

func (r *Resolver) resolveExpression(node ast.Expression) {
	switch n := node.(type) {
	case *ast.Literal:
	case *ast.Grouping:
		r.resolveExpression(n.Expression)
	case *ast.UnaryExpression:
		r.resolveExpression(n.Right)
	case *ast.BinaryExpression:
		r.resolveExpression(n.Left)
		r.resolveExpression(n.Right)
	case *ast.LogicalExpression:
		r.resolveExpression(n.Left)
		r.resolveExpression(n.Right)
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][n.Name.Lexeme]; ok && !defined {
				r.errorAt(n.ID(), n.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(n.ID(), n.Name)
	case *ast.Assignment:
		r.resolveExpression(n.Value)
		r.resolveLocal(n.ID(), n.Name)
	case *ast.Call:
		r.resolveExpression(n.Callee)
		for _, arg := range n.Arguments {
			r.resolveExpression(arg)
		}
	case *ast.Get:
		r.resolveExpression(n.Object)
	case *ast.Set:
		r.resolveExpression(n.Value)
		r.resolveExpression(n.Object)
	case *ast.This:
		if r.currentClass == classNone {
			r.errorAt(n.ID(), n.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(n.ID(), n.Keyword)
	case *ast.Super:
		switch r.currentClass {
		case classNone:
			r.errorAt(n.ID(), n.Keyword, "Can't use 'super' outside of a class.")
			return
		case classPlain:
			r.errorAt(n.ID(), n.Keyword, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(n.ID(), n.Keyword)
	default:
		panic(fmt.Sprintf("resolver: unsupported expression type %s", node.NodeType()))
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare reserves name in the innermost scope. id is the declaring node,
// recorded on the duplicate-name error.
func (r *Resolver) declare(id ast.NodeID, name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Lexeme]; exists {
		r.errorAt(id, name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal records the distance to the innermost scope declaring name.
// Unresolved names are left for global lookup at runtime.
func (r *Resolver) resolveLocal(id ast.NodeID, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[id] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) errorAt(id ast.NodeID, tok token.Token, message string) {
	r.errors = append(r.errors, &diag.ResolutionError{Node: id, Token: tok, Message: message})
}

package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) executeClassDeclaration(n *ast.ClassDeclaration, env *runtime.Environment) error {
	var superclass *runtime.ClassValue
	if n.Superclass != nil {
		val, err := i.evaluate(n.Superclass, env)
		if err != nil {
			return err
		}
		class, ok := val.(*runtime.ClassValue)
		if !ok {
			return i.runtimeError(n.Superclass.Name.Line, "Superclass must be a class.")
		}
		superclass = class
	}

	env.Define(n.Name.Lexeme, runtime.Nil)

	// Methods of a subclass close over one extra scope holding `super`.
	methodEnv := env
	if superclass != nil {
		methodEnv = env.Extend()
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*runtime.FunctionValue, len(n.Methods))
	for _, method := range n.Methods {
		methods[method.Name.Lexeme] = &runtime.FunctionValue{
			Declaration:   method,
			Closure:       methodEnv,
			IsInitializer: method.Name.Lexeme == "init",
		}
	}

	env.Define(n.Name.Lexeme, &runtime.ClassValue{
		ClassName:  n.Name.Lexeme,
		Superclass: superclass,
		Methods:    methods,
	})
	return nil
}

func (i *Interpreter) evaluateGet(n *ast.Get, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evaluate(n.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return nil, i.runtimeError(n.Name.Line, "Only instances have properties.")
	}
	// Every access binds a fresh method value.
	if val, ok := instance.Get(n.Name.Lexeme); ok {
		return val, nil
	}
	return nil, i.runtimeError(n.Name.Line, "Undefined property '%s'.", n.Name.Lexeme)
}

func (i *Interpreter) evaluateSet(n *ast.Set, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evaluate(n.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return nil, i.runtimeError(n.Name.Line, "Only instances have fields.")
	}
	val, err := i.evaluate(n.Value, env)
	if err != nil {
		return nil, err
	}
	instance.Set(n.Name.Lexeme, val)
	return val, nil
}

// evaluateSuper finds the method on the superclass and binds it to the
// current `this`, which lives one scope inside the `super` scope.
func (i *Interpreter) evaluateSuper(n *ast.Super, env *runtime.Environment) (runtime.Value, error) {
	distance, ok := i.locals[n.ID()]
	if !ok {
		return nil, fmt.Errorf("interpreter: unresolved 'super' at line %d", n.Keyword.Line)
	}
	superVal, err := env.GetAt(distance, "super")
	if err != nil {
		return nil, err
	}
	superclass, ok := superVal.(*runtime.ClassValue)
	if !ok {
		return nil, fmt.Errorf("interpreter: 'super' bound to %s", superVal.Kind())
	}
	thisVal, err := env.GetAt(distance-1, "this")
	if err != nil {
		return nil, err
	}
	instance, ok := thisVal.(*runtime.InstanceValue)
	if !ok {
		return nil, fmt.Errorf("interpreter: 'this' bound to %s", thisVal.Kind())
	}
	method, ok := superclass.FindMethod(n.Method.Lexeme)
	if !ok {
		return nil, i.runtimeError(n.Method.Line, "Undefined property '%s'.", n.Method.Lexeme)
	}
	return method.Bind(instance), nil
}

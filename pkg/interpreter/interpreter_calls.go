package interpreter

import (
	"errors"
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/runtime"
)

// callFrame is an active call. line is the call site in the caller.
type callFrame struct {
	function string
	line     int
}

// callStack renders the active frames innermost first, ending with the
// top-level script frame. line is where the error happened.
func (i *Interpreter) callStack(line int) []diag.Frame {
	stack := make([]diag.Frame, 0, len(i.frames)+1)
	for idx := len(i.frames) - 1; idx >= 0; idx-- {
		stack = append(stack, diag.Frame{Function: i.frames[idx].function, Line: line})
		line = i.frames[idx].line
	}
	return append(stack, diag.Frame{Function: "script", Line: line})
}

func (i *Interpreter) evaluateCall(n *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluate(n.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		val, err := i.evaluate(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	fn, ok := callee.(runtime.Callable)
	if !ok {
		return nil, i.runtimeError(n.Paren.Line, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, i.runtimeError(n.Paren.Line, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	return i.callValue(fn, args, n.Paren.Line)
}

// callValue invokes an arity-checked callable inside a new frame.
func (i *Interpreter) callValue(fn runtime.Callable, args []runtime.Value, line int) (runtime.Value, error) {
	if len(i.frames) >= i.maxCallDepth {
		return nil, i.runtimeError(line, "Stack overflow.")
	}
	i.frames = append(i.frames, callFrame{function: fn.Name(), line: line})
	defer func() { i.frames = i.frames[:len(i.frames)-1] }()
	i.logger.Debug("call", "function", fn.Name(), "kind", fn.Kind().String(), "line", line, "depth", len(i.frames))

	var (
		result runtime.Value
		err    error
	)
	switch callee := fn.(type) {
	case *runtime.FunctionValue:
		result, err = i.callFunction(callee, args)
	case *runtime.NativeFunctionValue:
		result, err = i.callNative(callee, args, line)
	case *runtime.ClassValue:
		result, err = i.instantiate(callee, args)
	default:
		err = fmt.Errorf("unsupported callable %T", fn)
	}
	if err != nil {
		return nil, err
	}
	i.logger.Debug("return", "function", fn.Name(), "depth", len(i.frames))
	return result, nil
}

// callFunction binds parameters in a fresh environment parented at the
// closure and runs the body there. Parameters and body share that scope.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	env := fn.Closure.Extend()
	for idx, param := range fn.Declaration.Params {
		env.Define(param.Lexeme, args[idx])
	}
	sig, err := i.executeBlock(fn.Declaration.Body, env)
	if err != nil {
		return nil, err
	}
	switch sig.kind {
	case signalBreak:
		return nil, fmt.Errorf("interpreter: break escaped function %s", fn.Name())
	case signalReturn:
		if !fn.IsInitializer {
			return sig.value, nil
		}
	}
	if fn.IsInitializer {
		return fn.Closure.GetAt(0, "this")
	}
	return runtime.Nil, nil
}

func (i *Interpreter) callNative(fn *runtime.NativeFunctionValue, args []runtime.Value, line int) (runtime.Value, error) {
	result, err := fn.Impl(args)
	if err != nil {
		var rtErr *diag.RuntimeError
		if errors.As(err, &rtErr) {
			return nil, err
		}
		return nil, i.runtimeError(line, "%s", err.Error())
	}
	if result == nil {
		return runtime.Nil, nil
	}
	return result, nil
}

// instantiate allocates an instance and runs the nearest init on it inside
// the class's own frame. The instance is the result whatever init returns.
func (i *Interpreter) instantiate(class *runtime.ClassValue, args []runtime.Value) (runtime.Value, error) {
	instance := runtime.NewInstance(class)
	if init, ok := class.FindMethod("init"); ok {
		if _, err := i.callFunction(init.Bind(instance), args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

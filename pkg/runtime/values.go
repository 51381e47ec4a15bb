package runtime

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindNativeFunction
	KindClass
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the closed set of Lox runtime values. Only types in this package
// can satisfy it.
type Value interface {
	Kind() Kind
	loxValue()
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }
func (NilValue) loxValue()  {}

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }
func (BoolValue) loxValue()  {}

type NumberValue struct {
	Val float64
}

func (NumberValue) Kind() Kind { return KindNumber }
func (NumberValue) loxValue()  {}

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }
func (StringValue) loxValue()  {}

// Nil is the single nil value.
var Nil Value = NilValue{}

// IsTruthy applies Lox truthiness: nil and false are falsey, everything else
// (including 0 and "") is truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case nil, NilValue:
		return false
	case BoolValue:
		return val.Val
	default:
		return true
	}
}

// Equal compares without cross-type coercion. Numbers use IEEE equality so
// NaN is not equal to itself; functions, classes and instances compare by
// identity.
func Equal(a, b Value) bool {
	switch left := a.(type) {
	case NilValue:
		_, ok := b.(NilValue)
		return ok
	case BoolValue:
		right, ok := b.(BoolValue)
		return ok && left.Val == right.Val
	case NumberValue:
		right, ok := b.(NumberValue)
		return ok && left.Val == right.Val
	case StringValue:
		right, ok := b.(StringValue)
		return ok && left.Val == right.Val
	default:
		return a == b
	}
}

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// Callable is implemented by every value that can appear as a callee.
type Callable interface {
	Value
	Arity() int
	Name() string
}

// FunctionValue is a user function or method closed over its defining scope.
type FunctionValue struct {
	Declaration   *ast.FunctionDeclaration
	Closure       *Environment
	IsInitializer bool
}

func (*FunctionValue) Kind() Kind { return KindFunction }
func (*FunctionValue) loxValue()  {}

func (f *FunctionValue) Arity() int   { return len(f.Declaration.Params) }
func (f *FunctionValue) Name() string { return f.Declaration.Name.Lexeme }

// Bind returns a copy of the method whose closure defines `this`.
func (f *FunctionValue) Bind(instance *InstanceValue) *FunctionValue {
	env := f.Closure.Extend()
	env.Define("this", instance)
	return &FunctionValue{
		Declaration:   f.Declaration,
		Closure:       env,
		IsInitializer: f.IsInitializer,
	}
}

// NativeFunc implements a host-provided function.
type NativeFunc func(args []Value) (Value, error)

type NativeFunctionValue struct {
	FuncName string
	Params   int
	Impl     NativeFunc
}

func (*NativeFunctionValue) Kind() Kind { return KindNativeFunction }
func (*NativeFunctionValue) loxValue()  {}

func (n *NativeFunctionValue) Arity() int   { return n.Params }
func (n *NativeFunctionValue) Name() string { return n.FuncName }

//-----------------------------------------------------------------------------
// Classes and instances
//-----------------------------------------------------------------------------

type ClassValue struct {
	ClassName  string
	Superclass *ClassValue
	Methods    map[string]*FunctionValue
}

func (*ClassValue) Kind() Kind { return KindClass }
func (*ClassValue) loxValue()  {}

func (c *ClassValue) Name() string { return c.ClassName }

// FindMethod searches this class, then its ancestors.
func (c *ClassValue) FindMethod(name string) (*FunctionValue, bool) {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

// Arity is the arity of the nearest init, or zero.
func (c *ClassValue) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

type InstanceValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

// NewInstance allocates an instance with an empty field table.
func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Fields: make(map[string]Value)}
}

func (*InstanceValue) Kind() Kind { return KindInstance }
func (*InstanceValue) loxValue()  {}

// Get reads a field, falling back to a method bound to this instance.
func (i *InstanceValue) Get(name string) (Value, bool) {
	if v, ok := i.Fields[name]; ok {
		return v, true
	}
	if method, ok := i.Class.FindMethod(name); ok {
		return method.Bind(i), true
	}
	return nil, false
}

// Set writes a field, creating it if needed.
func (i *InstanceValue) Set(name string, value Value) {
	i.Fields[name] = value
}

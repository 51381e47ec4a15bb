package interpreter

import (
	"lox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) defineNatives() {
	i.global.Define("clock", &runtime.NativeFunctionValue{
		FuncName: "clock",
		Params:   0,
		Impl: func(args []runtime.Value) (runtime.Value, error) {
			now := i.clock()
			return runtime.NumberValue{Val: float64(now.UnixNano()) / 1e9}, nil
		},
	})
}

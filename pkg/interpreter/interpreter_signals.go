package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/runtime"
)

type signalKind int

const (
	signalNormal signalKind = iota
	signalReturn
	signalBreak
)

func (k signalKind) String() string {
	switch k {
	case signalNormal:
		return "normal"
	case signalReturn:
		return "return"
	case signalBreak:
		return "break"
	default:
		return fmt.Sprintf("signal_%d", int(k))
	}
}

// signal is how a statement finished. Return carries its value; the zero
// value means execution continues with the next statement.
type signal struct {
	kind  signalKind
	value runtime.Value
}

var normal = signal{kind: signalNormal}

func returnWith(v runtime.Value) signal {
	return signal{kind: signalReturn, value: v}
}

var breakLoop = signal{kind: signalBreak}

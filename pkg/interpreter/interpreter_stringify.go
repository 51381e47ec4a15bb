package interpreter

import (
	"fmt"
	"math"
	"strconv"

	"lox/interpreter-go/pkg/runtime"
)

// Stringify renders a value the way `print` shows it.
func Stringify(val runtime.Value) string {
	switch v := val.(type) {
	case nil, runtime.NilValue:
		return "nil"
	case runtime.BoolValue:
		return strconv.FormatBool(v.Val)
	case runtime.NumberValue:
		return formatNumber(v.Val)
	case runtime.StringValue:
		return v.Val
	case *runtime.FunctionValue:
		return fmt.Sprintf("<fn %s>", v.Name())
	case *runtime.NativeFunctionValue:
		return fmt.Sprintf("<fn %s>", v.Name())
	case *runtime.ClassValue:
		return fmt.Sprintf("<class %s>", v.Name())
	case *runtime.InstanceValue:
		return fmt.Sprintf("<%s instance>", v.Class.Name())
	default:
		return fmt.Sprintf("<%s>", val.Kind())
	}
}

// formatNumber prints integral values without a fraction and everything
// else in the shortest form that round-trips.
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

package common

import (
	"reflect"

	"github.com/pkg/errors"
)

type Syscall struct {
	Num      uint32
	Name     string
	Kernel   *KernelBase
	Instance reflect.Value
	Method   reflect.Method
	In       []reflect.Type
	Out      []reflect.Type
}

var int64Type = reflect.TypeOf(int64(0))

// Call converts the register arguments and runs the handler. Conversion
// failures, such as an unreadable string pointer, are returned as errors.
func (sys *Syscall) Call(args []uint32) (int32, error) {
	if len(args) < len(sys.In) {
		return -1, errors.Errorf("%s: wanted %d arguments, got %d", sys.Name, len(sys.In), len(args))
	}
	converted, err := sys.Kernel.Argjoy.Convert(sys.In, false, args[:len(sys.In)])
	if err != nil {
		return -1, errors.Wrapf(err, "calling %s", sys.Name)
	}
	in := make([]reflect.Value, len(converted)+1)
	in[0] = sys.Instance
	copy(in[1:], converted)
	out := sys.Method.Func.Call(in)
	if len(out) > 0 && out[0].Type().ConvertibleTo(int64Type) {
		return int32(out[0].Convert(int64Type).Int()), nil
	}
	return 0, nil
}

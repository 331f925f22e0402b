package common

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tricorn/tricorn/go/models"
)

func (s *Syscall) strsize() int {
	if s.Kernel.Config != nil {
		return s.Kernel.Config.Strsize
	}
	return 0
}

func (s *Syscall) traceArg(args ...interface{}) string {
	switch arg := args[0].(type) {
	case Obuf:
		return fmt.Sprintf("0x%x", arg.Addr)
	case Buf:
		if len(args) > 1 {
			if length, ok := args[1].(Len); ok {
				if mem, err := arg.Read(length); err == nil {
					return models.Repr(mem, s.strsize())
				}
			}
		}
		return fmt.Sprintf("0x%x", arg.Addr)
	case Ptr:
		return fmt.Sprintf("0x%x", uint32(arg))
	case Fd, Len:
		return fmt.Sprintf("%d", arg)
	case string:
		return models.Repr([]byte(arg), s.strsize())
	default:
		return fmt.Sprintf("%v", arg)
	}
}

func (s *Syscall) traceArgs(args []uint32) string {
	if len(args) < len(s.In) {
		return "?"
	}
	inRef, err := s.Kernel.Argjoy.Convert(s.In, false, args[:len(s.In)])
	if err != nil {
		return err.Error()
	}
	in := make([]interface{}, len(inRef))
	for i, val := range inRef {
		in[i] = val.Interface()
	}
	ret := make([]string, len(in))
	for i := range in {
		ret[i] = s.traceArg(in[i:]...)
	}
	return strings.Join(ret, ", ")
}

func (s *Syscall) Trace(args []uint32) string {
	return fmt.Sprintf("%s(%s)", s.Name, s.traceArgs(args))
}

// TraceRet formats the result, including the bytes a read produced.
func (s *Syscall) TraceRet(args []uint32, ret int32) string {
	var out []string
	for i, typ := range s.In {
		if typ == reflect.TypeOf(Obuf{}) && len(args) > i+1 && ret > 0 && uint32(ret) <= args[i+1] {
			if mem, err := NewBuf(s.Kernel, args[i]).Read(Len(ret)); err == nil {
				out = append(out, models.Repr(mem, s.strsize()))
			}
		}
	}
	out = append(out, fmt.Sprintf("%d", ret))
	return " = " + strings.Join(out, ", ")
}

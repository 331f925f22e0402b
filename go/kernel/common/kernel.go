package common

import (
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lunixbochs/argjoy"
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/models"
)

type KernelBase struct {
	Syscalls map[string]*Syscall
	Numbers  map[uint32]*Syscall
	Mem      Memory
	Config   *models.Config
	Argjoy   argjoy.Argjoy
}

func (k *KernelBase) Base() *KernelBase {
	return k
}

// Kernel is implemented by syscall receivers embedding KernelBase. Every
// exported method is a syscall named by its snake_case name.
type Kernel interface {
	Base() *KernelBase
}

func camelToSnakeCase(name string) string {
	var words []string
	last := 0
	for i, c := range name {
		if unicode.IsUpper(c) {
			if i > 0 {
				words = append(words, name[last:i])
			}
			last = i
		}
	}
	words = append(words, name[last:])
	return strings.ToLower(strings.Join(words, "_"))
}

// Init builds the dispatch table of kf and binds it to syscall numbers.
func Init(kf Kernel, numbers map[uint32]string) error {
	k := kf.Base()
	k.Syscalls = make(map[string]*Syscall)
	k.Numbers = make(map[uint32]*Syscall)
	instance := reflect.ValueOf(kf)
	typ := instance.Type()
	for i := 0; i < typ.NumMethod(); i++ {
		method := typ.Method(i)
		if r, size := utf8.DecodeRuneInString(method.Name); size <= 0 || !unicode.IsUpper(r) {
			continue
		}
		if method.Name == "Base" {
			continue
		}
		name := camelToSnakeCase(method.Name)
		in := make([]reflect.Type, method.Type.NumIn()-1)
		for j := 1; j < method.Type.NumIn(); j++ {
			in[j-1] = method.Type.In(j)
		}
		out := make([]reflect.Type, method.Type.NumOut())
		for j := 0; j < method.Type.NumOut(); j++ {
			out[j] = method.Type.Out(j)
		}
		k.Syscalls[name] = &Syscall{
			Name:     name,
			Kernel:   k,
			Instance: instance,
			Method:   method,
			In:       in,
			Out:      out,
		}
	}
	for num, name := range numbers {
		sys, ok := k.Syscalls[name]
		if !ok {
			return errors.Errorf("syscall %d: %T has no method for %q", num, kf, name)
		}
		sys.Num = num
		k.Numbers[num] = sys
	}
	k.Argjoy.Register(k.commonArgCodec)
	k.Argjoy.Register(argjoy.IntToInt)
	return nil
}

// Lookup finds a syscall by number, nil if it is not in the table.
func (k *KernelBase) Lookup(num uint32) *Syscall {
	return k.Numbers[num]
}

// List returns the numbered syscalls in number order.
func (k *KernelBase) List() []*Syscall {
	out := make([]*Syscall, 0, len(k.Numbers))
	for _, sys := range k.Numbers {
		out = append(out, sys)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Num < out[j].Num })
	return out
}

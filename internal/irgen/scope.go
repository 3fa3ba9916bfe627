package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"alan/internal/errors"
)

// varBinding is one name's storage slot: the type it was declared/allocated
// with, and the alloca (or incoming param) instruction that is its address.
type varBinding struct {
	typ    types.Type
	alloca value.Value
}

// scopeFrame is one IR-emission scope: the variables and functions declared
// directly in it.
type scopeFrame struct {
	vars  map[string]varBinding
	funcs map[string]*ir.Func
}

// logger is the scope stack the emitter consults to resolve names to IR
// values and function declarations: openScope/closeScope bracket every
// function body and every if/else branch (but not while bodies, which never
// declare new locals), and lookups walk outward through enclosing scopes
// exactly like internal/symtab.Table.Lookup does for the semantic pass.
type logger struct {
	frames []*scopeFrame
}

func newLogger() *logger {
	return &logger{}
}

func (l *logger) openScope() {
	l.frames = append(l.frames, &scopeFrame{
		vars:  make(map[string]varBinding),
		funcs: make(map[string]*ir.Func),
	})
}

func (l *logger) closeScope() {
	l.frames = l.frames[:len(l.frames)-1]
}

func (l *logger) current() *scopeFrame { return l.frames[len(l.frames)-1] }

func (l *logger) addVariable(name string, typ types.Type, alloca value.Value) {
	l.current().vars[name] = varBinding{typ: typ, alloca: alloca}
}

func (l *logger) getVarAlloca(name string) value.Value {
	for i := len(l.frames) - 1; i >= 0; i-- {
		if b, ok := l.frames[i].vars[name]; ok {
			return b.alloca
		}
	}
	errors.Internal("irgen: no binding for variable %q", name)
	return nil
}

func (l *logger) getVarType(name string) types.Type {
	for i := len(l.frames) - 1; i >= 0; i-- {
		if b, ok := l.frames[i].vars[name]; ok {
			return b.typ
		}
	}
	errors.Internal("irgen: no binding for variable %q", name)
	return nil
}

func (l *logger) isPointer(name string) bool {
	_, ok := l.getVarType(name).(*types.PointerType)
	return ok
}

// currentScopeBindings snapshots the variables declared directly in the
// innermost open scope — the capture source set a nested FuncDef reads
// before opening its own scope.
func (l *logger) currentScopeBindings() map[string]varBinding {
	src := l.current().vars
	out := make(map[string]varBinding, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (l *logger) addFunction(name string, fn *ir.Func) {
	l.current().funcs[name] = fn
}

func (l *logger) getFunction(name string) *ir.Func {
	for i := len(l.frames) - 1; i >= 0; i-- {
		if f, ok := l.frames[i].funcs[name]; ok {
			return f
		}
	}
	errors.Internal("irgen: no function declared for %q", name)
	return nil
}

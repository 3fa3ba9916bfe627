package irgen

import (
	"github.com/llir/llvm/ir"

	"alan/internal/stdlib"
	"alan/internal/symtab"
)

// declareStdlib emits an external declaration for every stdlib.Funcs entry
// into m and records it in the current (outermost) logger scope. A C runtime
// shim supplies the definitions at link time, so the compiler only ever
// needs their signatures.
func declareStdlib(m *ir.Module, log *logger) {
	for _, sig := range stdlib.Funcs {
		params := make([]*ir.Param, len(sig.Params))
		for i, p := range sig.Params {
			mode := symtab.ByValue
			if p.Reference {
				mode = symtab.ByReference
			}
			params[i] = ir.NewParam("", llParamType(p.Type, mode))
		}
		fn := m.NewFunc(sig.Name, llType(sig.Result), params...)
		log.addFunction(sig.Name, fn)
	}
}

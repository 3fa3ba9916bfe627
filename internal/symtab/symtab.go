// Package symtab implements Alan's scoped symbol table: a stack of lexical
// scopes, each holding a chained-hash mapping from name to SymbolEntry, with
// offset bookkeeping for locals and parameters.
package symtab

import "alan/internal/types"

// StartNegativeOffset is the reserved-frame constant a new scope's negOffset
// starts from; the first local allocated in a scope lands at
// StartNegativeOffset - sizeOf(its type).
const StartNegativeOffset = 0

// PassMode is a parameter's argument-passing mode.
type PassMode int

const (
	ByValue PassMode = iota
	ByReference
)

// ParDefState is a function entry's header-parsing lifecycle: Define while
// its own parameter list is being built, Check while a forward declaration's
// matching body header is being verified against it, Complete once closed.
type ParDefState int

const (
	Define ParDefState = iota
	Check
	Complete
)

// EntryKind distinguishes the three symbol-table entry shapes.
type EntryKind int

const (
	VariableEntry EntryKind = iota
	ParameterEntry
	FunctionEntry
)

// Entry is one symbol-table entry. Not every field is meaningful for every
// Kind; see the per-kind comments. Functions and their parameters are linked
// by plain slice order (Params) rather than a Next pointer chain — Go's
// slices already give O(1) append and ordered iteration.
type Entry struct {
	Name         string
	Kind         EntryKind
	Type         *types.Type // Variable/Parameter: its type. Function: result type.
	NestingLevel int

	// Variable / Parameter
	Offset int
	Mode   PassMode // Parameter only

	// Function
	Params      []*Entry // parameter entries, in declaration order
	ParDef      ParDefState
	Forward     bool
	checkCursor int // index into Params consumed so far during Check mode
}

// IsArrayLikeParam reports whether a parameter entry names an ARRAY or
// IARRAY type — such parameters are always passed by reference regardless
// of the mode recorded at DEFINE time, mirroring the ArrayByValue
// rule (which rejects BY_VALUE arrays before they ever reach here).
func (e *Entry) IsArrayLikeParam() bool {
	return e.Kind == ParameterEntry && e.Type != nil && e.Type.IsArrayLike()
}

// Scope is one lexical scope: its own entries (for LIFO teardown and
// current-scope-only lookup) plus a name index shared with the whole scope
// stack lookup path.
type Scope struct {
	parent       *Scope
	nestingLevel int
	negOffset    int
	entries      []*Entry          // insertion order
	byName       map[string]*Entry // current-scope-only lookup
}

// LookupScope selects how Table.Lookup searches.
type LookupScope int

const (
	CurrentScope LookupScope = iota
	AllScopes
)

// DuplicateIdentifierError is returned by New* constructors when name is
// already bound in the current scope.
type DuplicateIdentifierError struct{ Name string }

func (e *DuplicateIdentifierError) Error() string {
	return "duplicate identifier: " + e.Name
}

// Table is the scope stack. The zero value is not usable; use NewTable.
type Table struct {
	top *Scope
}

// NewTable returns an empty scope stack (no scopes open).
func NewTable() *Table { return &Table{} }

// Depth reports how many scopes are currently open; used by tests to check
// the symbol-table-balance invariant.
func (t *Table) Depth() int {
	n := 0
	for s := t.top; s != nil; s = s.parent {
		n++
	}
	return n
}

// OpenScope pushes a new scope whose nesting level is one more than the
// current scope's (or 1 if the table is empty — the stdlib scope).
func (t *Table) OpenScope() {
	level := 1
	if t.top != nil {
		level = t.top.nestingLevel + 1
	}
	t.top = &Scope{
		parent:       t.top,
		nestingLevel: level,
		negOffset:    StartNegativeOffset,
		byName:       make(map[string]*Entry),
	}
}

// CloseScope pops the current scope. All entries created in it are
// discarded along with it.
func (t *Table) CloseScope() {
	if t.top == nil {
		return
	}
	t.top = t.top.parent
}

// CurrentNestingLevel returns the nesting level of the innermost open scope,
// or 0 if no scope is open.
func (t *Table) CurrentNestingLevel() int {
	if t.top == nil {
		return 0
	}
	return t.top.nestingLevel
}

// CurrentNegOffset exposes the running negative-offset cursor of the
// innermost scope; FuncDecl nodes snapshot it as numVars.
func (t *Table) CurrentNegOffset() int {
	if t.top == nil {
		return StartNegativeOffset
	}
	return t.top.negOffset
}

// Lookup resolves name either in the current scope only or walking outward
// through every open scope.
func (t *Table) Lookup(name string, scope LookupScope) *Entry {
	if t.top == nil {
		return nil
	}
	if scope == CurrentScope {
		return t.top.byName[name]
	}
	for s := t.top; s != nil; s = s.parent {
		if e, ok := s.byName[name]; ok {
			return e
		}
	}
	return nil
}

// NewVariable allocates a Variable entry: offset is computed by first
// decrementing negOffset by sizeOf(typ), then assigning the new negOffset to
// the entry.
func (t *Table) NewVariable(name string, typ *types.Type) (*Entry, error) {
	if _, exists := t.top.byName[name]; exists {
		return nil, &DuplicateIdentifierError{Name: name}
	}
	t.top.negOffset -= types.SizeOf(typ)
	e := &Entry{
		Name:         name,
		Kind:         VariableEntry,
		Type:         typ,
		NestingLevel: t.top.nestingLevel,
		Offset:       t.top.negOffset,
	}
	t.addToCurrentScope(e)
	return e, nil
}

// NewFunction creates or re-opens a function entry: if name is absent in
// the current scope, creates it with ParDef = Define; if present as a
// forward declaration, flips it to Check and resets the parameter cursor;
// otherwise reports a duplicate identifier.
func (t *Table) NewFunction(name string) (*Entry, error) {
	if existing, ok := t.top.byName[name]; ok {
		if existing.Kind == FunctionEntry && existing.Forward {
			existing.ParDef = Check
			existing.checkCursor = 0
			return existing, nil
		}
		return nil, &DuplicateIdentifierError{Name: name}
	}
	e := &Entry{
		Name:         name,
		Kind:         FunctionEntry,
		NestingLevel: t.top.nestingLevel,
		ParDef:       Define,
	}
	t.addToCurrentScope(e)
	return e, nil
}

// ParamMismatchError reports a CHECK-mode parameter that does not match the
// forward declaration's expectation at the same position.
type ParamMismatchError struct {
	FuncName string
	Reason   string
}

func (e *ParamMismatchError) Error() string {
	return "parameter mismatch in " + e.FuncName + ": " + e.Reason
}

// NewParameter appends (Define mode) or checks (Check mode) a parameter
// against fn's expected parameter at the current cursor position. The
// returned entry is held in fn.Params and is also registered by name in the
// current scope (the function's own, already opened by the caller), so
// lookups inside the body resolve it.
func (t *Table) NewParameter(name string, typ *types.Type, mode PassMode, fn *Entry) (*Entry, error) {
	switch fn.ParDef {
	case Define:
		if _, exists := t.top.byName[name]; exists {
			return nil, &DuplicateIdentifierError{Name: name}
		}
		e := &Entry{
			Name:         name,
			Kind:         ParameterEntry,
			Type:         typ,
			Mode:         mode,
			NestingLevel: t.top.nestingLevel,
		}
		fn.Params = append(fn.Params, e)
		t.addToCurrentScope(e)
		return e, nil
	case Check:
		if fn.checkCursor >= len(fn.Params) {
			return nil, &ParamMismatchError{FuncName: fn.Name, Reason: "too many parameters"}
		}
		expected := fn.Params[fn.checkCursor]
		fn.checkCursor++
		if expected.Name != name {
			return nil, &ParamMismatchError{FuncName: fn.Name, Reason: "parameter name mismatch: expected " + expected.Name + ", got " + name}
		}
		if !types.Equal(expected.Type, typ) {
			return nil, &ParamMismatchError{FuncName: fn.Name, Reason: "parameter type mismatch for " + name}
		}
		if expected.Mode != mode {
			return nil, &ParamMismatchError{FuncName: fn.Name, Reason: "parameter mode mismatch for " + name}
		}
		t.addToCurrentScope(expected)
		return expected, nil
	default:
		return nil, &ParamMismatchError{FuncName: fn.Name, Reason: "parameter declared after header was closed"}
	}
}

// EndFunctionHeader closes a function's parameter list: in Define mode it
// assigns positive frame offsets to parameters leaves-last
// (the last declared parameter sits nearest the frame pointer), sets
// resultType, and transitions to Complete. Reference parameters and
// ARRAY/IARRAY parameters (whatever their mode) consume an 8-byte pointer
// slot; by-value scalars consume sizeOf(type).
func (t *Table) EndFunctionHeader(fn *Entry, resultType *types.Type) {
	fn.Type = resultType
	if fn.ParDef != Define {
		fn.ParDef = Complete
		return
	}
	offset := 0
	for i := len(fn.Params) - 1; i >= 0; i-- {
		p := fn.Params[i]
		if p.Mode == ByReference || p.Type.IsArrayLike() {
			offset += 8
		} else {
			offset += types.SizeOf(p.Type)
		}
		p.Offset = offset
	}
	fn.ParDef = Complete
}

func (t *Table) addToCurrentScope(e *Entry) {
	t.top.entries = append(t.top.entries, e)
	t.top.byName[e.Name] = e
}

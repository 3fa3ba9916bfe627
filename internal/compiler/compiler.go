// Package compiler wires together Alan's pipeline stages — symbol table
// construction, stdlib registration, semantic analysis and IR emission —
// behind a single Context rather than scattered package-level globals.
package compiler

import (
	"github.com/llir/llvm/ir"

	"alan/internal/ast"
	"alan/internal/errors"
	"alan/internal/irgen"
	"alan/internal/sem"
	"alan/internal/stdlib"
	"alan/internal/symtab"
)

// Context is one compilation's state: its own symbol table and diagnostic
// sink, fresh for every call to Compile so concurrent compilations (e.g. in
// tests) never share mutable state.
type Context struct {
	Table *symtab.Table
	Sink  *errors.Sink
}

// NewContext returns a Context with the stdlib scope opened and populated,
// ready for semantic analysis of a program's outermost FuncDef. file is
// stamped onto every diagnostic the returned Context's Sink collects.
func NewContext(file string) *Context {
	table := symtab.NewTable()
	table.OpenScope() // nesting level 1: the stdlib scope
	stdlib.RegisterSymbols(table)
	return &Context{Table: table, Sink: errors.NewSink(file)}
}

// Result is the outcome of compiling one program.
type Result struct {
	Module *ir.Module // nil if semantic analysis reported any error
	Sink   *errors.Sink
}

// Compile runs semantic analysis over root and, only if analysis reported no
// error, lowers it to an LLVM module. It panics with an *errors.InternalError
// if either stage hits a violated compiler invariant; callers at the process
// boundary (cmd/alanc) are expected to recover it.
func Compile(file string, root *ast.FuncDef) Result {
	ctx := NewContext(file)

	analyzer := sem.New(ctx.Table, ctx.Sink)
	analyzer.Analyze(root)

	if ctx.Sink.Failed() {
		return Result{Sink: ctx.Sink}
	}

	module := irgen.Lower(root)
	return Result{Module: module, Sink: ctx.Sink}
}

// Package sem implements Alan's semantic analyzer: a single post-order walk
// over the AST that resolves names against internal/symtab, assigns types to
// expression nodes, and enforces Alan's typing rules.
//
// The analyzer's mutable state (current function stack, line counter) is
// modeled as explicit fields of *Analyzer rather than package-level globals.
package sem

import (
	"alan/internal/ast"
	"alan/internal/errors"
	"alan/internal/symtab"
	"alan/internal/types"
)

// Analyzer holds the state threaded through one compilation's semantic
// analysis pass: the symbol table it resolves names against, the sink it
// reports diagnostics to, the function stack (the top entry is the
// function currently being analyzed), and the line of the node currently
// being analyzed.
type Analyzer struct {
	Table *symtab.Table
	Sink  *errors.Sink

	funcStack []*symtab.Entry
	line      int
}

// New returns an Analyzer over an already-open table (the caller is expected
// to have opened the stdlib scope and registered stdlib.Funcs into it
// before analysis begins).
func New(table *symtab.Table, sink *errors.Sink) *Analyzer {
	return &Analyzer{Table: table, Sink: sink}
}

// CurrentFunction returns the function entry at the top of the function
// stack, or nil outside any function.
func (a *Analyzer) CurrentFunction() *symtab.Entry {
	if len(a.funcStack) == 0 {
		return nil
	}
	return a.funcStack[len(a.funcStack)-1]
}

func (a *Analyzer) pushFunc(e *symtab.Entry) { a.funcStack = append(a.funcStack, e) }
func (a *Analyzer) popFunc() {
	a.funcStack = a.funcStack[:len(a.funcStack)-1]
}

// Analyze runs semantic analysis over n, dispatching by concrete AST type.
// It is safe to call on any node kind; most callers use it on the program's
// single outermost *ast.FuncDef.
func (a *Analyzer) Analyze(n ast.Node) {
	if n == nil {
		return
	}
	a.line = n.Line()
	switch node := n.(type) {
	case *ast.Id:
		a.analyzeId(node)
	case *ast.IntLit:
		node.Type = types.IntegerType
	case *ast.CharLit:
		node.Type = types.CharType
	case *ast.StrLit:
		node.Type = types.NewArray(len(node.Value), types.CharType)
	case *ast.VarDef:
		a.analyzeVarDef(node)
	case *ast.FuncDecl:
		a.analyzeFuncDecl(node)
	case *ast.FuncDef:
		a.analyzeFuncDef(node)
	case *ast.Par:
		a.analyzePar(node)
	case *ast.Assign:
		a.analyzeAssign(node)
	case *ast.FCall:
		a.analyzeFCall(node)
	case *ast.FCallStmt:
		a.analyzeFCallStmt(node)
	case *ast.If:
		a.analyzeIf(node)
	case *ast.IfElse:
		a.analyzeIfElse(node)
	case *ast.While:
		a.analyzeWhile(node)
	case *ast.Ret:
		a.analyzeRet(node)
	case *ast.Seq:
		a.analyzeSeq(node)
	case *ast.Op:
		a.analyzeOp(node)
	default:
		errors.Internal("sem: unhandled AST node kind %T", n)
	}
}

// analyzeId resolves an Id against every open scope. On failure
// it poisons the node's type to BOOLEAN so callers that read Type keep
// getting a plausible scalar instead of cascading nil-type panics.
func (a *Analyzer) analyzeId(n *ast.Id) {
	if n.Index != nil {
		a.Analyze(n.Index)
	}
	e := a.Table.Lookup(n.Name, symtab.AllScopes)
	if e == nil {
		a.Sink.Report(errors.UnknownIdentifier, a.line, "undefined identifier %q", n.Name)
		n.Type = types.BooleanType
		return
	}
	switch e.Kind {
	case symtab.VariableEntry, symtab.ParameterEntry:
		if n.Index == nil {
			n.Type = e.Type
		} else {
			if !e.Type.IsArrayLike() {
				a.Sink.Report(errors.IndexedNonArray, a.line, "%q is not an array", n.Name)
				n.Type = types.BooleanType
			} else {
				n.Type = e.Type.Elem()
			}
		}
	case symtab.FunctionEntry:
		n.Type = e.Type
	default:
		errors.Internal("sem: symbol table entry for %q has unknown kind", n.Name)
	}
	n.NestingDiff = a.Table.CurrentNestingLevel() - e.NestingLevel
	n.Offset = e.Offset
}

// analyzeVarDef rejects ARRAY(n,_) with n<=0, then inserts the variable,
// using ARRAY(ArraySize, Type) as the effective type when ArraySize > 0.
func (a *Analyzer) analyzeVarDef(n *ast.VarDef) {
	effective := n.Type
	if n.ArraySize > 0 {
		effective = types.NewArray(n.ArraySize, n.Type)
	} else if n.ArraySize < 0 {
		a.Sink.Report(errors.IllegalArraySize, a.line, "illegal size of array %q in variable definition", n.Name)
		effective = types.NewArray(1, n.Type)
	}
	if _, err := a.Table.NewVariable(n.Name, effective); err != nil {
		a.Sink.Report(errors.DuplicateIdentifier, a.line, "redeclaration of %q", n.Name)
	}
}

// analyzeFuncDecl implements the FuncDecl rule: create the function
// entry, open its scope, push the function stack, analyze params, close the
// header, analyze locals, and snapshot numVars for irgen's frame-size
// bookkeeping.
func (a *Analyzer) analyzeFuncDecl(n *ast.FuncDecl) {
	fn, err := a.Table.NewFunction(n.Name)
	if err != nil {
		a.Sink.Report(errors.DuplicateIdentifier, a.line, "redeclaration of function %q", n.Name)
		// Still open a scope and push a placeholder so the rest of this
		// header's analysis has somewhere to go instead of cascading nil
		// derefs; the caller's closeScope/pop stay balanced either way.
		fn = &symtab.Entry{Name: n.Name, Kind: symtab.FunctionEntry, ParDef: symtab.Define}
	}
	a.Table.OpenScope()
	a.pushFunc(fn)

	for _, p := range n.Params {
		a.analyzePar(p)
	}
	a.Table.EndFunctionHeader(fn, n.ResultType)

	for _, l := range n.Locals {
		a.analyzeVarDef(l)
	}
	n.NumVars = a.Table.CurrentNegOffset()
}

// analyzeFuncDef analyzes decl then body, closes decl's scope, and pops the
// function stack. A nil Body means this occurrence is a forward
// declaration — only legal when a later FuncDef for the same name supplies
// the body — so the function entry is marked Forward, letting
// symtab.NewFunction re-open it in Check mode when that later definition is
// analyzed.
func (a *Analyzer) analyzeFuncDef(n *ast.FuncDef) {
	a.analyzeFuncDecl(n.Decl)
	fn := a.CurrentFunction()
	if n.Body == nil {
		if fn != nil {
			fn.Forward = true
		}
	} else {
		a.Analyze(n.Body)
		if fn != nil && fn.Type != nil && fn.Type.Kind() != types.Void && !alwaysReturns(n.Body) {
			a.Sink.Warn(errors.NonVoidMissingReturn, n.Decl.Line(), "control may reach end of non-void function %q", fn.Name)
		}
	}
	a.Table.CloseScope()
	a.popFunc()
}

// alwaysReturns reports whether every control-flow path through n ends in a
// return statement. If (without an else) and While are never certain since
// either may be skipped entirely; IfElse is certain only when both branches
// are.
func alwaysReturns(n ast.Node) bool {
	switch node := n.(type) {
	case *ast.Ret:
		return true
	case *ast.Seq:
		if alwaysReturns(node.First) {
			return true
		}
		return node.Rest != nil && alwaysReturns(node.Rest)
	case *ast.IfElse:
		return alwaysReturns(node.If.Then) && alwaysReturns(node.Else)
	default:
		return false
	}
}

// analyzePar rejects a by-value array parameter, then registers the
// parameter against the function currently on top of the stack. A mismatch
// against a forward declaration's parameter list (arity, name, type or
// mode) is reported as Redeclaration, distinct from a plain duplicate name.
func (a *Analyzer) analyzePar(n *ast.Par) {
	fn := a.CurrentFunction()
	mode := symtab.ByValue
	if n.Mode == ast.ByReference {
		mode = symtab.ByReference
	}
	if n.Mode == ast.ByValue && n.Type.IsArrayLike() {
		a.Sink.Report(errors.ArrayByValue, a.line, "array parameter %q must be passed by reference", n.Name)
	}
	if _, err := a.Table.NewParameter(n.Name, n.Type, mode, fn); err != nil {
		switch mismatch := err.(type) {
		case *symtab.ParamMismatchError:
			a.Sink.Report(errors.Redeclaration, a.line, "%s", mismatch.Error())
		default:
			a.Sink.Report(errors.DuplicateIdentifier, a.line, "redeclaration of parameter %q", n.Name)
		}
	}
}

// analyzeAssign rejects array-typed l-values, then checks the expression's
// type against the l-value's, suppressing the mismatch report when either
// side is already poisoned.
func (a *Analyzer) analyzeAssign(n *ast.Assign) {
	a.Analyze(n.LValue)
	if n.LValue.Type != nil && n.LValue.Type.IsArrayLike() {
		a.Sink.Report(errors.ArrayInAssignmentLvalue, a.line, "left side of assignment cannot be an array")
	}
	a.Analyze(n.Expr)

	n.NestingDiff = n.LValue.NestingDiff
	n.Offset = n.LValue.Offset

	resolved := a.Table.Lookup(n.LValue.Name, symtab.AllScopes) != nil
	exprType := ast.ExprType(n.Expr)
	if !resolved || exprType == nil {
		return
	}
	if !types.Equal(n.LValue.Type, exprType) {
		a.Sink.Report(errors.TypeMismatch, a.line, "type mismatch in assignment to %q", n.LValue.Name)
	}
}

// analyzeFCall resolves the callee, requires it is a function, walks the
// argument list in lockstep with the parameter list checking arity/mode/type,
// and sets the node's type to the function's result type.
func (a *Analyzer) analyzeFCall(n *ast.FCall) {
	f := a.Table.Lookup(n.Name, symtab.AllScopes)
	if f == nil {
		a.Sink.Report(errors.UnknownIdentifier, a.line, "undefined function %q", n.Name)
		n.Type = types.BooleanType
		return
	}
	if f.Kind != symtab.FunctionEntry {
		a.Sink.Report(errors.NotAFunction, a.line, "%q is not a function", n.Name)
		n.Type = types.BooleanType
		return
	}
	n.Type = f.Type

	for _, arg := range n.Args {
		a.Analyze(arg)
	}

	params := f.Params
	for i, arg := range n.Args {
		if i >= len(params) {
			a.Sink.Report(errors.TooManyArgs, a.line, "too many arguments to %q", n.Name)
			return
		}
		expected := params[i]
		actualType := ast.ExprType(arg)
		if actualType == nil {
			continue
		}

		if expected.Mode == symtab.ByReference {
			if !a.isLValueActual(arg, actualType) {
				a.Sink.Report(errors.ReferenceActualNotLvalue, a.line, "argument %d to %q must be an l-value", i+1, n.Name)
				continue
			}
		}

		if expected.Type.Kind() == types.IArray {
			if !actualType.IsArrayLike() {
				a.Sink.Report(errors.ArgTypeMismatch, a.line, "argument %d to %q must be an array", i+1, n.Name)
			} else if !types.Equal(expected.Type.Elem(), actualType.Elem()) {
				a.Sink.Report(errors.ArgElementTypeMismatch, a.line, "argument %d to %q has the wrong array element type", i+1, n.Name)
			}
		} else if !types.Equal(expected.Type, actualType) {
			a.Sink.Report(errors.ArgTypeMismatch, a.line, "argument %d to %q has the wrong type", i+1, n.Name)
		}
	}
	if len(n.Args) < len(params) {
		a.Sink.Report(errors.TooFewArgs, a.line, "too few arguments to %q", n.Name)
	}
}

// isLValueActual reports whether arg is acceptable as a BY_REFERENCE actual:
// either a bound identifier, or a string literal whose type is
// ARRAY(n, CHAR) matching the formal's element type. The
// element-type match against the formal is left to the IARRAY/array checks
// that run after this returns; here we only gate "is this kind of
// expression allowed at all".
func (a *Analyzer) isLValueActual(arg ast.Node, actualType *types.Type) bool {
	switch e := arg.(type) {
	case *ast.Id:
		return a.Table.Lookup(e.Name, symtab.AllScopes) != nil
	case *ast.StrLit:
		return actualType.Kind() == types.Array && types.Equal(actualType.Elem(), types.CharType)
	default:
		return false
	}
}

// analyzeFCallStmt requires the call's function to be VOID-typed.
func (a *Analyzer) analyzeFCallStmt(n *ast.FCallStmt) {
	a.Analyze(n.Call)
	f := a.Table.Lookup(n.Call.Name, symtab.AllScopes)
	if f == nil || f.Kind != symtab.FunctionEntry {
		return
	}
	if f.Type.Kind() != types.Void {
		a.Sink.Report(errors.VoidFunctionReturnsValue, a.line, "result of %q is not used", n.Call.Name)
	}
}

func (a *Analyzer) requireBooleanCond(cond ast.Node, context string) {
	a.Analyze(cond)
	if t := ast.ExprType(cond); t != nil && t.Kind() != types.Boolean {
		a.Sink.Report(errors.ConditionNotBoolean, a.line, "%s expects a boolean condition", context)
	}
}

func (a *Analyzer) analyzeIf(n *ast.If) {
	a.requireBooleanCond(n.Cond, "if")
	a.Analyze(n.Then)
}

func (a *Analyzer) analyzeIfElse(n *ast.IfElse) {
	a.analyzeIf(n.If)
	a.Analyze(n.Else)
}

func (a *Analyzer) analyzeWhile(n *ast.While) {
	a.requireBooleanCond(n.Cond, "while")
	a.Analyze(n.Body)
}

// analyzeRet checks a single return statement against the enclosing
// function's result type; the non-void "control may reach the end without a
// return" case is the caller's (FuncDef's) concern, not this node's.
func (a *Analyzer) analyzeRet(n *ast.Ret) {
	fn := a.CurrentFunction()
	if fn == nil {
		errors.Internal("return used outside of any function")
	}
	if n.Expr != nil {
		a.Analyze(n.Expr)
		if t := ast.ExprType(n.Expr); t != nil && !types.Equal(fn.Type, t) {
			a.Sink.Report(errors.ReturnValueTypeMismatch, a.line, "return type does not match result type of %q", fn.Name)
		}
	} else if fn.Type.Kind() != types.Void {
		a.Sink.Report(errors.ReturnValueTypeMismatch, a.line, "missing return value in non-void function %q", fn.Name)
	}
}

func (a *Analyzer) analyzeSeq(n *ast.Seq) {
	a.Analyze(n.First)
	if n.Rest != nil {
		a.Analyze(n.Rest)
	}
}

// analyzeOp implements the operator typing table.
func (a *Analyzer) analyzeOp(n *ast.Op) {
	if n.Left != nil {
		a.Analyze(n.Left)
	}
	a.Analyze(n.Right)
	rightType := ast.ExprType(n.Right)

	switch n.Tag {
	case ast.OpPlus, ast.OpMinus:
		if n.Left == nil {
			if rightType != nil && rightType.Kind() != types.Integer {
				a.Sink.Report(errors.OperatorOperandType, a.line, "unary +/- requires an integer operand")
			}
			n.Type = types.IntegerType
			return
		}
		n.Type = a.checkArithmetic(n.Left, n.Right, opSymbol(n.Tag))
	case ast.OpTimes, ast.OpDiv, ast.OpMod:
		n.Type = a.checkArithmetic(n.Left, n.Right, opSymbol(n.Tag))
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		a.checkArithmetic(n.Left, n.Right, opSymbol(n.Tag))
		n.Type = types.BooleanType
	case ast.OpAnd, ast.OpOr:
		a.requireBooleanOperand(n.Left, opSymbol(n.Tag))
		a.requireBooleanOperand(n.Right, opSymbol(n.Tag))
		n.Type = types.BooleanType
	case ast.OpNot:
		a.requireBooleanOperand(n.Right, "!")
		n.Type = types.BooleanType
	default:
		errors.Internal("sem: unknown operator tag %v", n.Tag)
	}
}

// checkArithmetic requires both operands to share a type, and that type
// must be INTEGER or CHAR.
// Returns the shared type (or the right operand's type if mismatched, to
// keep the caller's own Type slot populated with something plausible).
func (a *Analyzer) checkArithmetic(left, right ast.Node, opName string) *types.Type {
	lt, rt := ast.ExprType(left), ast.ExprType(right)
	if lt == nil || rt == nil {
		if rt != nil {
			return rt
		}
		return lt
	}
	if !types.Equal(lt, rt) {
		a.Sink.Report(errors.TypeMismatch, a.line, "type mismatch in %s operator", opName)
	} else if !types.Equal(lt, types.IntegerType) && !types.Equal(lt, types.CharType) {
		a.Sink.Report(errors.OperatorOperandType, a.line, "only int and byte types are supported by %s operator", opName)
	}
	return rt
}

func (a *Analyzer) requireBooleanOperand(n ast.Node, opName string) {
	if t := ast.ExprType(n); t != nil && t.Kind() != types.Boolean {
		a.Sink.Report(errors.OperatorOperandType, a.line, "only boolean operands are supported by %s operator", opName)
	}
}

func opSymbol(tag ast.OpTag) string {
	switch tag {
	case ast.OpPlus:
		return "+"
	case ast.OpMinus:
		return "-"
	case ast.OpTimes:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpEq:
		return "=="
	case ast.OpNe:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpLe:
		return "<="
	case ast.OpGt:
		return ">"
	case ast.OpGe:
		return ">="
	case ast.OpAnd:
		return "&"
	case ast.OpOr:
		return "|"
	case ast.OpNot:
		return "!"
	default:
		return "?"
	}
}

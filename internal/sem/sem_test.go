package sem

import (
	"testing"

	"alan/internal/ast"
	"alan/internal/errors"
	"alan/internal/fixtures"
	"alan/internal/stdlib"
	"alan/internal/symtab"
	"alan/internal/types"
)

func newAnalyzer(file string) *Analyzer {
	table := symtab.NewTable()
	table.OpenScope()
	stdlib.RegisterSymbols(table)
	return New(table, errors.NewSink(file))
}

func TestS1HelloAnalyzesCleanly(t *testing.T) {
	a := newAnalyzer("s1")
	a.Analyze(fixtures.S1Hello())
	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics: %v", a.Sink.Diagnostics)
	}
	if a.Table.Depth() != 1 {
		t.Errorf("after analysis only the stdlib scope should remain open, depth = %d", a.Table.Depth())
	}
	if a.CurrentFunction() != nil {
		t.Error("function stack should be empty after analysis")
	}
}

func TestS2FactorialRecursiveCallResolves(t *testing.T) {
	a := newAnalyzer("s2")
	root := fixtures.S2Factorial()
	a.Analyze(root)
	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics: %v", a.Sink.Diagnostics)
	}
}

func TestS3NestedCaptureAssignsTypes(t *testing.T) {
	a := newAnalyzer("s3")
	root := fixtures.S3NestedCapture()
	a.Analyze(root)
	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics: %v", a.Sink.Diagnostics)
	}
	outer := root.Body.(*ast.Seq).First.(*ast.FuncDef)
	assign := outer.Body.(*ast.Seq).First.(*ast.Assign)
	if !types.Equal(assign.LValue.Type, types.IntegerType) {
		t.Errorf("x in \"x = 7\" should be typed INTEGER, got %v", assign.LValue.Type)
	}
}

func TestS4IarrayPassThroughResolves(t *testing.T) {
	a := newAnalyzer("s4")
	a.Analyze(fixtures.S4IarrayPassThrough())
	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics: %v", a.Sink.Diagnostics)
	}
}

func TestS5BadReturnTypeReportsMismatch(t *testing.T) {
	a := newAnalyzer("s5")
	a.Analyze(fixtures.S5BadReturnType())
	if !a.Sink.Failed() {
		t.Fatal("expected a ReturnValueTypeMismatch diagnostic")
	}
	found := false
	for _, d := range a.Sink.Diagnostics {
		if d.Kind == errors.ReturnValueTypeMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ReturnValueTypeMismatch, got %v", a.Sink.Diagnostics)
	}
}

func TestS6DuplicateParameterReportsDuplicateIdentifier(t *testing.T) {
	a := newAnalyzer("s6")
	a.Analyze(fixtures.S6DuplicateParam())
	if !a.Sink.Failed() {
		t.Fatal("expected a DuplicateIdentifier diagnostic")
	}
	found := false
	for _, d := range a.Sink.Diagnostics {
		if d.Kind == errors.DuplicateIdentifier {
			found = true
		}
	}
	if !found {
		t.Errorf("expected DuplicateIdentifier, got %v", a.Sink.Diagnostics)
	}
}

// TestForwardDeclarationAllowsMutualRecursion exercises a forward-declared
// function (a bodyless FuncDef) followed later by the matching FuncDef that
// supplies its body, the pattern mutually recursive nested functions need:
// "even" calls "odd" before "odd" has been declared, so "odd" is forward
// declared first.
func TestForwardDeclarationAllowsMutualRecursion(t *testing.T) {
	a := newAnalyzer("forward")

	oddForwardDecl := ast.NewFuncDecl(1, "odd", types.BooleanType,
		[]*ast.Par{ast.NewPar(1, "n", types.IntegerType, ast.ByValue)}, nil)
	oddForward := ast.NewFuncDef(1, oddForwardDecl, nil)

	evenDecl := ast.NewFuncDecl(2, "even", types.BooleanType,
		[]*ast.Par{ast.NewPar(2, "n", types.IntegerType, ast.ByValue)}, nil)
	evenBody := ast.NewIfElse(2,
		ast.NewIf(2,
			ast.NewOp(2, ast.NewId(2, "n", nil), ast.OpEq, ast.NewIntLit(2, 0)),
			ast.NewRet(2, ast.NewOp(2, ast.NewIntLit(2, 0), ast.OpEq, ast.NewIntLit(2, 0))),
		),
		ast.NewRet(2, ast.NewFCall(2, "odd", []ast.Node{
			ast.NewOp(2, ast.NewId(2, "n", nil), ast.OpMinus, ast.NewIntLit(2, 1)),
		})),
	)
	evenDef := ast.NewFuncDef(2, evenDecl, evenBody)

	oddDecl := ast.NewFuncDecl(3, "odd", types.BooleanType,
		[]*ast.Par{ast.NewPar(3, "n", types.IntegerType, ast.ByValue)}, nil)
	oddBody := ast.NewIfElse(3,
		ast.NewIf(3,
			ast.NewOp(3, ast.NewId(3, "n", nil), ast.OpEq, ast.NewIntLit(3, 0)),
			ast.NewRet(3, ast.NewOp(3, ast.NewIntLit(3, 0), ast.OpNe, ast.NewIntLit(3, 0))),
		),
		ast.NewRet(3, ast.NewFCall(3, "even", []ast.Node{
			ast.NewOp(3, ast.NewId(3, "n", nil), ast.OpMinus, ast.NewIntLit(3, 1)),
		})),
	)
	oddDef := ast.NewFuncDef(3, oddDecl, oddBody)

	mainDecl := ast.NewFuncDecl(4, "main", types.VoidType, nil, nil)
	mainBody := ast.NewSeq(4,
		oddForward,
		ast.NewSeq(4,
			evenDef,
			oddDef,
		),
	)
	root := ast.NewFuncDef(4, mainDecl, mainBody)

	a.Analyze(root)
	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics for mutually recursive forward declarations: %v", a.Sink.Diagnostics)
	}
}

// TestForwardDeclarationParamMismatchReportsRedeclaration exercises a
// forward declaration whose later matching FuncDef changes the parameter
// type: this must be reported as Redeclaration, distinct from plainly
// redeclaring an already-complete function.
func TestForwardDeclarationParamMismatchReportsRedeclaration(t *testing.T) {
	a := newAnalyzer("forward-mismatch")

	forwardDecl := ast.NewFuncDecl(1, "f", types.VoidType,
		[]*ast.Par{ast.NewPar(1, "x", types.IntegerType, ast.ByValue)}, nil)
	forward := ast.NewFuncDef(1, forwardDecl, nil)

	realDecl := ast.NewFuncDecl(2, "f", types.VoidType,
		[]*ast.Par{ast.NewPar(2, "x", types.CharType, ast.ByValue)}, nil)
	real := ast.NewFuncDef(2, realDecl, ast.NewRet(2, nil))

	mainDecl := ast.NewFuncDecl(3, "main", types.VoidType, nil, nil)
	root := ast.NewFuncDef(3, mainDecl, ast.NewSeq(3, forward, real))

	a.Analyze(root)
	if !a.Sink.Failed() {
		t.Fatal("expected a Redeclaration diagnostic")
	}
	found := false
	for _, d := range a.Sink.Diagnostics {
		if d.Kind == errors.Redeclaration {
			found = true
		}
		if d.Kind == errors.DuplicateIdentifier {
			t.Errorf("forward-declaration parameter mismatch must not be reported as DuplicateIdentifier: %v", d)
		}
	}
	if !found {
		t.Errorf("expected Redeclaration, got %v", a.Sink.Diagnostics)
	}
}

// TestNonVoidMissingReturnWarnsWhenControlCanFallThrough exercises a
// non-void function whose body can fall through without a return (a bare
// If, with no else and no following return) — this must be a warning, not an
// error that fails the sink.
func TestNonVoidMissingReturnWarnsWhenControlCanFallThrough(t *testing.T) {
	a := newAnalyzer("missing-return")
	decl := ast.NewFuncDecl(1, "f", types.IntegerType, nil, nil)
	body := ast.NewIf(1,
		ast.NewOp(1, ast.NewIntLit(1, 1), ast.OpEq, ast.NewIntLit(1, 1)),
		ast.NewRet(1, ast.NewIntLit(1, 1)),
	)
	a.Analyze(ast.NewFuncDef(1, decl, body))

	if a.Sink.Failed() {
		t.Fatalf("a missing return is a warning, not an error: %v", a.Sink.Diagnostics)
	}
	found := false
	for _, d := range a.Sink.Diagnostics {
		if d.Kind == errors.NonVoidMissingReturn {
			found = true
			if !d.Warning {
				t.Error("NonVoidMissingReturn must be reported as a warning")
			}
		}
	}
	if !found {
		t.Errorf("expected NonVoidMissingReturn, got %v", a.Sink.Diagnostics)
	}
}

// TestNonVoidMissingReturnNotReportedWhenIfElseBothReturn exercises the
// case alwaysReturns must get right: an if/else where both branches return
// guarantees a return on every path, so no warning should fire.
func TestNonVoidMissingReturnNotReportedWhenIfElseBothReturn(t *testing.T) {
	a := newAnalyzer("complete-return")
	decl := ast.NewFuncDecl(1, "f", types.IntegerType, nil, nil)
	body := ast.NewIfElse(1,
		ast.NewIf(1,
			ast.NewOp(1, ast.NewIntLit(1, 1), ast.OpEq, ast.NewIntLit(1, 1)),
			ast.NewRet(1, ast.NewIntLit(1, 1)),
		),
		ast.NewRet(1, ast.NewIntLit(1, 0)),
	)
	a.Analyze(ast.NewFuncDef(1, decl, body))

	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics: %v", a.Sink.Diagnostics)
	}
	for _, d := range a.Sink.Diagnostics {
		if d.Kind == errors.NonVoidMissingReturn {
			t.Errorf("both if/else branches return, should not warn: %v", a.Sink.Diagnostics)
		}
	}
}

func TestUnknownIdentifierIsPoisonedNotFatalToAnalysis(t *testing.T) {
	a := newAnalyzer("poison")
	decl := ast.NewFuncDecl(1, "f", types.VoidType, nil, nil)
	body := ast.NewFCallStmt(1, ast.NewFCall(1, "writeInteger", []ast.Node{
		ast.NewId(1, "undefined", nil),
	}))
	a.Analyze(ast.NewFuncDef(1, decl, body))

	if !a.Sink.Failed() {
		t.Fatal("expected UnknownIdentifier diagnostic")
	}
	// Despite the error, analysis must still reach the end without panicking
	// and the function stack must still balance.
	if a.CurrentFunction() != nil {
		t.Error("function stack should still balance after a poisoned identifier")
	}
}

func TestIndexingNonArrayReportsIndexedNonArray(t *testing.T) {
	a := newAnalyzer("bad-index")
	decl := ast.NewFuncDecl(1, "f", types.VoidType, nil,
		[]*ast.VarDef{ast.NewVarDef(1, "n", types.IntegerType, 0)})
	body := ast.NewAssign(1,
		ast.NewId(1, "n", ast.NewIntLit(1, 0)),
		ast.NewIntLit(1, 1),
	)
	a.Analyze(ast.NewFuncDef(1, decl, body))

	found := false
	for _, d := range a.Sink.Diagnostics {
		if d.Kind == errors.IndexedNonArray {
			found = true
		}
	}
	if !found {
		t.Errorf("expected IndexedNonArray, got %v", a.Sink.Diagnostics)
	}
}

func TestArrayByValueParameterIsRejected(t *testing.T) {
	a := newAnalyzer("array-by-value")
	decl := ast.NewFuncDecl(1, "f", types.VoidType,
		[]*ast.Par{ast.NewPar(1, "a", types.NewArray(4, types.IntegerType), ast.ByValue)}, nil)
	a.Analyze(ast.NewFuncDef(1, decl, nil))

	found := false
	for _, d := range a.Sink.Diagnostics {
		if d.Kind == errors.ArrayByValue {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ArrayByValue, got %v", a.Sink.Diagnostics)
	}
}

func TestConditionMustBeBoolean(t *testing.T) {
	a := newAnalyzer("bad-cond")
	decl := ast.NewFuncDecl(1, "f", types.VoidType, nil, nil)
	body := ast.NewIf(1, ast.NewIntLit(1, 1), ast.NewFCallStmt(1, ast.NewFCall(1, "writeInteger", []ast.Node{ast.NewIntLit(1, 1)})))
	a.Analyze(ast.NewFuncDef(1, decl, body))

	found := false
	for _, d := range a.Sink.Diagnostics {
		if d.Kind == errors.ConditionNotBoolean {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ConditionNotBoolean, got %v", a.Sink.Diagnostics)
	}
}

func TestTooFewAndTooManyArgs(t *testing.T) {
	a := newAnalyzer("arity")
	decl := ast.NewFuncDecl(1, "f", types.VoidType, nil, nil)
	body := ast.NewSeq(1,
		ast.NewFCallStmt(1, ast.NewFCall(1, "writeInteger", nil)),
		ast.NewFCallStmt(1, ast.NewFCall(1, "writeInteger", []ast.Node{ast.NewIntLit(1, 1), ast.NewIntLit(1, 2)})),
	)
	a.Analyze(ast.NewFuncDef(1, decl, body))

	found := false
	foundTooMany := false
	for _, d := range a.Sink.Diagnostics {
		if d.Kind == errors.TooFewArgs {
			found = true
		}
		if d.Kind == errors.TooManyArgs {
			foundTooMany = true
		}
	}
	if !found {
		t.Errorf("expected TooFewArgs, got %v", a.Sink.Diagnostics)
	}
	if !foundTooMany {
		t.Errorf("expected TooManyArgs, got %v", a.Sink.Diagnostics)
	}
}

// Package fixtures holds hand-built ASTs for the S1-S6 end-to-end
// scenarios. Since the lexer and parser are out of scope for this core,
// these stand in for what a parser would have produced from the Alan source
// quoted in each Scenario's Doc field, for both cmd/alanc's demonstration
// driver and internal/compiler's end-to-end tests.
package fixtures

import (
	"alan/internal/ast"
	"alan/internal/types"
)

// Scenario names one of the S1-S6 fixtures.
type Scenario struct {
	Name string
	Doc  string
	Root func() *ast.FuncDef
}

var All = []Scenario{
	{"s1", `proc main(): writeString("hi\n");`, S1Hello},
	{"s2", `fun fact(n: int): int { if n <= 1 return 1; return n * fact(n-1); } proc main(): writeInteger(fact(5));`, S2Factorial},
	{"s3", `proc outer(): { x: int; x = 7; proc inner(): writeInteger(x); inner(); } proc main(): outer();`, S3NestedCapture},
	{"s4", `proc p(s: ref char[]): writeString(s); proc main(): p("abc");`, S4IarrayPassThrough},
	{"s5", `fun f(): int { return 'a'; }`, S5BadReturnType},
	{"s6", `proc f(x: int; x: int): ;`, S6DuplicateParam},
}

// Lookup returns the scenario named name, or nil.
func Lookup(name string) *Scenario {
	for i := range All {
		if All[i].Name == name {
			return &All[i]
		}
	}
	return nil
}

func S1Hello() *ast.FuncDef {
	decl := ast.NewFuncDecl(1, "main", types.VoidType, nil, nil)
	body := ast.NewFCallStmt(1, ast.NewFCall(1, "writeString", []ast.Node{
		ast.NewStrLit(1, "hi\n"),
	}))
	return ast.NewFuncDef(1, decl, body)
}

func S2Factorial() *ast.FuncDef {
	factDecl := ast.NewFuncDecl(1, "fact", types.IntegerType,
		[]*ast.Par{ast.NewPar(1, "n", types.IntegerType, ast.ByValue)}, nil)
	factBody := ast.NewSeq(1,
		ast.NewIf(1,
			ast.NewOp(1, ast.NewId(1, "n", nil), ast.OpLe, ast.NewIntLit(1, 1)),
			ast.NewRet(1, ast.NewIntLit(1, 1)),
		),
		ast.NewRet(1, ast.NewOp(1,
			ast.NewId(1, "n", nil),
			ast.OpTimes,
			ast.NewFCall(1, "fact", []ast.Node{
				ast.NewOp(1, ast.NewId(1, "n", nil), ast.OpMinus, ast.NewIntLit(1, 1)),
			}),
		)),
	)
	factDef := ast.NewFuncDef(1, factDecl, factBody)

	mainDecl := ast.NewFuncDecl(1, "main", types.VoidType, nil, nil)
	mainBody := ast.NewSeq(1,
		factDef,
		ast.NewFCallStmt(1, ast.NewFCall(1, "writeInteger", []ast.Node{
			ast.NewFCall(1, "fact", []ast.Node{ast.NewIntLit(1, 5)}),
		})),
	)
	return ast.NewFuncDef(1, mainDecl, mainBody)
}

func S3NestedCapture() *ast.FuncDef {
	innerDecl := ast.NewFuncDecl(1, "inner", types.VoidType, nil, nil)
	innerBody := ast.NewFCallStmt(1, ast.NewFCall(1, "writeInteger", []ast.Node{
		ast.NewId(1, "x", nil),
	}))
	innerDef := ast.NewFuncDef(1, innerDecl, innerBody)

	outerDecl := ast.NewFuncDecl(1, "outer", types.VoidType, nil,
		[]*ast.VarDef{ast.NewVarDef(1, "x", types.IntegerType, 0)})
	outerBody := ast.NewSeq(1,
		ast.NewAssign(1, ast.NewId(1, "x", nil), ast.NewIntLit(1, 7)),
		ast.NewSeq(1,
			innerDef,
			ast.NewFCallStmt(1, ast.NewFCall(1, "inner", nil)),
		),
	)
	outerDef := ast.NewFuncDef(1, outerDecl, outerBody)

	mainDecl := ast.NewFuncDecl(1, "main", types.VoidType, nil, nil)
	mainBody := ast.NewSeq(1,
		outerDef,
		ast.NewFCallStmt(1, ast.NewFCall(1, "outer", nil)),
	)
	return ast.NewFuncDef(1, mainDecl, mainBody)
}

func S4IarrayPassThrough() *ast.FuncDef {
	pDecl := ast.NewFuncDecl(1, "p", types.VoidType,
		[]*ast.Par{ast.NewPar(1, "s", types.NewIArray(types.CharType), ast.ByReference)}, nil)
	pBody := ast.NewFCallStmt(1, ast.NewFCall(1, "writeString", []ast.Node{
		ast.NewId(1, "s", nil),
	}))
	pDef := ast.NewFuncDef(1, pDecl, pBody)

	mainDecl := ast.NewFuncDecl(1, "main", types.VoidType, nil, nil)
	mainBody := ast.NewSeq(1,
		pDef,
		ast.NewFCallStmt(1, ast.NewFCall(1, "p", []ast.Node{ast.NewStrLit(1, "abc")})),
	)
	return ast.NewFuncDef(1, mainDecl, mainBody)
}

func S5BadReturnType() *ast.FuncDef {
	fDecl := ast.NewFuncDecl(1, "f", types.IntegerType, nil, nil)
	fBody := ast.NewRet(1, ast.NewCharLit(1, 'a'))
	return ast.NewFuncDef(1, fDecl, fBody)
}

func S6DuplicateParam() *ast.FuncDef {
	fDecl := ast.NewFuncDecl(1, "f", types.VoidType, []*ast.Par{
		ast.NewPar(1, "x", types.IntegerType, ast.ByValue),
		ast.NewPar(1, "x", types.IntegerType, ast.ByValue),
	}, nil)
	return ast.NewFuncDef(1, fDecl, nil)
}

// Package irgen lowers a type-annotated Alan AST to LLVM IR using
// github.com/llir/llvm. It assumes its input already passed internal/sem
// without reporting any error: irgen does not re-validate, it only lowers.
package irgen

import (
	"fmt"
	"sort"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"alan/internal/ast"
	"alan/internal/errors"
)

// Emitter holds the state threaded through one module's IR emission: the
// module being built, the scope logger, the block instructions are currently
// being appended to, and the enclosing function (for creating new blocks).
type Emitter struct {
	Module *ir.Module

	log        *logger
	cur        *ir.Block
	curFunc    *ir.Func
	strCounter int
}

// Lower builds a complete LLVM module for root (the program's single
// outermost FuncDef), declaring the stdlib and wrapping root's function in
// a C entry point (named by entryPointName) that calls it and returns 0.
func Lower(root *ast.FuncDef) *ir.Module {
	m := ir.NewModule()
	log := newLogger()
	log.openScope() // nesting level 1: the stdlib scope

	declareStdlib(m, log)

	e := &Emitter{Module: m, log: log}
	e.emitFuncDef(root)

	rootFn := log.getFunction(root.Decl.Name)
	mainFn := m.NewFunc(entryPointName(root.Decl.Name), lltypes.I32)
	mainEntry := mainFn.NewBlock("entry")
	mainEntry.NewCall(rootFn)
	mainEntry.NewRet(constant.NewInt(lltypes.I32, 0))

	log.closeScope()
	return m
}

// entryPointName picks the C-runtime entry symbol, avoiding a collision with
// the Alan program's own function of the same name — nothing in the grammar
// stops a user writing "proc main(): ...", and llir/llvm does not auto-rename
// colliding global symbols the way LLVM's own C++ API does.
func entryPointName(rootName string) string {
	if rootName == "main" {
		return "__alan_entry"
	}
	return "main"
}

// emitFuncDef builds the function's own signature (its declared parameters
// plus, per the outer-scope capture protocol, one implicit reference
// parameter for every variable visible in the enclosing scope that isn't
// shadowed by a declared parameter), declares it, opens its scope, emits
// parameter allocas, local allocas, and its body, then always appends a
// default return to the block the body left open.
func (e *Emitter) emitFuncDef(n *ast.FuncDef) {
	savedBlock, savedFunc := e.cur, e.curFunc

	decl := n.Decl
	retType := llType(decl.ResultType)

	var paramNames []string
	var paramTypes []lltypes.Type
	for _, p := range decl.Params {
		paramNames = append(paramNames, p.Name)
		paramTypes = append(paramTypes, llParamType(p.Type, passModeOf(p.Mode)))
	}

	captured := e.log.currentScopeBindings()
	var capturedNames []string
	for name := range captured {
		capturedNames = append(capturedNames, name)
	}
	sort.Strings(capturedNames) // deterministic order so generated IR is reproducible

	shadowed := make(map[string]bool, len(paramNames))
	for _, name := range paramNames {
		shadowed[name] = true
	}
	for _, name := range capturedNames {
		if shadowed[name] {
			continue
		}
		b := captured[name]
		paramNames = append(paramNames, name)
		if _, isPtr := b.typ.(*lltypes.PointerType); isPtr {
			paramTypes = append(paramTypes, b.typ)
		} else {
			paramTypes = append(paramTypes, lltypes.NewPointer(b.typ))
		}
	}

	params := make([]*ir.Param, len(paramNames))
	for i, name := range paramNames {
		params[i] = ir.NewParam(name, paramTypes[i])
	}

	fn := e.Module.NewFunc(decl.Name, retType, params...)
	e.log.addFunction(decl.Name, fn)

	e.log.openScope()
	e.curFunc = fn

	entry := fn.NewBlock("entry")
	e.cur = entry

	for i, p := range fn.Params {
		alloca := entry.NewAlloca(paramTypes[i])
		entry.NewStore(p, alloca)
		e.log.addVariable(paramNames[i], paramTypes[i], alloca)
	}

	for _, local := range decl.Locals {
		e.emitVarDef(local)
	}

	if n.Body != nil {
		e.emitStmt(n.Body)
	}

	// e.cur is always an open, unterminated block here: either the body
	// never returned at all, or the last emitted Ret opened a fresh block
	// right after itself. Either way it needs a terminator, even if that
	// makes it unreachable dead code.
	switch rt := retType.(type) {
	case *lltypes.IntType:
		e.cur.NewRet(constant.NewInt(rt, 0))
	default:
		e.cur.NewRet(nil)
	}

	e.log.closeScope()
	e.cur, e.curFunc = savedBlock, savedFunc
}

func (e *Emitter) emitVarDef(n *ast.VarDef) {
	t := llType(effectiveVarType(n))
	alloca := e.cur.NewAlloca(t)
	alloca.LocalName = n.Name
	e.log.addVariable(n.Name, t, alloca)
}

// emitStmt lowers one statement-position node. Nested FuncDef nodes are
// handled here too: Alan allows local function declarations interleaved
// with a block's statements (ast.Seq's First/Rest chain), and emitFuncDef
// already saves/restores the emitter's current block around its own body.
func (e *Emitter) emitStmt(n ast.Node) {
	switch node := n.(type) {
	case *ast.FuncDecl:
		// A bare forward declaration (no body yet): nothing to emit here.
		// The matching FuncDef, when it arrives, does the real declaration.
		_ = node
	case *ast.FuncDef:
		e.emitFuncDef(node)
	case *ast.Assign:
		e.emitAssign(node)
	case *ast.FCallStmt:
		e.emitCall(node.Call)
	case *ast.If:
		e.emitIf(node)
	case *ast.IfElse:
		e.emitIfElse(node)
	case *ast.While:
		e.emitWhile(node)
	case *ast.Ret:
		e.emitRet(node)
	case *ast.Seq:
		e.emitStmt(node.First)
		if node.Rest != nil {
			e.emitStmt(node.Rest)
		}
	default:
		errors.Internal("irgen: unhandled statement node %T", n)
	}
}

func (e *Emitter) emitAssign(n *ast.Assign) {
	val := e.emitExpr(n.Expr)
	addr := e.computeAddr(n.LValue)
	e.cur.NewStore(val, addr)
}

// emitIf branches on the condition and emits the then-block in its own
// scope. The block emitIf lands on after emitting the branch (whether that
// is the original thenBB or a fresh block opened by a Ret inside it) is
// always unterminated, so it always gets a branch to the merge block.
func (e *Emitter) emitIf(n *ast.If) {
	cond := e.emitExpr(n.Cond)
	thenBB := e.curFunc.NewBlock("then")
	mergeBB := e.curFunc.NewBlock("endif")
	e.cur.NewCondBr(cond, thenBB, mergeBB)

	e.cur = thenBB
	e.log.openScope()
	e.emitStmt(n.Then)
	e.cur.NewBr(mergeBB)
	e.log.closeScope()

	e.cur = mergeBB
}

func (e *Emitter) emitIfElse(n *ast.IfElse) {
	cond := e.emitExpr(n.If.Cond)
	thenBB := e.curFunc.NewBlock("then")
	elseBB := e.curFunc.NewBlock("else")
	mergeBB := e.curFunc.NewBlock("endif")
	e.cur.NewCondBr(cond, thenBB, elseBB)

	e.cur = thenBB
	e.log.openScope()
	e.emitStmt(n.If.Then)
	e.cur.NewBr(mergeBB)
	e.log.closeScope()

	e.cur = elseBB
	e.log.openScope()
	e.emitStmt(n.Else)
	e.cur.NewBr(mergeBB)
	e.log.closeScope()

	e.cur = mergeBB
}

// emitWhile lowers a while loop. The loop body does not get its own logger
// scope (a while body can't declare new locals in Alan's grammar). The
// branch back to the condition block is unconditional and always lands on
// an unterminated block, whether that's loopBB itself or a fresh block a
// Ret inside the body opened.
func (e *Emitter) emitWhile(n *ast.While) {
	condBB := e.curFunc.NewBlock("cond")
	loopBB := e.curFunc.NewBlock("loop")
	afterBB := e.curFunc.NewBlock("after")

	e.cur.NewBr(condBB)

	e.cur = condBB
	cond := e.emitExpr(n.Cond)
	e.cur.NewCondBr(cond, loopBB, afterBB)

	e.cur = loopBB
	e.emitStmt(n.Body)
	e.cur.NewBr(condBB)

	e.cur = afterBB
}

// emitRet terminates the current block with a return, then moves the
// insertion point to a fresh block — a return need not be in tail position
// (e.g. a bare "return;" as an entire while-loop body), and anything emitted
// after it must not be appended onto an already-terminated block.
func (e *Emitter) emitRet(n *ast.Ret) {
	if n.Expr == nil {
		e.cur.NewRet(nil)
	} else {
		e.cur.NewRet(e.emitExpr(n.Expr))
	}
	e.cur = e.curFunc.NewBlock("after_ret")
}

func (e *Emitter) emitExpr(n ast.Node) value.Value {
	switch node := n.(type) {
	case *ast.Id:
		addr := e.computeAddr(node)
		return e.cur.NewLoad(llType(node.Type), addr)
	case *ast.IntLit:
		return constant.NewInt(lltypes.I32, int64(node.Value))
	case *ast.CharLit:
		return constant.NewInt(lltypes.I8, int64(node.Value))
	case *ast.StrLit:
		return e.emitStringLiteral(node.Value)
	case *ast.FCall:
		return e.emitCall(node)
	case *ast.Op:
		return e.emitOp(node)
	default:
		errors.Internal("irgen: unhandled expression node %T", n)
		return nil
	}
}

// computeAddr computes the address of an occurrence of an identifier: dereference
// pointer-typed (captured-by-reference or IARRAY-parameter) slots first,
// then choose the addressing mode from whether this occurrence denotes a
// whole array value or a possibly-indexed scalar.
func (e *Emitter) computeAddr(n *ast.Id) value.Value {
	declaredType := e.log.getVarType(n.Name)
	alloca := e.log.getVarAlloca(n.Name)

	var addr value.Value
	var t lltypes.Type
	if ptrType, ok := declaredType.(*lltypes.PointerType); ok {
		addr = e.cur.NewLoad(declaredType, alloca)
		t = ptrType.ElemType
	} else {
		addr = alloca
		t = declaredType
	}

	zero := constant.NewInt(lltypes.I32, 0)

	if n.Type.IsArrayLike() {
		if _, isArr := t.(*lltypes.ArrayType); isArr {
			return e.cur.NewGetElementPtr(t, addr, zero, zero)
		}
		return e.cur.NewGetElementPtr(t, addr, zero)
	}

	if _, isArr := t.(*lltypes.ArrayType); isArr {
		idx := e.emitExpr(n.Index)
		return e.cur.NewGetElementPtr(t, addr, zero, idx)
	}
	if n.Index != nil {
		idx := e.emitExpr(n.Index)
		return e.cur.NewGetElementPtr(t, addr, idx)
	}
	return addr
}

// emitCall walks the callee's
// formal parameters in lockstep with the AST argument list, passing
// by-value arguments as values and by-reference arguments as addresses
// (string literals are already pointers, so they pass through unchanged),
// then append a pointer to the original storage for each implicit
// captured-outer-scope parameter, looking its name up directly in the
// caller's own scope chain.
func (e *Emitter) emitCall(n *ast.FCall) value.Value {
	fn := e.log.getFunction(n.Name)

	args := make([]value.Value, 0, len(fn.Params))
	for i, argNode := range n.Args {
		param := fn.Params[i]
		if _, isPtr := param.Type().(*lltypes.PointerType); !isPtr {
			args = append(args, e.emitExpr(argNode))
			continue
		}
		switch a := argNode.(type) {
		case *ast.StrLit:
			args = append(args, e.emitExpr(a))
		case *ast.Id:
			args = append(args, e.computeAddr(a))
		default:
			errors.Internal("irgen: unsupported reference-mode call argument %T", argNode)
		}
	}

	for i := len(n.Args); i < len(fn.Params); i++ {
		name := fn.Params[i].Name()
		slot := e.log.getVarAlloca(name)
		if ptrType, ok := e.log.getVarType(name).(*lltypes.PointerType); ok {
			// The caller's own binding is already a pointer (a captured or
			// by-reference parameter): pass the pointer it holds, which is
			// the pointer type the callee's capture parameter was given.
			args = append(args, e.cur.NewLoad(ptrType, slot))
			continue
		}
		args = append(args, slot)
	}

	return e.cur.NewCall(fn, args...)
}

// emitStringLiteral backs a string literal with a NUL-terminated global byte
// array and returns a pointer to its first element. The NUL terminator here
// is purely a concession to the C stdlib shim's char* convention (strlen,
// strcmp, ...); it is not reflected in the literal's Alan-level
// ARRAY(length(s), CHAR) type, which sem computes with no +1 (see
// internal/ast.StrLit).
func (e *Emitter) emitStringLiteral(s string) value.Value {
	data := s + "\x00"
	arrType := lltypes.NewArray(uint64(len(data)), lltypes.I8)
	g := e.Module.NewGlobalDef(fmt.Sprintf(".str.%d", e.strCounter), constant.NewCharArrayFromString(data))
	g.Immutable = true
	e.strCounter++

	zero := constant.NewInt(lltypes.I32, 0)
	return constant.NewGetElementPtr(arrType, g, zero, zero)
}

// emitOp lowers a unary or binary operator expression.
func (e *Emitter) emitOp(n *ast.Op) value.Value {
	var l value.Value
	if n.Left != nil {
		l = e.emitExpr(n.Left)
	}
	r := e.emitExpr(n.Right)

	switch n.Tag {
	case ast.OpPlus:
		if n.Left == nil {
			return r
		}
		return e.cur.NewAdd(l, r)
	case ast.OpMinus:
		if n.Left == nil {
			return e.cur.NewSub(constant.NewInt(lltypes.I32, 0), r)
		}
		return e.cur.NewSub(l, r)
	case ast.OpTimes:
		return e.cur.NewMul(l, r)
	case ast.OpDiv:
		return e.cur.NewSDiv(l, r)
	case ast.OpMod:
		return e.cur.NewSRem(l, r)
	case ast.OpEq:
		return e.cur.NewICmp(enum.IPredEQ, l, r)
	case ast.OpNe:
		return e.cur.NewICmp(enum.IPredNE, l, r)
	case ast.OpLt:
		return e.cur.NewICmp(enum.IPredSLT, l, r)
	case ast.OpLe:
		return e.cur.NewICmp(enum.IPredSLE, l, r)
	case ast.OpGt:
		return e.cur.NewICmp(enum.IPredSGT, l, r)
	case ast.OpGe:
		return e.cur.NewICmp(enum.IPredSGE, l, r)
	case ast.OpAnd:
		return e.cur.NewAnd(l, r)
	case ast.OpOr:
		return e.cur.NewOr(l, r)
	case ast.OpNot:
		// unary NOT lowers as XOR against a true i1 rather than a
		// dedicated bitwise-not instruction.
		return e.cur.NewXor(r, constant.NewInt(lltypes.I1, 1))
	default:
		errors.Internal("irgen: unknown operator tag %v", n.Tag)
		return nil
	}
}

// Package tokencheck reports constant JSR-305 policy tokens that would be
// skipped when the policy is built, such as "stirct" or "@a.B".
package tokencheck

import (
	"go/ast"
	"go/constant"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/SergeiSkv/NullGuard/jsr305"
)

const doc = `tokencheck reports constant arguments of jsr305.FromArgs that the policy parser would silently skip`

// FromArgs is the function checked by default.
const FromArgs = "github.com/SergeiSkv/NullGuard/jsr305.FromArgs"

// Analyzer checks calls of jsr305.FromArgs.
var Analyzer = NewAnalyzer()

// NewAnalyzer checks jsr305.FromArgs and the extra functions, given as
// "import/path.Func". Each of them must take the token slice as first argument.
func NewAnalyzer(extra ...string) *analysis.Analyzer {
	funcs := map[string]bool{FromArgs: true}
	for _, name := range extra {
		funcs[name] = true
	}

	return &analysis.Analyzer{
		Name:     "tokencheck",
		Doc:      doc,
		Requires: []*analysis.Analyzer{inspect.Analyzer},
		Run: func(pass *analysis.Pass) (any, error) {
			return run(pass, funcs)
		},
	}
}

func run(pass *analysis.Pass, funcs map[string]bool) (any, error) {
	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	pector.Preorder(nodeFilter, func(node ast.Node) {
		call := node.(*ast.CallExpr)
		if len(call.Args) == 0 || !funcs[calleeName(pass, call)] {
			return
		}

		lit, ok := ast.Unparen(call.Args[0]).(*ast.CompositeLit)
		if !ok {
			return
		}
		for _, elt := range lit.Elts {
			checkToken(pass, elt)
		}
	})

	return nil, nil
}

// calleeName returns "import/path.Func" for calls of package-level functions.
func calleeName(pass *analysis.Pass, call *ast.CallExpr) string {
	var ident *ast.Ident
	switch fun := ast.Unparen(call.Fun).(type) {
	case *ast.Ident:
		ident = fun
	case *ast.SelectorExpr:
		ident = fun.Sel
	default:
		return ""
	}

	fn, ok := pass.TypesInfo.Uses[ident].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return ""
	}
	if sig, ok := fn.Type().(*types.Signature); !ok || sig.Recv() != nil {
		return ""
	}
	return fn.Pkg().Path() + "." + fn.Name()
}

func checkToken(pass *analysis.Pass, expr ast.Expr) {
	tv, ok := pass.TypesInfo.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return
	}

	if err := jsr305.ValidateToken(constant.StringVal(tv.Value)); err != nil {
		pass.Reportf(expr.Pos(), "token is skipped: %v", err)
	}
}

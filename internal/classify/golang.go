package classify

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
)

// GoClassifier classifies Go source using the standard go/parser front end.
// The token.FileSet anchors every node to absolute source lines, independent
// of how the parse proceeds through the file.
type GoClassifier struct{}

// ExecutableLines returns the lines spanned by function and method bodies,
// including function literals nested inside them. go/parser recovers at the
// next declaration after a syntax error, so a single malformed top-level
// form does not abort the file; only source yielding no AST at all fails
// with ErrUnparsableSource.
func (GoClassifier) ExecutableLines(filename string, src []byte) (LineSet, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if file == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableSource, err)
	}

	set := make(LineSet)
	ast.Inspect(file, func(n ast.Node) bool {
		var body *ast.BlockStmt
		switch fn := n.(type) {
		case *ast.FuncDecl:
			body = fn.Body
		case *ast.FuncLit:
			body = fn.Body
		default:
			return true
		}
		if body != nil {
			set.AddRange(fset.Position(body.Pos()).Line, fset.Position(body.End()).Line)
		}
		return true
	})
	return set, nil
}

package classify

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TreeSitterClassifier classifies source in any language with a tree-sitter
// grammar. It walks the tree for callable-definition nodes and collects the
// line span of each body. Tree-sitter parses are error tolerant: malformed
// regions become ERROR nodes that the walk skips, so a broken top-level form
// never aborts the rest of the file.
type TreeSitterClassifier struct {
	lang  *sitter.Language
	kinds map[string]bool // node types denoting a callable definition
}

// NewPythonClassifier classifies Python function and method bodies.
func NewPythonClassifier() *TreeSitterClassifier {
	return &TreeSitterClassifier{
		lang:  python.GetLanguage(),
		kinds: map[string]bool{"function_definition": true},
	}
}

// NewJavaScriptClassifier classifies JavaScript function, method, arrow and
// generator bodies.
func NewJavaScriptClassifier() *TreeSitterClassifier {
	return &TreeSitterClassifier{
		lang:  javascript.GetLanguage(),
		kinds: jsKinds(),
	}
}

// NewTypeScriptClassifier classifies TypeScript callables, same node kinds
// as JavaScript.
func NewTypeScriptClassifier() *TreeSitterClassifier {
	return &TreeSitterClassifier{
		lang:  typescript.GetLanguage(),
		kinds: jsKinds(),
	}
}

// NewRustClassifier classifies Rust function items and closures.
func NewRustClassifier() *TreeSitterClassifier {
	return &TreeSitterClassifier{
		lang: rust.GetLanguage(),
		kinds: map[string]bool{
			"function_item":      true,
			"closure_expression": true,
		},
	}
}

func jsKinds() map[string]bool {
	return map[string]bool{
		"function_declaration":           true,
		"function_expression":            true,
		"function":                       true,
		"generator_function":             true,
		"generator_function_declaration": true,
		"arrow_function":                 true,
		"method_definition":              true,
	}
}

// ExecutableLines parses src and returns the lines covered by callable
// bodies, nested definitions included. A fresh parser per call keeps the
// classifier stateless and safe under the reconciler's parallel tree walk.
func (c *TreeSitterClassifier) ExecutableLines(filename string, src []byte) (LineSet, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(c.lang)
	defer parser.Close()

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnparsableSource, filename, err)
	}
	defer tree.Close()

	set := make(LineSet)
	c.walk(tree.RootNode(), set)
	return set, nil
}

func (c *TreeSitterClassifier) walk(node *sitter.Node, set LineSet) {
	if c.kinds[node.Type()] {
		if body := node.ChildByFieldName("body"); body != nil {
			// tree-sitter rows are 0-based.
			set.AddRange(int(body.StartPoint().Row)+1, int(body.EndPoint().Row)+1)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		c.walk(node.Child(i), set)
	}
}

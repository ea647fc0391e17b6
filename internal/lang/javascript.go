package lang

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"go.uber.org/zap"

	"github.com/yiyuanh/tscaffold/internal/analysis"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

// JavaScript implements the Language interface for ES modules.
type JavaScript struct {
	logger *zap.Logger
}

// NewJavaScript creates the ES module adapter. A nil logger discards.
func NewJavaScript(logger *zap.Logger) *JavaScript {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JavaScript{logger: logger}
}

func (j *JavaScript) Name() string {
	return "javascript"
}

func (j *JavaScript) FileExtensions() []string {
	return []string{".js", ".mjs"}
}

// ParseExports uses the lexical export scan, not the syntax tree.
func (j *JavaScript) ParseExports(source []byte) model.ExportSet {
	return analysis.ParseExports(string(source))
}

// ValidateTestSyntax reports the first syntax error in testCode.
func (j *JavaScript) ValidateTestSyntax(testCode []byte) error {
	tree, err := parse(context.Background(), testCode)
	if err != nil {
		return err
	}
	defer tree.Close()
	return syntaxError(tree.RootNode())
}

// parse builds a syntax tree. Parsers are not safe for concurrent use, so
// each call gets its own.
func parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing javascript: %w", err)
	}
	return tree, nil
}

func syntaxError(root *sitter.Node) error {
	if !root.HasError() {
		return nil
	}
	bad := findError(root)
	if bad == nil {
		return fmt.Errorf("invalid javascript syntax")
	}
	p := bad.StartPoint()
	if bad.IsMissing() {
		return fmt.Errorf("invalid javascript syntax at %d:%d: missing %s", p.Row+1, p.Column+1, bad.Type())
	}
	return fmt.Errorf("invalid javascript syntax at %d:%d", p.Row+1, p.Column+1)
}

func findError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !c.HasError() && !c.IsMissing() {
			continue
		}
		if bad := findError(c); bad != nil {
			return bad
		}
	}
	return nil
}

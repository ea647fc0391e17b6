package lang

import (
	"context"

	"github.com/yiyuanh/tscaffold/internal/testtree"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

// Language defines the interface for language-specific operations.
// This provides an extensibility seam for module formats beyond ES modules.
type Language interface {
	Name() string
	FileExtensions() []string
	ParseExports(source []byte) model.ExportSet
	ValidateTestSyntax(testCode []byte) error
	Load(ctx context.Context, testFile string, run *testtree.Run) ([]*testtree.Node, error)
}

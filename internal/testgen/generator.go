package testgen

import (
	"fmt"

	"github.com/yiyuanh/tscaffold/internal/lang"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

// Generator renders skeleton test files for a module.
type Generator struct {
	lang lang.Language
}

// NewGenerator creates a generator for the given language.
func NewGenerator(language lang.Language) *Generator {
	return &Generator{lang: language}
}

// Generate scans the module source and renders its test file. testDir is
// where the test file will live; the import source is relative to it.
func (g *Generator) Generate(m model.Manifest, modulePath, testDir string, source []byte) (string, model.ExportSet, error) {
	exports := g.lang.ParseExports(source)

	ref, err := ModuleRef(testDir, modulePath)
	if err != nil {
		return "", exports, err
	}

	importName := ImportName(m.Name, modulePath)
	if exports.HasNamed(importName) {
		importName += "Default"
	}

	code := BuildTemplate(Input{
		ImportName: importName,
		ModuleRef:  ref,
		Exports:    exports,
	})

	if err := g.lang.ValidateTestSyntax([]byte(code)); err != nil {
		return "", exports, fmt.Errorf("generated test has syntax error: %w\ncode:\n%s", err, code)
	}
	return code, exports, nil
}

package testgen

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/yiyuanh/tscaffold/pkg/model"
)

// AssertForms lists the assertions a generated file may use; it is written
// as a trailer so users editing the file know what the runner understands.
var AssertForms = []string{"assert", "assert.ok", "assert.isOk", "assert.exists"}

var scopeSeparators = regexp.MustCompile(`@|/`)

// Input is everything the template needs.
type Input struct {
	ImportName string          // identifier the default export is bound to
	ModuleRef  string          // import source, e.g. "./src/index.js"
	Exports    model.ExportSet // what to import and assert
}

// ImportName derives the default import identifier from a package name:
// the last @- or /-separated segment, in lower camel case. The module file
// name is used when the package has no name.
func ImportName(pkgName, modulePath string) string {
	var last string
	for _, part := range scopeSeparators.Split(pkgName, -1) {
		if part != "" {
			last = part
		}
	}
	if last == "" {
		base := filepath.Base(modulePath)
		last = strings.TrimSuffix(base, filepath.Ext(base))
	}
	name := strcase.ToLowerCamel(last)
	if name == "" {
		return "lib"
	}
	return name
}

// ModuleRef returns the import source for modulePath as seen from a test
// file in testDir.
func ModuleRef(testDir, modulePath string) (string, error) {
	rel, err := filepath.Rel(testDir, modulePath)
	if err != nil {
		return "", fmt.Errorf("computing module import path: %w", err)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel, nil
}

// BuildTemplate renders the skeleton test file.
func BuildTemplate(in Input) string {
	var sb strings.Builder
	ex := in.Exports
	singleDefault := len(ex.Default) == 1

	sb.WriteString("\n")
	if len(ex.Default) > 0 {
		sb.WriteString(fmt.Sprintf("import %s from \"%s\";\n\n", in.ImportName, in.ModuleRef))
	}
	if len(ex.Named) > 0 {
		sb.WriteString(fmt.Sprintf("import { %s } from \"%s\";\n\n", strings.Join(ex.Named, ", "), in.ModuleRef))
	}

	rootLabel := strings.Join(ex.Default, ",")
	if rootLabel == "" {
		rootLabel = in.ImportName
	}

	var defaultCases []string
	for _, name := range ex.Default {
		ref := in.ImportName + "." + name
		if singleDefault {
			ref = in.ImportName
		}
		defaultCases = append(defaultCases, testCase(name, ref))
	}

	var namedCases []string
	for _, name := range ex.Named {
		namedCases = append(namedCases, testCase(name, name))
	}

	sb.WriteString(fmt.Sprintf("T(\"%s\", [\n", rootLabel))
	sb.WriteString("  T(\"default export\", [")
	sb.WriteString(strings.Join(defaultCases, ","))
	sb.WriteString("\n  ]),\n")
	sb.WriteString("  T('named exports', [")
	sb.WriteString(strings.Join(namedCases, ","))
	sb.WriteString("\n  ])\n")
	sb.WriteString("])\n\n")
	sb.WriteString("//assert: " + strings.Join(AssertForms, ", ") + "\n")

	return sb.String()
}

func testCase(name, ref string) string {
	return fmt.Sprintf("\n    T('%s', (o, arr, n, str, ctor) => {\n      assert(%s)\n    })", name, ref)
}

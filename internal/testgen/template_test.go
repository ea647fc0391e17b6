package testgen

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiyuanh/tscaffold/internal/lang"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

func TestImportName(t *testing.T) {
	tests := []struct {
		pkg, module, want string
	}{
		{"@bemoje/arr-flatten", "src/index.js", "arrFlatten"},
		{"my-lib", "index.js", "myLib"},
		{"@scope/", "index.js", "scope"},
		{"", "src/string_utils.mjs", "stringUtils"},
		{"plain", "", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ImportName(tt.pkg, tt.module), "ImportName(%q, %q)", tt.pkg, tt.module)
	}
}

func TestModuleRef(t *testing.T) {
	dir := filepath.FromSlash("/proj")

	ref, err := ModuleRef(dir, filepath.FromSlash("/proj/src/index.js"))
	require.NoError(t, err)
	assert.Equal(t, "./src/index.js", ref)

	ref, err = ModuleRef(filepath.FromSlash("/proj/test"), filepath.FromSlash("/proj/src/index.js"))
	require.NoError(t, err)
	assert.Equal(t, "../src/index.js", ref)
}

func TestBuildTemplate(t *testing.T) {
	got := BuildTemplate(Input{
		ImportName: "myLib",
		ModuleRef:  "./src/index.js",
		Exports:    model.ExportSet{Named: []string{"a", "b"}, Default: []string{"e"}},
	})

	want := `
import myLib from "./src/index.js";

import { a, b } from "./src/index.js";

T("e", [
  T("default export", [
    T('e', (o, arr, n, str, ctor) => {
      assert(myLib)
    })
  ]),
  T('named exports', [
    T('a', (o, arr, n, str, ctor) => {
      assert(a)
    }),
    T('b', (o, arr, n, str, ctor) => {
      assert(b)
    })
  ])
])

//assert: assert, assert.ok, assert.isOk, assert.exists
`
	assert.Equal(t, want, got)
}

func TestBuildTemplate_MultipleDefaults(t *testing.T) {
	got := BuildTemplate(Input{
		ImportName: "math",
		ModuleRef:  "./math.js",
		Exports:    model.ExportSet{Default: []string{"add", "sub"}},
	})

	assert.Contains(t, got, `T("add,sub", [`)
	assert.Contains(t, got, "assert(math.add)")
	assert.Contains(t, got, "assert(math.sub)")
	assert.NotContains(t, got, "import {")
}

func TestBuildTemplate_NoExports(t *testing.T) {
	got := BuildTemplate(Input{ImportName: "empty", ModuleRef: "./empty.js"})

	assert.NotContains(t, got, "import")
	assert.True(t, strings.HasPrefix(got, "\nT(\"empty\", ["))
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(lang.NewJavaScript(nil))
	src := []byte("export const add = (a, b) => a + b\nexport default { add }\n")

	code, exports, err := g.Generate(
		model.Manifest{Name: "add"},
		filepath.FromSlash("/proj/src/add.js"),
		filepath.FromSlash("/proj"),
		src,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"add"}, exports.Named)
	assert.Equal(t, []string{"add"}, exports.Default)
	assert.Contains(t, code, `import addDefault from "./src/add.js";`, "default import must not shadow a named export")
	assert.Contains(t, code, "assert(addDefault)")
}

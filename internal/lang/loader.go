package lang

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/yiyuanh/tscaffold/internal/manifest"
	"github.com/yiyuanh/tscaffold/internal/testtree"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

// testFuncs are the names a test file may build groups with.
var testFuncs = map[string]bool{"T": true, "t": true, "test": true, "TEST": true}

// resolveExts are tried, in order, for import sources without an extension.
var resolveExts = []string{"", ".js", ".mjs", "/index.js"}

// loader rebuilds the T(...) structure of one test file on a run.
type loader struct {
	js       *JavaScript
	file     string
	src      []byte
	dir      string
	run      *testtree.Run
	bindings map[string]binding
	modules  map[string]model.ExportSet
}

// Load parses a generated test file and builds its groups and cases on run.
// Cases run while the tree is built. Each import is resolved against the
// module on disk, whose exports decide what the assertions see.
func (j *JavaScript) Load(ctx context.Context, testFile string, run *testtree.Run) ([]*testtree.Node, error) {
	src, err := os.ReadFile(testFile)
	if err != nil {
		return nil, fmt.Errorf("reading test file: %w", err)
	}

	tree, err := parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if err := syntaxError(root); err != nil {
		return nil, fmt.Errorf("%s: %w", testFile, err)
	}

	l := &loader{
		js:       j,
		file:     testFile,
		src:      src,
		dir:      filepath.Dir(testFile),
		run:      run,
		bindings: make(map[string]binding),
		modules:  make(map[string]model.ExportSet),
	}

	// Imports are hoisted, so bind them all before building any group.
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "import_statement" {
			if err := l.bindImport(stmt); err != nil {
				return nil, err
			}
		}
	}

	var roots []*testtree.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "import_statement", "comment":
			continue
		case "expression_statement":
			if call := stmt.NamedChild(0); call != nil && l.isTestCall(call) {
				roots = append(roots, l.buildGroup(call))
				continue
			}
		}
		j.logger.Debug("skipping top-level statement",
			zap.String("type", stmt.Type()),
			zap.Uint32("line", stmt.StartPoint().Row+1))
	}
	return roots, nil
}

func (l *loader) text(n *sitter.Node) string {
	return n.Content(l.src)
}

func (l *loader) isTestCall(n *sitter.Node) bool {
	if n.Type() != "call_expression" {
		return false
	}
	fn := n.ChildByFieldName("function")
	return fn != nil && fn.Type() == "identifier" && testFuncs[l.text(fn)]
}

// buildGroup turns T(label, ...args) into a node. Nested groups are built
// first, as argument evaluation would.
func (l *loader) buildGroup(call *sitter.Node) *testtree.Node {
	args := call.ChildByFieldName("arguments")
	group := int(call.StartPoint().Row) + 1
	var label string
	var items []testtree.Item

	first := true
	for i := 0; args != nil && i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "comment" {
			continue
		}
		if first {
			label = l.label(arg)
			first = false
			continue
		}
		items = append(items, l.item(arg, label, group))
	}
	return l.run.T(label, items...)
}

func (l *loader) label(n *sitter.Node) string {
	switch n.Type() {
	case "string", "template_string":
		return unquote(l.text(n))
	}
	return l.text(n)
}

func (l *loader) item(n *sitter.Node, label string, group int) testtree.Item {
	switch n.Type() {
	case "array":
		var list testtree.List
		for i := 0; i < int(n.NamedChildCount()); i++ {
			el := n.NamedChild(i)
			if el.Type() == "comment" {
				continue
			}
			list = append(list, l.item(el, label, group))
		}
		return list
	case "call_expression":
		if l.isTestCall(n) {
			return l.buildGroup(n)
		}
	case "arrow_function", "function_expression", "function":
		return l.testCase(n, group)
	}
	err := &EvalError{
		Reason:   fmt.Sprintf("unsupported argument to %q: %s", label, n.Type()),
		Location: l.at(n, group),
	}
	return testtree.Case(func(*testtree.Scratch) error { return err })
}

func (l *loader) testCase(fn *sitter.Node, group int) testtree.Item {
	check := l.compileBody(fn.ChildByFieldName("body"), group)
	if isAsync(fn) {
		return testtree.Await(func(*testtree.Scratch) testtree.Outcome {
			return testtree.Go(check)
		})
	}
	return testtree.Case(func(*testtree.Scratch) error { return check() })
}

func isAsync(fn *sitter.Node) bool {
	for i := 0; i < int(fn.ChildCount()); i++ {
		if c := fn.Child(i); c != nil && !c.IsNamed() && c.Type() == "async" {
			return true
		}
	}
	return false
}

// bindImport records the local names an import statement introduces.
func (l *loader) bindImport(stmt *sitter.Node) error {
	srcNode := stmt.ChildByFieldName("source")
	if srcNode == nil {
		return nil
	}
	source := unquote(l.text(srcNode))

	var exports model.ExportSet
	external := !strings.HasPrefix(source, ".") && !strings.HasPrefix(source, "/")
	if !external {
		var err error
		exports, err = l.resolve(source)
		if err != nil {
			return err
		}
	}

	bind := func(local string, b binding) {
		b.source = source
		b.exports = exports
		b.external = external
		l.bindings[local] = b
	}

	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		clause := stmt.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for k := 0; k < int(clause.NamedChildCount()); k++ {
			part := clause.NamedChild(k)
			switch part.Type() {
			case "identifier":
				bind(l.text(part), binding{kind: bindDefault})
			case "namespace_import":
				if id := lastIdentifier(part); id != nil {
					bind(l.text(id), binding{kind: bindNamespace})
				}
			case "named_imports":
				for s := 0; s < int(part.NamedChildCount()); s++ {
					spec := part.NamedChild(s)
					if spec.Type() != "import_specifier" {
						continue
					}
					name := spec.ChildByFieldName("name")
					if name == nil {
						continue
					}
					local := name
					if alias := spec.ChildByFieldName("alias"); alias != nil {
						local = alias
					}
					exported := unquote(l.text(name))
					if exported == "default" {
						bind(l.text(local), binding{kind: bindDefault})
						continue
					}
					bind(l.text(local), binding{kind: bindNamed, name: exported})
				}
			}
		}
	}
	return nil
}

func lastIdentifier(n *sitter.Node) *sitter.Node {
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		if c := n.NamedChild(i); c.Type() == "identifier" {
			return c
		}
	}
	return nil
}

// resolve finds the module an import refers to and scans its exports.
func (l *loader) resolve(source string) (model.ExportSet, error) {
	if set, ok := l.modules[source]; ok {
		return set, nil
	}

	base := filepath.Join(l.dir, filepath.FromSlash(source))
	for _, ext := range resolveExts {
		path, err := manifest.Locate(filepath.Dir(base+ext), filepath.Base(base+ext))
		if err != nil {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return model.ExportSet{}, fmt.Errorf("reading module %s: %w", source, err)
		}
		set := l.js.ParseExports(src)
		l.modules[source] = set
		l.js.logger.Debug("resolved import",
			zap.String("source", source),
			zap.String("path", path),
			zap.Strings("named", set.Named),
			zap.Strings("default", set.Default))
		return set, nil
	}
	return model.ExportSet{}, fmt.Errorf("resolving import %q: %w", source, &manifest.NotFoundError{Path: base})
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

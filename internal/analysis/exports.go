package analysis

import (
	"regexp"
	"strings"

	"github.com/yiyuanh/tscaffold/internal/rexec"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

// ExportPattern recognises `export default <expr>`, `export { a, b }`,
// `export (const|var|let|function) name` and bare `export name`.
//
// This is a lexical scan, not a parser. Exports inside strings or comments,
// nested braces and unusual destructuring are misparsed.
var ExportPattern = regexp.MustCompile(
	`export\s?(?P<isDefault>default\s?)?(\{(?P<name1>[^}]*)\}|(const|var|let|function)\s?(?P<name2>\w+)|(?P<name3>\w+))`,
)

var nameSeparators = regexp.MustCompile(`,|\r?\n|\s|\t`)

func init() {
	rexec.Default.MustSave("parseEsmSourceCodeExports", "parse es module source code for named exports and default exports", ExportPattern)
}

// ParseExports scans ES module source for its named and default exports.
func ParseExports(src string) model.ExportSet {
	named := newOrderedSet()
	def := newOrderedSet()

	for m := range rexec.Exec(ExportPattern, src).All() {
		isDefault := m.Groups["isDefault"].Matched

		candidates := nameSeparators.Split(m.Groups["name1"].Value, -1)
		candidates = append(candidates, m.Groups["name2"].Value, m.Groups["name3"].Value)

		target := named
		if isDefault {
			target = def
		}
		for _, name := range candidates {
			if name == "" || strings.TrimSpace(name) == "default" {
				continue
			}
			target.add(name)
		}
	}

	return model.ExportSet{
		Named:   named.items,
		Default: def.items,
	}
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

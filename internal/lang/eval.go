package lang

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yiyuanh/tscaffold/pkg/model"
)

type bindKind int

const (
	bindDefault bindKind = iota
	bindNamed
	bindNamespace
)

// binding is a local name introduced by an import.
type binding struct {
	kind     bindKind
	name     string // exported name, for bindNamed
	source   string
	exports  model.ExportSet
	external bool
}

// assertCallees are the assertion forms a case body may use.
var assertCallees = map[string]bool{
	"assert":        true,
	"assert.ok":     true,
	"assert.isOk":   true,
	"assert.exists": true,
}

// Location is a position in a loaded test file.
type Location struct {
	File      string
	Line      int // line of the failing statement
	GroupLine int // line of the enclosing T(...) call
}

// SourceLocation reports where in the test file a failure happened.
func (l Location) SourceLocation() (file string, line, from int) {
	return l.File, l.Line, l.GroupLine
}

// AssertionError is a truthiness assertion that did not hold.
type AssertionError struct {
	Expr   string
	Reason string
	Location
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("expected %s to be truthy: %s", e.Expr, e.Reason)
}

// Kind names the failure in reports.
func (e *AssertionError) Kind() string { return "AssertionError" }

// ErrCannotEvaluate marks statements a case body may not contain.
var ErrCannotEvaluate = errors.New("cannot evaluate")

// EvalError is a case body the loader cannot check. It matches
// ErrCannotEvaluate.
type EvalError struct {
	Reason string
	Location
}

func (e *EvalError) Error() string {
	return ErrCannotEvaluate.Error() + ": " + e.Reason
}

func (e *EvalError) Unwrap() error { return ErrCannotEvaluate }

// Kind names the failure in reports.
func (e *EvalError) Kind() string { return "EvalError" }

func (l *loader) at(n *sitter.Node, group int) Location {
	return Location{File: l.file, Line: int(n.StartPoint().Row) + 1, GroupLine: group}
}

func fail(err error) func() error {
	return func() error { return err }
}

func pass() error { return nil }

// compileBody turns a case body into a check. Unsupported statements are
// reported when the case runs, not when the file loads. Checks hold only
// plain values: the syntax tree is closed once Load returns, while pending
// cases may still be running.
func (l *loader) compileBody(body *sitter.Node, group int) func() error {
	if body == nil {
		return pass
	}

	var stmts []*sitter.Node
	if body.Type() == "statement_block" {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			s := body.NamedChild(i)
			switch s.Type() {
			case "comment", "empty_statement":
				continue
			case "expression_statement":
				if c := s.NamedChild(0); c != nil {
					stmts = append(stmts, c)
					continue
				}
			}
			stmts = append(stmts, s)
		}
	} else {
		stmts = append(stmts, body)
	}

	checks := make([]func() error, 0, len(stmts))
	for _, s := range stmts {
		checks = append(checks, l.compileStatement(s, group))
	}
	return func() error {
		for _, c := range checks {
			if err := c(); err != nil {
				return err
			}
		}
		return nil
	}
}

func (l *loader) compileStatement(n *sitter.Node, group int) func() error {
	if n.Type() == "await_expression" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}

	loc := l.at(n, group)
	if n.Type() != "call_expression" {
		return fail(&EvalError{Reason: n.Type(), Location: loc})
	}
	callee := strings.Join(strings.Fields(l.text(n.ChildByFieldName("function"))), "")
	if !assertCallees[callee] {
		return fail(&EvalError{Reason: "call to " + callee, Location: loc})
	}

	var args []*sitter.Node
	if a := n.ChildByFieldName("arguments"); a != nil {
		for i := 0; i < int(a.NamedChildCount()); i++ {
			if c := a.NamedChild(i); c.Type() != "comment" {
				args = append(args, c)
			}
		}
	}
	if len(args) == 0 {
		return fail(&AssertionError{Expr: "undefined", Reason: "no argument", Location: loc})
	}
	return l.compileTruthy(args[0], loc)
}

// compileTruthy resolves an expression into a truthiness check. Literals are
// decided here; names are looked up in the import bindings, which are fixed
// before any group is built.
func (l *loader) compileTruthy(n *sitter.Node, loc Location) func() error {
	expr := l.text(n)
	falsy := func(reason string) func() error {
		return fail(&AssertionError{Expr: expr, Reason: reason, Location: loc})
	}

	switch n.Type() {
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return l.compileTruthy(n.NamedChild(0), loc)
		}
	case "true":
		return pass
	case "false", "null", "undefined":
		return falsy("falsy literal")
	case "number":
		v, err := strconv.ParseFloat(strings.ReplaceAll(expr, "_", ""), 64)
		if err == nil && v == 0 {
			return falsy("zero")
		}
		return pass
	case "string":
		if unquote(expr) == "" {
			return falsy("empty string")
		}
		return pass
	case "identifier":
		return func() error { return l.truthyIdentifier(expr, loc) }
	case "member_expression":
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj != nil && prop != nil && obj.Type() == "identifier" && prop.Type() == "property_identifier" {
			objName, propName := l.text(obj), l.text(prop)
			return func() error { return l.truthyMember(expr, objName, propName, loc) }
		}
	}
	return fail(&EvalError{Reason: expr, Location: loc})
}

func (l *loader) truthyIdentifier(name string, loc Location) error {
	falsy := func(reason string) error {
		return &AssertionError{Expr: name, Reason: reason, Location: loc}
	}
	if name == "undefined" || name == "NaN" {
		return falsy("falsy value")
	}
	b, ok := l.bindings[name]
	if !ok {
		return falsy(name + " is not defined")
	}
	if b.external {
		return &EvalError{Reason: fmt.Sprintf("%s comes from external module %s", name, b.source), Location: loc}
	}

	switch b.kind {
	case bindNamed:
		if !b.exports.HasNamed(b.name) {
			return falsy(fmt.Sprintf("%s does not export %s", b.source, b.name))
		}
	case bindDefault:
		if len(b.exports.Default) == 0 {
			return falsy(fmt.Sprintf("%s has no default export", b.source))
		}
	}
	return nil
}

func (l *loader) truthyMember(expr, obj, prop string, loc Location) error {
	falsy := func(reason string) error {
		return &AssertionError{Expr: expr, Reason: reason, Location: loc}
	}
	b, ok := l.bindings[obj]
	if !ok {
		return falsy(obj + " is not defined")
	}
	if b.external {
		return &EvalError{Reason: fmt.Sprintf("%s comes from external module %s", obj, b.source), Location: loc}
	}

	switch b.kind {
	case bindDefault:
		if !b.exports.HasDefault(prop) {
			return falsy(fmt.Sprintf("default export of %s has no %s", b.source, prop))
		}
	case bindNamespace:
		if prop == "default" {
			if len(b.exports.Default) == 0 {
				return falsy(fmt.Sprintf("%s has no default export", b.source))
			}
			return nil
		}
		if !b.exports.HasNamed(prop) {
			return falsy(fmt.Sprintf("%s does not export %s", b.source, prop))
		}
	default:
		return &EvalError{Reason: "members of named import " + obj, Location: loc}
	}
	return nil
}

package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	fcolor "github.com/fatih/color"

	"github.com/yiyuanh/tscaffold/internal/color"
	"github.com/yiyuanh/tscaffold/internal/testtree"
)

const (
	dashes     = "---------------------------------------------------------------"
	accents    = "^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^"
	backslash  = `\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\\`
	slashes    = "///////////////////////////////////////////////////////////////"
	maxContext = 8
	maxWidth   = 120
)

// Locator is implemented by failures that point into a source file: the
// failing line and the line its enclosing group starts on.
type Locator interface {
	SourceLocation() (file string, line, from int)
}

// Kinder is implemented by failures that name their own kind in reports.
type Kinder interface {
	Kind() string
}

// Printer writes failure reports.
type Printer struct {
	w        io.Writer
	readFile func(string) ([]byte, error)
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, readFile: os.ReadFile}
}

// Print renders one failure.
func (p *Printer) Print(f testtree.Failure) {
	var sb strings.Builder
	frames := ParseStack(f.Stack())

	sb.WriteString("\n")
	sb.WriteString(color.Apply(color.BoldCyan, backslash) + "\n")
	sb.WriteString(color.Apply(color.BoldRed, "  ERROR") + " " + color.Apply(color.BoldGreen, f.Label) + "\n")
	sb.WriteString(color.Apply(color.Cyan, slashes) + "\n")

	var loc Locator
	if errors.As(f.Err, &loc) {
		p.located(&sb, loc)
	}

	if len(frames) > 0 {
		// Outermost frame first, the failing site last.
		var blocks []string
		for i := len(frames) - 1; i >= 0; i-- {
			if block := p.context(frames[i], i); block != "" {
				blocks = append(blocks, block)
			}
		}
		if len(blocks) > 0 {
			sb.WriteString(strings.Join(blocks, "\n"+color.Apply(color.Gray, dashes)+"\n"))
			sb.WriteString("\n" + color.Apply(color.Gray, accents) + "\n")
		}

		for i := len(frames) - 1; i >= 0; i-- {
			idx := color.Apply(color.Gray, fmt.Sprintf(" %d ", i))
			if i == 0 {
				idx = color.Apply(color.BoldRed, "Err")
			}
			fr := frames[i]
			fmt.Fprintf(&sb, "[%s] %s/%s:%s\n", idx,
				color.Apply(color.Gray, fr.Dir()),
				color.Apply(color.Cyan, fr.Base()),
				color.Apply(color.BoldRed, fmt.Sprint(fr.Line)))
		}

		var chain []string
		for i := len(frames) - 1; i >= 0; i-- {
			c := color.Green
			if i == 0 {
				c = color.Red
			}
			chain = append(chain, color.Apply(c, frames[i].ShortFunc()))
		}
		sb.WriteString(strings.Join(chain, color.Apply(color.Gray, "()  >  ")) + color.Apply(color.Gray, "()") + "\n")
	}

	typ, msg := describe(f.Err)
	sb.WriteString(color.Apply(color.BoldRed, typ) + color.Apply(color.Gray, ": ") + color.Apply(color.Yellow, msg) + "\n")
	sb.WriteString(color.Apply(color.Gray, accents) + "\n")

	fmt.Fprint(p.w, sb.String())
}

// located writes the test file context and location of a failure.
func (p *Printer) located(sb *strings.Builder, loc Locator) {
	file, line, from := loc.SourceLocation()
	if file == "" {
		return
	}
	if block := p.span(file, from, line); block != "" {
		sb.WriteString(block + "\n" + color.Apply(color.Gray, accents) + "\n")
	}
	fmt.Fprintf(sb, "[%s] %s/%s:%s\n", color.Apply(color.BoldRed, "Err"),
		color.Apply(color.Gray, filepath.ToSlash(filepath.Dir(file))),
		color.Apply(color.Cyan, filepath.Base(file)),
		color.Apply(color.BoldRed, fmt.Sprint(line)))
}

// span returns lines from..line of file, at most maxContext of them, with
// the last one highlighted.
func (p *Printer) span(file string, from, line int) string {
	src, err := p.readFile(file)
	if err != nil {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(string(src), "\t", "  "), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	from = max(from, 1, line-maxContext+1)
	if from > line {
		from = line
	}
	return p.render(lines, from-1, line, color.Red)
}

// context returns the source lines leading up to a frame's line: back to
// the line naming the frame's function, at most maxContext lines.
func (p *Printer) context(fr Frame, i int) string {
	src, err := p.readFile(fr.File)
	if err != nil {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(string(src), "\t", "  "), "\n")
	if fr.Line < 1 || fr.Line > len(lines) {
		return ""
	}

	name := fr.ShortFunc()
	start := fr.Line - 1
	for start > 0 && fr.Line-start < maxContext && !strings.Contains(lines[start], name) {
		start--
	}

	return p.render(lines, start, fr.Line, color.ByIndex(i))
}

// render numbers lines[start:end] and highlights the last one.
func (p *Printer) render(lines []string, start, end int, hl *fcolor.Color) string {
	width := len(fmt.Sprint(len(lines)))
	var out []string
	for n := start; n < end; n++ {
		text := fmt.Sprintf("%*d| %s", width, n+1, lines[n])
		if len(text) > maxWidth {
			text = text[:maxWidth]
		}
		if n == end-1 {
			text = color.Apply(hl, text)
		} else {
			text = color.Apply(color.Gray, text)
		}
		out = append(out, text)
	}
	return strings.Join(out, "\n")
}

func describe(err error) (typ, msg string) {
	var pe *testtree.PanicError
	if errors.As(err, &pe) {
		return fmt.Sprintf("panic(%T)", pe.Value), fmt.Sprint(pe.Value)
	}
	if err == nil {
		return "Error", "<nil>"
	}
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind(), err.Error()
	}
	return typeName(err), err.Error()
}

// typeName is the error's exported type name without package, or "Error"
// for the unexported error types of the standard library.
func typeName(err error) string {
	name := strings.TrimLeft(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return "Error"
	}
	return name
}

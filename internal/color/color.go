package color

import (
	"os"

	"github.com/fatih/color"
)

// Styles used across the CLI output.
var (
	Red        = color.New(color.FgRed)
	Yellow     = color.New(color.FgYellow)
	Green      = color.New(color.FgGreen)
	Cyan       = color.New(color.FgCyan)
	Magenta    = color.New(color.FgMagenta)
	Blue       = color.New(color.FgBlue)
	Gray       = color.New(color.FgHiBlack)
	Bold       = color.New(color.Bold)
	BoldRed    = color.New(color.FgRed, color.Bold)
	BoldGreen  = color.New(color.FgGreen, color.Bold)
	BoldCyan   = color.New(color.FgCyan, color.Bold)
	BoldYellow = color.New(color.FgYellow, color.Bold)
)

// Cycle is the palette stack frames are colored with, by frame index.
var Cycle = []*color.Color{Red, Yellow, Magenta, Cyan, Green, Blue}

func init() {
	// Respect NO_COLOR convention (https://no-color.org/)
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color.NoColor = true
	}
}

// Enabled returns whether color output is active.
func Enabled() bool {
	return !color.NoColor
}

// SetEnabled overrides automatic detection (useful for testing).
func SetEnabled(v bool) {
	color.NoColor = !v
}

// Apply renders s in the given style if color is enabled.
func Apply(c *color.Color, s string) string {
	if !Enabled() {
		return s
	}
	return c.Sprint(s)
}

// ByIndex returns the palette entry for frame i.
func ByIndex(i int) *color.Color {
	return Cycle[i%len(Cycle)]
}

// Package fancy provides pretty printing utilities and styling for CLI output
package fancy

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// Common colors for different types of elements
var (
	ColorBlue     = lipgloss.Color("39")  // Blue
	ColorGreen    = lipgloss.Color("82")  // Green
	ColorYellow   = lipgloss.Color("228") // Yellow
	ColorCyan     = lipgloss.Color("45")  // Cyan
	ColorRed      = lipgloss.Color("196") // Red
	ColorGray     = lipgloss.Color("250") // Light gray
	ColorDarkGray = lipgloss.Color("240") // Dark gray for branches
)

// Common styles that can be used across the application
var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FunctionStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// KV is one key/value line in a rendered tree.
type KV struct {
	Key   string
	Value string
}

// KVTree renders a titled tree of key/value pairs, used by the CLI to show
// settings and host status.
func KVTree(title string, items []KV) string {
	t := tree.New()
	t.EnumeratorStyle(BranchStyle)
	t.Enumerator(tree.RoundedEnumerator)
	t.Root(RootStyle.Render(title))

	for _, kv := range items {
		t.Child(KeyStyle.Render(kv.Key) + " " + ValueStyle.Render(kv.Value))
	}

	return t.String()
}

// FunctionText styles a function name.
func FunctionText(text string) string {
	return FunctionStyle.Render(text)
}

package transcript

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	DefaultWidth  = 120
	DefaultIndent = "    "
	DefaultLabel  = "CHATBOT"
)

// Formatter wraps generated text for terminal display. Width counts display
// columns and includes the indent.
type Formatter struct {
	Width  int
	Indent string
	Label  string
}

// NewFormatter returns a Formatter with the default width and indent.
func NewFormatter(label string) Formatter {
	return Formatter{
		Width:  DefaultWidth,
		Indent: DefaultIndent,
		Label:  label,
	}
}

// Format wraps every line of text independently and prefixes the result
// with the formatter's label header.
func (f Formatter) Format(text string) string {
	label := f.Label
	if label == "" {
		label = DefaultLabel
	}
	return "\n\n\n" + label + ":\n\n" + f.Wrap(text)
}

// Wrap wraps and indents text without a header.
func (f Formatter) Wrap(text string) string {
	limit := f.Width - ansi.StringWidth(f.Indent)
	if limit < 1 {
		limit = 1
	}

	src := strings.Split(text, "\n")
	out := make([]string, 0, len(src))
	for _, line := range src {
		out = append(out, f.wrapLine(line, limit)...)
	}
	return strings.Join(out, "\n")
}

func (f Formatter) wrapLine(line string, limit int) []string {
	if strings.TrimSpace(line) == "" {
		return []string{""}
	}

	var lines []string
	for _, seg := range strings.Split(ansi.Wrap(line, limit, ""), "\n") {
		seg = strings.TrimRight(seg, " \t")
		// Wrap can leave a segment over the limit around odd whitespace;
		// hard-break whatever is left so the width bound always holds.
		if ansi.StringWidth(seg) > limit {
			for _, part := range strings.Split(ansi.Hardwrap(seg, limit, true), "\n") {
				lines = append(lines, f.Indent+part)
			}
			continue
		}
		lines = append(lines, f.Indent+seg)
	}
	return lines
}

// Package display prints the intake session to the terminal: operator
// instructions, patient prompts, wrapped model replies, phase banners and the
// generated clinical documents.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/intake/pkg/transcript"
)

// Options configures a Printer.
type Options struct {
	// Width is the wrap width for replies and rendered documents.
	Width int

	// Color enables ANSI styling. It should be false when out is not a
	// terminal.
	Color bool

	// Markdown renders documents with glamour instead of printing them
	// verbatim.
	Markdown bool
}

// Printer writes session output to a single writer.
type Printer struct {
	out       io.Writer
	formatter transcript.Formatter
	markdown  *glamour.TermRenderer

	label  lipgloss.Style
	prompt lipgloss.Style
	banner lipgloss.Style
	header lipgloss.Style
	faint  lipgloss.Style
}

// New creates a Printer.
func New(out io.Writer, opts Options) (*Printer, error) {
	r := lipgloss.NewRenderer(out)
	if !opts.Color {
		r.SetColorProfile(termenv.Ascii)
	}

	f := transcript.NewFormatter(transcript.DefaultLabel)
	if opts.Width > 0 {
		f.Width = opts.Width
	}

	p := &Printer{
		out:       out,
		formatter: f,
		label:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		prompt:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		banner:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		header:    r.NewStyle().Bold(true).Underline(true),
		faint:     r.NewStyle().Faint(true),
	}

	if opts.Markdown {
		style := glamour.WithAutoStyle()
		if !opts.Color {
			style = glamour.WithStandardStyle(styles.NoTTYStyle)
		}
		md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(f.Width))
		if err != nil {
			return nil, fmt.Errorf("could not create markdown renderer: %w", err)
		}
		p.markdown = md
	}

	return p, nil
}

// Line prints text followed by a newline.
func (p *Printer) Line(text string) {
	fmt.Fprintln(p.out, text)
}

// Prompt prints an input prompt without a trailing newline.
func (p *Printer) Prompt(text string) {
	fmt.Fprint(p.out, p.prompt.Render(text))
}

// Reply prints a model reply under a speaker label, wrapped and indented.
func (p *Printer) Reply(label, text string) {
	f := p.formatter
	f.Label = p.label.Render(label)
	fmt.Fprintln(p.out, f.Format(text))
}

// Banner announces the start of a document-generation phase.
func (p *Printer) Banner(title string) {
	fmt.Fprintf(p.out, "\n\n%s\n", p.banner.Render(title))
}

// Document prints a generated document under a header. Without markdown
// rendering the text is printed exactly as generated.
func (p *Printer) Document(header, text string) {
	body := text
	if p.markdown != nil {
		if rendered, err := p.markdown.Render(text); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	fmt.Fprintf(p.out, "\n\n%s\n\n%s\n", p.header.Render(header+":"), body)
}

// Summary prints the total token usage and the files written by the run.
func (p *Printer) Summary(totalTokens int, paths []string) {
	fmt.Fprintf(p.out, "\n\n%s\n", p.banner.Render("Intake complete"))
	fmt.Fprintln(p.out, p.faint.Render(fmt.Sprintf("tokens used: %d", totalTokens)))
	for _, path := range paths {
		fmt.Fprintln(p.out, p.faint.Render("wrote "+path))
	}
}

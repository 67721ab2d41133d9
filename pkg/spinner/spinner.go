// Package spinner renders the transient "Thinking..." indicator shown while a
// completion call blocks.
package spinner

import (
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Indicator is started before a blocking call and stopped after it returns.
type Indicator interface {
	Start(text string)
	Stop()
}

// Nop is an Indicator that draws nothing.
type Nop struct{}

func (Nop) Start(string) {}
func (Nop) Stop()        {}

// Spinner animates a dots spinner on its own bubbletea program. Only the
// render loop runs in the background; Start and Stop are synchronous.
type Spinner struct {
	out io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// New creates a Spinner that draws to out.
func New(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

// Start begins animating with the given label. A running spinner is
// stopped first.
func (s *Spinner) Start(text string) {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	p := tea.NewProgram(newModel(text),
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()

	s.program = p
	s.done = done
}

// Stop clears the spinner and waits for its render loop to exit.
func (s *Spinner) Stop() {
	s.mu.Lock()
	p, done := s.program, s.done
	s.program, s.done = nil, nil
	s.mu.Unlock()

	if p == nil {
		return
	}
	p.Send(stopMsg{})
	<-done
}

// stopMsg clears the view before quitting so no spinner frame is left on
// the terminal.
type stopMsg struct{}

type model struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

func newModel(text string) model {
	return model{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("6"))),
		),
		text: text,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	return m.spinner.View() + " " + m.text
}

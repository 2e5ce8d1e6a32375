// Package input provides the query input component for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/styles"
)

// Placeholder hints at the filter syntax the search view understands.
const Placeholder = "e.g. subject:physics year:2014 newton's laws"

// QueryInput wraps a bubbles textinput.
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewQueryInput creates a focused query input.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = Placeholder
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &QueryInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the labelled input. Recognised filters are echoed beneath
// it as tags; filters whose value does not parse are flagged.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Query: ")
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the library constant
	line := lipgloss.JoinHorizontal(lipgloss.Center, label, field)

	if filters := q.filterLine(); filters != "" {
		return lipgloss.JoinVertical(lipgloss.Left, line, filters)
	}
	return line
}

func (q *QueryInput) filterLine() string {
	var parts []string
	for _, tok := range q.Tokens() {
		switch tok.Kind {
		case Filter:
			parts = append(parts, q.styles.Tag.Render(tok.Name+"="+tok.Value))
		case BadFilter:
			parts = append(parts, q.styles.Warning.Render(tok.Text+" (searched as text)"))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return q.styles.Muted.Render("Filters: ") + strings.Join(parts, " ")
}

// Tokens classifies the current value.
func (q *QueryInput) Tokens() []Token {
	return Tokenize(q.textinput.Value())
}

// Value returns the current input value.
func (q *QueryInput) Value() string {
	return q.textinput.Value()
}

// SetValue sets the input value.
func (q *QueryInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (q *QueryInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus from the input.
func (q *QueryInput) Blur() {
	q.textinput.Blur()
}

// Focused returns whether the input is focused.
func (q *QueryInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sets the total width including the label.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	q.textinput.Width = max(width-12, 20)
}

// Width returns the current width.
func (q *QueryInput) Width() int {
	return q.width
}

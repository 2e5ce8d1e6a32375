// Package question provides the full-question view for the TUI.
package question

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/messages"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/styles"
	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// View shows one retrieved question with its options and provenance.
type View struct {
	styles *styles.Styles

	result       *domain.RetrievalResult
	scrollOffset int
	width        int
	height       int
}

// NewView creates a new question view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		width:  80,
		height: 24,
	}
}

// SetResult sets the question to display and scrolls to the top.
func (v *View) SetResult(result domain.RetrievalResult) {
	v.result = &result
	v.scrollOffset = 0
}

// Result returns the displayed question, or nil.
func (v *View) Result() *domain.RetrievalResult {
	return v.result
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the question view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "esc", "backspace":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}
	return v, nil
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent lays the question out as wrapped lines.
func (v *View) buildContent() []string {
	if v.result == nil {
		return nil
	}
	q := v.result.Question
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))

	lines := strings.Split(wrap.Render(q.Stem), "\n")
	if len(q.Options) > 0 {
		lines = append(lines, "")
		for _, opt := range q.Options {
			text := wrap.Render(opt.Letter + ") " + opt.Text)
			lines = append(lines, strings.Split(text, "\n")...)
		}
	}

	lines = append(lines, "",
		formatField("Subject", q.Subject),
		formatField("Year", domain.YearKey(q.Year)),
		formatField("Number", fmt.Sprintf("%d", q.Number)),
		formatField("Type", string(q.Type)),
		formatField("Source", q.DocumentSource),
		formatField("ID", q.ID),
	)
	if v.result.Ranked {
		lines = append(lines, formatField("Distance", fmt.Sprintf("%.4f", v.result.Distance)))
	}
	if !q.ProcessedAt.IsZero() {
		lines = append(lines, formatField("Processed", q.ProcessedAt.Format("2006-01-02 15:04:05")))
	}
	return lines
}

func formatField(label, value string) string {
	return fmt.Sprintf("%-10s %s", label+":", value)
}

// View renders the question view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	if v.result == nil {
		b.WriteString(v.styles.Muted.Render("No question selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	lines := v.buildContent()
	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(lines))
	for _, line := range lines[v.scrollOffset:end] {
		b.WriteString(v.styles.Normal.Render(line))
		b.WriteString("\n")
	}

	if len(lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1, end, len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) title() string {
	if v.result == nil {
		return "Question"
	}
	q := v.result.Question
	return fmt.Sprintf("Question %d  %s %s", q.Number, q.Subject, domain.YearKey(q.Year))
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] scroll  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// ScrollOffset returns the first visible content line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

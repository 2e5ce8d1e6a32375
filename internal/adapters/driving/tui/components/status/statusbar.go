// Package status renders the one-line footer of the search view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/keymap"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/styles"
)

// State picks the text on the left of the bar.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateAnswering State = "answering"
	StateResults   State = "results"
	StateError     State = "error"
)

// Bar shows progress and result counts on the left and key hints on the
// right. It has no Update; views drive it through the setters.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	resultCount int
	index       string
	width       int
}

// NewBar falls back to the default styles and keymap for nil arguments.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	var left string
	switch s.state {
	case StateSearching:
		left = s.styles.Muted.Render("Retrieving...")
	case StateAnswering:
		left = s.styles.Muted.Render("Asking the model...")
	case StateError:
		if s.message != "" {
			left = s.styles.Error.Render("Error: " + s.message)
		} else {
			left = s.styles.Error.Render("Error")
		}
	case StateResults:
		left = s.styles.Normal.Render(fmt.Sprintf("%d question(s)", s.resultCount))
		if s.message != "" {
			left += s.styles.Muted.Render("  " + s.message)
		}
	default:
		left = s.styles.Muted.Render("Ready")
	}
	if s.index != "" {
		left += s.styles.Muted.Render("  [" + s.index + "]")
	}
	return left
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateResults && s.resultCount > 0 {
		bindings = s.keymap.ResultsHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func (s *Bar) SetState(state State) {
	s.state = state
}

func (s *Bar) State() State {
	return s.state
}

func (s *Bar) SetMessage(message string) {
	s.message = message
}

func (s *Bar) Message() string {
	return s.message
}

func (s *Bar) SetResultCount(count int) {
	s.resultCount = count
}

func (s *Bar) ResultCount() int {
	return s.resultCount
}

// SetIndexLabel names the loaded index, e.g. "1204 indexed".
func (s *Bar) SetIndexLabel(label string) {
	s.index = label
}

func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Clear resets the bar to ready, keeping the index label.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
}

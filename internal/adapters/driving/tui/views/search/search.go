// Package search provides the query and results view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/components/input"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/components/list"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/components/status"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/keymap"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/messages"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/styles"
	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
)

// View holds the query input, the results list and an optional answer panel.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	answerer  driving.AnswerService
	ctx       context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = browsing results
	request    domain.RetrieveRequest
	answer     *domain.Answer
}

// NewView creates a new search view. answerer may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retrieval driving.RetrievalService,
	answerer driving.AnswerService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		retrieval:  retrieval,
		answerer:   answerer,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RetrievalCompleted:
		v.handleRetrievalCompleted(msg)
		return v, nil

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}
	return v.handleResultsKey(msg)
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // only submit and cancel are special while typing
	switch msg.Type {
	case tea.KeyEnter:
		req := ParseQuery(v.input.Value())
		if IsEmpty(req) {
			return v, nil
		}
		v.request = req
		v.answer = nil
		v.statusbar.SetState(status.StateSearching)
		v.focusInput = false
		v.input.Blur()
		return v, v.retrieve(req)

	case tea.KeyEsc:
		// Return to the previous results, if any.
		if v.list.Count() > 0 {
			v.focusInput = false
			v.input.Blur()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Open):
		result := v.list.SelectedResult()
		if result == nil {
			return v, nil
		}
		selected := *result
		return v, func() tea.Msg {
			return messages.QuestionSelected{Result: selected}
		}

	case keymap.Matches(k, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(k, v.keymap.Down):
		v.list.MoveDown()
	case k == "home", k == "g", k == "end", k == "G":
		v.list, _ = v.list.Update(msg)

	case keymap.Matches(k, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()

	case keymap.Matches(k, v.keymap.Back):
		v.focusInput = true
		return v, v.input.Focus()

	case keymap.Matches(k, v.keymap.Answer):
		if IsEmpty(v.request) {
			return v, nil
		}
		v.statusbar.SetState(status.StateAnswering)
		return v, v.ask(v.request)

	case keymap.Matches(k, v.keymap.Status):
		return v, changeView(messages.ViewStatus)

	case keymap.Matches(k, v.keymap.Help):
		return v, changeView(messages.ViewHelp)

	case keymap.Matches(k, v.keymap.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: view}
	}
}

func (v *View) retrieve(req domain.RetrieveRequest) tea.Cmd {
	svc, ctx := v.retrieval, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		results, err := svc.Retrieve(ctx, req)
		return messages.RetrievalCompleted{Request: req, Results: results, Err: err}
	}
}

func (v *View) ask(req domain.RetrieveRequest) tea.Cmd {
	svc, ctx := v.answerer, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerCompleted{Err: ErrNoAnswerService}
		}
		answer, err := svc.Answer(ctx, req)
		return messages.AnswerCompleted{Answer: answer, Err: err}
	}
}

func (v *View) handleRetrievalCompleted(msg messages.RetrievalCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.request = msg.Request
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.statusbar.SetMessage(describeFilter(msg.Request))
	v.focusInput = false
	v.input.Blur()
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.answer = msg.Answer
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(v.list.Count())
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// describeFilter renders the active filters, e.g. "physics 2014".
func describeFilter(req domain.RetrieveRequest) string {
	var parts []string
	if req.Filter.Subject != nil {
		parts = append(parts, *req.Filter.Subject)
	}
	if req.Filter.Year != nil {
		parts = append(parts, fmt.Sprintf("%d", *req.Filter.Year))
	}
	return strings.Join(parts, " ")
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("WAEC Question Bank"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if v.answer != nil {
		sections = append(sections, "", v.renderAnswer())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderAnswer() string {
	body := v.styles.Subtitle.Render("Answer") + "\n" +
		lipgloss.NewStyle().Width(max(v.width-6, 20)).Render(v.answer.Text)
	if v.answer.Model != "" {
		body += "\n" + v.styles.Muted.Render("model: "+v.answer.Model)
	}
	return v.styles.Border.Padding(0, 1).Render(body)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input and status bar
	v.statusbar.SetWidth(width)
}

// SetIndexLabel shows a short index description in the status bar.
func (v *View) SetIndexLabel(label string) {
	v.statusbar.SetIndexLabel(label)
}

// Ready returns whether the view has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the typed input.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the typed input.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Request returns the last submitted request.
func (v *View) Request() domain.RetrieveRequest {
	return v.request
}

// Results returns the current results.
func (v *View) Results() []domain.RetrievalResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Answer returns the last generated answer.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.request = domain.RetrieveRequest{}
	v.answer = nil
	v.err = nil
	v.statusbar.Clear()
}

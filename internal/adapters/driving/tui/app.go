package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/keymap"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/messages"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/styles"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/views/corpus"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/views/question"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	searchView   *search.View
	questionView *question.View
	statusView   *corpus.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	app := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		searchView:   search.NewView(s, km, ports.Retrieval, ports.Answer),
		questionView: question.NewView(s),
		statusView:   corpus.NewView(s, ports.Corpus, ports.Index),
		currentView:  messages.ViewSearch,
	}
	if ports.Index != nil {
		status := ports.Index.IndexStatus()
		app.searchView.SetIndexLabel(indexLabel(status.Entries, status.Loaded))
	}
	return app, nil
}

func indexLabel(entries int, loaded bool) string {
	if !loaded {
		return "no index"
	}
	return fmt.Sprintf("%d indexed", entries)
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.statusView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("waec - question bank"),
		a.searchView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.searchView.SetDimensions(msg.Width, msg.Height)
		a.questionView.SetDimensions(msg.Width, msg.Height)
		a.statusView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.forwardKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewStatus {
			return a, a.statusView.Init()
		}
		return a, nil

	case messages.QuestionSelected:
		a.questionView.SetResult(msg.Result)
		a.currentView = messages.ViewQuestion
		return a, nil

	case messages.RetrievalCompleted, messages.AnswerCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.StatusLoaded:
		a.statusView, cmd = a.statusView.Update(msg)
		if msg.Index != nil {
			a.searchView.SetIndexLabel(indexLabel(msg.Index.Entries, msg.Index.Loaded))
		}
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return a, cmd
}

func (a *App) forwardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewQuestion:
		a.questionView, cmd = a.questionView.Update(msg)
	case messages.ViewStatus:
		a.statusView, cmd = a.statusView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" || msg.String() == "?" {
			a.currentView = messages.ViewSearch
		}
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewQuestion:
		return a.questionView.View()
	case messages.ViewStatus:
		return a.statusView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.searchView.View()
	}
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString("Query syntax:\n")
	b.WriteString("  subject:<name>   only questions from this subject\n")
	b.WriteString("  year:<yyyy>      only questions from this year\n")
	b.WriteString("  k:<n>            return up to n questions\n")
	b.WriteString("  anything else is matched by meaning\n\n")
	b.WriteString("Keys:\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-12s %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}

// SearchView returns the search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// QuestionView returns the question view.
func (a *App) QuestionView() *question.View {
	return a.questionView
}

// Package corpus provides the corpus and index status view for the TUI.
package corpus

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/messages"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/styles"
	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
)

// View shows what is stored and which index generation is loaded.
type View struct {
	styles *styles.Styles
	corpus driving.CorpusService
	index  driving.IndexService
	ctx    context.Context

	stats   *domain.CorpusStats
	status  *domain.IndexStatus
	loading bool
	err     error
	width   int
	height  int
}

// NewView creates a status view. Either service may be nil.
func NewView(s *styles.Styles, corpus driving.CorpusService, index driving.IndexService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		corpus: corpus,
		index:  index,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the counts.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	corpus, index, ctx := v.corpus, v.index, v.ctx
	return func() tea.Msg {
		var msg messages.StatusLoaded
		if index != nil {
			status := index.IndexStatus()
			msg.Index = &status
		}
		if corpus != nil {
			stats, err := corpus.Stats(ctx)
			if err != nil {
				msg.Err = err
				return msg
			}
			msg.Corpus = &stats
		}
		return msg
	}
}

// Update handles messages for the status view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.StatusLoaded:
		v.loading = false
		v.err = msg.Err
		v.stats = msg.Corpus
		v.status = msg.Index

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace", "q":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewSearch}
			}
		case "r":
			v.loading = true
			return v, v.load()
		}
	}
	return v, nil
}

// View renders the status view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Status"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	default:
		v.renderCorpus(&b)
		b.WriteString("\n")
		v.renderIndex(&b)
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[r] refresh  [esc] back"))
	return b.String()
}

func (v *View) renderCorpus(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Corpus"))
	b.WriteString("\n")
	if v.stats == nil {
		b.WriteString(v.styles.Muted.Render("  not available"))
		b.WriteString("\n")
		return
	}
	fmt.Fprintf(b, "  Papers:    %d\n", v.stats.RawDocuments)
	fmt.Fprintf(b, "  Questions: %d\n", v.stats.Questions)
	writeCounts(b, "By subject", v.stats.BySubject)
	writeCounts(b, "By year", v.stats.ByYear)
}

func (v *View) renderIndex(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Index"))
	b.WriteString("\n")
	if v.status == nil {
		b.WriteString(v.styles.Muted.Render("  not available"))
		b.WriteString("\n")
		return
	}
	if !v.status.Loaded {
		b.WriteString(v.styles.Warning.Render("  not loaded (run 'waec index rebuild')"))
		b.WriteString("\n")
		return
	}
	fmt.Fprintf(b, "  Generation: %s\n", v.status.Generation)
	fmt.Fprintf(b, "  Entries:    %d\n", v.status.Entries)
	fmt.Fprintf(b, "  Dimensions: %d\n", v.status.Dimensions)
	if v.status.Model != "" {
		fmt.Fprintf(b, "  Model:      %s\n", v.status.Model)
	}
	if !v.status.BuiltAt.IsZero() {
		fmt.Fprintf(b, "  Built:      %s\n", v.status.BuiltAt.Format("2006-01-02 15:04:05"))
	}
}

func writeCounts(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "    %-16s %d\n", k, counts[k])
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Stats returns the last loaded corpus stats.
func (v *View) Stats() *domain.CorpusStats {
	return v.stats
}

// IndexStatus returns the last loaded index status.
func (v *View) IndexStatus() *domain.IndexStatus {
	return v.status
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	coreapp "cxxbind/internal/core/app"
	"cxxbind/internal/engine/api"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + " " + i.desc }

type model struct {
	list        list.Model
	lastUpdate  time.Time
	runErr      error
	stats       coreapp.Stats
	diagnostics int
	introduced  int
	resolved    int
	changed     []string
}

type updateMsg struct {
	update coreapp.Update
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Not Generated"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{list: l}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering && (msg.String() == "ctrl+c" || msg.String() == "q") {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		u := msg.update
		m.lastUpdate = u.At
		m.runErr = u.Err
		m.changed = u.Changed
		m.introduced = len(u.Delta.Introduced)
		m.resolved = len(u.Delta.Resolved)
		if u.Result == nil {
			return m, nil
		}
		m.stats = u.Result.Stats
		m.diagnostics = len(u.Result.Diagnostics)
		m.list.SetItems(diagnosticItems(u.Result.Diagnostics))
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func diagnosticItems(diags []api.Diagnostic) []list.Item {
	items := make([]list.Item, 0, len(diags))
	for _, d := range diags {
		desc := d.Kind.String() + ": " + d.Message
		items = append(items, item{title: string(d.Name), desc: desc})
	}
	return items
}

func (m model) View() string {
	last := "never"
	if !m.lastUpdate.IsZero() {
		last = m.lastUpdate.Format("15:04:05")
	}
	status := statusStyle.Render(fmt.Sprintf("Last run: %s | %d kept | %d removed | %d synthesized",
		last, m.stats.Kept, m.stats.Removed, m.stats.Synthesized.Total()))

	var summary string
	switch {
	case m.runErr != nil:
		summary = errorStyle.Render("Run failed: " + m.runErr.Error())
	case m.diagnostics == 0:
		summary = successStyle.Render("Everything generated")
	default:
		summary = warningStyle.Render(fmt.Sprintf("%d not generated", m.diagnostics))
		if m.introduced > 0 || m.resolved > 0 {
			summary += statusStyle.Render(fmt.Sprintf(" (+%d / -%d since last run)", m.introduced, m.resolved))
		}
	}

	if len(m.changed) > 0 {
		status += statusStyle.Render(fmt.Sprintf(" | changed: %s", strings.Join(m.changed, ", ")))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("cxxbind"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

// runUI shows diagnostics from every watch-mode run until the user quits or ctx ends.
func runUI(ctx context.Context, app *coreapp.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(initialModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	app.SetUpdateHandler(func(update coreapp.Update) {
		p.Send(updateMsg{update: update})
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := app.Watch(ctx); err != nil {
			slog.Error("watch failed", "error", err)
		}
	}()

	_, err := p.Run()
	cancel()
	<-done
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

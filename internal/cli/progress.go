package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/mindtube/curator/internal/client"
	"github.com/mindtube/curator/internal/curation"
)

const pollInterval = time.Second

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg triggers polling the run status
type tickMsg time.Time

// statusUpdateMsg carries the polled run snapshot
type statusUpdateMsg struct {
	status *curation.RunStatus
	err    error
}

// progressModel is the bubbletea model for the live run view.
type progressModel struct {
	client   *client.Client
	status   *curation.RunStatus
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

func newProgressModel(c *client.Client) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		client:   c,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (start polling).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchStatus(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetchStatus()

	case statusUpdateMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch run status: %w", msg.err)
			m.done = true
			return m, tea.Quit
		}

		m.status = msg.status

		if m.status.JobID == "" {
			m.err = fmt.Errorf("no curation run has been started")
			m.done = true
			return m, tea.Quit
		}

		if m.status.Status.Terminal() {
			m.done = true
			if m.status.Status == curation.StatusError {
				m.err = fmt.Errorf("run failed; see errors below")
			}
			return m, tea.Quit
		}

		return m, tickCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	if m.status == nil {
		return "Loading run status...\n"
	}

	var pct float64
	if m.status.TotalItems > 0 {
		pct = float64(m.status.ProcessedItems) / float64(m.status.TotalItems)
	}

	statusTag := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.status.Status))
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d items  ✓%d  ✗%d",
		m.status.ProcessedItems, m.status.TotalItems,
		m.status.ApprovedItems, m.status.RejectedItems)

	action := m.theme.hintStyle().Render(m.status.CurrentAction)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to detach; the run continues on the server")

	return fmt.Sprintf("%s %s %s\n%s\n%s\n", statusTag, progressBar, counts, action, hint)
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render(
			"\nRun continues on the server.\nUse 'curator status' to check on it.\n")
	}

	if m.err != nil && m.status == nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ %s\n", m.err))
	}

	var output string
	switch {
	case m.status != nil && m.status.Status == curation.StatusError:
		output = m.theme.errorStyle().Render("✗ Run failed") + "\n\n"
	case m.status != nil && m.status.Status == curation.StatusStopped:
		output = m.theme.statusStyle().Render("■ Run stopped") + "\n\n"
	default:
		output = m.theme.completedStyle().Render("✓ Run completed") + "\n\n"
	}

	if m.status != nil {
		output += fmt.Sprintf("  Items processed: %d\n", m.status.ProcessedItems)
		output += fmt.Sprintf("  Approved:        %d\n", m.status.ApprovedItems)
		output += fmt.Sprintf("  Rejected:        %d\n", m.status.RejectedItems)
		output += fmt.Sprintf("  Quota used:      metadata %d/%d, evaluation %d/%d\n",
			m.status.Quota.MetadataUsed, m.status.Quota.MetadataLimit,
			m.status.Quota.EvaluationUsed, m.status.Quota.EvaluationLimit)

		if len(m.status.Errors) > 0 {
			output += m.theme.errorStyle().Render(fmt.Sprintf("\nWarnings (%d):\n", len(m.status.Errors)))
			for _, e := range m.status.Errors {
				output += fmt.Sprintf("  • %s\n", e)
			}
		}
	}

	return output
}

// fetchStatus polls the server for the current run snapshot.
// Runs in a separate goroutine (command) to avoid blocking Update().
func (m progressModel) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := m.client.Status(ctx)
		return statusUpdateMsg{status: status, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// RunProgress runs the interactive live view of the current run.
// Returns nil on completion or Ctrl+C (detach), error on run failure.
func RunProgress(c *client.Client) error {
	p := tea.NewProgram(newProgressModel(c))

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}

	return nil
}

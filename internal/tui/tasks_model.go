package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/mcpchat/internal/models"
)

// TaskFetcher loads the task list from a task service
type TaskFetcher interface {
	FetchTasks(ctx context.Context, baseURL string) (*models.TaskList, error)
}

// tasksLoadedMsg carries the outcome of one fetch
type tasksLoadedMsg struct {
	list *models.TaskList
	err  error
}

// TasksModel shows the task list, loaded once when the view starts
type TasksModel struct {
	fetcher TaskFetcher
	baseURL string

	spinner spinner.Model
	list    *models.TaskList
	err     error
	loading bool

	width  int
	height int
}

// NewTasksModel creates a task list view for the service at baseURL
func NewTasksModel(fetcher TaskFetcher, baseURL string) TasksModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = loadingStyle

	return TasksModel{
		fetcher: fetcher,
		baseURL: baseURL,
		spinner: s,
		loading: true,
	}
}

// Init starts the first fetch
func (m TasksModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m TasksModel) fetch() tea.Cmd {
	fetcher, baseURL := m.fetcher, m.baseURL
	return func() tea.Msg {
		list, err := fetcher.FetchTasks(context.Background(), baseURL)
		return tasksLoadedMsg{list: list, err: err}
	}
}

// Update handles messages
func (m TasksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.fetch())
		}

	case tasksLoadedMsg:
		m.loading = false
		m.list = msg.list
		m.err = msg.err

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View renders the task list
func (m TasksModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString(hintStyle.Render("  " + m.baseURL))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + subtitleStyle.Render(" Loading tasks..."))
	case m.err != nil:
		b.WriteString(FormatError(m.err))
	case m.list == nil || len(m.list.Tasks) == 0:
		b.WriteString(subtitleStyle.Render("No tasks"))
	default:
		b.WriteString(RenderTaskList(m.list))
	}

	b.WriteString("\n\n")
	b.WriteString(statusKeyStyle.Render("r") + statusDescStyle.Render(" reload  "))
	b.WriteString(statusKeyStyle.Render("q") + statusDescStyle.Render(" quit"))
	b.WriteString("\n")

	return b.String()
}

// RenderTaskList renders a numbered, colored "<title>: <status>" list
func RenderTaskList(list *models.TaskList) string {
	if list == nil {
		return ""
	}

	lines := make([]string, 0, len(list.Tasks))
	for i, task := range list.Tasks {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			taskIndexStyle.Render(fmt.Sprintf("%d.", i+1)),
			" ",
			taskTitleStyle.Render(task.Title+":"),
			" ",
			statusStyle(string(task.Status)).Render(string(task.Status)),
		))
	}
	return strings.Join(lines, "\n")
}

// RunTasks starts the task list TUI
func RunTasks(fetcher TaskFetcher, baseURL string) error {
	p := tea.NewProgram(NewTasksModel(fetcher, baseURL))
	_, err := p.Run()
	return err
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/mcpchat/internal/chat"
	"github.com/diogo/mcpchat/internal/models"
	"github.com/diogo/mcpchat/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// responseMsg carries a settled request back to the update loop
type responseMsg struct {
	result chat.Result
}

// ChatOptions configures the chat view
type ChatOptions struct {
	// Markdown renders assistant replies through glamour. Off keeps replies
	// verbatim.
	Markdown bool
	Render   render.Options
	Logger   *zap.Logger
	// Clipboard copies text, defaults to the system clipboard
	Clipboard func(string) error
}

// Model represents the chat TUI state
type Model struct {
	session  *chat.Session
	markdown bool
	render   render.Options
	logger   *zap.Logger
	copyText func(string) error

	// UI components
	viewport      viewport.Model
	textarea      textarea.Model
	spinner       spinner.Model
	endpointInput textinput.Model

	// State
	loading         bool
	ready           bool
	editingEndpoint bool
	notice          string
	animationFrame  int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model driven by session
func NewChatModel(session *chat.Session, opts ChatOptions) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your database..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	ti := textinput.New()
	ti.Placeholder = "http://localhost:8000/chat"
	ti.CharLimit = 2048
	ti.Prompt = "› "

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	renderOpts := opts.Render
	if renderOpts.Style == "" {
		renderOpts = render.DefaultOptions()
	}

	return Model{
		session:       session,
		markdown:      opts.Markdown,
		render:        renderOpts,
		logger:        logger,
		copyText:      copyText,
		textarea:      ta,
		spinner:       s,
		endpointInput: ti,
		loading:       session.InFlight(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.editingEndpoint {
		return m.updateEndpointPanel(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+l":
			m.clear()
			return m, nil

		case "ctrl+e":
			return m.openEndpointPanel()

		case "ctrl+y":
			m.copyLastReply()
			return m, nil

		case "enter":
			return m.submit()

		case "pgup", "pgdown", "up", "down":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case responseMsg:
		m.session.Finish(msg.result)
		m.loading = m.session.InFlight()
		m.updateViewport()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Input is disabled while a request is in flight
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			m.session.SetInput(m.textarea.Value())
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// resize lays out the components for a new terminal size
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 4 // Header panel with border
	inputHeight := 6  // Input panel with border
	statusHeight := 2 // Notice and status bar
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}

	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.endpointInput.Width = contentWidth - 8
	m.updateViewport()
}

// submit handles Enter in the message input
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	input := strings.TrimSpace(m.session.Input())
	switch {
	case input == "":
		return m, nil
	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		return m, tea.Quit
	case input == "/clear":
		m.resetInput()
		m.clear()
		return m, nil
	case input == "/endpoint":
		m.resetInput()
		m.notice = "Endpoint: " + m.session.Endpoint()
		return m, nil
	case strings.HasPrefix(input, "/endpoint "):
		m.resetInput()
		m.setEndpoint(strings.TrimSpace(strings.TrimPrefix(input, "/endpoint ")))
		return m, nil
	}

	// Begin clears the session's input buffer
	req, ok := m.session.Begin(m.session.Input())
	if !ok {
		return m, nil
	}

	m.textarea.Reset()
	m.notice = ""
	m.loading = true
	m.animationFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.sendMessage(req),
		m.spinner.Tick,
		animationTick(),
	)
}

// setInput replaces the pending input in both the textarea and the session
func (m *Model) setInput(text string) {
	m.textarea.SetValue(text)
	m.session.SetInput(m.textarea.Value())
}

func (m *Model) resetInput() {
	m.setInput("")
}

// sendMessage creates a command that performs the outbound call for req
func (m Model) sendMessage(req chat.Request) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return responseMsg{result: session.Dispatch(context.Background(), req)}
	}
}

func (m *Model) clear() {
	m.session.Reset()
	m.notice = "Conversation cleared"
	m.updateViewport()
}

func (m *Model) setEndpoint(endpoint string) {
	m.session.SetEndpoint(endpoint)
	m.notice = "Endpoint set to " + endpoint
	m.logger.Debug("endpoint updated from chat", zap.String("endpoint", endpoint))
}

func (m *Model) copyLastReply() {
	reply, ok := m.session.LastAssistant()
	if !ok {
		m.notice = "Nothing to copy yet"
		return
	}
	if err := m.copyText(reply); err != nil {
		m.logger.Warn("clipboard copy failed", zap.Error(err))
		m.notice = "Copy failed: " + err.Error()
		return
	}
	m.notice = "Copied last reply to clipboard"
}

// openEndpointPanel shows the endpoint editor with the current value
func (m Model) openEndpointPanel() (tea.Model, tea.Cmd) {
	m.editingEndpoint = true
	m.endpointInput.SetValue(m.session.Endpoint())
	m.endpointInput.CursorEnd()
	m.textarea.Blur()
	return m, m.endpointInput.Focus()
}

func (m *Model) closeEndpointPanel() tea.Cmd {
	m.editingEndpoint = false
	m.endpointInput.Blur()
	return m.textarea.Focus()
}

// updateEndpointPanel handles input while the endpoint editor is open
func (m Model) updateEndpointPanel(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case responseMsg:
		m.session.Finish(msg.result)
		m.loading = m.session.InFlight()
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			return m, animationTick()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc", "ctrl+e":
			return m, m.closeEndpointPanel()
		case "enter":
			m.setEndpoint(m.endpointInput.Value())
			return m, m.closeEndpointPanel()
		}
	}

	var cmd tea.Cmd
	m.endpointInput, cmd = m.endpointInput.Update(msg)
	return m, cmd
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.viewport.Width

	// Header
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ MCP Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.session.Endpoint()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	if m.session.Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Endpoint editor
	if m.editingEndpoint {
		panel := lipgloss.JoinVertical(lipgloss.Left,
			endpointLabelStyle.Render("API Endpoint"),
			m.endpointInput.View(),
			hintStyle.Render("Enter to apply • Esc to close"),
		)
		sections = append(sections, endpointPanelStyle.Width(contentWidth).Render(panel))
	}

	// Input
	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when the transcript is empty
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		welcomeIconStyle.Width(width).Render("◆"),
		"",
		welcomeTitleStyle.Width(width).Render("Start a conversation"),
		"",
		welcomeStyle.Width(width).Render("Ask questions about your database using natural language"),
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
	}
	for i := numDots; i < 3; i++ {
		dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Waiting for the backend ")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots.String())
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"^L", "Clear"},
		{"^E", "Endpoint"},
		{"^Y", "Copy"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 10
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.session.Transcript() {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderMessage(msg, bubbleWidth))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderMessage renders one transcript entry as a labelled bubble
func (m Model) renderMessage(msg models.Message, width int) string {
	switch msg.Role {
	case models.RoleUser:
		return userLabelStyle.Render("You") + "\n" + userBubbleStyle.Width(width).Render(msg.Content)
	case models.RoleError:
		return errorLabelStyle.Render("Error") + "\n" + errorBubbleStyle.Width(width).Render(msg.Content)
	default:
		content := msg.Content
		if m.markdown {
			content = render.Reply(content, m.render.WithWidth(width-4))
		}
		return assistantLabelStyle.Render("Assistant") + "\n" + assistantBubbleStyle.Width(width).Render(content)
	}
}

// RunChat starts the chat TUI
func RunChat(session *chat.Session, opts ChatOptions) error {
	p := tea.NewProgram(
		NewChatModel(session, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}

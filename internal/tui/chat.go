// internal/tui/chat.go
// Package tui provides the interactive chat interface for the kosha CLI.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/koshalabs/kosha/internal/appconfig"
	"github.com/koshalabs/kosha/internal/providerfactory"
	"github.com/koshalabs/kosha/internal/providers"
	"github.com/koshalabs/kosha/internal/util"
)

// viewState represents the current screen of the chat application.
type viewState int

const (
	// viewProviderSelector is the state where the user selects a provider.
	viewProviderSelector viewState = iota
	// viewChat is the state where the user is exchanging messages.
	viewChat
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// item represents a selectable provider in the list.
type item struct {
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

// providerReadyMsg is sent when the selected provider has been constructed.
type providerReadyMsg struct{ provider providers.ChatProvider }

// providerErr is sent when provider construction or validation fails.
type providerErr struct{ error }

// responseMsg is sent when a completion arrives.
type responseMsg struct{ completion *providers.Completion }

// responseErr is sent when a completion call fails.
type responseErr struct{ error }

// model is the main application model for the Bubble Tea UI.
type model struct {
	ctx           context.Context
	config        *appconfig.Config
	state         viewState
	providerList  list.Model
	provider      providers.ChatProvider
	textArea      textarea.Model
	viewport      viewport.Model
	spinner       spinner.Model
	history       []providers.ChatMessage
	transcript    strings.Builder
	isLoading     bool
	err           error
	width, height int
}

func initialModel(ctx context.Context, cfg *appconfig.Config) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Ask about a word..."
	ta.Focus()
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	items := make([]list.Item, 0, 4)
	for _, name := range providerfactory.Available() {
		desc := "ready"
		if name == cfg.LLM.Provider {
			desc = "configured default"
		}
		items = append(items, item{title: name, desc: desc})
	}
	providerList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	providerList.Title = "Select a Provider"

	return &model{
		ctx:          ctx,
		config:       cfg,
		state:        viewProviderSelector,
		providerList: providerList,
		textArea:     ta,
		viewport:     viewport.New(100, 5),
		spinner:      s,
	}
}

// Init starts the spinner ticking.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// selectProviderCmd constructs and validates the chosen provider off the UI loop.
func selectProviderCmd(ctx context.Context, cfg *appconfig.Config, name string) tea.Cmd {
	return func() tea.Msg {
		provider, err := providerfactory.NewChatProvider(cfg, name)
		if err != nil {
			return providerErr{err}
		}
		if err := provider.ValidateConnection(ctx); err != nil {
			return providerErr{fmt.Errorf("connection check failed: %w", err)}
		}
		return providerReadyMsg{provider: provider}
	}
}

// sendCmd issues the chat request with the accumulated history.
func sendCmd(ctx context.Context, provider providers.ChatProvider, history []providers.ChatMessage) tea.Cmd {
	return func() tea.Msg {
		completion, err := provider.GenerateResponse(ctx, history, providers.GenerateOptions{})
		if err != nil {
			return responseErr{err}
		}
		return responseMsg{completion: completion}
	}
}

// Update handles all incoming messages and state transitions.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.providerList.SetSize(msg.Width-4, msg.Height-4)
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - 5
		m.textArea.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			switch m.state {
			case viewProviderSelector:
				selected, ok := m.providerList.SelectedItem().(item)
				if !ok {
					return m, nil
				}
				m.isLoading = true
				m.err = nil
				return m, selectProviderCmd(m.ctx, m.config, selected.title)
			case viewChat:
				text := strings.TrimSpace(m.textArea.Value())
				if text == "" || m.isLoading {
					return m, nil
				}
				m.history = append(m.history, providers.ChatMessage{Role: providers.RoleUser, Content: text})
				m.appendLine(userStyle.Render("You: ") + text)
				m.textArea.Reset()
				m.isLoading = true
				m.err = nil
				return m, sendCmd(m.ctx, m.provider, m.history)
			}
		}

	case providerReadyMsg:
		m.provider = msg.provider
		m.state = viewChat
		m.isLoading = false
		m.appendLine(metaStyle.Render(fmt.Sprintf("Connected to %s. Type a message and press enter.", m.provider.ProviderName())))
		return m, nil

	case providerErr:
		m.isLoading = false
		m.err = msg.error
		return m, nil

	case responseMsg:
		m.isLoading = false
		m.history = append(m.history, providers.ChatMessage{Role: providers.RoleAssistant, Content: msg.completion.Text})
		m.appendLine(assistantStyle.Render(msg.completion.Model+": ") + msg.completion.Text)
		if msg.completion.Usage.TotalTokens > 0 {
			m.appendLine(metaStyle.Render(fmt.Sprintf("(%d tokens)", msg.completion.Usage.TotalTokens)))
		}
		return m, nil

	case responseErr:
		m.isLoading = false
		m.err = msg.error
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	switch m.state {
	case viewProviderSelector:
		m.providerList, cmd = m.providerList.Update(msg)
		cmds = append(cmds, cmd)
	case viewChat:
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// appendLine adds a wrapped line to the transcript and scrolls to the bottom.
func (m *model) appendLine(line string) {
	width := m.viewport.Width
	if width <= 0 {
		width = 100
	}
	m.transcript.WriteString(util.WrapToWidth(line, width) + "\n")
	m.viewport.SetContent(m.transcript.String())
	m.viewport.GotoBottom()
}

// View renders the current screen.
func (m *model) View() string {
	switch m.state {
	case viewProviderSelector:
		view := m.providerList.View()
		if m.isLoading {
			view += "\n" + m.spinner.View() + " connecting..."
		}
		if m.err != nil {
			view += "\n" + errStyle.Render(util.TruncateRunes(m.err.Error(), 200))
		}
		return view
	default:
		var b strings.Builder
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errStyle.Render(util.TruncateRunes(m.err.Error(), 200)))
			b.WriteString("\n")
		}
		if m.isLoading {
			b.WriteString(m.spinner.View() + " waiting for response...\n")
		}
		b.WriteString(m.textArea.View())
		return b.String()
	}
}

// Run starts the interactive chat session and blocks until the user quits.
func Run(ctx context.Context, cfg *appconfig.Config) error {
	program := tea.NewProgram(initialModel(ctx, cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

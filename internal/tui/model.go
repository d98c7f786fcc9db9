// Package tui renders the Lyra overlay in the terminal: transcript, caption
// line, activity indicator, and the command input.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/auralabs/lyra/internal/app/assistant"
	"github.com/auralabs/lyra/internal/app/voice"
	"github.com/auralabs/lyra/internal/app/workspace"
	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/state"
)

const accentColor = lipgloss.Color("#D4AF37")

var (
	headerStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	liveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	lyraStyle    = lipgloss.NewStyle().Foreground(accentColor)
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	captionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type keyMap struct {
	Send      key.Binding
	Live      key.Binding
	NewThread key.Binding
	Branch    key.Binding
	Project   key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Send:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Live:      key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "voice")),
		NewThread: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new thread")),
		Branch:    key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "branch here")),
		Project:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "new project")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// App bundles the services the overlay renders and drives.
type App struct {
	Workspace *workspace.Service
	Assistant *assistant.Service
	Voice     *voice.Channel
	Settings  *state.SettingsStore
}

// Messages pushed from service callbacks on other goroutines.
type (
	stateMsg   assistant.State
	captionMsg struct {
		text    string
		visible bool
	}
	screenMsg    domain.Screen
	sendDoneMsg  struct{ err error }
	voiceErrMsg  struct{ err error }
	refreshedMsg struct{}
)

type Model struct {
	app  App
	keys keyMap

	input textinput.Model
	vp    viewport.Model
	ready bool

	// events carries service callbacks into the update loop.
	events chan tea.Msg

	state     assistant.State
	screen    domain.Screen
	caption   string
	captionOn bool
	lastErr   error
	quitting  bool
}

func New(app App) *Model {
	ti := textinput.New()
	ti.Placeholder = "Speak to Lyra..."
	ti.Focus()
	ti.CharLimit = 512

	m := &Model{
		app:    app,
		keys:   newKeyMap(),
		input:  ti,
		events: make(chan tea.Msg, 32),
		state:  assistant.StateIdle,
		screen: domain.ScreenHome,
	}

	app.Assistant.SetOnState(func(st assistant.State) { m.push(stateMsg(st)) })
	app.Assistant.Captions().SetOnChange(func(text string, visible bool) {
		m.push(captionMsg{text: text, visible: visible})
	})
	app.Voice.SetOnState(func(live bool) {
		if live {
			m.push(stateMsg(assistant.StateLive))
		} else {
			m.push(stateMsg(assistant.StateIdle))
		}
	})

	return m
}

// OnNavigate is the navigation callback wired into the command host.
func (m *Model) OnNavigate(screen domain.Screen) {
	m.push(screenMsg(screen))
}

func (m *Model) push(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 4
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight - footerHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshTranscript()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.app.Voice.Stop()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Send):
			text := strings.TrimSpace(m.input.Value())
			if text != "" && m.state != assistant.StateLive {
				m.input.Reset()
				m.lastErr = nil
				cmds = append(cmds, m.sendCmd(text))
			}

		case key.Matches(msg, m.keys.Live):
			cmds = append(cmds, m.toggleLiveCmd())

		case key.Matches(msg, m.keys.NewThread):
			cmds = append(cmds, m.newThreadCmd())

		case key.Matches(msg, m.keys.Branch):
			cmds = append(cmds, m.branchCmd())

		case key.Matches(msg, m.keys.Project):
			cmds = append(cmds, m.newProjectCmd())
		}

	case stateMsg:
		m.state = assistant.State(msg)
		cmds = append(cmds, m.listen())

	case captionMsg:
		m.caption = msg.text
		m.captionOn = msg.visible
		cmds = append(cmds, m.listen())

	case screenMsg:
		m.screen = domain.Screen(msg)
		cmds = append(cmds, m.listen())

	case sendDoneMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		}
		m.refreshTranscript()

	case voiceErrMsg:
		m.lastErr = msg.err

	case refreshedMsg:
		m.refreshTranscript()
	}

	if !m.quitting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.vp, cmd = m.vp.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		err := m.app.Assistant.Send(context.Background(), text)
		return sendDoneMsg{err: err}
	}
}

func (m *Model) toggleLiveCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Voice.Toggle(context.Background()); err != nil {
			return voiceErrMsg{err: err}
		}
		return refreshedMsg{}
	}
}

func (m *Model) newThreadCmd() tea.Cmd {
	return func() tea.Msg {
		ws := m.app.Workspace
		n := 0
		if sessions, err := ws.ProjectSessions(ws.ActiveProjectID()); err == nil {
			n = len(sessions)
		}
		title := fmt.Sprintf("Thread %d", n+1)
		if _, err := ws.CreateSession(context.Background(), ws.ActiveProjectID(), title); err != nil {
			return voiceErrMsg{err: err}
		}
		return refreshedMsg{}
	}
}

func (m *Model) branchCmd() tea.Cmd {
	return func() tea.Msg {
		ws := m.app.Workspace
		history, err := ws.History(context.Background(), ws.ActiveSessionID())
		if err != nil || len(history) == 0 {
			return refreshedMsg{}
		}
		last := history[len(history)-1]
		if _, err := ws.Branch(context.Background(), ws.ActiveSessionID(), last.ID); err != nil {
			return voiceErrMsg{err: err}
		}
		return refreshedMsg{}
	}
}

func (m *Model) newProjectCmd() tea.Cmd {
	return func() tea.Msg {
		ws := m.app.Workspace
		n := 0
		if projects, err := ws.Projects(); err == nil {
			n = len(projects)
		}
		name := fmt.Sprintf("Project %d", n+1)
		if _, err := ws.CreateProject(context.Background(), name); err != nil {
			return voiceErrMsg{err: err}
		}
		return refreshedMsg{}
	}
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	history, err := m.app.Workspace.History(context.Background(), m.app.Workspace.ActiveSessionID())
	if err != nil {
		return
	}

	var b strings.Builder
	for _, msg := range history {
		switch msg.Role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("You") + "  " + msg.Text + "\n")
		default:
			b.WriteString(lyraStyle.Render("Lyra") + " " + msg.Text + "\n")
			for _, src := range msg.Sources {
				b.WriteString(sourceStyle.Render("  ↳ "+src.Title+" "+src.URI) + "\n")
			}
		}
		b.WriteString("\n")
	}
	m.vp.SetContent(b.String())
	m.vp.GotoBottom()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "initializing..."
	}

	settings := m.app.Settings.Get()

	status := statusStyle.Render(string(m.state))
	if m.state == assistant.StateLive {
		status = liveStyle.Render("● LIVE")
	}

	session, _ := m.app.Workspace.ActiveSession()
	thread := ""
	if session != nil {
		thread = session.Title
		if session.IsBranch() {
			thread += " ⑂"
		}
	}

	header := headerStyle.Render("✦ Lyra") + "  " +
		status + "  " +
		statusStyle.Render(settings.Voice+" · "+string(m.screen)+" · "+thread)

	var parts []string
	parts = append(parts, header, "", m.vp.View())

	if m.captionOn && settings.ShowCaptions && m.caption != "" {
		parts = append(parts, captionStyle.Width(m.vp.Width-2).Render(m.caption))
	} else {
		parts = append(parts, "")
	}

	if m.lastErr != nil {
		parts = append(parts, errStyle.Render(m.lastErr.Error()))
	}

	parts = append(parts, m.input.View())
	return strings.Join(parts, "\n")
}

// Run starts the overlay and blocks until the user quits.
func Run(m *Model) error {
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

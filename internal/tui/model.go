// Package tui is the terminal front end: a login form, then a chat pane
// with a roster sidebar. All networking goes through a roomchat client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/roomchat-go/roomchat"
)

// ChatClient is the part of *roomchat.Client the UI drives.
type ChatClient interface {
	Connect(ctx context.Context, displayName, roomID string) error
	SendChat(ctx context.Context, text string) error
	SendPrivate(ctx context.Context, recipient, text string) error
	SendImage(ctx context.Context, filename string, r io.Reader) error
	Logout() error
	OnlineUsers() []string
}

type viewMode int

const (
	loginView viewMode = iota
	chatView
)

type inputMode int

const (
	modeMessage inputMode = iota
	modeRecipient
	modePrivateText
)

const (
	sidebarWidth = 26
	sendTimeout  = 10 * time.Second
)

type line struct {
	class lineClass
	text  string
}

// Model is the Bubble Tea model.
type Model struct {
	client ChatClient
	styles Styles

	view       viewMode
	mode       inputMode
	connecting bool

	nameInput textinput.Model
	roomInput textinput.Model
	input     textinput.Model
	pane      viewport.Model

	name      string
	room      string
	lines     []line
	roster    roomchat.Roster
	picked    int // index into roster.Others(name), -1 when none
	recipient string
	alert     string
	state     roomchat.ConnectionState

	width  int
	height int
}

// New builds the model. name and room pre-fill the login form.
func New(client ChatClient, name, room string) Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "Your name"
	nameInput.Prompt = "Name: "
	nameInput.CharLimit = 64
	nameInput.SetValue(name)
	nameInput.Focus()

	roomInput := textinput.New()
	roomInput.Placeholder = roomchat.DefaultRoom
	roomInput.Prompt = "Room: "
	roomInput.CharLimit = 64
	roomInput.SetValue(room)

	input := textinput.New()
	input.Placeholder = "Type a message"
	input.Prompt = "> "

	return Model{
		client:    client,
		styles:    DefaultStyles(),
		nameInput: nameInput,
		roomInput: roomInput,
		input:     input,
		pane:      viewport.New(80, 20),
		picked:    -1,
		width:     80,
		height:    24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = max(msg.Width, 20), max(msg.Height, 8)
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		m.connecting = false
		if roomchat.IsValidationError(msg.err) {
			m.alert = alertFor(msg.err)
			return m, nil
		}
		// A failed first attempt is already on screen as a notice and the
		// client keeps retrying, so the chat view opens either way.
		m.view = chatView
		m.nameInput.Blur()
		m.roomInput.Blur()
		m.input.Focus()
		m.resize()
		return m, nil

	case sentMsg:
		if roomchat.IsValidationError(msg.err) {
			m.alert = alertFor(msg.err)
		}
		return m, nil

	case loggedOutMsg:
		if msg.quit {
			return m, tea.Quit
		}
		m.resetChat()
		return m, nil

	case frameMsg:
		m.pushFrame(msg.frame)
		return m, nil

	case noticeMsg:
		class := classSystem
		if msg.notice.IsError {
			class = classError
		}
		m.push(class, msg.notice.Text)
		return m, nil

	case rosterMsg:
		m.roster = msg.roster
		if m.picked >= len(m.roster.Others(m.name)) {
			m.picked = -1
		}
		return m, nil

	case stateMsg:
		m.state = msg.event.NewState
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.logoutCmd(true)
	}
	if m.view == loginView {
		return m.handleLoginKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		if m.nameInput.Focused() {
			m.nameInput.Blur()
			cmd = m.roomInput.Focus()
		} else {
			m.roomInput.Blur()
			cmd = m.nameInput.Focus()
		}
		return m, cmd

	case tea.KeyEnter:
		if m.connecting {
			return m, nil
		}
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			m.alert = "Please enter your name."
			return m, nil
		}
		room := strings.TrimSpace(m.roomInput.Value())
		if room == "" {
			room = roomchat.DefaultRoom
		}
		m.name, m.room = name, room
		m.alert = ""
		m.connecting = true
		return m, m.connectCmd(name, room)
	}
	return m.updateFocused(msg)
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlL:
		return m, m.logoutCmd(false)

	case tea.KeyEsc:
		if m.mode != modeMessage {
			m.endPrompt()
			return m, nil
		}
		m.alert = ""
		return m, nil

	case tea.KeyCtrlP:
		others := m.client.OnlineUsers()
		if len(others) == 0 {
			m.alert = "No other users online."
			return m, nil
		}
		m.alert = ""
		m.mode = modeRecipient
		m.input.Reset()
		m.input.Prompt = fmt.Sprintf("To (%s): ", strings.Join(others, ", "))
		return m, nil

	case tea.KeyTab:
		if m.mode != modeMessage {
			return m, nil
		}
		others := m.roster.Others(m.name)
		if len(others) == 0 {
			m.picked = -1
			return m, nil
		}
		m.picked = (m.picked + 1) % len(others)
		m.input.SetValue(roomchat.FormatPrivate(others[m.picked], " "))
		m.input.CursorEnd()
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.pane, cmd = m.pane.Update(msg)
		return m, cmd

	case tea.KeyEnter:
		return m.submit()
	}
	return m.updateFocused(msg)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.alert = ""

	switch m.mode {
	case modeRecipient:
		if !contains(m.client.OnlineUsers(), text) {
			m.alert = fmt.Sprintf("%q is not online.", text)
			return m, nil
		}
		m.recipient = text
		m.mode = modePrivateText
		m.input.Reset()
		m.input.Prompt = fmt.Sprintf("Private to %s: ", text)
		return m, nil

	case modePrivateText:
		to := m.recipient
		m.endPrompt()
		return m, m.sendCmd(func(ctx context.Context) error {
			return m.client.SendPrivate(ctx, to, text)
		})
	}

	if text == "" {
		return m, nil
	}
	m.input.Reset()
	m.picked = -1

	switch {
	case text == "/logout":
		return m, m.logoutCmd(false)
	case strings.HasPrefix(text, "/img "):
		path := strings.TrimSpace(strings.TrimPrefix(text, "/img "))
		return m, m.sendCmd(func(ctx context.Context) error {
			return sendImageFile(ctx, m.client, path)
		})
	case strings.HasPrefix(text, "privado:"):
		to, body, ok := parsePrivate(text)
		if ok {
			return m, m.sendCmd(func(ctx context.Context) error {
				return m.client.SendPrivate(ctx, to, body)
			})
		}
	}
	return m, m.sendCmd(func(ctx context.Context) error {
		return m.client.SendChat(ctx, text)
	})
}

func (m *Model) endPrompt() {
	m.mode = modeMessage
	m.recipient = ""
	m.input.Reset()
	m.input.Prompt = "> "
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == chatView:
		m.input, cmd = m.input.Update(msg)
	case m.nameInput.Focused():
		m.nameInput, cmd = m.nameInput.Update(msg)
	default:
		m.roomInput, cmd = m.roomInput.Update(msg)
	}
	return m, cmd
}

func (m Model) connectCmd(name, room string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return connectedMsg{err: client.Connect(ctx, name, room)}
	}
}

func (m Model) sendCmd(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return sentMsg{err: fn(ctx)}
	}
}

func (m Model) logoutCmd(quit bool) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		_ = client.Logout()
		return loggedOutMsg{quit: quit}
	}
}

func (m *Model) resetChat() {
	m.view = loginView
	m.mode = modeMessage
	m.lines = nil
	m.roster = roomchat.Roster{}
	m.picked = -1
	m.alert = ""
	m.state = roomchat.StateLoggedOut
	m.endPrompt()
	m.input.Blur()
	m.nameInput.SetValue(m.name)
	m.nameInput.Focus()
	m.pane.SetContent("")
}

func (m *Model) pushFrame(f roomchat.Frame) {
	switch f.Kind {
	case roomchat.KindPrivate:
		m.push(classPrivate, f.Text)
	case roomchat.KindSystem:
		m.push(classSystem, f.Text)
	case roomchat.KindImage:
		who := f.Sender
		if who == "" {
			who = "someone"
		}
		m.push(ownClass(f.Own), fmt.Sprintf("%s sent an image: %s", who, f.URL))
	case roomchat.KindChat:
		m.push(ownClass(f.Own), f.Raw)
	}
}

func (m *Model) push(class lineClass, text string) {
	m.lines = append(m.lines, line{class: class, text: text})
	m.refreshPane()
}

func (m *Model) refreshPane() {
	width := m.pane.Width
	rendered := make([]string, 0, len(m.lines))
	for _, l := range m.lines {
		rendered = append(rendered, m.styles.line(l.class).Width(width).Render(l.text))
	}
	m.pane.SetContent(strings.Join(rendered, "\n"))
	m.pane.GotoBottom()
}

func (m *Model) resize() {
	m.pane.Width = max(m.width-sidebarWidth-2, 10)
	m.pane.Height = max(m.height-4, 3)
	m.input.Width = max(m.pane.Width-len(m.input.Prompt)-1, 5)
	m.refreshPane()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.view == loginView {
		return m.loginView()
	}
	return m.chatView()
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("roomchat"))
	b.WriteString("\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n")
	b.WriteString(m.roomInput.View())
	b.WriteString("\n\n")
	if m.connecting {
		b.WriteString(m.styles.Status.Render("Connecting..."))
	} else {
		b.WriteString(m.styles.Status.Render("enter: join • tab: switch field • ctrl+c: quit"))
	}
	if m.alert != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Alert.Render(m.alert))
	}
	return b.String()
}

func (m Model) chatView() string {
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.pane.View(),
		m.input.View(),
		m.statusLine(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, main, m.sidebar())
}

func (m Model) statusLine() string {
	if m.alert != "" {
		return m.styles.Alert.Render(m.alert)
	}
	return m.styles.Status.Render(fmt.Sprintf("%s@%s • %s • ctrl+p: private • tab: pick user • ctrl+l: logout",
		m.name, m.room, m.state))
}

func (m Model) sidebar() string {
	others := m.roster.Others(m.name)
	var pickedName string
	if m.picked >= 0 && m.picked < len(others) {
		pickedName = others[m.picked]
	}

	rows := []string{m.styles.RosterHeader.Render(fmt.Sprintf("Online Users (%d)", m.roster.Len()))}
	names := m.roster.Names()
	for i, label := range m.roster.Render(m.name) {
		name := names[i]
		switch {
		case name == m.name:
			rows = append(rows, m.styles.RosterSelf.Render(label))
		case name == pickedName:
			rows = append(rows, m.styles.RosterPicked.Render("› "+label))
		default:
			rows = append(rows, label)
		}
	}
	return m.styles.Sidebar.Width(sidebarWidth - 4).Height(max(m.height-4, 3)).Render(strings.Join(rows, "\n"))
}

func sendImageFile(ctx context.Context, client ChatClient, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return roomchat.WrapError(roomchat.ErrorValidation, "open image", err)
	}
	defer f.Close()
	return client.SendImage(ctx, filepath.Base(path), f)
}

// parsePrivate reads the "privado:<user>: <text>" shape Tab pre-fills.
func parsePrivate(text string) (string, string, bool) {
	rest := strings.TrimPrefix(text, "privado:")
	to, body, ok := strings.Cut(rest, ":")
	to, body = strings.TrimSpace(to), strings.TrimSpace(body)
	if !ok || to == "" {
		return "", "", false
	}
	return to, body, true
}

// ownClass keeps the web client's naming: a line that mentions the local
// user is a "receiver" line, everything else is "sender".
func ownClass(own bool) lineClass {
	if own {
		return classReceiver
	}
	return classSender
}

func alertFor(err error) string {
	var ce *roomchat.ChatError
	if !errors.As(err, &ce) {
		return err.Error()
	}
	msg := capitalize(ce.Message)
	if ce.Wrapped != nil {
		msg += ": " + ce.Wrapped.Error()
	}
	return msg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/roomchat-go/roomchat"
)

// Messages the client delivers into the program.
type (
	frameMsg  struct{ frame roomchat.Frame }
	rosterMsg struct{ roster roomchat.Roster }
	noticeMsg struct{ notice roomchat.Notice }
	stateMsg  struct{ event roomchat.StateEvent }
)

// Results of commands the model issued.
type (
	connectedMsg struct{ err error }
	sentMsg      struct{ err error }
	loggedOutMsg struct{ quit bool }
)

// Bridge forwards client callbacks into a running program. Pass
// (*tea.Program).Send. Callbacks run on client goroutines, so every client
// call that can fire one is issued from a tea.Cmd, never from Update.
func Bridge(c *roomchat.Client, send func(tea.Msg)) {
	onFrame := func(f roomchat.Frame) { send(frameMsg{frame: f}) }
	c.OnChat(onFrame)
	c.OnPrivate(onFrame)
	c.OnSystem(onFrame)
	c.OnImage(onFrame)
	c.OnRoster(func(r roomchat.Roster) { send(rosterMsg{roster: r}) })
	c.OnNotice(func(n roomchat.Notice) { send(noticeMsg{notice: n}) })
	c.OnStateChanged(func(ev roomchat.StateEvent) { send(stateMsg{event: ev}) })
}

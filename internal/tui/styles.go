package tui

import "github.com/charmbracelet/lipgloss"

// lineClass is the presentation class of a message pane line.
type lineClass int

const (
	classReceiver lineClass = iota
	classSender
	classPrivate
	classSystem
	classError
)

func (c lineClass) String() string {
	switch c {
	case classSender:
		return "sender"
	case classPrivate:
		return "private-message"
	case classSystem:
		return "system-message"
	case classError:
		return "error"
	default:
		return "receiver"
	}
}

var (
	accent  = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#6b7280")
	danger  = lipgloss.Color("#e53935")
	private = lipgloss.Color("#ab47bc")
	info    = lipgloss.Color("#2196F3")
)

// Styles groups every lipgloss style the UI renders with.
type Styles struct {
	Receiver lipgloss.Style
	Sender   lipgloss.Style
	Private  lipgloss.Style
	System   lipgloss.Style
	Error    lipgloss.Style

	Title        lipgloss.Style
	Alert        lipgloss.Style
	Status       lipgloss.Style
	Sidebar      lipgloss.Style
	RosterHeader lipgloss.Style
	RosterSelf   lipgloss.Style
	RosterPicked lipgloss.Style
}

// DefaultStyles returns the stock palette.
func DefaultStyles() Styles {
	return Styles{
		Receiver: lipgloss.NewStyle().Foreground(accent).Align(lipgloss.Right),
		Sender:   lipgloss.NewStyle(),
		Private:  lipgloss.NewStyle().Foreground(private).Italic(true),
		System:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		Error:    lipgloss.NewStyle().Foreground(danger).Bold(true),

		Title:  lipgloss.NewStyle().Bold(true).Foreground(info).MarginBottom(1),
		Alert:  lipgloss.NewStyle().Foreground(danger).Bold(true),
		Status: lipgloss.NewStyle().Foreground(muted),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		RosterHeader: lipgloss.NewStyle().Bold(true).Foreground(info),
		RosterSelf:   lipgloss.NewStyle().Foreground(muted),
		RosterPicked: lipgloss.NewStyle().Foreground(accent).Bold(true),
	}
}

func (s Styles) line(c lineClass) lipgloss.Style {
	switch c {
	case classSender:
		return s.Sender
	case classPrivate:
		return s.Private
	case classSystem:
		return s.System
	case classError:
		return s.Error
	default:
		return s.Receiver
	}
}

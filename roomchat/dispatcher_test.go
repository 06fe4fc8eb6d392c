package roomchat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRoutesByKind(t *testing.T) {
	var d Dispatcher
	var chats, privates, systems, images []Frame
	var rosters []Roster
	d.SetOnChat(func(f Frame) { chats = append(chats, f) })
	d.SetOnPrivate(func(f Frame) { privates = append(privates, f) })
	d.SetOnSystem(func(f Frame) { systems = append(systems, f) })
	d.SetOnImage(func(f Frame) { images = append(images, f) })
	d.SetOnRoster(func(r Roster) { rosters = append(rosters, r) })

	snapshot := NewRoster([]string{"alice"})
	for _, raw := range []string{
		"alice: hi",
		"🔒 Privado de bob: psst",
		"🚀 carol entrou na sala!",
		"img:/files/alice_1.png",
		"👥 Online: alice",
	} {
		d.Dispatch(ParseFrame(raw), snapshot)
	}

	assert.Len(t, chats, 1)
	assert.Len(t, privates, 1)
	assert.Len(t, systems, 1)
	assert.Len(t, images, 1)
	if assert.Len(t, rosters, 1) {
		assert.Equal(t, []string{"alice"}, rosters[0].Names())
	}
}

func TestDispatcherWithoutCallbacks(t *testing.T) {
	var d Dispatcher
	assert.NotPanics(t, func() {
		d.Dispatch(ParseFrame("alice: hi"), Roster{})
		d.Dispatch(ParseFrame("👥 Online:"), Roster{})
		d.fireNotice(Notice{})
		d.fireState(StateEvent{})
		d.fireError(errors.New("boom"))
	})
}

func TestDispatcherCallbackMaySwapHandlers(t *testing.T) {
	var d Dispatcher
	calls := 0
	d.SetOnChat(func(Frame) {
		calls++
		d.SetOnChat(nil)
	})
	d.Dispatch(ParseFrame("a: 1"), Roster{})
	d.Dispatch(ParseFrame("a: 2"), Roster{})
	assert.Equal(t, 1, calls)
}

func TestDispatcherIgnoresNilError(t *testing.T) {
	var d Dispatcher
	called := false
	d.SetOnError(func(error) { called = true })
	d.fireError(nil)
	assert.False(t, called)
}

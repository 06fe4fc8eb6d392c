package roomchat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRosterRender(t *testing.T) {
	r := NewRoster([]string{"alice", "bob"})
	assert.Equal(t, []string{"alice", "bob (you)"}, r.Render("bob"))
	assert.Equal(t, []string{"alice", "bob"}, r.Render(""))
	assert.Equal(t, 2, r.Len())
}

func TestRosterOthers(t *testing.T) {
	r := NewRoster([]string{"alice", "", "bob", "carol"})
	assert.Equal(t, []string{"alice", "carol"}, r.Others("bob"))
	assert.Empty(t, NewRoster([]string{"bob"}).Others("bob"))
}

func TestRosterUsersIsCopy(t *testing.T) {
	r := NewRoster([]string{"alice"})
	users := r.Users()
	users[0].DisplayName = "mallory"
	assert.Equal(t, []string{"alice"}, r.Names())
}

func TestZeroRoster(t *testing.T) {
	var r Roster
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Names())
	assert.Empty(t, r.Others("alice"))
}

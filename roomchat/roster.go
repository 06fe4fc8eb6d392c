package roomchat

// OnlineUser is a roster entry. The display name is its only identity.
type OnlineUser struct {
	DisplayName string
}

// Roster is a full snapshot of who is in the room. Every roster frame
// replaces the previous snapshot.
type Roster struct {
	users []OnlineUser
}

// NewRoster builds a snapshot in server order. Duplicates are kept.
func NewRoster(names []string) Roster {
	users := make([]OnlineUser, 0, len(names))
	for _, n := range names {
		users = append(users, OnlineUser{DisplayName: n})
	}
	return Roster{users: users}
}

// Len returns the number of entries.
func (r Roster) Len() int { return len(r.users) }

// Users returns a copy of the entries.
func (r Roster) Users() []OnlineUser {
	out := make([]OnlineUser, len(r.users))
	copy(out, r.users)
	return out
}

// Names returns the display names in server order.
func (r Roster) Names() []string {
	out := make([]string, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.DisplayName)
	}
	return out
}

// Render returns display labels, marking self with " (you)".
func (r Roster) Render(self string) []string {
	out := make([]string, 0, len(r.users))
	for _, u := range r.users {
		if self != "" && u.DisplayName == self {
			out = append(out, u.DisplayName+" (you)")
			continue
		}
		out = append(out, u.DisplayName)
	}
	return out
}

// Others returns everyone except self: the candidates for a private message.
func (r Roster) Others(self string) []string {
	out := make([]string, 0, len(r.users))
	for _, u := range r.users {
		if u.DisplayName == self || u.DisplayName == "" {
			continue
		}
		out = append(out, u.DisplayName)
	}
	return out
}

package resources

import (
	"context"
	"net/url"
	"time"
)

// TeamMember is a member of the public team page.
type TeamMember struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	Designation    string    `json:"designation"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	ProfilePicture string    `json:"profilePicture"`
	Bio            string    `json:"bio"`
	Keyword        string    `json:"keyword"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TeamMemberInput carries the editable team member fields.
type TeamMemberInput struct {
	Name        string `json:"name,omitempty"`
	Designation string `json:"designation,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Keyword     string `json:"keyword,omitempty"`
}

// TeamMembers manages the team roster.
type TeamMembers struct {
	service
}

// List returns the current roster.
func (t *TeamMembers) List(ctx context.Context, params url.Values) (Roster, error) {
	members, err := readData[[]TeamMember](ctx, t.service, params)
	if err != nil {
		return Roster{}, err
	}
	return NewRoster(members...), nil
}

// Create adds a team member.
func (t *TeamMembers) Create(ctx context.Context, in TeamMemberInput) (TeamMember, error) {
	env, err := writeData[TeamMember](ctx, t.service, OpCreate, writeArgs{body: in})
	return env.Data, err
}

// Update edits team member id.
func (t *TeamMembers) Update(ctx context.Context, id string, in TeamMemberInput) (TeamMember, error) {
	env, err := writeData[TeamMember](ctx, t.service, OpUpdate, writeArgs{id: id, body: in})
	return env.Data, err
}

// Delete removes team member id.
func (t *TeamMembers) Delete(ctx context.Context, id string) error {
	_, err := t.write(ctx, OpDelete, writeArgs{id: id, body: map[string]string{"id": id}})
	return err
}

// Roster is an immutable list of team members. Every method that changes
// the list returns a new Roster and leaves the receiver as it was.
type Roster struct {
	members []TeamMember
}

// NewRoster copies members into a roster.
func NewRoster(members ...TeamMember) Roster {
	return Roster{members: append([]TeamMember(nil), members...)}
}

// Len returns the number of members.
func (r Roster) Len() int {
	return len(r.members)
}

// Members returns a copy of the members.
func (r Roster) Members() []TeamMember {
	return append([]TeamMember(nil), r.members...)
}

// Find returns the member with id.
func (r Roster) Find(id string) (TeamMember, bool) {
	for _, m := range r.members {
		if m.ID == id {
			return m, true
		}
	}
	return TeamMember{}, false
}

// Add returns a roster with m appended.
func (r Roster) Add(m TeamMember) Roster {
	out := make([]TeamMember, 0, len(r.members)+1)
	out = append(out, r.members...)
	return Roster{members: append(out, m)}
}

// Replace returns a roster where the member sharing m's ID is swapped for m.
// The receiver is returned unchanged when no member matches.
func (r Roster) Replace(m TeamMember) Roster {
	for i, cur := range r.members {
		if cur.ID == m.ID {
			out := r.Members()
			out[i] = m
			return Roster{members: out}
		}
	}
	return r
}

// Remove returns a roster without the member with id.
func (r Roster) Remove(id string) Roster {
	return r.Filter(func(m TeamMember) bool { return m.ID != id })
}

// Filter returns a roster of the members keep accepts.
func (r Roster) Filter(keep func(TeamMember) bool) Roster {
	out := make([]TeamMember, 0, len(r.members))
	for _, m := range r.members {
		if keep(m) {
			out = append(out, m)
		}
	}
	return Roster{members: out}
}

// Reconcile returns the server's view. Local edits are never merged back in,
// so an optimistic change that the server rejected disappears.
func (r Roster) Reconcile(server Roster) Roster {
	return NewRoster(server.members...)
}

package models

import "time"

// Group represents a roster of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Trip to Lisbon").
	Name string

	// Members is the roster of the group.
	Members []Member

	// CreatedAt is when the group was created.
	CreatedAt time.Time
}

// Member is a user as seen from a group roster.
type Member struct {
	// ID is the user ID of the member.
	ID string

	// DisplayName is the name shown next to balances and transfers.
	DisplayName string
}

// HasMember reports whether memberID is on the roster.
func (g *Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// MemberIDs returns the roster IDs in roster order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// DisplayNames maps member ID to display name.
func (g *Group) DisplayNames() map[string]string {
	names := make(map[string]string, len(g.Members))
	for _, m := range g.Members {
		names[m.ID] = m.DisplayName
	}
	return names
}

package domain

import "time"

// Role is the permission level a user holds, either platform-wide or
// inside a single team.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// Valid reports whether the role is one of the two accepted values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// MaxTeamsPerUser caps how many teams a single user may belong to.
const MaxTeamsPerUser = 5

// Membership links a user to a team with a role. An entry with an empty
// TeamID is the platform-level role granted at signup.
type Membership struct {
	TeamID string `json:"teamId,omitempty"`
	Role   Role   `json:"role"`
}

// User represents a platform account. The memberships slice is owned by
// the user document and is only ever mutated through it.
type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash []byte       `json:"-"`
	Teams        []Membership `json:"teams"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	roleByTeam map[string]Role
}

// RoleIn returns the role the user holds in the given team, if any.
func (u *User) RoleIn(teamID string) (Role, bool) {
	if u.roleByTeam == nil {
		u.roleByTeam = make(map[string]Role, len(u.Teams))
		for _, m := range u.Teams {
			if m.TeamID != "" {
				u.roleByTeam[m.TeamID] = m.Role
			}
		}
	}
	role, ok := u.roleByTeam[teamID]
	return role, ok
}

// IsMemberOf reports whether the user has any membership in the team.
func (u *User) IsMemberOf(teamID string) bool {
	_, ok := u.RoleIn(teamID)
	return ok
}

// HasPlatformRole reports whether any membership entry carries the role,
// regardless of which team (or no team) it is bound to.
func (u *User) HasPlatformRole(role Role) bool {
	for _, m := range u.Teams {
		if m.Role == role {
			return true
		}
	}
	return false
}

// HasPlatformGrant reports whether the user holds the role through a
// platform-level entry, one not bound to any team. Signup creates exactly
// one such entry.
func (u *User) HasPlatformGrant(role Role) bool {
	for _, m := range u.Teams {
		if m.TeamID == "" && m.Role == role {
			return true
		}
	}
	return false
}

// Roles returns every role the user holds, in membership order. These are
// the roles embedded in access token claims.
func (u *User) Roles() []string {
	roles := make([]string, 0, len(u.Teams))
	for _, m := range u.Teams {
		roles = append(roles, string(m.Role))
	}
	return roles
}

// TeamIDs returns the ids of every team the user belongs to, skipping the
// platform-level entry.
func (u *User) TeamIDs() []string {
	ids := make([]string, 0, len(u.Teams))
	for _, m := range u.Teams {
		if m.TeamID != "" {
			ids = append(ids, m.TeamID)
		}
	}
	return ids
}

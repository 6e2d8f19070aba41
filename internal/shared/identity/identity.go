package identity

import "strings"

// Role is the closed set of caller roles resolved by the authentication
// collaborator. Unknown values degrade to RoleUser.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Identity carries the caller context for every core operation. It is always
// passed explicitly; core code never reads ambient session state.
type Identity struct {
	UserID  string
	Role    Role
	GroupID *string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Group returns the caller's group id and whether one is set.
func (i Identity) Group() (string, bool) {
	if i.GroupID == nil || strings.TrimSpace(*i.GroupID) == "" {
		return "", false
	}
	return *i.GroupID, true
}

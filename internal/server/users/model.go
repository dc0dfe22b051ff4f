package users

import "time"

// Role is a coarse-grained privilege tag from a closed set.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleSuperUser Role = "superUser"
)

// Valid reports whether r belongs to the known role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperUser:
		return true
	}
	return false
}

// User is the identity record persisted by the credential store.
// PasswordHash is never serialized outward.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	FullName     string    `json:"fullName"`
	IsActive     bool      `json:"isActive"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"-"`
}

// HasAnyRole reports whether the user holds at least one of the required
// roles. An empty requirement is satisfied by any user.
func (u *User) HasAnyRole(required ...Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, need := range required {
		for _, have := range u.Roles {
			if have == need {
				return true
			}
		}
	}
	return false
}

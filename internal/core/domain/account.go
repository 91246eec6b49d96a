package domain

import "time"

// Role is the closed set of actor roles.
type Role string

const (
	RoleGuest        Role = "guest"
	RoleClient       Role = "client"
	RolePractitioner Role = "practitioner"
	RoleAdmin        Role = "admin"
)

// ParseRole maps a raw role string to a Role. Unknown values are rejected.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleGuest, RoleClient, RolePractitioner, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// Account is the actor resolved by the identity provider.
type Account struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Guest is the sentinel for an unauthenticated session. Guests never own records.
var Guest = Account{Role: RoleGuest, Name: "Guest"}

// IsGuest reports whether the account may not own or mutate records.
func (a Account) IsGuest() bool {
	return a.Role == RoleGuest || a.Role == "" || a.ID == ""
}

func (a Account) IsAdmin() bool { return a.Role == RoleAdmin && a.ID != "" }

// Credentials is the persisted account record owned by the identity collaborator.
type Credentials struct {
	Account
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

package model

type Role string

const (
	RoleOwner  Role = "owner"
	RoleSitter Role = "sitter"
	RoleSystem Role = "system"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleSitter || r == RoleSystem
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (a Actor) IsSystem() bool {
	return a.Role == RoleSystem
}

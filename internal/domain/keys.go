package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
)

// Roles known to the marketplace.
const (
	RoleSponsor = "sponsor"
	RoleMaid    = "maid"
	RoleAdmin   = "admin"
)

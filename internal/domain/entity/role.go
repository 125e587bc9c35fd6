package entity

// Role names carried in access tokens.
const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
)

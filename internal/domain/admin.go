package domain

import "time"

// AdminRole enumerates internal operator roles.
type AdminRole string

const (
	AdminRoleStaff  AdminRole = "STAFF"
	AdminRoleWarden AdminRole = "WARDEN"
	AdminRoleAdmin  AdminRole = "ADMIN"
)

// AdminMember models hostel staff who triage and act on complaints.
type AdminMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AdminRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

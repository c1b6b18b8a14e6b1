package domain

import "time"

// SubjectType differentiates student vs admin tokens.
type SubjectType string

const (
	SubjectTypeStudent SubjectType = "STUDENT"
	SubjectTypeAdmin   SubjectType = "ADMIN"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	Role      *AdminRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}

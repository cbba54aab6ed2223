package models

// User is a provisioned login. PasswordHash is a bcrypt hash and Role names
// the access tier the user may read.
type User struct {
	Login        string
	PasswordHash string
	Role         AccessTier
}

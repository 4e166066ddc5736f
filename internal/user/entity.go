// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                       string     `db:"id"`
	Email                    string     `db:"email"`
	PasswordHash             string     `db:"password_hash"`
	FirstName                string     `db:"first_name"`
	LastName                 string     `db:"last_name"`
	Role                     string     `db:"role"`
	IsEmailVerified          bool       `db:"is_email_verified"`
	EmailVerificationToken   *string    `db:"email_verification_token"`
	EmailVerificationExpires *time.Time `db:"email_verification_expires"`
	PasswordResetToken       *string    `db:"password_reset_token"`
	PasswordResetExpires     *time.Time `db:"password_reset_expires"`
	LastLoginAt              *time.Time `db:"last_login_at"`
	IsActive                 bool       `db:"is_active"`
	CreatedAt                time.Time  `db:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
	ErrUnknownRole   = errors.New("unknown role")
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var roles = []Role{RoleAdmin, RoleManager, RoleTeacher, RoleStudent}

func Roles() []Role {
	return append([]Role(nil), roles...)
}

// ParseRole maps any casing of a known role name onto its canonical value.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)

	for _, r := range roles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}

	return "", ErrUnknownRole
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Is compares roles case-insensitively so rows written before roles were
// canonicalized ("Admin") still match.
func (r Role) Is(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r.Is(a) {
			return true
		}
	}

	return false
}

type ListUsersFilter struct {
	Limit  int
	Offset int
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=1,bcryptlen"`
	Role     string `json:"role" binding:"required,role"`
}

// UpdateUserRequest is a partial update: nil fields are left untouched.
type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=1,max=64"`
	Email    *string `json:"email" binding:"omitempty,email,max=254"`
	Password *string `json:"password" binding:"omitempty,min=1,bcryptlen"`
	Role     *string `json:"role" binding:"omitempty,role"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=1,bcryptlen"`
}

// Patch is what the store applies. The password arrives already hashed.
type Patch struct {
	Username     *string
	Email        *string
	Role         *Role
	PasswordHash *string
}

func (p Patch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Role == nil && p.PasswordHash == nil
}

func (p Patch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
}

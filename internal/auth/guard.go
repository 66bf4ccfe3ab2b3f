package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/schoolhub/internal/domain/user"
)

// PrivilegedRoles may mutate schools and delete users.
var PrivilegedRoles = []user.Role{user.RoleAdmin, user.RoleManager}

type TokenValidator interface {
	Validate(token string) (string, error)
}

// Guard turns a bearer token into the acting user and checks roles.
type Guard struct {
	tokens TokenValidator
	users  UserFinder
}

func NewGuard(tokens TokenValidator, users UserFinder) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// ResolveCurrentUser loads the user named by the token subject. The lookup
// happens on every call, so a user deleted after login is rejected.
func (g *Guard) ResolveCurrentUser(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrUnauthenticated
	}

	username, err := g.tokens.Validate(token)
	if err != nil {
		return user.User{}, ErrUnauthenticated
	}

	u, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnauthenticated
		}

		return user.User{}, fmt.Errorf("resolve current user: %w", err)
	}

	return u, nil
}

func (g *Guard) RequireRole(u user.User, allowed ...user.Role) error {
	if !u.Role.In(allowed...) {
		return ErrUnauthorized
	}

	return nil
}

// IsPrivileged reports whether u holds one of PrivilegedRoles.
func IsPrivileged(u user.User) bool {
	return u.Role.In(PrivilegedRoles...)
}

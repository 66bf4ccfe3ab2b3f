package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/security"
)

type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type Authenticator struct {
	users  UserFinder
	hasher security.Hasher

	// compared against when the username is unknown so both failure
	// branches pay for one bcrypt comparison
	dummyHash string
}

func NewAuthenticator(users UserFinder, hasher security.Hasher) (*Authenticator, error) {
	dummy, err := hasher.Hash("schoolhub-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("prepare authenticator: %w", err)
	}

	return &Authenticator{
		users:     users,
		hasher:    hasher,
		dummyHash: dummy,
	}, nil
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords both return ErrAuthenticationFailed.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	u, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			a.hasher.Verify(password, a.dummyHash)
			return user.User{}, ErrAuthenticationFailed
		}

		return user.User{}, fmt.Errorf("authenticate: %w", err)
	}

	if !a.hasher.Verify(password, u.PasswordHash) {
		return user.User{}, ErrAuthenticationFailed
	}

	return u, nil
}

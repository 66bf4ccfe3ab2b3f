package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/schoolhub/internal/config"
	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/security"
)

type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the configured bootstrap admin if it does not exist yet.
func EnsureAdminUser(ctx context.Context, users AdminStore, hasher security.Hasher, cfg config.AdminConfig, log *slog.Logger) error {
	if cfg.Username == "" || cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	// check if the user exists
	_, err := users.GetByUsername(ctx, cfg.Username)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := hasher.Hash(cfg.Password)

	if err != nil {
		return err
	}

	u, err := users.Create(ctx, user.User{
		Username:     cfg.Username,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
	})

	if err != nil {
		return err
	}

	log.Info("seeded admin user", "username", u.Username, "user_id", u.ID)

	return nil
}

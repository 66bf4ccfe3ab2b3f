package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password_hash, role, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	obs  DBObserver
}

func NewUsersRepo(pool *pgxpool.Pool, obs DBObserver) *UsersRepo {
	return &UsersRepo{pool: pool, obs: observerOrNoop(obs)}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	var out user.User

	err := r.obs.ObserveDB("users.create", func() error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO users (username, email, password_hash, role)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns,
			u.Username, u.Email, u.PasswordHash, string(u.Role),
		)

		var err error
		out, err = scanUser(row)
		return err
	})
	if err != nil {
		return user.User{}, mapUserErr(err)
	}

	return out, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `WHERE id = $1`, id)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_username", `WHERE username = $1`, username)
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB(op, func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, arg))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListUsersFilter) ([]user.User, int, error) {
	output := make([]user.User, 0, filter.Limit)
	total := 0

	err := r.obs.ObserveDB("users.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+`, COUNT(*) OVER() AS total
			FROM users
			ORDER BY id ASC
			LIMIT $1 OFFSET $2`,
			filter.Limit, filter.Offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u user.User
			var role string

			err = rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt, &total)
			if err != nil {
				return err
			}

			u.Role = user.Role(role)
			output = append(output, u)
		}

		if err := rows.Err(); err != nil {
			return err
		}

		// an empty page past the end carries no window count
		if len(output) == 0 && filter.Offset > 0 {
			return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

// Update applies patch under a row lock so concurrent partial updates do not
// overwrite each other's fields.
func (r *UsersRepo) Update(ctx context.Context, id int64, patch user.Patch) (user.User, error) {
	var out user.User

	err := r.obs.ObserveDB("users.update", func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		current, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		patch.Apply(&current)

		out, err = scanUser(tx.QueryRow(ctx,
			`UPDATE users
				SET username = $2,
					email = $3,
					password_hash = $4,
					role = $5,
					updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id, current.Username, current.Email, current.PasswordHash, string(current.Role),
		))
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return user.User{}, mapUserErr(err)
	}

	return out, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) (user.User, error) {
	var out user.User

	err := r.obs.ObserveDB("users.delete", func() error {
		var err error
		out, err = scanUser(r.pool.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return out, nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var role string

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}

	u.Role = user.Role(role)

	return u, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrNotFound
	}

	if constraint, ok := uniqueConstraint(err); ok {
		switch constraint {
		case constraintUsersUsername:
			return user.ErrUsernameTaken
		case constraintUsersEmail:
			return user.ErrEmailTaken
		default:
			return fmt.Errorf("unique violation on %s: %w", constraint, err)
		}
	}

	return err
}

package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	constraintUsersUsername = "users_username_key"
	constraintUsersEmail    = "users_email_key"
	constraintSchoolsName   = "schools_name_key"
)

// DBObserver records latency and error class per logical operation.
type DBObserver interface {
	ObserveDB(op string, fn func() error) error
}

type noopObserver struct{}

func (noopObserver) ObserveDB(op string, fn func() error) error { return fn() }

func observerOrNoop(obs DBObserver) DBObserver {
	if obs == nil {
		return noopObserver{}
	}

	return obs
}

func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}

	return "", false
}

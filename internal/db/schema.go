package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names are matched by the postgres repos to map unique
// violations onto domain errors.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS schools (
		id                               BIGSERIAL PRIMARY KEY,
		name                             TEXT NOT NULL,
		level                            TEXT NOT NULL,
		location                         TEXT NOT NULL,
		student_count                    INTEGER NOT NULL DEFAULT 0 CHECK (student_count >= 0),
		student_age_range                TEXT NOT NULL,
		student_performance_avg          TEXT NOT NULL,
		male_female_ratio                TEXT NOT NULL,
		male_female_dropout_ratio        TEXT NOT NULL,
		teacher_count                    INTEGER NOT NULL DEFAULT 0 CHECK (teacher_count >= 0),
		teacher_phd_count                INTEGER NOT NULL DEFAULT 0,
		teacher_degree_count             INTEGER NOT NULL DEFAULT 0,
		teacher_diploma_count            INTEGER NOT NULL DEFAULT 0,
		teacher_cert_count               INTEGER NOT NULL DEFAULT 0,
		teacher_experience_1_3_count     INTEGER NOT NULL DEFAULT 0,
		teacher_experience_4_6_count     INTEGER NOT NULL DEFAULT 0,
		teacher_experience_7_10_count    INTEGER NOT NULL DEFAULT 0,
		teacher_experience_10_plus_count INTEGER NOT NULL DEFAULT 0,
		created_at                       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT schools_name_key UNIQUE (name)
	)`,
}

// EnsureSchema creates the tables on first boot. It is idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}

	return nil
}

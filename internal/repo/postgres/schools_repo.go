package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/schoolhub/internal/domain/school"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schoolColumns = `id, name, level, location,
	student_count, student_age_range, student_performance_avg,
	male_female_ratio, male_female_dropout_ratio,
	teacher_count, teacher_phd_count, teacher_degree_count, teacher_diploma_count, teacher_cert_count,
	teacher_experience_1_3_count, teacher_experience_4_6_count,
	teacher_experience_7_10_count, teacher_experience_10_plus_count,
	created_at, updated_at`

type SchoolsRepo struct {
	pool *pgxpool.Pool
	obs  DBObserver
}

func NewSchoolsRepo(pool *pgxpool.Pool, obs DBObserver) *SchoolsRepo {
	return &SchoolsRepo{pool: pool, obs: observerOrNoop(obs)}
}

func (r *SchoolsRepo) Create(ctx context.Context, req school.CreateSchoolRequest) (school.School, error) {
	s := school.NewFromCreateRequest(req)
	var out school.School

	err := r.obs.ObserveDB("schools.create", func() error {
		var err error
		out, err = scanSchool(r.pool.QueryRow(ctx,
			`INSERT INTO schools (
				name, level, location,
				student_count, student_age_range, student_performance_avg,
				male_female_ratio, male_female_dropout_ratio,
				teacher_count, teacher_phd_count, teacher_degree_count, teacher_diploma_count, teacher_cert_count,
				teacher_experience_1_3_count, teacher_experience_4_6_count,
				teacher_experience_7_10_count, teacher_experience_10_plus_count,
				created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			RETURNING `+schoolColumns,
			s.Name, s.Level, s.Location,
			s.StudentCount, s.StudentAgeRange, s.StudentPerformanceAvg,
			s.MaleFemaleRatio, s.MaleFemaleDropoutRatio,
			s.TeacherCount, s.TeacherPhDCount, s.TeacherDegreeCount, s.TeacherDiplomaCount, s.TeacherCertCount,
			s.TeacherExperience1To3Count, s.TeacherExperience4To6Count,
			s.TeacherExperience7To10Count, s.TeacherExperience10PlusCount,
			s.CreatedAt, s.UpdatedAt,
		))
		return err
	})
	if err != nil {
		return school.School{}, mapSchoolErr(err)
	}

	return out, nil
}

func (r *SchoolsRepo) List(ctx context.Context, filter school.ListSchoolsFilter) ([]school.School, int, error) {
	output := make([]school.School, 0, filter.Limit)
	total := 0

	err := r.obs.ObserveDB("schools.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+schoolColumns+`, COUNT(*) OVER() AS total
			FROM schools
			ORDER BY id ASC
			LIMIT $1 OFFSET $2`,
			filter.Limit, filter.Offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var s school.School

			dest := append(schoolDest(&s), &total)
			if err := rows.Scan(dest...); err != nil {
				return err
			}

			output = append(output, s)
		}

		if err := rows.Err(); err != nil {
			return err
		}

		// an empty page past the end carries no window count
		if len(output) == 0 && filter.Offset > 0 {
			return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM schools`).Scan(&total)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *SchoolsRepo) GetByID(ctx context.Context, id int64) (school.School, error) {
	var s school.School

	err := r.obs.ObserveDB("schools.get_by_id", func() error {
		var err error
		s, err = scanSchool(r.pool.QueryRow(ctx, `SELECT `+schoolColumns+` FROM schools WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return school.School{}, mapSchoolErr(err)
	}

	return s, nil
}

func (r *SchoolsRepo) Update(ctx context.Context, id int64, patch school.Patch) (school.School, error) {
	var out school.School

	err := r.obs.ObserveDB("schools.update", func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		s, err := scanSchool(tx.QueryRow(ctx, `SELECT `+schoolColumns+` FROM schools WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		patch.Apply(&s)

		out, err = scanSchool(tx.QueryRow(ctx,
			`UPDATE schools
				SET name = $2,
					level = $3,
					location = $4,
					student_count = $5,
					student_age_range = $6,
					student_performance_avg = $7,
					male_female_ratio = $8,
					male_female_dropout_ratio = $9,
					teacher_count = $10,
					teacher_phd_count = $11,
					teacher_degree_count = $12,
					teacher_diploma_count = $13,
					teacher_cert_count = $14,
					teacher_experience_1_3_count = $15,
					teacher_experience_4_6_count = $16,
					teacher_experience_7_10_count = $17,
					teacher_experience_10_plus_count = $18,
					updated_at = NOW()
			WHERE id = $1
			RETURNING `+schoolColumns,
			id,
			s.Name, s.Level, s.Location,
			s.StudentCount, s.StudentAgeRange, s.StudentPerformanceAvg,
			s.MaleFemaleRatio, s.MaleFemaleDropoutRatio,
			s.TeacherCount, s.TeacherPhDCount, s.TeacherDegreeCount, s.TeacherDiplomaCount, s.TeacherCertCount,
			s.TeacherExperience1To3Count, s.TeacherExperience4To6Count,
			s.TeacherExperience7To10Count, s.TeacherExperience10PlusCount,
		))
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return school.School{}, mapSchoolErr(err)
	}

	return out, nil
}

// Delete returns the removed row so callers can echo its name back.
func (r *SchoolsRepo) Delete(ctx context.Context, id int64) (school.School, error) {
	var out school.School

	err := r.obs.ObserveDB("schools.delete", func() error {
		var err error
		out, err = scanSchool(r.pool.QueryRow(ctx, `DELETE FROM schools WHERE id = $1 RETURNING `+schoolColumns, id))
		return err
	})
	if err != nil {
		return school.School{}, mapSchoolErr(err)
	}

	return out, nil
}

func schoolDest(s *school.School) []any {
	return []any{
		&s.ID, &s.Name, &s.Level, &s.Location,
		&s.StudentCount, &s.StudentAgeRange, &s.StudentPerformanceAvg,
		&s.MaleFemaleRatio, &s.MaleFemaleDropoutRatio,
		&s.TeacherCount, &s.TeacherPhDCount, &s.TeacherDegreeCount, &s.TeacherDiplomaCount, &s.TeacherCertCount,
		&s.TeacherExperience1To3Count, &s.TeacherExperience4To6Count,
		&s.TeacherExperience7To10Count, &s.TeacherExperience10PlusCount,
		&s.CreatedAt, &s.UpdatedAt,
	}
}

func scanSchool(row pgx.Row) (school.School, error) {
	var s school.School

	if err := row.Scan(schoolDest(&s)...); err != nil {
		return school.School{}, err
	}

	return s, nil
}

func mapSchoolErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return school.ErrNotFound
	}

	if constraint, ok := uniqueConstraint(err); ok && constraint == constraintSchoolsName {
		return school.ErrNameTaken
	}

	return err
}

package jobs

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"demoreel/internal/httpkit"
	"demoreel/internal/pkg/errors"
)

//go:embed schema.sql
var schema string

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the jobs table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "jobs.EnsureSchema", "create schema")
	}
	return nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *Repository) Create(ctx context.Context, j *Record) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO video_jobs (id, name, status, source_url, narration_text, target_seconds, voice, profile)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, j.ID, nullIfEmpty(j.Name), string(StatusQueued), j.SourceURL, j.NarrationText,
		j.TargetSeconds, nullIfEmpty(j.Voice), nullIfEmpty(j.Profile),
	).Scan(&j.CreatedAt)
	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "job already exists").WithField("id", j.ID)
		}
		return errors.Wrap(err, "jobs.Create", "insert job")
	}
	j.Status = StatusQueued
	return nil
}

const selectColumns = `
	SELECT id, COALESCE(name,''), status, source_url, narration_text, target_seconds,
	       COALESCE(voice,''), COALESCE(profile,''), COALESCE(output_key,''), COALESCE(output_size,0),
	       COALESCE(error_text,''), created_at, started_at, finished_at
	FROM video_jobs`

func scanRecord(row pgx.Row) (*Record, error) {
	var j Record
	var status string
	err := row.Scan(
		&j.ID, &j.Name, &status, &j.SourceURL, &j.NarrationText, &j.TargetSeconds,
		&j.Voice, &j.Profile, &j.OutputKey, &j.OutputSize,
		&j.ErrorText, &j.CreatedAt, &j.StartedAt, &j.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Status = Status(status)
	return &j, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Record, error) {
	j, err := scanRecord(r.db.QueryRow(ctx, selectColumns+` WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("job", id)
		}
		return nil, errors.Wrap(err, "jobs.Get", "select job")
	}
	return j, nil
}

// List returns the newest jobs, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status Status, limit int) ([]Record, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != "" {
		rows, err = r.db.Query(ctx, selectColumns+` WHERE status=$1 ORDER BY created_at DESC LIMIT $2`, string(status), limit)
	} else {
		rows, err = r.db.Query(ctx, selectColumns+` ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, errors.Wrap(err, "jobs.List", "query jobs")
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		j, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "jobs.List", "scan job")
		}
		out = append(out, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "jobs.List", "iterate jobs")
	}
	return out, nil
}

func (r *Repository) MarkRunning(ctx context.Context, id string) error {
	return r.exec(ctx, "jobs.MarkRunning", id,
		`UPDATE video_jobs SET status='RUNNING', started_at=NOW(), finished_at=NULL, error_text=NULL WHERE id=$1`,
		id,
	)
}

func (r *Repository) MarkDone(ctx context.Context, id, outputKey string, size int64) error {
	return r.exec(ctx, "jobs.MarkDone", id,
		`UPDATE video_jobs SET status='DONE', finished_at=NOW(), output_key=$2, output_size=$3 WHERE id=$1`,
		id, outputKey, size,
	)
}

func (r *Repository) MarkFailed(ctx context.Context, id, msg string) error {
	return r.exec(ctx, "jobs.MarkFailed", id,
		`UPDATE video_jobs SET status='FAILED', finished_at=NOW(), error_text=$2 WHERE id=$1`,
		id, Truncate(msg),
	)
}

func (r *Repository) exec(ctx context.Context, op, id, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return errors.Wrap(err, op, "update job")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("job", id)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

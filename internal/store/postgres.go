package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Postgres implements Repository using PostgreSQL.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres connects to url and creates the profiles table if needed.
func NewPostgres(ctx context.Context, url string, logger *zap.Logger) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse database url")
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	r := &Postgres{pool: pool, logger: logger}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	logger.Info("connected to postgresql profile store")
	return r, nil
}

func (r *Postgres) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			name VARCHAR(256) NOT NULL,
			measurements JSONB NOT NULL,
			ease DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_profiles_created_at ON profiles(created_at);
	`
	_, err := r.pool.Exec(ctx, query)
	return err
}

func (r *Postgres) Create(ctx context.Context, req *ProfileRequest) (*Profile, error) {
	p := newProfile(req)
	fields, err := encodeFields(p.Measurements)
	if err != nil {
		return nil, err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO profiles (id, name, measurements, ease, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, fields, p.Ease, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create profile", zap.Error(err))
		return nil, errors.Wrap(err, "create profile")
	}
	r.logger.Debug("created profile", zap.String("id", p.ID))
	return p, nil
}

const selectProfilePg = "SELECT id::text, name, measurements, ease, created_at, updated_at FROM profiles"

func (r *Postgres) Get(ctx context.Context, id string) (*Profile, error) {
	p, err := scanPostgres(r.pool.QueryRow(ctx, selectProfilePg+" WHERE id::text = $1", id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get profile %s", id)
	}
	return p, nil
}

func (r *Postgres) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, selectProfilePg+" ORDER BY created_at DESC, id")
	if err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanPostgres(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan profile")
		}
		profiles = append(profiles, *p)
	}
	return profiles, errors.Wrap(rows.Err(), "list profiles")
}

func (r *Postgres) Update(ctx context.Context, id string, req *ProfileRequest) (*Profile, error) {
	fields, err := encodeFields(req.Measurements)
	if err != nil {
		return nil, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles SET name = $1, measurements = $2, ease = $3, updated_at = $4
		WHERE id::text = $5`,
		req.Name, fields, req.Ease, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "update profile %s", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM profiles WHERE id::text = $1", id)
	if err != nil {
		return errors.Wrapf(err, "delete profile %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Postgres) Close() error {
	r.logger.Info("closing postgresql connection pool")
	r.pool.Close()
	return nil
}

func scanPostgres(row pgx.Row) (*Profile, error) {
	var (
		p      Profile
		fields []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &fields, &p.Ease, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	p.Measurements, err = decodeFields(fields)
	return &p, err
}

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SQLite implements Repository on a local database file.
type SQLite struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLite opens, or creates, the database at path.
func NewSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// one writer; WAL lets readers go on meanwhile
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(err, pragma)
		}
	}

	s := &SQLite{db: db, logger: logger}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init schema")
	}
	logger.Info("opened sqlite profile store", zap.String("path", path))
	return s, nil
}

func (s *SQLite) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		measurements TEXT NOT NULL,
		ease REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_created_at ON profiles(created_at);
	`
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Create(ctx context.Context, req *ProfileRequest) (*Profile, error) {
	p := newProfile(req)
	fields, err := encodeFields(p.Measurements)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO profiles (id, name, measurements, ease, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, fields, p.Ease, stamp(p.CreatedAt), stamp(p.UpdatedAt),
	)
	if err != nil {
		s.logger.Error("failed to create profile", zap.Error(err))
		return nil, errors.Wrap(err, "create profile")
	}
	s.logger.Debug("created profile", zap.String("id", p.ID))
	return p, nil
}

const selectProfile = "SELECT id, name, measurements, ease, created_at, updated_at FROM profiles"

func (s *SQLite) Get(ctx context.Context, id string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, selectProfile+" WHERE id = ?", id)
	p, err := scanSQLite(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get profile %s", id)
	}
	return p, nil
}

func (s *SQLite) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, selectProfile+" ORDER BY created_at DESC, id")
	if err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanSQLite(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan profile")
		}
		profiles = append(profiles, *p)
	}
	return profiles, errors.Wrap(rows.Err(), "list profiles")
}

func (s *SQLite) Update(ctx context.Context, id string, req *ProfileRequest) (*Profile, error) {
	fields, err := encodeFields(req.Measurements)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET name = ?, measurements = ?, ease = ?, updated_at = ? WHERE id = ?",
		req.Name, fields, req.Ease, stamp(time.Now().UTC()), id,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "update profile %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return errors.Wrapf(err, "delete profile %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.logger.Debug("deleted profile", zap.String("id", id))
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLite(row scanner) (*Profile, error) {
	var (
		p                Profile
		fields           string
		created, updated string
	)
	if err := row.Scan(&p.ID, &p.Name, &fields, &p.Ease, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if p.Measurements, err = decodeFields([]byte(fields)); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, errors.Wrap(err, "created_at")
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, errors.Wrap(err, "updated_at")
	}
	return &p, nil
}

// stamp formats t so that text order is time order.
func stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

// Package store keeps named measurement profiles in SQLite or PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/innermond/sloper"
	"github.com/innermond/sloper/internal/config"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no profile has the requested id.
var ErrNotFound = errors.New("profile not found")

// Profile is a named set of body measurements with the ease to draft them at.
type Profile struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Measurements sloper.Fields `json:"measurements"`
	Ease         float64       `json:"ease"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ProfileRequest carries the editable part of a profile.
type ProfileRequest struct {
	Name         string        `json:"name" binding:"required,max=256"`
	Measurements sloper.Fields `json:"measurements" binding:"required"`
	Ease         float64       `json:"ease"`
}

// Repository defines the profile operations.
type Repository interface {
	Create(ctx context.Context, req *ProfileRequest) (*Profile, error)

	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (*Profile, error)

	// List returns every profile, newest first.
	List(ctx context.Context) ([]Profile, error)

	Update(ctx context.Context, id string, req *ProfileRequest) (*Profile, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open connects to the store named by cfg.DatabaseURL.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Repository, error) {
	if cfg.IsPostgres() {
		return NewPostgres(ctx, cfg.DatabaseURL, logger)
	}
	return NewSQLite(ctx, strings.TrimPrefix(cfg.DatabaseURL, "sqlite://"), logger)
}

func newProfile(req *ProfileRequest) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Measurements: req.Measurements,
		Ease:         req.Ease,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func encodeFields(f sloper.Fields) (string, error) {
	b, err := json.Marshal(f)
	return string(b), errors.Wrap(err, "encode measurements")
}

func decodeFields(b []byte) (sloper.Fields, error) {
	var f sloper.Fields
	err := json.Unmarshal(b, &f)
	return f, errors.Wrap(err, "decode measurements")
}

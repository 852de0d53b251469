package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	dbtypes "github.com/PBL-Kelompok-3/newsalyze/internal/db"
	"github.com/PBL-Kelompok-3/newsalyze/pkg/models"
)

// ErrNotFound is returned when a record does not exist or belongs to a
// different owner.
var ErrNotFound = errors.New("not found")

type PgStore struct {
	db *sqlx.DB
}

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: sqlx.NewDb(db, "postgres")}
}

func RunMigrations(db *sql.DB) error {
	initSQL := `
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  username TEXT,
  photo_url TEXT,
  preferred_categories JSONB
);

CREATE TABLE IF NOT EXISTS summaries(
  id UUID PRIMARY KEY,
  owner_id TEXT NOT NULL,
  title TEXT,
  input_text TEXT,
  summary_text TEXT,
  recommendations JSONB,
  is_favorite BOOLEAN DEFAULT FALSE,
  created_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_summaries_owner ON summaries(owner_id, created_at DESC);

CREATE TABLE IF NOT EXISTS shared_summaries(
  share_id TEXT PRIMARY KEY,
  input_text TEXT,
  summary_text TEXT,
  recommendations JSONB,
  created_at TIMESTAMPTZ
);
`
	_, err := db.Exec(initSQL)
	return err
}

// SaveSession inserts or updates a private history row.
func (p *PgStore) SaveSession(s *models.SummarySession) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Recommendations == nil {
		s.Recommendations = models.RecommendationList{}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	stmt := `
INSERT INTO summaries (id, owner_id, title, input_text, summary_text, recommendations, is_favorite, created_at)
VALUES ($1,$2,$3,$4,$5,$6::jsonb,$7,$8)
ON CONFLICT (id) DO UPDATE SET
 title=EXCLUDED.title,
 input_text=EXCLUDED.input_text,
 summary_text=EXCLUDED.summary_text,
 recommendations=EXCLUDED.recommendations,
 is_favorite=EXCLUDED.is_favorite;
`
	_, err := p.db.Exec(stmt, s.ID, s.OwnerID, s.Title, s.InputText, s.SummaryText, s.Recommendations, s.IsFavorite, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert summary id=%s: %w", s.ID, err)
	}
	return nil
}

// ListByOwner returns all of an owner's sessions, newest first.
func (p *PgStore) ListByOwner(ownerID string) ([]*models.SummarySession, error) {
	rows := []*models.SummarySession{}
	query := `
SELECT id, owner_id, title, input_text, summary_text, recommendations, is_favorite, created_at
FROM summaries
WHERE owner_id = $1
ORDER BY created_at DESC
`
	err := p.db.Select(&rows, query, ownerID)
	return rows, err
}

// GetByID fetches one owner-scoped session.
func (p *PgStore) GetByID(id, ownerID string) (*models.SummarySession, error) {
	s := models.SummarySession{}
	query := `
SELECT id, owner_id, title, input_text, summary_text, recommendations, is_favorite, created_at
FROM summaries
WHERE id = $1 AND owner_id = $2
LIMIT 1
`
	err := p.db.Get(&s, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PgStore) Rename(id, ownerID, title string) error {
	res, err := p.db.Exec("UPDATE summaries SET title = $1 WHERE id = $2 AND owner_id = $3", title, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PgStore) Delete(id, ownerID string) error {
	res, err := p.db.Exec("DELETE FROM summaries WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (p *PgStore) ToggleFavorite(id, ownerID string) (bool, error) {
	var fav bool
	err := p.db.Get(&fav,
		"UPDATE summaries SET is_favorite = NOT is_favorite WHERE id = $1 AND owner_id = $2 RETURNING is_favorite",
		id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	return fav, err
}

// SaveShare writes a public share record. Share rows are frozen
// snapshots, never updated in place.
func (p *PgStore) SaveShare(rec *models.ShareRecord) error {
	if rec.Recommendations == nil {
		rec.Recommendations = models.RecommendationList{}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	stmt := `
INSERT INTO shared_summaries (share_id, input_text, summary_text, recommendations, created_at)
VALUES ($1,$2,$3,$4::jsonb,$5)
`
	_, err := p.db.Exec(stmt, rec.ShareID, rec.InputText, rec.SummaryText, rec.Recommendations, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert share id=%s: %w", rec.ShareID, err)
	}
	return nil
}

// GetShare looks up a public share record by its share identifier.
func (p *PgStore) GetShare(shareID string) (*models.ShareRecord, error) {
	rec := models.ShareRecord{}
	query := `
SELECT share_id, input_text, summary_text, recommendations, created_at
FROM shared_summaries
WHERE share_id = $1
LIMIT 1
`
	err := p.db.Get(&rec, query, shareID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (p *PgStore) GetProfile(id string) (*models.UserProfile, error) {
	u := models.UserProfile{}
	err := p.db.Get(&u, "SELECT id, username, photo_url, preferred_categories FROM users WHERE id = $1 LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PgStore) UpsertProfile(u *models.UserProfile) error {
	if u.PreferredCategories == nil {
		u.PreferredCategories = dbtypes.StringSlice{}
	}
	stmt := `
INSERT INTO users (id, username, photo_url, preferred_categories)
VALUES ($1,$2,$3,$4::jsonb)
ON CONFLICT (id) DO UPDATE SET
 username=EXCLUDED.username,
 photo_url=EXCLUDED.photo_url,
 preferred_categories=EXCLUDED.preferred_categories;
`
	_, err := p.db.Exec(stmt, u.ID, u.Username, u.PhotoURL, u.PreferredCategories)
	if err != nil {
		return fmt.Errorf("upsert user id=%s: %w", u.ID, err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	dbtypes "github.com/PBL-Kelompok-3/newsalyze/internal/db"
)

// Recommendation is one related-article candidate returned by the
// recommendation service, enriched with a preview image URL.
// Immutable once attached to a session.
type Recommendation struct {
	ArticleID       string  `json:"article_id"`
	Category        string  `json:"category"`
	SimilarityScore float64 `json:"similarity_score"`
	SourceURL       string  `json:"source_url"`
	ImageURL        string  `json:"image_url,omitempty"`
}

// RecommendationList stores an ordered recommendation sequence in a
// jsonb column. Same Scanner/Valuer contract as dbtypes.StringSlice.
type RecommendationList []Recommendation

// Scan implements sql.Scanner
func (r *RecommendationList) Scan(src interface{}) error {
	if r == nil {
		return fmt.Errorf("models: Scan on nil *RecommendationList")
	}
	if src == nil {
		*r = RecommendationList{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan type %T into RecommendationList", src)
	}
	var out []Recommendation
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*r = out
	return nil
}

// Value implements driver.Valuer
func (r RecommendationList) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Recommendation(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// SummarySession is one input-to-summary interaction, stored in the
// owner's private history. InputText and SummaryText are always
// non-empty before the record is persisted; Recommendations may be
// empty (enrichment is best-effort).
type SummarySession struct {
	ID              string             `db:"id" json:"id"`
	OwnerID         string             `db:"owner_id" json:"owner_id,omitempty"`
	Title           string             `db:"title" json:"title"`
	InputText       string             `db:"input_text" json:"input_text"`
	SummaryText     string             `db:"summary_text" json:"summary_text"`
	Recommendations RecommendationList `db:"recommendations" json:"recommendations"`
	IsFavorite      bool               `db:"is_favorite" json:"is_favorite"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
}

// ShareRecord is the public, unauthenticated-readable copy of a
// session, keyed by a random share identifier. It is a frozen
// snapshot with its own lifecycle: deleting or renaming the private
// session never touches it.
type ShareRecord struct {
	ShareID         string             `db:"share_id" json:"share_id"`
	InputText       string             `db:"input_text" json:"input_text"`
	SummaryText     string             `db:"summary_text" json:"summary_text"`
	Recommendations RecommendationList `db:"recommendations" json:"recommendations"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
}

// History buckets, recomputed on every read. Favorite overrides
// recency.
const (
	BucketFavorite = "favorite"
	BucketToday    = "today"
	BucketLastWeek = "lastWeek"
	BucketOlder    = "older"
)

// HistoryItem is one sidebar entry derived from a stored session.
type HistoryItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	IsFavorite bool      `json:"is_favorite"`
	Bucket     string    `json:"bucket"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryBuckets groups an owner's history for display, newest first
// within each bucket.
type HistoryBuckets struct {
	Favorite []HistoryItem `json:"favorite"`
	Today    []HistoryItem `json:"today"`
	LastWeek []HistoryItem `json:"last_week"`
	Older    []HistoryItem `json:"older"`
}

// UserProfile holds the per-user fields the workflow reads: the
// preferred categories that bias recommendations, plus the profile
// fields the identity and blob-storage collaborators populate.
type UserProfile struct {
	ID                  string              `db:"id" json:"id"`
	Username            string              `db:"username" json:"username"`
	PhotoURL            string              `db:"photo_url" json:"photo_url"`
	PreferredCategories dbtypes.StringSlice `db:"preferred_categories" json:"preferred_categories"`
}

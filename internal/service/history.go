package service

import (
	"context"
	"time"

	"github.com/PBL-Kelompok-3/newsalyze/pkg/models"
)

// History lists an owner's stored sessions bucketed for the sidebar.
// Buckets are derived at read time from created_at and the favorite
// flag; favorite overrides recency. Order inside each bucket is
// creation time descending, as the store returns it.
func (s *Service) History(ctx context.Context, ownerID string) (*models.HistoryBuckets, error) {
	sessions, err := s.repo.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	buckets := &models.HistoryBuckets{
		Favorite: []models.HistoryItem{},
		Today:    []models.HistoryItem{},
		LastWeek: []models.HistoryItem{},
		Older:    []models.HistoryItem{},
	}
	for _, sess := range sessions {
		item := models.HistoryItem{
			ID:         sess.ID,
			Title:      sess.Title,
			IsFavorite: sess.IsFavorite,
			Bucket:     bucketFor(sess.CreatedAt, now, sess.IsFavorite),
			CreatedAt:  sess.CreatedAt,
		}
		switch item.Bucket {
		case models.BucketFavorite:
			buckets.Favorite = append(buckets.Favorite, item)
		case models.BucketToday:
			buckets.Today = append(buckets.Today, item)
		case models.BucketLastWeek:
			buckets.LastWeek = append(buckets.LastWeek, item)
		default:
			buckets.Older = append(buckets.Older, item)
		}
	}
	return buckets, nil
}

func bucketFor(createdAt, now time.Time, favorite bool) string {
	if favorite {
		return models.BucketFavorite
	}
	c, n := createdAt.In(now.Location()), now
	if c.Year() == n.Year() && c.YearDay() == n.YearDay() {
		return models.BucketToday
	}
	if n.Sub(c) <= 7*24*time.Hour {
		return models.BucketLastWeek
	}
	return models.BucketOlder
}

// Select retrieves one stored session with its recommendations
// restored (empty sequence when none were stored).
func (s *Service) Select(ctx context.Context, id, ownerID string) (*models.SummarySession, error) {
	sess, err := s.repo.GetByID(id, ownerID)
	if err != nil {
		return nil, err
	}
	if sess.Recommendations == nil {
		sess.Recommendations = models.RecommendationList{}
	}
	return sess, nil
}

// Rename updates the private row's title only; share records keep the
// snapshot they were created with.
func (s *Service) Rename(ctx context.Context, id, ownerID, title string) error {
	return s.repo.Rename(id, ownerID, title)
}

// Delete removes the private row. Public share records pointing at the
// same content stay readable.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return s.repo.Delete(id, ownerID)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Service) ToggleFavorite(ctx context.Context, id, ownerID string) (bool, error) {
	return s.repo.ToggleFavorite(id, ownerID)
}

// Share mints a fresh public share record snapshotting the session's
// current content and returns the full share URL. Each call produces a
// new identifier; earlier share links stay valid.
func (s *Service) Share(ctx context.Context, id, ownerID string) (string, error) {
	sess, err := s.repo.GetByID(id, ownerID)
	if err != nil {
		return "", err
	}

	rec := &models.ShareRecord{
		ShareID:         NewShareID(),
		InputText:       sess.InputText,
		SummaryText:     sess.SummaryText,
		Recommendations: sess.Recommendations,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.SaveShare(rec); err != nil {
		return "", err
	}
	return s.shareURL(rec.ShareID), nil
}

// Shared is the unauthenticated share lookup.
func (s *Service) Shared(ctx context.Context, shareID string) (*models.ShareRecord, error) {
	rec, err := s.repo.GetShare(shareID)
	if err != nil {
		return nil, err
	}
	if rec.Recommendations == nil {
		rec.Recommendations = models.RecommendationList{}
	}
	return rec, nil
}

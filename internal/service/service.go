package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PBL-Kelompok-3/newsalyze/internal/config"
	"github.com/PBL-Kelompok-3/newsalyze/internal/recommend"
	"github.com/PBL-Kelompok-3/newsalyze/internal/summarize"
	"github.com/PBL-Kelompok-3/newsalyze/pkg/models"
)

// DefaultCategory biases recommendations when a user has no preferred
// categories set (or no user is signed in).
const DefaultCategory = "umum"

const prefsCacheTTL = 10 * time.Minute

type SessionStore interface {
	SaveSession(s *models.SummarySession) error
	ListByOwner(ownerID string) ([]*models.SummarySession, error)
	GetByID(id, ownerID string) (*models.SummarySession, error)
	Rename(id, ownerID, title string) error
	Delete(id, ownerID string) error
	ToggleFavorite(id, ownerID string) (bool, error)
	SaveShare(rec *models.ShareRecord) error
	GetShare(shareID string) (*models.ShareRecord, error)
	GetProfile(id string) (*models.UserProfile, error)
	UpsertProfile(u *models.UserProfile) error
}

type Summarizer interface {
	Text(ctx context.Context, text string) (*summarize.Result, error)
	URL(ctx context.Context, articleURL string) (*summarize.Result, error)
	File(ctx context.Context, filename string, r io.Reader) (*summarize.Result, error)
}

type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) ([]models.Recommendation, error)
}

type Previewer interface {
	ImageURL(ctx context.Context, target string) string
}

type Service struct {
	repo        SessionStore
	rdb         *redis.Client
	summarizer  Summarizer
	recommender Recommender
	previewer   Previewer
	recCfg      config.RecommendConfig
	shareBase   string
	now         func() time.Time
}

func NewService(repo SessionStore, rdb *redis.Client, summarizer Summarizer, recommender Recommender, previewer Previewer, recCfg config.RecommendConfig, shareBase string) *Service {
	return &Service{
		repo:        repo,
		rdb:         rdb,
		summarizer:  summarizer,
		recommender: recommender,
		previewer:   previewer,
		recCfg:      recCfg,
		shareBase:   strings.TrimRight(shareBase, "/"),
		now:         time.Now,
	}
}

// SessionResult is what a completed summarization hands back to the
// UI: the built session plus the public share link.
type SessionResult struct {
	Session  *models.SummarySession `json:"session"`
	ShareURL string                 `json:"share_url,omitempty"`
}

// Summarize runs the full workflow for a text or URL submission:
// resolve the source, dispatch to the summarization service, enrich
// with recommendations, build and persist the session record.
// ownerID may be empty (anonymous): the public share copy is still
// written, the private history row is skipped.
func (s *Service) Summarize(ctx context.Context, ownerID, input string) (*SessionResult, error) {
	kind, err := summarize.Resolve(input)
	if err != nil {
		return nil, err
	}

	var res *summarize.Result
	switch kind {
	case summarize.KindURL:
		res, err = s.summarizer.URL(ctx, strings.TrimSpace(input))
	default:
		res, err = s.summarizer.Text(ctx, input)
	}
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", kind, err)
	}

	return s.buildAndPersist(ctx, ownerID, res, s.recCfg.Count), nil
}

// SummarizeFile runs the workflow for an uploaded document.
func (s *Service) SummarizeFile(ctx context.Context, ownerID, filename string, r io.Reader) (*SessionResult, error) {
	res, err := s.summarizer.File(ctx, filename, r)
	if err != nil {
		return nil, fmt.Errorf("summarize file: %w", err)
	}
	return s.buildAndPersist(ctx, ownerID, res, s.recCfg.FileCount), nil
}

// buildAndPersist is the back half of the workflow: enrichment, title
// derivation and the two independent writes. Persistence failures are
// logged, never returned — the summary already exists and the UI gets
// it regardless.
func (s *Service) buildAndPersist(ctx context.Context, ownerID string, res *summarize.Result, n int) *SessionResult {
	recs := s.enrich(ctx, ownerID, res.Text, res.Summary, n)

	session := &models.SummarySession{
		Title:           GenerateTitle(res.Text),
		InputText:       res.Text,
		SummaryText:     res.Summary,
		Recommendations: recs,
		CreatedAt:       s.now().UTC(),
	}

	shareURL := ""
	share := &models.ShareRecord{
		ShareID:         NewShareID(),
		InputText:       session.InputText,
		SummaryText:     session.SummaryText,
		Recommendations: recs,
		CreatedAt:       session.CreatedAt,
	}
	if err := s.repo.SaveShare(share); err != nil {
		log.Printf("save share record: %v", err)
	} else {
		shareURL = s.shareURL(share.ShareID)
	}

	if ownerID != "" {
		session.OwnerID = ownerID
		if err := s.repo.SaveSession(session); err != nil {
			log.Printf("save session owner=%s: %v", ownerID, err)
		}
	}

	return &SessionResult{Session: session, ShareURL: shareURL}
}

// enrich asks the recommendation service for ranked candidates and
// fetches a preview image for each, concurrently. A failed
// recommendation request degrades to an empty list; a failed image
// fetch degrades to the placeholder inside the Previewer. Candidates
// keep their ranking order: each goroutine writes only its own slot.
func (s *Service) enrich(ctx context.Context, ownerID, text, summary string, n int) models.RecommendationList {
	cats := s.preferredCategories(ctx, ownerID)

	recs, err := s.recommender.Recommend(ctx, recommend.Request{
		Text:                text,
		Summary:             summary,
		PreferredCategories: cats,
		Alpha:               s.recCfg.Alpha,
		Beta:                s.recCfg.Beta,
		Gamma:               s.recCfg.Gamma,
		N:                   n,
	})
	if err != nil {
		log.Printf("recommendations unavailable: %v", err)
		return models.RecommendationList{}
	}

	var wg sync.WaitGroup
	for i := range recs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recs[i].ImageURL = s.previewer.ImageURL(ctx, recs[i].SourceURL)
		}(i)
	}
	wg.Wait()

	return models.RecommendationList(recs)
}

// preferredCategories resolves the current user's topic preferences,
// cache-first. Anonymous users and users with no stored preferences
// get the generic default.
func (s *Service) preferredCategories(ctx context.Context, ownerID string) []string {
	if ownerID == "" {
		return []string{DefaultCategory}
	}

	key := prefsKey(ownerID)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var cats []string
			if err := json.Unmarshal([]byte(raw), &cats); err == nil && len(cats) > 0 {
				return cats
			}
		}
	}

	profile, err := s.repo.GetProfile(ownerID)
	if err != nil || len(profile.PreferredCategories) == 0 {
		return []string{DefaultCategory}
	}

	if s.rdb != nil {
		if raw, err := json.Marshal([]string(profile.PreferredCategories)); err == nil {
			if err := s.rdb.Set(ctx, key, raw, prefsCacheTTL).Err(); err != nil {
				log.Printf("cache preferred categories: %v", err)
			}
		}
	}
	return profile.PreferredCategories
}

// Profile returns a user's profile row.
func (s *Service) Profile(ctx context.Context, ownerID string) (*models.UserProfile, error) {
	return s.repo.GetProfile(ownerID)
}

// UpdateProfile upserts a user's profile and drops the stale
// preference cache entry.
func (s *Service) UpdateProfile(ctx context.Context, u *models.UserProfile) error {
	if err := s.repo.UpsertProfile(u); err != nil {
		return err
	}
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, prefsKey(u.ID)).Err(); err != nil {
			log.Printf("invalidate preferred categories: %v", err)
		}
	}
	return nil
}

func (s *Service) shareURL(shareID string) string {
	return s.shareBase + "/share/" + shareID
}

func prefsKey(ownerID string) string {
	return "prefs:" + ownerID
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/PBL-Kelompok-3/newsalyze/internal/config"
	"github.com/PBL-Kelompok-3/newsalyze/internal/recommend"
	"github.com/PBL-Kelompok-3/newsalyze/internal/store"
	"github.com/PBL-Kelompok-3/newsalyze/internal/summarize"
	"github.com/PBL-Kelompok-3/newsalyze/pkg/models"
)

// fakeStore is an in-memory SessionStore.
type fakeStore struct {
	sessions map[string]*models.SummarySession
	shares   map[string]*models.ShareRecord
	profiles map[string]*models.UserProfile

	saveSessionErr error
	saveShareErr   error
	nextID         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: map[string]*models.SummarySession{},
		shares:   map[string]*models.ShareRecord{},
		profiles: map[string]*models.UserProfile{},
	}
}

func (f *fakeStore) SaveSession(s *models.SummarySession) error {
	if f.saveSessionErr != nil {
		return f.saveSessionErr
	}
	if s.ID == "" {
		f.nextID++
		s.ID = fmt.Sprintf("sess-%d", f.nextID)
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeStore) ListByOwner(ownerID string) ([]*models.SummarySession, error) {
	out := []*models.SummarySession{}
	for _, s := range f.sessions {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByID(id, ownerID string) (*models.SummarySession, error) {
	s, ok := f.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) Rename(id, ownerID, title string) error {
	s, ok := f.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return store.ErrNotFound
	}
	s.Title = title
	return nil
}

func (f *fakeStore) Delete(id, ownerID string) error {
	s, ok := f.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) ToggleFavorite(id, ownerID string) (bool, error) {
	s, ok := f.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return false, store.ErrNotFound
	}
	s.IsFavorite = !s.IsFavorite
	return s.IsFavorite, nil
}

func (f *fakeStore) SaveShare(rec *models.ShareRecord) error {
	if f.saveShareErr != nil {
		return f.saveShareErr
	}
	cp := *rec
	f.shares[rec.ShareID] = &cp
	return nil
}

func (f *fakeStore) GetShare(shareID string) (*models.ShareRecord, error) {
	rec, ok := f.shares[shareID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) GetProfile(id string) (*models.UserProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) UpsertProfile(u *models.UserProfile) error {
	cp := *u
	f.profiles[u.ID] = &cp
	return nil
}

// fakeSummarizer records which dispatch path was used.
type fakeSummarizer struct {
	lastPath string
	result   *summarize.Result
	err      error
}

func (f *fakeSummarizer) Text(ctx context.Context, text string) (*summarize.Result, error) {
	f.lastPath = "text"
	return f.result, f.err
}

func (f *fakeSummarizer) URL(ctx context.Context, articleURL string) (*summarize.Result, error) {
	f.lastPath = "url"
	return f.result, f.err
}

func (f *fakeSummarizer) File(ctx context.Context, filename string, r io.Reader) (*summarize.Result, error) {
	f.lastPath = "file"
	return f.result, f.err
}

type fakeRecommender struct {
	lastReq recommend.Request
	recs    []models.Recommendation
	err     error
}

func (f *fakeRecommender) Recommend(ctx context.Context, req recommend.Request) ([]models.Recommendation, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Recommendation, len(f.recs))
	copy(out, f.recs)
	return out, nil
}

// fakePreviewer maps source URLs to image URLs with optional per-URL
// delay, to exercise out-of-order completion.
type fakePreviewer struct {
	images map[string]string
	delays map[string]time.Duration
}

func (f *fakePreviewer) ImageURL(ctx context.Context, target string) string {
	if d, ok := f.delays[target]; ok {
		time.Sleep(d)
	}
	if img, ok := f.images[target]; ok {
		return img
	}
	return "/placeholder.png"
}

func testConfig() config.RecommendConfig {
	return config.RecommendConfig{Alpha: 0.6, Beta: 0.3, Gamma: 0.1, Count: 10, FileCount: 5}
}

func newTestService(repo SessionStore, summ Summarizer, rec Recommender, prev Previewer) *Service {
	return NewService(repo, nil, summ, rec, prev, testConfig(), "http://localhost:8080")
}

func TestSummarizeTextWorkflow(t *testing.T) {
	repo := newFakeStore()
	summ := &fakeSummarizer{result: &summarize.Result{
		Text:    "Pemerintah akan menaikkan pajak. Detailnya menyusul.",
		Summary: "Pajak naik.",
	}}
	rec := &fakeRecommender{recs: []models.Recommendation{
		{ArticleID: "a1", Category: "ekonomi", SimilarityScore: 0.9, SourceURL: "https://example.com/1"},
		{ArticleID: "a2", Category: "ekonomi", SimilarityScore: 0.8, SourceURL: "https://example.com/2"},
	}}
	prev := &fakePreviewer{images: map[string]string{
		"https://example.com/1": "https://img/1.png",
		"https://example.com/2": "https://img/2.png",
	}}
	svc := newTestService(repo, summ, rec, prev)

	res, err := svc.Summarize(context.Background(), "user-1", "Pemerintah akan menaikkan pajak. Detailnya menyusul.")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summ.lastPath != "text" {
		t.Errorf("dispatch path = %q, want text", summ.lastPath)
	}
	if res.Session.Title != "Pemerintah akan menaikkan pajak" {
		t.Errorf("title = %q", res.Session.Title)
	}
	if res.Session.SummaryText != "Pajak naik." {
		t.Errorf("summary = %q", res.Session.SummaryText)
	}
	if len(res.Session.Recommendations) != 2 {
		t.Fatalf("got %d recommendations", len(res.Session.Recommendations))
	}
	if res.Session.Recommendations[0].ImageURL != "https://img/1.png" {
		t.Errorf("image enrichment: %+v", res.Session.Recommendations[0])
	}

	// private copy saved under the owner
	if len(repo.sessions) != 1 {
		t.Fatalf("private sessions = %d, want 1", len(repo.sessions))
	}
	for _, s := range repo.sessions {
		if s.OwnerID != "user-1" {
			t.Errorf("owner = %q", s.OwnerID)
		}
	}

	// public copy always written, share URL points at it
	if len(repo.shares) != 1 {
		t.Fatalf("share records = %d, want 1", len(repo.shares))
	}
	if !strings.HasPrefix(res.ShareURL, "http://localhost:8080/share/") {
		t.Errorf("share URL = %q", res.ShareURL)
	}
	shareID := strings.TrimPrefix(res.ShareURL, "http://localhost:8080/share/")
	if len(shareID) != 10 {
		t.Errorf("share id %q length = %d, want 10", shareID, len(shareID))
	}

	// recommender saw the text-path count and the default category
	if rec.lastReq.N != 10 {
		t.Errorf("n_recommendations = %d, want 10", rec.lastReq.N)
	}
	if len(rec.lastReq.PreferredCategories) != 1 || rec.lastReq.PreferredCategories[0] != DefaultCategory {
		t.Errorf("preferred categories = %v", rec.lastReq.PreferredCategories)
	}
}

func TestSummarizeURLDispatch(t *testing.T) {
	summ := &fakeSummarizer{result: &summarize.Result{Text: "extracted", Summary: "s"}}
	svc := newTestService(newFakeStore(), summ, &fakeRecommender{}, &fakePreviewer{})

	if _, err := svc.Summarize(context.Background(), "", "https://example.com/berita"); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summ.lastPath != "url" {
		t.Errorf("dispatch path = %q, want url", summ.lastPath)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	summ := &fakeSummarizer{result: &summarize.Result{Text: "t", Summary: "s"}}
	svc := newTestService(newFakeStore(), summ, &fakeRecommender{}, &fakePreviewer{})

	_, err := svc.Summarize(context.Background(), "user-1", "   ")
	if !errors.Is(err, summarize.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if summ.lastPath != "" {
		t.Errorf("summarizer was called on empty input via %q path", summ.lastPath)
	}
}

func TestSummarizeAnonymousWritesOnlyShare(t *testing.T) {
	repo := newFakeStore()
	summ := &fakeSummarizer{result: &summarize.Result{Text: "teks berita", Summary: "ringkas"}}
	svc := newTestService(repo, summ, &fakeRecommender{}, &fakePreviewer{})

	res, err := svc.Summarize(context.Background(), "", "teks berita")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(repo.sessions) != 0 {
		t.Errorf("anonymous request saved %d private sessions", len(repo.sessions))
	}
	if len(repo.shares) != 1 {
		t.Errorf("share records = %d, want 1", len(repo.shares))
	}
	if res.ShareURL == "" {
		t.Error("share URL missing for anonymous request")
	}
}

func TestRecommendationFailureDegrades(t *testing.T) {
	repo := newFakeStore()
	summ := &fakeSummarizer{result: &summarize.Result{Text: "teks", Summary: "ringkas"}}
	rec := &fakeRecommender{err: errors.New("status=503")}
	svc := newTestService(repo, summ, rec, &fakePreviewer{})

	res, err := svc.Summarize(context.Background(), "user-1", "teks")
	if err != nil {
		t.Fatalf("recommendation failure must not fail the workflow: %v", err)
	}
	if res.Session.SummaryText != "ringkas" {
		t.Errorf("summary lost: %q", res.Session.SummaryText)
	}
	if res.Session.Recommendations == nil || len(res.Session.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want empty sequence", res.Session.Recommendations)
	}
}

func TestEnrichmentPreservesRankingOrder(t *testing.T) {
	recs := make([]models.Recommendation, 6)
	images := map[string]string{}
	delays := map[string]time.Duration{}
	for i := range recs {
		url := fmt.Sprintf("https://example.com/%d", i)
		recs[i] = models.Recommendation{ArticleID: fmt.Sprintf("a%d", i), SourceURL: url}
		images[url] = fmt.Sprintf("https://img/%d.png", i)
		// earlier ranks finish last
		delays[url] = time.Duration(len(recs)-i) * 10 * time.Millisecond
	}
	summ := &fakeSummarizer{result: &summarize.Result{Text: "teks", Summary: "s"}}
	svc := newTestService(newFakeStore(), summ, &fakeRecommender{recs: recs}, &fakePreviewer{images: images, delays: delays})

	res, err := svc.Summarize(context.Background(), "", "teks")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	got := res.Session.Recommendations
	if len(got) != len(recs) {
		t.Fatalf("got %d recommendations, want %d", len(got), len(recs))
	}
	for i, r := range got {
		if r.ArticleID != fmt.Sprintf("a%d", i) {
			t.Fatalf("rank %d holds %q, ranking order broken", i, r.ArticleID)
		}
		if r.ImageURL != fmt.Sprintf("https://img/%d.png", i) {
			t.Errorf("rank %d image = %q, slot mixed up", i, r.ImageURL)
		}
	}
}

func TestSummarizeFileUsesFileCount(t *testing.T) {
	summ := &fakeSummarizer{result: &summarize.Result{Text: "isi file", Summary: "s"}}
	rec := &fakeRecommender{}
	svc := newTestService(newFakeStore(), summ, rec, &fakePreviewer{})

	if _, err := svc.SummarizeFile(context.Background(), "user-1", "berita.pdf", strings.NewReader("data")); err != nil {
		t.Fatalf("SummarizeFile failed: %v", err)
	}
	if summ.lastPath != "file" {
		t.Errorf("dispatch path = %q, want file", summ.lastPath)
	}
	if rec.lastReq.N != 5 {
		t.Errorf("n_recommendations = %d, want file count 5", rec.lastReq.N)
	}
}

func TestSummarizerFailurePropagates(t *testing.T) {
	repo := newFakeStore()
	summ := &fakeSummarizer{err: errors.New("status=500")}
	svc := newTestService(repo, summ, &fakeRecommender{}, &fakePreviewer{})

	if _, err := svc.Summarize(context.Background(), "user-1", "teks"); err == nil {
		t.Fatal("expected error from failed summarization")
	}
	if len(repo.sessions) != 0 || len(repo.shares) != 0 {
		t.Error("nothing should be persisted when summarization fails")
	}
}

func TestPersistenceFailuresDoNotFailRequest(t *testing.T) {
	repo := newFakeStore()
	repo.saveShareErr = errors.New("db down")
	repo.saveSessionErr = errors.New("db down")
	summ := &fakeSummarizer{result: &summarize.Result{Text: "teks", Summary: "ringkas"}}
	svc := newTestService(repo, summ, &fakeRecommender{}, &fakePreviewer{})

	res, err := svc.Summarize(context.Background(), "user-1", "teks")
	if err != nil {
		t.Fatalf("persistence failure must not fail the request: %v", err)
	}
	if res.Session.SummaryText != "ringkas" {
		t.Errorf("summary = %q", res.Session.SummaryText)
	}
	if res.ShareURL != "" {
		t.Errorf("share URL = %q, want empty when the share write failed", res.ShareURL)
	}
}

func TestPreferredCategoriesFromProfile(t *testing.T) {
	repo := newFakeStore()
	repo.profiles["user-1"] = &models.UserProfile{
		ID:                  "user-1",
		PreferredCategories: []string{"politik", "ekonomi"},
	}
	summ := &fakeSummarizer{result: &summarize.Result{Text: "teks", Summary: "s"}}
	rec := &fakeRecommender{}
	svc := newTestService(repo, summ, rec, &fakePreviewer{})

	if _, err := svc.Summarize(context.Background(), "user-1", "teks"); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	got := rec.lastReq.PreferredCategories
	if len(got) != 2 || got[0] != "politik" || got[1] != "ekonomi" {
		t.Errorf("preferred categories = %v", got)
	}
}

func TestShareRoundTrip(t *testing.T) {
	repo := newFakeStore()
	summ := &fakeSummarizer{result: &summarize.Result{Text: "teks asli", Summary: "ringkasan"}}
	svc := newTestService(repo, summ, &fakeRecommender{}, &fakePreviewer{})

	res, err := svc.Summarize(context.Background(), "user-1", "teks asli")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	shareID := strings.TrimPrefix(res.ShareURL, "http://localhost:8080/share/")

	rec, err := svc.Shared(context.Background(), shareID)
	if err != nil {
		t.Fatalf("Shared lookup failed: %v", err)
	}
	if rec.InputText != "teks asli" || rec.SummaryText != "ringkasan" {
		t.Errorf("share round trip: got %q / %q", rec.InputText, rec.SummaryText)
	}
}

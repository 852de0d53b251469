package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PBL-Kelompok-3/newsalyze/internal/service"
	"github.com/PBL-Kelompok-3/newsalyze/internal/store"
	"github.com/PBL-Kelompok-3/newsalyze/internal/summarize"
	"github.com/PBL-Kelompok-3/newsalyze/pkg/models"
)

// ownerHeader carries the verified user id. The identity provider in
// front of this service authenticates the request and installs the
// header; requests without it are anonymous.
const ownerHeader = "X-User-ID"

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	v1 := r.Group("/v1")
	{
		v1.POST("/summaries", h.Summarize)
		v1.POST("/summaries/file", h.SummarizeFile)
		v1.GET("/summaries", h.History)
		v1.GET("/summaries/:id", h.Select)
		v1.PATCH("/summaries/:id", h.Rename)
		v1.DELETE("/summaries/:id", h.Delete)
		v1.POST("/summaries/:id/favorite", h.ToggleFavorite)
		v1.POST("/summaries/:id/share", h.Share)
		v1.GET("/profile", h.Profile)
		v1.PUT("/profile", h.UpdateProfile)
	}
	// public: share links must open without auth
	r.GET("/share/:shareId", h.Shared)
}

func ownerID(c *gin.Context) string {
	return c.GetHeader(ownerHeader)
}

// requireOwner maps anonymous requests on owner-scoped routes to 401.
func requireOwner(c *gin.Context) (string, bool) {
	id := ownerID(c)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	return id, true
}

// Summarize: POST /v1/summaries
// Body: {"input": "<article text or URL>"}
// Anonymous callers get a summary and a share link; signed-in callers
// additionally get the session saved to their history.
func (h *Handler) Summarize(c *gin.Context) {
	var payload struct {
		Input string `json:"input"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}

	res, err := h.svc.Summarize(c.Request.Context(), ownerID(c), payload.Input)
	if err != nil {
		if errors.Is(err, summarize.ErrEmptyInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "input text is required"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "summarization failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

// SummarizeFile: POST /v1/summaries/file
// Multipart upload with a "file" field.
func (h *Handler) SummarizeFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open upload: " + err.Error()})
		return
	}
	defer f.Close()

	res, err := h.svc.SummarizeFile(c.Request.Context(), ownerID(c), fh.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "summarization failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

// History: GET /v1/summaries
func (h *Handler) History(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}
	buckets, err := h.svc.History(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buckets})
}

// Select: GET /v1/summaries/:id
func (h *Handler) Select(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}
	sess, err := h.svc.Select(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sess})
}

// Rename: PATCH /v1/summaries/:id
// Body: {"title": "..."}
func (h *Handler) Rename(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}
	var payload struct {
		Title string `json:"title"`
	}
	if err := c.BindJSON(&payload); err != nil || payload.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if err := h.svc.Rename(c.Request.Context(), c.Param("id"), owner, payload.Title); err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": c.Param("id"), "title": payload.Title}})
}

// Delete: DELETE /v1/summaries/:id
func (h *Handler) Delete(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), owner); err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleFavorite: POST /v1/summaries/:id/favorite
func (h *Handler) ToggleFavorite(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}
	fav, err := h.svc.ToggleFavorite(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": c.Param("id"), "is_favorite": fav}})
}

// Share: POST /v1/summaries/:id/share
// Mints a fresh share record and returns the full share URL.
func (h *Handler) Share(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}
	url, err := h.svc.Share(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"share_url": url}})
}

// Shared: GET /share/:shareId — public, no auth.
func (h *Handler) Shared(c *gin.Context) {
	rec, err := h.svc.Shared(c.Request.Context(), c.Param("shareId"))
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// Profile: GET /v1/profile
func (h *Handler) Profile(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}
	profile, err := h.svc.Profile(c.Request.Context(), owner)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// UpdateProfile: PUT /v1/profile
// Body: {"username": ..., "photo_url": ..., "preferred_categories": [...]}
// The photo URL is whatever the external blob store returned on upload.
func (h *Handler) UpdateProfile(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}
	var profile models.UserProfile
	if err := c.BindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	profile.ID = owner
	if err := h.svc.UpdateProfile(c.Request.Context(), &profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (h *Handler) writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

package follows

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mangaproxy/internal/auth"
	"mangaproxy/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes mounts the follow endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/follows", h.list)
	rg.POST("/follows", h.addOrUpdate)
	rg.PUT("/follows/:manga_id", h.addOrUpdate)
	rg.GET("/follows/:manga_id", h.getOne)
	rg.DELETE("/follows/:manga_id", h.remove)
}

type upsertReq struct {
	MangaID     string `json:"manga_id"` // required for POST; PUT takes it from the path
	Status      string `json:"status"`
	LastChapter string `json:"last_chapter"`
}

func (h *Handler) addOrUpdate(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	mangaID := strings.TrimSpace(c.Param("manga_id"))
	if mangaID == "" {
		mangaID = strings.TrimSpace(req.MangaID)
	}
	if _, err := uuid.Parse(mangaID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manga_id"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.FollowReading
	}
	if !models.ValidFollowStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	f := models.Follow{
		UserID:      claims.UserID,
		MangaID:     mangaID,
		Status:      status,
		LastChapter: strings.TrimSpace(req.LastChapter),
	}
	if err := h.Repo.Upsert(c.Request.Context(), f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.GetOne(c.Request.Context(), claims.UserID, mangaID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	f, err := h.Repo.GetOne(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Param("manga_id")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not followed"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	removed, err := h.Repo.Remove(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Param("manga_id")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove failed"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "not followed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

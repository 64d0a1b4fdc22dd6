package prefs

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mangaproxy/internal/auth"
	"mangaproxy/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me/preferences", h.get)
	rg.PUT("/me/preferences", h.put)
}

func (h *Handler) get(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.Repo.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type putReq struct {
	Locale           string `json:"locale"`
	MaxContentRating string `json:"max_content_rating"`
}

func (h *Handler) put(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req putReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	locale := strings.TrimSpace(strings.ToLower(req.Locale))
	if locale == "" {
		locale = DefaultLocale
	}
	if len(locale) > 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid locale"})
		return
	}

	rating := strings.TrimSpace(strings.ToLower(req.MaxContentRating))
	if rating == "" {
		rating = DefaultMaxContentRating
	}
	switch rating {
	case "safe", "suggestive", "erotica", "pornographic":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content rating"})
		return
	}

	p := models.Preferences{
		UserID:           claims.UserID,
		Locale:           locale,
		MaxContentRating: rating,
	}
	if err := h.Repo.Upsert(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

package comments

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mangaproxy/internal/auth"
)

type Handler struct {
	Repo *Repo
	Hub  *Hub
}

func NewHandler(repo *Repo, hub *Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/manga/:id/comments", h.listByManga)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/comments", h.create)
	rg.DELETE("/comments/:id", h.delete)
}

type createReq struct {
	MangaID string `json:"manga_id"`
	Text    string `json:"text"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	mangaID := strings.TrimSpace(req.MangaID)
	if _, err := uuid.Parse(mangaID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manga_id"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" || len(text) > 2000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text must be 1-2000 chars"})
		return
	}

	cm, err := h.Repo.Create(c.Request.Context(), claims.UserID, mangaID, text)
	if err != nil || cm == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(*cm)
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *Handler) listByManga(c *gin.Context) {
	mangaID := strings.TrimSpace(c.Param("id"))
	if _, err := uuid.Parse(mangaID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manga id"})
		return
	}

	limit := parseInt(c.Query("limit"), 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := parseInt(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	items, err := h.Repo.ListByManga(c.Request.Context(), mangaID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	deleted, err := h.Repo.Delete(c.Request.Context(), id, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades to a websocket subscribed to one manga's comment
// room. The socket is read only to detect disconnect; all traffic
// flows server to client.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		mangaID := strings.TrimSpace(c.Param("manga_id"))
		if _, err := uuid.Parse(mangaID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manga id"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.Subscribe(mangaID, ws)
		defer hub.Unsubscribe(mangaID, ws)

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

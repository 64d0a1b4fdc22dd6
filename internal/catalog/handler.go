package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mangaproxy/internal/cache"
)

// Handler exposes the catalog under the app's own REST surface. Every
// response, including errors, is an Envelope.
type Handler struct {
	Proxy  *Proxy
	Client *Client
	Valid  *Validator

	// DefaultLocale supplies the display locale when the request has no
	// locale param (e.g. from the signed-in user's preferences). Nil
	// means English.
	DefaultLocale func(c *gin.Context) string

	log zerolog.Logger
}

func NewHandler(proxy *Proxy, client *Client, log zerolog.Logger) *Handler {
	return &Handler{
		Proxy:  proxy,
		Client: client,
		Valid:  NewValidator(),
		log:    log.With().Str("component", "catalog").Logger(),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/manga", h.search)           // GET /catalog/manga
	rg.GET("/manga/:id", h.getManga)     // GET /catalog/manga/:id
	rg.GET("/manga/:id/feed", h.feed)    // GET /catalog/manga/:id/feed
	rg.GET("/chapter/:id", h.getChapter) // GET /catalog/chapter/:id
	rg.GET("/tags", h.tags)              // GET /catalog/tags
	rg.GET("/author/:id", h.getAuthor)   // GET /catalog/author/:id
	rg.GET("/group/:id", h.getGroup)     // GET /catalog/group/:id
}

type searchQuery struct {
	Title    string `form:"title"`
	Status   string `form:"status" binding:"omitempty,oneof=ongoing completed hiatus cancelled"`
	Language string `form:"language"`
	Order    string `form:"order" binding:"omitempty,oneof=latest title year"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=100"`
	Offset   int    `form:"offset" binding:"min=0"`
	Locale   string `form:"locale"`
}

func (h *Handler) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondErr(c, &BadRequestError{Msg: "invalid query parameters"})
		return
	}

	tags := csvParams(c, "tags")
	ratings := csvParams(c, "contentRating")
	for _, r := range ratings {
		if !validContentRating(r) {
			h.respondErr(c, &BadRequestError{Msg: "invalid content rating: " + r})
			return
		}
	}
	loc := h.locale(c, q.Locale)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	setNonEmpty(params, "title", q.Title)
	setNonEmpty(params, "status", q.Status)
	setNonEmpty(params, "language", q.Language)
	setNonEmpty(params, "order", q.Order)
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	for _, t := range tags {
		params.Add("tags", t)
	}
	for _, r := range ratings {
		params.Add("contentRating", r)
	}
	if loc != "en" {
		params.Set("locale", loc)
	}
	key := ComputeKey("search", params)

	payload, cached, err := h.Proxy.Through(c.Request.Context(), key, cache.CategorySearch,
		func(ctx context.Context) (any, error) {
			up := url.Values{}
			up.Set("limit", strconv.Itoa(q.Limit))
			up.Set("offset", strconv.Itoa(q.Offset))
			if q.Title != "" {
				up.Set("title", q.Title)
			}
			if q.Status != "" {
				up.Add("status[]", q.Status)
			}
			if q.Language != "" {
				up.Add("availableTranslatedLanguage[]", q.Language)
			}
			for _, t := range tags {
				up.Add("includedTags[]", t)
			}
			for _, r := range ratings {
				up.Add("contentRating[]", r)
			}
			addIncludes(up, "author", "artist", "cover_art")
			switch q.Order {
			case "title":
				up.Set("order[title]", "asc")
			case "year":
				up.Set("order[year]", "desc")
			default:
				up.Set("order[latestUploadedChapter]", "desc")
			}

			raw, err := h.Client.Get(ctx, "/manga", up)
			if err != nil {
				return nil, err
			}
			col, err := h.Valid.Collection(raw)
			if err != nil {
				return nil, err
			}
			return normalizeMangaList(col, loc), nil
		})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, payload, cached)
}

func (h *Handler) getManga(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	loc := h.locale(c, c.Query("locale"))

	params := url.Values{"id": {id}}
	if loc != "en" {
		params.Set("locale", loc)
	}
	key := ComputeKey("manga", params)

	payload, cached, err := h.Proxy.Through(c.Request.Context(), key, cache.CategoryManga,
		func(ctx context.Context) (any, error) {
			up := url.Values{}
			addIncludes(up, "author", "artist", "cover_art")
			raw, err := h.Client.Get(ctx, "/manga/"+id, up)
			if err != nil {
				return nil, err
			}
			single, err := h.Valid.Single(raw)
			if err != nil {
				return nil, err
			}
			return normalizeManga(single.Data, loc), nil
		})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, payload, cached)
}

type feedQuery struct {
	Language string `form:"language"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
	Limit    int    `form:"limit,default=50" binding:"min=1,max=100"`
	Offset   int    `form:"offset" binding:"min=0"`
}

func (h *Handler) feed(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondErr(c, &BadRequestError{Msg: "invalid query parameters"})
		return
	}

	params := url.Values{"id": {id}}
	params.Set("limit", strconv.Itoa(q.Limit))
	setNonEmpty(params, "language", q.Language)
	setNonEmpty(params, "order", q.Order)
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	key := ComputeKey("feed", params)

	payload, cached, err := h.Proxy.Through(c.Request.Context(), key, cache.CategoryFeed,
		func(ctx context.Context) (any, error) {
			up := url.Values{}
			up.Set("limit", strconv.Itoa(q.Limit))
			up.Set("offset", strconv.Itoa(q.Offset))
			if q.Language != "" {
				up.Add("translatedLanguage[]", q.Language)
			}
			order := q.Order
			if order == "" {
				order = "desc"
			}
			up.Set("order[chapter]", order)
			addIncludes(up, "scanlation_group")

			raw, err := h.Client.Get(ctx, "/manga/"+id+"/feed", up)
			if err != nil {
				return nil, err
			}
			col, err := h.Valid.Collection(raw)
			if err != nil {
				return nil, err
			}
			return normalizeFeed(col), nil
		})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, payload, cached)
}

func (h *Handler) getChapter(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	key := ComputeKey("chapter", url.Values{"id": {id}})
	payload, cached, err := h.Proxy.Through(c.Request.Context(), key, cache.CategoryChapter,
		func(ctx context.Context) (any, error) {
			up := url.Values{}
			addIncludes(up, "scanlation_group", "manga")
			raw, err := h.Client.Get(ctx, "/chapter/"+id, up)
			if err != nil {
				return nil, err
			}
			single, err := h.Valid.Single(raw)
			if err != nil {
				return nil, err
			}
			return normalizeChapter(single.Data), nil
		})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, payload, cached)
}

func (h *Handler) tags(c *gin.Context) {
	loc := h.locale(c, c.Query("locale"))
	params := url.Values{}
	if loc != "en" {
		params.Set("locale", loc)
	}
	key := ComputeKey("tags", params)

	payload, cached, err := h.Proxy.Through(c.Request.Context(), key, cache.CategoryTags,
		func(ctx context.Context) (any, error) {
			raw, err := h.Client.Get(ctx, "/manga/tag", nil)
			if err != nil {
				return nil, err
			}
			col, err := h.Valid.Collection(raw)
			if err != nil {
				return nil, err
			}
			return normalizeTags(col, loc), nil
		})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, payload, cached)
}

func (h *Handler) getAuthor(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	loc := h.locale(c, c.Query("locale"))

	params := url.Values{"id": {id}}
	if loc != "en" {
		params.Set("locale", loc)
	}
	key := ComputeKey("author", params)

	payload, cached, err := h.Proxy.Through(c.Request.Context(), key, cache.CategoryAuthor,
		func(ctx context.Context) (any, error) {
			raw, err := h.Client.Get(ctx, "/author/"+id, nil)
			if err != nil {
				return nil, err
			}
			single, err := h.Valid.Single(raw)
			if err != nil {
				return nil, err
			}
			return normalizeAuthor(single.Data, loc), nil
		})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, payload, cached)
}

func (h *Handler) getGroup(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	key := ComputeKey("group", url.Values{"id": {id}})
	payload, cached, err := h.Proxy.Through(c.Request.Context(), key, cache.CategoryGroup,
		func(ctx context.Context) (any, error) {
			raw, err := h.Client.Get(ctx, "/group/"+id, nil)
			if err != nil {
				return nil, err
			}
			single, err := h.Valid.Single(raw)
			if err != nil {
				return nil, err
			}
			return normalizeGroup(single.Data), nil
		})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, payload, cached)
}

// entityID validates the :id path param. Upstream IDs are UUIDs, so a
// malformed one is rejected here without an upstream call.
func (h *Handler) entityID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		h.respondErr(c, &BadRequestError{Msg: "invalid id"})
		return "", false
	}
	return id, true
}

func (h *Handler) locale(c *gin.Context, param string) string {
	if param != "" {
		return param
	}
	if h.DefaultLocale != nil {
		if loc := h.DefaultLocale(c); loc != "" {
			return loc
		}
	}
	return "en"
}

func (h *Handler) respond(c *gin.Context, payload json.RawMessage, cached bool) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: payload, Cached: cached})
}

// respondErr maps the error taxonomy onto HTTP statuses. Internal
// detail (validation field lists, upstream bodies) is logged here and
// never leaves the server.
func (h *Handler) respondErr(c *gin.Context, err error) {
	var (
		badReq   *BadRequestError
		rejected *RejectedError
		invalid  *ValidationError
	)

	switch {
	case errors.As(err, &badReq):
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: badReq.Msg})
	case errors.As(err, &rejected):
		if rejected.Status == http.StatusNotFound {
			c.JSON(http.StatusNotFound, Envelope{Success: false, Message: "not found"})
			return
		}
		h.log.Warn().Int("status", rejected.Status).Str("body", rejected.Body).
			Msg("upstream rejected request")
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: "upstream rejected request"})
	case errors.As(err, &invalid):
		h.log.Error().Str("detail", invalid.Error()).Msg("upstream contract violation")
		c.JSON(http.StatusBadGateway, Envelope{Success: false, Message: "upstream data unavailable"})
	case errors.Is(err, ErrUpstreamUnavailable):
		h.log.Warn().Err(err).Msg("upstream unavailable")
		c.JSON(http.StatusServiceUnavailable, Envelope{Success: false, Message: "catalog temporarily unavailable"})
	default:
		h.log.Error().Err(err).Msg("catalog request failed")
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: "internal error"})
	}
}

// csvParams reads a repeatable query param that also accepts a single
// comma-separated value: ?tags=a&tags=b or ?tags=a,b.
func csvParams(c *gin.Context, name string) []string {
	vals := c.QueryArray(name)
	if len(vals) == 1 && strings.Contains(vals[0], ",") {
		vals = strings.Split(vals[0], ",")
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func validContentRating(s string) bool {
	switch s {
	case "safe", "suggestive", "erotica", "pornographic":
		return true
	}
	return false
}

func setNonEmpty(params url.Values, key, val string) {
	if val != "" {
		params.Set(key, val)
	}
}

func addIncludes(params url.Values, refs ...string) {
	for _, r := range refs {
		params.Add("includes[]", r)
	}
}

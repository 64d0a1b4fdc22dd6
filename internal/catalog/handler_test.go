package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangaproxy/internal/cache"
	"mangaproxy/pkg/models"
	"mangaproxy/pkg/utils"
)

const testMangaID = "f9c6ad3e-2f40-4a7d-9c16-30e9b8a6b6d1"

func searchPayload() string {
	return `{
		"result": "ok",
		"data": [{
			"id": "` + testMangaID + `",
			"type": "manga",
			"attributes": {
				"title": {"en": "One Piece", "ja": "ワンピース"},
				"status": "ongoing",
				"contentRating": "safe",
				"year": 1997
			},
			"relationships": [
				{"id": "au1", "type": "author", "attributes": {"name": "Eiichiro Oda"}},
				{"id": "cv1", "type": "cover_art", "attributes": {"fileName": "c.jpg"}}
			]
		}],
		"limit": 20, "offset": 0, "total": 1
	}`
}

type upstreamStub struct {
	srv   *httptest.Server
	calls atomic.Int32
	// handler may be swapped per test
	respond atomic.Value // func(w http.ResponseWriter, r *http.Request)
}

func newUpstreamStub(t *testing.T) *upstreamStub {
	t.Helper()
	u := &upstreamStub{}
	u.respond.Store(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchPayload()))
	})
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		u.respond.Load().(func(http.ResponseWriter, *http.Request))(w, r)
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func newTestRouter(t *testing.T, upstream *upstreamStub, ttls cache.TTLConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := cache.NewMemory()
	t.Cleanup(mem.Close)

	client := NewClient(utils.UpstreamConfig{
		BaseURL:        upstream.srv.URL,
		RetryAttempts:  1,
		RetryBaseDelay: time.Millisecond,
		RateLimit:      1000,
		RateBurst:      1000,
	}, zerolog.Nop())

	h := NewHandler(NewProxy(mem, ttls, zerolog.Nop()), client, zerolog.Nop())

	router := gin.New()
	h.RegisterRoutes(router.Group("/catalog"))
	return router
}

func doReq(t *testing.T, router *gin.Engine, path string) (int, Envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestSearchMissThenHit(t *testing.T) {
	upstream := newUpstreamStub(t)
	router := newTestRouter(t, upstream, cache.TTLConfig{})

	code, env := doReq(t, router, "/catalog/manga?title=one+piece&limit=20")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.False(t, env.Cached)

	var list models.MangaList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "One Piece", list.Items[0].Title)
	assert.Equal(t, "Eiichiro Oda", list.Items[0].Author.Name)
	assert.Equal(t, 1, list.Total)

	// identical request within TTL: served from cache, zero upstream calls
	code, env = doReq(t, router, "/catalog/manga?title=one+piece&limit=20")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.True(t, env.Cached)
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestSearchParamOrderSharesCacheEntry(t *testing.T) {
	upstream := newUpstreamStub(t)
	router := newTestRouter(t, upstream, cache.TTLConfig{})

	_, env := doReq(t, router, "/catalog/manga?title=one+piece&limit=20")
	assert.False(t, env.Cached)
	_, env = doReq(t, router, "/catalog/manga?limit=20&title=one+piece")
	assert.True(t, env.Cached)
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestSearchLocaleGetsOwnEntry(t *testing.T) {
	upstream := newUpstreamStub(t)
	router := newTestRouter(t, upstream, cache.TTLConfig{})

	_, _ = doReq(t, router, "/catalog/manga?limit=20")
	_, env := doReq(t, router, "/catalog/manga?limit=20&locale=ja")
	assert.False(t, env.Cached)

	var list models.MangaList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "ワンピース", list.Items[0].Title)
	assert.Equal(t, int32(2), upstream.calls.Load())
}

func TestNotFoundIsNeverCached(t *testing.T) {
	upstream := newUpstreamStub(t)
	upstream.respond.Store(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such chapter", http.StatusNotFound)
	})
	router := newTestRouter(t, upstream, cache.TTLConfig{})

	path := "/catalog/chapter/" + testMangaID
	for i := 0; i < 3; i++ {
		code, env := doReq(t, router, path)
		assert.Equal(t, http.StatusNotFound, code)
		assert.False(t, env.Success)
		assert.Equal(t, "not found", env.Message)
	}
	// every attempt reached upstream: no negative caching
	assert.Equal(t, int32(3), upstream.calls.Load())
}

func TestUpstreamDownMapsTo503(t *testing.T) {
	upstream := newUpstreamStub(t)
	upstream.respond.Store(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	router := newTestRouter(t, upstream, cache.TTLConfig{})

	code, env := doReq(t, router, "/catalog/manga?limit=20")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
}

func TestMalformedUpstreamMapsTo502(t *testing.T) {
	upstream := newUpstreamStub(t)
	upstream.respond.Store(func(w http.ResponseWriter, r *http.Request) {
		// result present but data entries are missing required fields
		_, _ = w.Write([]byte(`{"result":"ok","data":[{"id":"","type":""}],"total":1}`))
	})
	router := newTestRouter(t, upstream, cache.TTLConfig{})

	code, env := doReq(t, router, "/catalog/manga?limit=20")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.False(t, env.Success)
	assert.Equal(t, "upstream data unavailable", env.Message)

	// and the garbage was not cached
	_, _ = doReq(t, router, "/catalog/manga?limit=20")
	assert.Equal(t, int32(2), upstream.calls.Load())
}

func TestInvalidParamsRejectedWithoutUpstreamCall(t *testing.T) {
	upstream := newUpstreamStub(t)
	router := newTestRouter(t, upstream, cache.TTLConfig{})

	for _, path := range []string{
		"/catalog/manga?limit=9999",
		"/catalog/manga?limit=0",
		"/catalog/manga?status=renewed",
		"/catalog/manga?contentRating=spicy",
		"/catalog/manga/not-a-uuid",
		"/catalog/chapter/123",
	} {
		code, env := doReq(t, router, path)
		assert.Equal(t, http.StatusBadRequest, code, path)
		assert.False(t, env.Success, path)
		assert.NotEmpty(t, env.Message, path)
	}
	assert.Equal(t, int32(0), upstream.calls.Load())
}

func TestTagsLongLivedCategory(t *testing.T) {
	upstream := newUpstreamStub(t)
	upstream.respond.Store(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"result": "ok",
			"data": [{"id": "11111111-1111-1111-1111-111111111111", "type": "tag",
				"attributes": {"name": {"en": "Action"}, "group": "genre"}}],
			"total": 1
		}`))
	})
	router := newTestRouter(t, upstream, cache.TTLConfig{})

	_, env := doReq(t, router, "/catalog/tags")
	require.True(t, env.Success)

	var tags []models.Tag
	require.NoError(t, json.Unmarshal(env.Data, &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, "Action", tags[0].Name)

	_, env = doReq(t, router, "/catalog/tags")
	assert.True(t, env.Cached)
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestFeedEndpoint(t *testing.T) {
	upstream := newUpstreamStub(t)
	upstream.respond.Store(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/feed")
		_, _ = w.Write([]byte(`{
			"result": "ok",
			"data": [{"id": "22222222-2222-2222-2222-222222222222", "type": "chapter",
				"attributes": {"title": "Ch 1", "chapter": "1", "translatedLanguage": "en", "pages": 40,
					"publishAt": "2024-05-01T00:00:00+00:00"},
				"relationships": [{"id": "g1", "type": "scanlation_group", "attributes": {"name": "G"}}]}],
			"limit": 50, "offset": 0, "total": 1
		}`))
	})
	router := newTestRouter(t, upstream, cache.TTLConfig{})

	code, env := doReq(t, router, "/catalog/manga/"+testMangaID+"/feed?language=en")
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	var feed models.ChapterFeed
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Ch 1", feed.Items[0].Title)
	assert.Equal(t, "G", feed.Items[0].Group.Name)
}

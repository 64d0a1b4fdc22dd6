package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"mangaproxy/internal/auth"
	"mangaproxy/internal/cache"
	"mangaproxy/internal/catalog"
	"mangaproxy/internal/comments"
	"mangaproxy/internal/follows"
	"mangaproxy/internal/prefs"
	"mangaproxy/pkg/database"
	"mangaproxy/pkg/utils"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := utils.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	// cache store, torn down with the process
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		defer rdb.Close()
		store = cache.NewRedis(rdb)
	default:
		mem := cache.NewMemory()
		defer mem.Close()
		store = mem
	}

	ttls := cache.TTLConfig{
		Search:  cfg.Cache.SearchTTL,
		Manga:   cfg.Cache.MangaTTL,
		Feed:    cfg.Cache.FeedTTL,
		Chapter: cfg.Cache.ChapterTTL,
		Tags:    cfg.Cache.TagsTTL,
		Author:  cfg.Cache.AuthorTTL,
		Group:   cfg.Cache.GroupTTL,
	}

	upstream := catalog.NewClient(cfg.Upstream, log)
	proxy := catalog.NewProxy(store, ttls, log)

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "cache_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Auth
	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	auth.NewHandler(authRepo, tokenSvc, log).RegisterRoutes(router.Group("/auth"))

	// Catalog (public; signed-in users get their preferred locale)
	prefsRepo := prefs.NewRepo(db)
	catalogHandler := catalog.NewHandler(proxy, upstream, log)
	catalogHandler.DefaultLocale = func(c *gin.Context) string {
		claims := auth.MustGetClaims(c)
		if claims == nil {
			return ""
		}
		p, err := prefsRepo.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			return ""
		}
		return p.Locale
	}
	catalogGroup := router.Group("/catalog")
	catalogGroup.Use(auth.OptionalAuth(tokenSvc, authRepo))
	catalogHandler.RegisterRoutes(catalogGroup)

	// Comments: public listing + live relay, protected posting
	commentRepo := comments.NewRepo(db)
	commentHub := comments.NewHub()
	commentHandler := comments.NewHandler(commentRepo, commentHub)
	commentHandler.RegisterPublicRoutes(router.Group("/catalog"))
	router.GET("/ws/comments/:manga_id", comments.WSHandler(commentHub))

	protected := router.Group("/users")
	protected.Use(auth.RequireAuth(tokenSvc, authRepo))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "username": claims.Username})
	})

	commentHandler.RegisterProtectedRoutes(protected)
	follows.NewHandler(follows.NewRepo(db)).RegisterRoutes(protected)
	prefs.NewHandler(prefsRepo).RegisterRoutes(protected)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("api server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

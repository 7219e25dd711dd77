package devserver

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options configure the development server.
type Options struct {
	Addr      string
	JWTSecret string
	// UploadDir holds recipe images, served under /storage.
	UploadDir string
	// RedisAddr enables the write rate limiter when set.
	RedisAddr string
	Logger    *slog.Logger
}

// Server is the development recipe API.
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	logger *slog.Logger
}

// NewServer wires the handlers and middleware over db.
func NewServer(db *gorm.DB, opts Options) (*Server, error) {
	if opts.UploadDir == "" {
		opts.UploadDir = filepath.Join(os.TempDir(), "reciperealm-uploads")
	}
	if err := os.MkdirAll(opts.UploadDir, 0o755); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	auth := NewAuthService(db, opts.JWTSecret)

	var limiter *RateLimiter
	if opts.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		limiter = NewWriteRateLimiter(client)
		opts.Logger.Info("write rate limiting enabled", "redis", opts.RedisAddr)
	}

	recipes := NewRecipeHandler(db, auth, opts.UploadDir)
	recipes.RegisterRoutes(router, limiter)
	NewAuthHandler(db, auth).RegisterRoutes(router)
	NewProfileHandler(db, auth, recipes).RegisterRoutes(router)
	router.Static("/storage/uploads", opts.UploadDir)

	return &Server{
		router: router,
		http:   &http.Server{Addr: opts.Addr, Handler: router},
		db:     db,
		logger: opts.Logger,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("development server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "devconnector/docs" // swagger docs
	"devconnector/internal/auth"
	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const serviceName = "devconnector-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *auth.Tokens
	users          repository.UserRepository
	revocations    *cache.Revocations
	userService    *service.UserService
	profileService *service.ProfileService
	postService    *service.PostService
}

// NewServer connects to the database and Redis and builds a server.
// Redis is optional: without it logout is unavailable and rate limiting
// falls back to in-process buckets.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("Redis unavailable, continuing without it",
			slog.String("addr", cfg.RedisURL),
			slog.String("error", err.Error()),
		)
		redisClient = nil
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server: config and database are required")
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	revocations := cache.NewRevocations(redisClient)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		tokens:         tokens,
		users:          userRepo,
		revocations:    revocations,
		userService:    service.NewUserService(userRepo, tokens, revocations),
		profileService: service.NewProfileService(profileRepo, userRepo),
		postService:    service.NewPostService(postRepo),
	}, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "DevConnector API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before anything that can short-circuit so error responses carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || middleware.RateLimitBypassed()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	users := api.Group("/users")
	users.Get("/test", smoke("Users works"))
	users.Post("/register", middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimitWithPolicy(
		s.redis, 20, 5*time.Minute, s.loginFailPolicy(), "login"), s.Login)
	users.Get("/current", s.AuthRequired(), s.Current)
	users.Post("/logout", s.AuthRequired(), s.Logout)

	profile := api.Group("/profile")
	profile.Get("/test", smoke("Profile works"))
	profile.Get("/all", s.ListProfiles)
	profile.Get("/handle/:handle", s.GetProfileByHandle)
	profile.Get("/user/:user_id", s.GetProfileByUser)
	profile.Get("/", s.AuthRequired(), s.GetOwnProfile)
	profile.Post("/", s.AuthRequired(), s.UpsertProfile)
	profile.Delete("/", s.AuthRequired(), s.DeleteAccount)
	profile.Post("/experience", s.AuthRequired(), s.AddExperience)
	profile.Delete("/experience/:exp_id", s.AuthRequired(), s.RemoveExperience)
	profile.Post("/education", s.AuthRequired(), s.AddEducation)
	profile.Delete("/education/:edu_id", s.AuthRequired(), s.RemoveEducation)

	posts := api.Group("/posts")
	posts.Get("/test", smoke("Posts works"))
	posts.Get("/", s.ListPosts)
	posts.Post("/", s.AuthRequired(), s.CreatePost)
	// Specific /like, /unlike and /comment routes before the generic /:post_id.
	posts.Post("/like/:post_id", s.AuthRequired(), s.LikePost)
	posts.Post("/unlike/:post_id", s.AuthRequired(), s.UnlikePost)
	posts.Post("/comment/:post_id", s.AuthRequired(), s.AddComment)
	posts.Delete("/comment/:post_id/:comment_id", s.AuthRequired(), s.RemoveComment)
	posts.Get("/:post_id", s.GetPost)
	posts.Delete("/:post_id", s.AuthRequired(), s.DeletePost)
}

// loginFailPolicy refuses logins in production when the shared limiter
// store is down, so per-process buckets cannot multiply the allowance.
func (s *Server) loginFailPolicy() middleware.FailPolicy {
	if s.config.IsProduction() {
		return middleware.FailClosed
	}
	return middleware.FailLocal
}

func smoke(msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"msg": msg})
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and Redis concurrently. Redis is
// optional, so a server started without it reports "disabled" and stays ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus, redisStatus := "healthy", "disabled"

	var g errgroup.Group
	g.Go(func() error {
		if err := database.Ping(ctx, s.db); err != nil {
			dbStatus = "unhealthy"
			return fmt.Errorf("database: %w", err)
		}
		return nil
	})
	if s.redis != nil {
		redisStatus = "healthy"
		g.Go(func() error {
			if err := s.redis.Ping(ctx).Err(); err != nil {
				redisStatus = "unhealthy"
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		})
	}

	status, overall := fiber.StatusOK, "healthy"
	if err := g.Wait(); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "readiness check failed", slog.String("error", err.Error()))
		status, overall = fiber.StatusServiceUnavailable, "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. The verified identity
// is stored in c.Locals("identity") and the user id in c.Locals("userID").
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, auth.BearerPrefix)
		if !ok || raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized"))
		}

		id, err := s.tokens.Verify(raw)
		if err != nil {
			middleware.Logger.DebugContext(c.UserContext(), "token rejected", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized"))
		}

		revoked, err := s.revocations.IsRevoked(c.UserContext(), id.TokenID)
		if err != nil {
			// Revocation is best effort; a Redis outage must not lock everyone out.
			middleware.Logger.WarnContext(c.UserContext(), "revocation check failed", slog.String("error", err.Error()))
		}
		if revoked {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		// Tokens outlive account deletion when revocation is unavailable.
		if _, err := s.users.GetByID(c.UserContext(), id.ID); err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Unauthorized"))
			}
			return respondError(c, err)
		}

		c.Locals("userID", id.ID)
		c.Locals("identity", id)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, id.ID)
		c.SetUserContext(auth.WithIdentity(ctx, id))

		return c.Next()
	}
}

// Start serves on the configured port until Shutdown is called.
func (s *Server) Start() error {
	s.app = s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("redis: %w", rerr))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}

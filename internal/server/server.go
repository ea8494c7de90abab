package server

import (
	"time"

	"github.com/seekkrr/creator-portal/internal/auth"
	"github.com/seekkrr/creator-portal/internal/config"
	"github.com/seekkrr/creator-portal/internal/geocode"
	"github.com/seekkrr/creator-portal/internal/media"
	"github.com/seekkrr/creator-portal/internal/quest"
	"github.com/seekkrr/creator-portal/internal/wizard"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Wizard *wizard.Controller
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	var store wizard.SessionStore
	if redisClient != nil {
		store = wizard.NewRedisStore(redisClient, time.Duration(cfg.DraftTTLHours)*time.Hour)
	} else {
		store = wizard.NewMemoryStore()
	}

	var geo wizard.Geocoder
	if cfg.GeocodeToken != "" {
		geo = geocode.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeToken)
	}

	questSvc := quest.NewService(db)
	ctrl := wizard.NewController(store, geo, quest.NewAdapter(questSvc))

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Wizard: ctrl,
	}

	registerRoutes(s, questSvc)
	return s
}

func registerRoutes(s *Server, questSvc *quest.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	wizard.RegisterRoutes(s.App.Group("/wizard"), s.Wizard, jwtMiddleware)
	quest.RegisterRoutes(s.App.Group("/quests"), questSvc, jwtMiddleware)
	media.RegisterRoutes(s.App.Group("/media"), media.NewService(s.DB), jwtMiddleware)
}

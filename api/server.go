package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/CristiGvl/picoDiskMon/internal/disk"
	"github.com/CristiGvl/picoDiskMon/internal/platform"
	"github.com/CristiGvl/picoDiskMon/internal/poller"
)

// Server represents the API server
type Server struct {
	app      *fiber.App
	volumes  *disk.Enumerator
	sampler  *disk.Sampler
	poller   *poller.Poller
	gatherer prometheus.Gatherer
	validate *validator.Validate
	log      *logrus.Logger
}

// NewServer creates a new API server
func NewServer(sampler *disk.Sampler, p *poller.Poller, gatherer prometheus.Gatherer, log *logrus.Logger) (*Server, error) {
	// Validate platform support
	if err := platform.ValidateSupport(); err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		ServerHeader:          "picoDiskMon",
		AppName:               "picoDiskMon v1.0",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "*",
		MaxAge:       86400, // 24 hours
	}))

	server := &Server{
		app:      app,
		volumes:  sampler.Enumerator(),
		sampler:  sampler,
		poller:   p,
		gatherer: gatherer,
		validate: validator.New(),
		log:      log,
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// Disk endpoints
	api.Get("/volumes", s.getVolumes)
	api.Get("/sample", s.getSample)

	// Polling endpoints
	api.Get("/poller", s.getPoller)
	api.Post("/poller/start", s.startPoller)
	api.Post("/poller/stop", s.stopPoller)

	// Health check
	api.Get("/health", s.healthCheck)

	if s.gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
}

// App exposes the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the API server
func (s *Server) Start(address string) error {
	s.log.WithField("address", address).Info("Starting picoDiskMon server")
	return s.app.Listen(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.poller.Stop()
	return s.app.Shutdown()
}

// Health check endpoint
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"platform":  platform.GetOS(),
		"timestamp": time.Now().Unix(),
	})
}

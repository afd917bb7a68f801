// Package web exposes the thin HTTP surface of the service: a health
// endpoint, the public pricing data, signup and the billing webhook.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/saas-foundation/saas-foundation/internal/config"
	"github.com/saas-foundation/saas-foundation/internal/email"
	fiberlogger "github.com/saas-foundation/saas-foundation/internal/logger/adapter/fiber"
	"github.com/saas-foundation/saas-foundation/internal/payment"
	"github.com/saas-foundation/saas-foundation/internal/subscription"
	"github.com/saas-foundation/saas-foundation/internal/tenant"
)

// HealthzURI is the path of the health endpoint.
const HealthzURI = "/healthz"

// Service represents the web service.
type Service struct {
	App           *fiber.App
	cfg           *config.Config
	alive         atomic.Bool
	validate      *validator.Validate
	tenants       *tenant.Manager
	subscriptions *subscription.Manager
	gateway       payment.Adapter
	mailer        *email.Manager
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	// Wait interrupt or shutdown request through /stop
	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so healthz returns fail.
	log.Info().Msgf(
		"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
		s.cfg.Webserver.ShutDownTime,
	)

	s.alive.Store(false)
	time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration and managers.
func New(cfg *config.Config, tenants *tenant.Manager, subscriptions *subscription.Manager, gateway payment.Adapter, mailer *email.Manager) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:     cfg.Log,
		HealthzURI: HealthzURI,
	}))

	service := &Service{
		cfg:           cfg,
		App:           app,
		validate:      validator.New(),
		tenants:       tenants,
		subscriptions: subscriptions,
		gateway:       gateway,
		mailer:        mailer,
	}
	service.alive.Store(true)

	service.registerRoutes()

	return service
}

func (s *Service) registerRoutes() {
	s.App.Get(HealthzURI, s.handleHealthz)
	s.App.Get("/tiers", s.handleTiers)
	s.App.Post("/signup", s.handleSignup)
	s.App.Post("/password-reset", s.handlePasswordReset)
	s.App.Post("/webhooks/stripe", s.handleStripeWebhook)

	if s.cfg.DevMode {
		log.Warn().Msg("dev mode enabled: /stop endpoint is active")
		s.App.Post("/stop", s.handleStop)
	}
}

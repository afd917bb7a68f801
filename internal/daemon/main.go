// Package daemon wires the managers together and runs the web service.
package daemon

import (
	"fmt"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/saas-foundation/saas-foundation/internal/authz"
	"github.com/saas-foundation/saas-foundation/internal/config"
	"github.com/saas-foundation/saas-foundation/internal/datastore"
	"github.com/saas-foundation/saas-foundation/internal/db/dsn"
	"github.com/saas-foundation/saas-foundation/internal/email"
	"github.com/saas-foundation/saas-foundation/internal/logger"
	"github.com/saas-foundation/saas-foundation/internal/payment"
	"github.com/saas-foundation/saas-foundation/internal/subscription"
	"github.com/saas-foundation/saas-foundation/internal/tenant"
	"github.com/saas-foundation/saas-foundation/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case "mysql":
		dialector = gormmysql.Open(dsn.Create(cfg))
	case "postgres":
		dialector = gormpostgres.Open(dsn.CreatePostgres(cfg))
	case "sqlite", "":
		dialector = sqlite.Open(filepath.Join(cfg.DB.Path, cfg.DB.Name))
	default:
		return nil, errors.Errorf("unknown gorm engine %q", cfg.DB.GormEngine)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	return db, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	ds, err := datastore.NewManager(db)
	if err != nil {
		return nil, err
	}

	az := authz.NewManager()

	tenants, err := tenant.NewManager(ds, az)
	if err != nil {
		return nil, err
	}

	payments := payment.NewManager(cfg.Stripe)
	gateway := payments.Stripe()

	subscriptions, err := subscription.NewManager(ds, gateway, az, tenants, cfg.Stripe.Currency)
	if err != nil {
		return nil, err
	}

	mailer := email.NewManager(cfg.SMTP)

	if err := seed(az, tenants); err != nil {
		return nil, err
	}

	log.Info().Str("engine", cfg.DB.GormEngine).Msg("daemon initialized")

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, tenants, subscriptions, gateway, mailer),
	}, nil
}

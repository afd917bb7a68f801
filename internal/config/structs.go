package config

import (
	"github.com/saas-foundation/saas-foundation/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	SMTP      SMTP
	Stripe    Stripe
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	DisableRecover bool   // disable recover middleware
}

// SMTP holds the outbound mail settings.
type SMTP struct {
	Host        string
	Port        int
	Username    string
	Password    string
	UseTLS      bool
	SenderEmail string
	TemplateDir string // directory with named email templates
}

// Stripe holds the billing gateway credentials.
// When SecretKey or WebhookSecret is empty, the Stripe adapter runs in
// mock mode and fabricates deterministic responses.
type Stripe struct {
	SecretKey     string
	WebhookSecret string
	Currency      string // ISO currency for tier prices, defaults to usd
}

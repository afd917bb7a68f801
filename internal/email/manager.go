// Package email sends outbound mail over SMTP with optional template
// rendering by name.
package email

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"

	"github.com/saas-foundation/saas-foundation/internal/config"
)

// ErrNotConfigured is returned when the SMTP settings are incomplete.
var ErrNotConfigured = errors.New("smtp not configured")

// Manager sends mail using the SMTP section of the configuration. When the
// settings are incomplete every send fails with ErrNotConfigured.
type Manager struct {
	cfg        config.SMTP
	engine     *html.Engine
	configured bool
}

// NewManager builds the mail manager. Templates are loaded from the
// configured template directory when one is set.
func NewManager(cfg config.SMTP) *Manager {
	m := &Manager{
		cfg:        cfg,
		configured: cfg.Host != "" && cfg.SenderEmail != "",
	}

	if !m.configured {
		log.Warn().Msg("SMTP settings incomplete, outbound mail disabled")
	}

	if cfg.TemplateDir != "" {
		m.engine = html.New(cfg.TemplateDir, ".html")
	}

	return m
}

// Configured reports whether outbound mail is enabled.
func (m *Manager) Configured() bool {
	return m.configured
}

// Render renders a named template from the template directory.
func (m *Manager) Render(template string, data any) (string, error) {
	if m.engine == nil {
		return "", fmt.Errorf("no template directory configured")
	}

	if err := m.engine.Load(); err != nil {
		return "", fmt.Errorf("failed to load templates: %w", err)
	}

	var buf bytes.Buffer
	if err := m.engine.Render(&buf, template, data); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", template, err)
	}

	return buf.String(), nil
}

// Send delivers an HTML message to one recipient.
func (m *Manager) Send(to, subject, body string) error {
	if !m.configured {
		return ErrNotConfigured
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.SenderEmail); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
	}

	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	if m.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	log.Info().Str("to", to).Str("subject", subject).Msg("sent mail")

	return nil
}

// SendTemplate renders a named template and delivers the result.
func (m *Manager) SendTemplate(to, subject, template string, data any) error {
	body, err := m.Render(template, data)
	if err != nil {
		return err
	}

	return m.Send(to, subject, body)
}

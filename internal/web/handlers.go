package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/saas-foundation/saas-foundation/internal/payment"
	"github.com/saas-foundation/saas-foundation/internal/tenant"
)

// stripeSignatureHeader carries the webhook signature.
const stripeSignatureHeader = "Stripe-Signature"

func (s *Service) handleHealthz(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("ok")
}

type tierResponse struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	MonthlyCost float64        `json:"monthly_cost"`
	YearlyCost  float64        `json:"yearly_cost"`
	Features    []string       `json:"features"`
	Limits      map[string]any `json:"limits"`
}

func (s *Service) handleTiers(c *fiber.Ctx) error {
	tiers, err := s.subscriptions.PublicTiers()
	if err != nil {
		log.Error().Err(err).Msg("failed to list public tiers")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	response := make([]tierResponse, 0, len(tiers))
	for _, tier := range tiers {
		response = append(response, tierResponse{
			Key:         tier.Key,
			Name:        tier.Name,
			Description: tier.Description,
			MonthlyCost: tier.MonthlyCost,
			YearlyCost:  tier.YearlyCost,
			Features:    tier.Features,
			Limits:      tier.Limits,
		})
	}

	return c.JSON(response)
}

type signupRequest struct {
	AccountName string `json:"account_name" validate:"required,min=1,max=128"`
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Password    string `json:"password" validate:"required,min=8"`
}

func (s *Service) handleSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	account, err := s.tenants.CreateAccount(req.AccountName)
	if errors.Is(err, tenant.ErrAccountNameTaken) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "account name already in use"})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create account")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	user, err := s.tenants.CreateUser(account.ID, req.Username, req.Password)
	if errors.Is(err, tenant.ErrUsernameTaken) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username already in use"})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create user")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"account_id": account.ID,
		"user_id":    user.ID,
	})
}

type passwordResetRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
}

// handlePasswordReset issues a reset token and mails it when outbound mail
// is configured. The response does not reveal whether the user exists.
func (s *Service) handlePasswordReset(c *fiber.Ctx) error {
	var req passwordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	token, err := s.tenants.GenerateResetToken(req.Username)
	if errors.Is(err, tenant.ErrUserNotFound) {
		return c.JSON(fiber.Map{"received": true})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to generate reset token")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if s.mailer != nil && s.mailer.Configured() {
		err := s.mailer.SendTemplate(req.Username, "Password reset", "reset_password", fiber.Map{
			"Username": req.Username,
			"Token":    token,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to send reset mail")
		}
	}

	return c.JSON(fiber.Map{"received": true})
}

func (s *Service) handleStripeWebhook(c *fiber.Ctx) error {
	event, err := s.gateway.VerifyWebhook(c.Body(), c.Get(stripeSignatureHeader))
	if errors.Is(err, payment.ErrInvalidSignature) {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if errors.Is(err, payment.ErrNotConfigured) {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to verify webhook")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	sub, err := s.subscriptions.HandleWebhook(event)
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("failed to handle webhook")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if sub == nil {
		return c.JSON(fiber.Map{"received": true})
	}

	return c.JSON(fiber.Map{"received": true, "subscription_id": sub.ID})
}

func (s *Service) handleStop(c *fiber.Ctx) error {
	log.Warn().Msg("stop requested via /stop endpoint")

	go func() {
		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	return c.SendString("Server shutdown initiated.")
}

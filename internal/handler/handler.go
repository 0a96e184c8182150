package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/payvault/backend/internal/apperr"
	"github.com/payvault/backend/internal/config"
	"github.com/payvault/backend/internal/service"
)

type Handler struct {
	cfg         *config.Config
	registry    *service.AccountRegistry
	accounts    *service.AccountService
	transfers   *service.TransferEngine
	withdrawals *service.WithdrawalEngine
	admin       *service.AdminService
}

func New(
	cfg *config.Config,
	registry *service.AccountRegistry,
	accounts *service.AccountService,
	transfers *service.TransferEngine,
	withdrawals *service.WithdrawalEngine,
	admin *service.AdminService,
) *Handler {
	return &Handler{
		cfg:         cfg,
		registry:    registry,
		accounts:    accounts,
		transfers:   transfers,
		withdrawals: withdrawals,
		admin:       admin,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// respondError maps the error taxonomy onto HTTP statuses. Anything
// unclassified is a plain 500 with a generic body.
func respondError(c *fiber.Ctx, err error) error {
	var status int
	switch apperr.KindOf(err) {
	case apperr.Validation:
		status = fiber.StatusBadRequest
	case apperr.Policy:
		status = fiber.StatusUnprocessableEntity
	case apperr.NotFound:
		status = fiber.StatusNotFound
	case apperr.External:
		status = fiber.StatusBadGateway
	case apperr.Consistency:
		status = fiber.StatusConflict
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/payvault/backend/internal/middleware"
	"github.com/payvault/backend/internal/service"
	"github.com/shopspring/decimal"
)

type TransferRequest struct {
	RecipientWalletCode string `json:"recipient_wallet_code"`
	Amount              string `json:"amount"`
	PIN                 string `json:"pin"`
}

// Transfer sends funds to another account by wallet code.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "amount must be a decimal number",
		})
	}

	result, err := h.transfers.Transfer(c.Context(), userID, service.TransferInput{
		RecipientWalletCode: req.RecipientWalletCode,
		Amount:              amount,
		PIN:                 req.PIN,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

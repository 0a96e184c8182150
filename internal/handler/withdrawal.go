package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/payvault/backend/internal/middleware"
	"github.com/payvault/backend/internal/model"
	"github.com/payvault/backend/internal/service"
	"github.com/shopspring/decimal"
)

type WithdrawRequest struct {
	Amount  string `json:"amount"`
	Network string `json:"network"`
	Address string `json:"address"`
	PIN     string `json:"pin"`
}

// RequestWithdrawal reserves funds and files a pending withdrawal for manual
// settlement.
func (h *Handler) RequestWithdrawal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req WithdrawRequest
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

	receipt, err := h.withdrawals.Request(c.Context(), userID, service.WithdrawInput{
		Amount:  amount,
		Network: model.Network(req.Network),
		Address: req.Address,
		PIN:     req.PIN,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(receipt)
}

func (h *Handler) GetWithdrawals(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	requests, err := h.withdrawals.History(c.Context(), userID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"withdrawals": requests,
	})
}

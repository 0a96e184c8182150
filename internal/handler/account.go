package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/payvault/backend/internal/middleware"
	"github.com/payvault/backend/internal/service"
)

type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Phone         string `json:"phone"`
	ReferralCode  string `json:"referral_code"`
	DepositTxHash string `json:"deposit_tx_hash"`
}

// Register creates an account after verifying the signup deposit on-chain.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	account, err := h.registry.Register(c.Context(), service.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		ReferralCode:  req.ReferralCode,
		DepositTxHash: req.DepositTxHash,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	account, err := h.accounts.Get(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(account)
}

type SetPINRequest struct {
	PIN string `json:"pin"`
}

func (h *Handler) SetTransactionPassword(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req SetPINRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.accounts.SetTransactionPassword(c.Context(), userID, req.PIN); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type BalanceVisibilityRequest struct {
	Visible bool `json:"visible"`
}

func (h *Handler) SetBalanceVisibility(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req BalanceVisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.accounts.SetBalanceVisibility(c.Context(), userID, req.Visible); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) GetTransactions(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	transactions, err := h.accounts.History(c.Context(), userID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"transactions": transactions,
	})
}

func (h *Handler) GetReferralStats(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	stats, err := h.accounts.ReferralStats(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

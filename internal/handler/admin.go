package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) GetAdminStats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *Handler) ListPendingAccounts(c *fiber.Ctx) error {
	accounts, err := h.admin.PendingAccounts(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"accounts": accounts,
	})
}

type RejectAccountRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) ApproveAccount(c *fiber.Ctx) error {
	if err := h.admin.ApproveAccount(c.Context(), c.Params("account_id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) RejectAccount(c *fiber.Ctx) error {
	var req RejectAccountRequest
	_ = c.BodyParser(&req)

	if err := h.admin.RejectAccount(c.Context(), c.Params("account_id"), req.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// AuditAccount cross-checks a stored balance against the ledger.
func (h *Handler) AuditAccount(c *fiber.Ctx) error {
	audit, err := h.admin.AuditAccount(c.Context(), c.Params("account_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(audit)
}

func (h *Handler) ListPendingWithdrawals(c *fiber.Ctx) error {
	requests, err := h.admin.PendingWithdrawals(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"withdrawals": requests,
	})
}

type SettleWithdrawalRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) ApproveWithdrawal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("withdrawal_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid withdrawal id",
		})
	}

	var req SettleWithdrawalRequest
	_ = c.BodyParser(&req)

	if err := h.admin.ApproveWithdrawal(c.Context(), id, req.Notes); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) RejectWithdrawal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("withdrawal_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid withdrawal id",
		})
	}

	var req SettleWithdrawalRequest
	_ = c.BodyParser(&req)

	if err := h.admin.RejectWithdrawal(c.Context(), id, req.Notes); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

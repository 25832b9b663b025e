package billing

import (
	"github.com/gofiber/fiber/v2"

	"rst-backend/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

// GET /api/v1/bills
func (h *Handlers) GetAll(c *fiber.Ctx) error {
	bills, err := h.Service.GetAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Bills fetched successfully", bills, nil)
}

// GET /api/v1/bills/orphaned
func (h *Handlers) GetOrphaned(c *fiber.Ctx) error {
	bills, err := h.Service.GetOrphaned(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Orphaned bills fetched successfully", bills, nil)
}

// GET /api/v1/bills/:id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid bill id", 400, nil)
	}
	bill, err := h.Service.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Bill fetched successfully", bill, nil)
}

type updateBillRequest struct {
	InvoiceAmount *float64 `json:"invoiceAmount"`
	PaidAmount    *float64 `json:"paidAmount"`
	BillingStatus *string  `json:"billingStatus"`
}

// PATCH /api/v1/bills/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid bill id", 400, nil)
	}
	var body updateBillRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	bill, err := h.Service.Update(c.Context(), uint(id), UpdateBillInput{
		InvoiceAmount: body.InvoiceAmount,
		PaidAmount:    body.PaidAmount,
		BillingStatus: body.BillingStatus,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Bill updated successfully", bill, nil)
}

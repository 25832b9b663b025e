package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"rst-backend/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

// GET /api/v1/dashboard/summary
func (h *Handlers) GetSummary(c *fiber.Ctx) error {
	summary, err := h.Service.GetSummary(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dashboard summary fetched successfully", summary, nil)
}

package movement

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"rst-backend/internal/pkg/dateutil"
	"rst-backend/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

type bulkUpdateRequest struct {
	IDs                 []uint          `json:"ids"`
	NewStatus           string          `json:"newStatus"`
	JobNumber           string          `json:"jobNumber"`
	Date                string          `json:"date"`
	PortID              *uint           `json:"portId"`
	AddressBookID       *uint           `json:"addressBookId"`
	MaintenanceStatus   *string         `json:"maintenanceStatus"`
	Remarks             string          `json:"remarks"`
	VesselName          string          `json:"vesselName"`
	ExpectedPreviousIDs map[string]uint `json:"expectedPreviousIds"`
}

// POST /api/v1/movements/bulk-update
func (h *Handlers) BulkUpdate(c *fiber.Ctx) error {
	var body bulkUpdateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if len(body.IDs) == 0 {
		return response.Error(c, "ids is required", 400, nil)
	}
	if body.NewStatus == "" {
		return response.Error(c, "newStatus is required", 400, nil)
	}

	expected := map[uint]uint{}
	for k, v := range body.ExpectedPreviousIDs {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return response.Error(c, "Invalid container id in expectedPreviousIds", 400, nil)
		}
		expected[uint(id)] = v
	}

	rows, err := h.Service.AppendStatus(c.Context(), AppendStatusInput{
		InventoryIDs:        body.IDs,
		NewStatus:           body.NewStatus,
		JobNumber:           body.JobNumber,
		Date:                dateutil.Parse(body.Date),
		PortID:              body.PortID,
		AddressBookID:       body.AddressBookID,
		MaintenanceStatus:   body.MaintenanceStatus,
		Remarks:             body.Remarks,
		VesselName:          body.VesselName,
		ExpectedPreviousIDs: expected,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Movement history updated", rows, nil)
}

type updateMovementRequest struct {
	Date    *string `json:"date"`
	Remarks *string `json:"remarks"`
}

// PATCH /api/v1/movements/:id — administrative correction of date/remarks.
func (h *Handlers) UpdateMovement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid movement id", 400, nil)
	}
	var body updateMovementRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	in := UpdateMovementInput{Remarks: body.Remarks}
	if body.Date != nil {
		in.Date = dateutil.Parse(*body.Date)
		if in.Date == nil {
			return response.Error(c, "Invalid date", 400, nil)
		}
	}
	row, err := h.Service.UpdateMovement(c.Context(), uint(id), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Movement history updated", row, nil)
}

// GET /api/v1/movements/latest — one row per container, its current state.
func (h *Handlers) Latest(c *fiber.Ctx) error {
	rows, err := h.Service.LatestPerContainer(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Current container states fetched", rows, nil)
}

// GET /api/v1/movements/history/:inventoryId
func (h *Handlers) History(c *fiber.Ctx) error {
	id, err := c.ParamsInt("inventoryId")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid inventory id", 400, nil)
	}
	rows, err := h.Service.HistoryForContainer(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Movement history fetched", rows, nil)
}

// GET /api/v1/movements?exclude=AVAILABLE — operational view.
func (h *Handlers) All(c *fiber.Ctx) error {
	exclude := c.Query("exclude", StatusAvailable)
	rows, err := h.Service.HistoryExcept(c.Context(), exclude)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Movement history fetched", rows, nil)
}

// GET /api/v1/movements/can-edit/:inventoryId
func (h *Handlers) CanEdit(c *fiber.Ctx) error {
	id, err := c.ParamsInt("inventoryId")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid inventory id", 400, nil)
	}
	ok, reason, err := h.Service.CanEditInventory(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Edit eligibility checked", fiber.Map{"canEdit": ok, "reason": reason}, nil)
}

// GET /api/v1/movements/can-delete/:inventoryId
func (h *Handlers) CanDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("inventoryId")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid inventory id", 400, nil)
	}
	ok, reason, err := h.Service.CanDeleteContainer(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Delete eligibility checked", fiber.Map{"canDelete": ok, "reason": reason}, nil)
}

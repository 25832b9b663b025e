package leasing

import (
	"github.com/gofiber/fiber/v2"

	"rst-backend/internal/pkg/dateutil"
	"rst-backend/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

type leasingRequest struct {
	OwnershipType            string `json:"ownershipType"`
	LeasingRefNo             string `json:"leasingRefNo"`
	LessorAddressBookID      *uint  `json:"leasoraddressbookId"`
	OnHireDate               string `json:"onHireDate"`
	OffHireDate              string `json:"offHireDate"`
	PortID                   *uint  `json:"portId"`
	OnHireDepotAddressBookID *uint  `json:"onHireDepotaddressbookId"`
}

// POST /api/v1/inventory/:inventoryId/leasing
func (h *Handlers) Create(c *fiber.Ctx) error {
	inventoryID, err := c.ParamsInt("inventoryId")
	if err != nil || inventoryID <= 0 {
		return response.Error(c, "Invalid inventory id", 400, nil)
	}
	var body leasingRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	leasing, err := h.Service.Create(c.Context(), uint(inventoryID), LeasingInput{
		OwnershipType:            body.OwnershipType,
		LeasingRefNo:             body.LeasingRefNo,
		LessorAddressBookID:      body.LessorAddressBookID,
		OnHireDate:               dateutil.Parse(body.OnHireDate),
		OffHireDate:              dateutil.Parse(body.OffHireDate),
		PortID:                   body.PortID,
		OnHireDepotAddressBookID: body.OnHireDepotAddressBookID,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Leasing info created successfully", leasing, nil)
}

type updateLeasingRequest struct {
	OwnershipType            *string `json:"ownershipType"`
	LeasingRefNo             *string `json:"leasingRefNo"`
	LessorAddressBookID      *uint   `json:"leasoraddressbookId"`
	OnHireDate               *string `json:"onHireDate"`
	OffHireDate              *string `json:"offHireDate"`
	PortID                   *uint   `json:"portId"`
	OnHireDepotAddressBookID *uint   `json:"onHireDepotaddressbookId"`
}

// PATCH /api/v1/leasing-info/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid leasing info id", 400, nil)
	}
	var body updateLeasingRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	in := UpdateLeasingInput{
		OwnershipType:            body.OwnershipType,
		LeasingRefNo:             body.LeasingRefNo,
		LessorAddressBookID:      body.LessorAddressBookID,
		PortID:                   body.PortID,
		OnHireDepotAddressBookID: body.OnHireDepotAddressBookID,
	}
	if body.OnHireDate != nil {
		if in.OnHireDate = dateutil.Parse(*body.OnHireDate); in.OnHireDate == nil {
			return response.Error(c, "Invalid onHireDate", 400, nil)
		}
	}
	if body.OffHireDate != nil {
		if in.OffHireDate = dateutil.Parse(*body.OffHireDate); in.OffHireDate == nil {
			return response.Error(c, "Invalid offHireDate", 400, nil)
		}
	}

	leasing, err := h.Service.Update(c.Context(), uint(id), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leasing info updated successfully", leasing, nil)
}

// DELETE /api/v1/leasing-info/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid leasing info id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leasing info deleted successfully", nil, nil)
}

// GET /api/v1/inventory/:inventoryId/leasing
func (h *Handlers) ListForInventory(c *fiber.Ctx) error {
	inventoryID, err := c.ParamsInt("inventoryId")
	if err != nil || inventoryID <= 0 {
		return response.Error(c, "Invalid inventory id", 400, nil)
	}
	infos, err := h.Service.ListForInventory(c.Context(), uint(inventoryID))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leasing info fetched successfully", infos, nil)
}

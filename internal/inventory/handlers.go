package inventory

import (
	"github.com/gofiber/fiber/v2"

	"rst-backend/internal/pkg/dateutil"
	"rst-backend/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

type leasingSeedRequest struct {
	OwnershipType            string `json:"ownershipType"`
	LeasingRefNo             string `json:"leasingRefNo"`
	LessorAddressBookID      *uint  `json:"leasoraddressbookId"`
	OnHireDate               string `json:"onHireDate"`
	OffHireDate              string `json:"offHireDate"`
	PortID                   *uint  `json:"portId"`
	OnHireDepotAddressBookID *uint  `json:"onHireDepotaddressbookId"`
}

type createInventoryRequest struct {
	ContainerNumber   string             `json:"containerNumber"`
	ContainerSize     string             `json:"containerSize"`
	ContainerClass    string             `json:"containerClass"`
	ContainerCapacity string             `json:"containerCapacity"`
	CapacityUnit      string             `json:"capacityUnit"`
	TareWeight        string             `json:"tareWeight"`
	Leasing           *leasingSeedRequest `json:"leasingInfo"`
}

// POST /api/v1/inventory
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createInventoryRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	in := CreateInventoryInput{
		ContainerNumber:   body.ContainerNumber,
		ContainerSize:     body.ContainerSize,
		ContainerClass:    body.ContainerClass,
		ContainerCapacity: body.ContainerCapacity,
		CapacityUnit:      body.CapacityUnit,
		TareWeight:        body.TareWeight,
	}
	if body.Leasing != nil {
		in.Leasing = &LeasingSeed{
			OwnershipType:            body.Leasing.OwnershipType,
			LeasingRefNo:             body.Leasing.LeasingRefNo,
			LessorAddressBookID:      body.Leasing.LessorAddressBookID,
			OnHireDate:               dateutil.Parse(body.Leasing.OnHireDate),
			OffHireDate:              dateutil.Parse(body.Leasing.OffHireDate),
			PortID:                   body.Leasing.PortID,
			OnHireDepotAddressBookID: body.Leasing.OnHireDepotAddressBookID,
		}
	}

	inv, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Container created successfully", inv, nil)
}

type updateInventoryRequest struct {
	ContainerNumber   *string `json:"containerNumber"`
	ContainerSize     *string `json:"containerSize"`
	ContainerClass    *string `json:"containerClass"`
	ContainerCapacity *string `json:"containerCapacity"`
	CapacityUnit      *string `json:"capacityUnit"`
	TareWeight        *string `json:"tareWeight"`
}

// PUT /api/v1/inventory/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid inventory id", 400, nil)
	}
	var body updateInventoryRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	inv, err := h.Service.Update(c.Context(), uint(id), UpdateInventoryInput{
		ContainerNumber:   body.ContainerNumber,
		ContainerSize:     body.ContainerSize,
		ContainerClass:    body.ContainerClass,
		ContainerCapacity: body.ContainerCapacity,
		CapacityUnit:      body.CapacityUnit,
		TareWeight:        body.TareWeight,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Container updated successfully", inv, nil)
}

// DELETE /api/v1/inventory/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid inventory id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Container deleted successfully", nil, nil)
}

// GET /api/v1/inventory
func (h *Handlers) GetAll(c *fiber.Ctx) error {
	views, err := h.Service.GetAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Containers fetched successfully", views, nil)
}

// GET /api/v1/inventory/:id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid inventory id", 400, nil)
	}
	view, err := h.Service.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Container fetched successfully", view, nil)
}

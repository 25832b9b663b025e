package shipments

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"rst-backend/internal/pkg/dateutil"
	"rst-backend/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

type createShipmentRequest struct {
	Date                          string `json:"date"`
	PolPortID                     uint   `json:"polPortId"`
	PodPortID                     uint   `json:"podPortId"`
	CustomerAddressBookID         *uint  `json:"custAddressBookId"`
	CarrierAddressBookID          *uint  `json:"carrierAddressBookId"`
	EmptyReturnDepotAddressBookID *uint  `json:"emptyReturnDepotAddressBookId"`
	VesselName                    string `json:"vesselName"`
	Remarks                       string `json:"remarks"`
	ContainerIDs                  []uint `json:"containerIds"`
}

// POST /api/v1/shipments
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createShipmentRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if body.PolPortID == 0 || body.PodPortID == 0 {
		return response.Error(c, "polPortId and podPortId are required", 400, nil)
	}
	date := dateutil.Parse(body.Date)
	if date == nil {
		return response.Error(c, "A valid date is required", 400, nil)
	}

	shipment, err := h.Service.Create(c.Context(), CreateShipmentInput{
		Date:                          *date,
		PolPortID:                     body.PolPortID,
		PodPortID:                     body.PodPortID,
		CustomerAddressBookID:         body.CustomerAddressBookID,
		CarrierAddressBookID:          body.CarrierAddressBookID,
		EmptyReturnDepotAddressBookID: body.EmptyReturnDepotAddressBookID,
		VesselName:                    body.VesselName,
		Remarks:                       body.Remarks,
		InventoryIDs:                  body.ContainerIDs,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Shipment created successfully", shipment, nil)
}

type updateShipmentRequest struct {
	Date                          *string `json:"date"`
	PolPortID                     *uint   `json:"polPortId"`
	PodPortID                     *uint   `json:"podPortId"`
	CustomerAddressBookID         *uint   `json:"custAddressBookId"`
	CarrierAddressBookID          *uint   `json:"carrierAddressBookId"`
	EmptyReturnDepotAddressBookID *uint   `json:"emptyReturnDepotAddressBookId"`
	VesselName                    *string `json:"vesselName"`
	Remarks                       *string `json:"remarks"`
	ContainerIDs                  *[]uint `json:"containerIds"`
}

// PUT /api/v1/shipments/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid shipment id", 400, nil)
	}
	var body updateShipmentRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	in := UpdateShipmentInput{
		PolPortID:                     body.PolPortID,
		PodPortID:                     body.PodPortID,
		CustomerAddressBookID:         body.CustomerAddressBookID,
		CarrierAddressBookID:          body.CarrierAddressBookID,
		EmptyReturnDepotAddressBookID: body.EmptyReturnDepotAddressBookID,
		VesselName:                    body.VesselName,
		Remarks:                       body.Remarks,
		InventoryIDs:                  body.ContainerIDs,
	}
	if body.Date != nil {
		var date *time.Time
		if date = dateutil.Parse(*body.Date); date == nil {
			return response.Error(c, "Invalid date", 400, nil)
		}
		in.Date = date
	}

	shipment, err := h.Service.Update(c.Context(), uint(id), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Shipment updated successfully", shipment, nil)
}

// GET /api/v1/shipments
func (h *Handlers) GetAll(c *fiber.Ctx) error {
	shipments, err := h.Service.GetAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Shipments fetched successfully", shipments, nil)
}

// GET /api/v1/shipments/:id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid shipment id", 400, nil)
	}
	shipment, err := h.Service.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Shipment fetched successfully", shipment, nil)
}

type cancelShipmentRequest struct {
	Remarks string `json:"remarks"`
}

// POST /api/v1/shipments/:id/cancel
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid shipment id", 400, nil)
	}
	var body cancelShipmentRequest
	_ = c.BodyParser(&body)

	shipment, err := h.Service.Cancel(c.Context(), uint(id), body.Remarks)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Shipment cancelled successfully", shipment, nil)
}

// DELETE /api/v1/shipments/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid shipment id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Shipment deleted successfully", nil, nil)
}

package repojobs

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"rst-backend/internal/pkg/dateutil"
	"rst-backend/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

type createRepoJobRequest struct {
	Date                          string `json:"date"`
	PolPortID                     uint   `json:"polPortId"`
	PodPortID                     uint   `json:"podPortId"`
	CarrierAddressBookID          *uint  `json:"carrierAddressBookId"`
	EmptyReturnDepotAddressBookID *uint  `json:"emptyReturnDepotAddressBookId"`
	VesselName                    string `json:"vesselName"`
	Remarks                       string `json:"remarks"`
	ContainerIDs                  []uint `json:"containerIds"`
}

// POST /api/v1/empty-repo-jobs
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createRepoJobRequest
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

	job, err := h.Service.Create(c.Context(), CreateRepoJobInput{
		Date:                          *date,
		PolPortID:                     body.PolPortID,
		PodPortID:                     body.PodPortID,
		CarrierAddressBookID:          body.CarrierAddressBookID,
		EmptyReturnDepotAddressBookID: body.EmptyReturnDepotAddressBookID,
		VesselName:                    body.VesselName,
		Remarks:                       body.Remarks,
		InventoryIDs:                  body.ContainerIDs,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Empty repo job created successfully", job, nil)
}

type updateRepoJobRequest struct {
	Date                          *string `json:"date"`
	PolPortID                     *uint   `json:"polPortId"`
	PodPortID                     *uint   `json:"podPortId"`
	CarrierAddressBookID          *uint   `json:"carrierAddressBookId"`
	EmptyReturnDepotAddressBookID *uint   `json:"emptyReturnDepotAddressBookId"`
	VesselName                    *string `json:"vesselName"`
	Remarks                       *string `json:"remarks"`
	ContainerIDs                  *[]uint `json:"containerIds"`
}

// PUT /api/v1/empty-repo-jobs/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid empty repo job id", 400, nil)
	}
	var body updateRepoJobRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	in := UpdateRepoJobInput{
		PolPortID:                     body.PolPortID,
		PodPortID:                     body.PodPortID,
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

	job, err := h.Service.Update(c.Context(), uint(id), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Empty repo job updated successfully", job, nil)
}

// GET /api/v1/empty-repo-jobs
func (h *Handlers) GetAll(c *fiber.Ctx) error {
	jobs, err := h.Service.GetAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Empty repo jobs fetched successfully", jobs, nil)
}

// GET /api/v1/empty-repo-jobs/:id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid empty repo job id", 400, nil)
	}
	job, err := h.Service.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Empty repo job fetched successfully", job, nil)
}

type cancelRepoJobRequest struct {
	Remarks string `json:"remarks"`
}

// POST /api/v1/empty-repo-jobs/:id/cancel
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid empty repo job id", 400, nil)
	}
	var body cancelRepoJobRequest
	_ = c.BodyParser(&body)

	job, err := h.Service.Cancel(c.Context(), uint(id), body.Remarks)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Empty repo job cancelled successfully", job, nil)
}

// DELETE /api/v1/empty-repo-jobs/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid empty repo job id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Empty repo job deleted successfully", nil, nil)
}

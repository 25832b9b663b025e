package inventory

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"rst-backend/internal/models"
	"rst-backend/internal/movement"
	"rst-backend/internal/pkg/apperror"
	"rst-backend/internal/pkg/validation"
)

type Service struct {
	DB       *gorm.DB
	Movement *movement.Service
}

// LeasingSeed is the optional leasing record supplied alongside a new
// container.
type LeasingSeed struct {
	OwnershipType            string
	LeasingRefNo             string
	LessorAddressBookID      *uint
	OnHireDate               *time.Time
	OffHireDate              *time.Time
	PortID                   *uint
	OnHireDepotAddressBookID *uint
}

type CreateInventoryInput struct {
	ContainerNumber   string
	ContainerSize     string
	ContainerClass    string
	ContainerCapacity string
	CapacityUnit      string
	TareWeight        string
	Leasing           *LeasingSeed
}

// Create registers a container. When leasing info with a complete on-hire
// location comes along, the ledger is seeded with an AVAILABLE row there so
// the container shows up for job planning immediately.
func (s *Service) Create(ctx context.Context, in CreateInventoryInput) (*models.Inventory, error) {
	if in.ContainerNumber == "" {
		return nil, apperror.Validation("containerNumber is required")
	}
	if !validation.IsValidContainerNumber(in.ContainerNumber) {
		return nil, apperror.Validation("containerNumber must be 4-11 uppercase letters or digits")
	}

	var created models.Inventory
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Inventory{}).
			Where("container_number = ?", in.ContainerNumber).
			Count(&count).Error; err != nil {
			return apperror.Wrap(err, "Failed to check container number")
		}
		if count > 0 {
			return apperror.Conflict("Container %s already exists", in.ContainerNumber)
		}

		created = models.Inventory{
			ContainerNumber:   in.ContainerNumber,
			ContainerSize:     in.ContainerSize,
			ContainerClass:    in.ContainerClass,
			ContainerCapacity: in.ContainerCapacity,
			CapacityUnit:      in.CapacityUnit,
			TareWeight:        in.TareWeight,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperror.Wrap(err, "Failed to create container")
		}

		if in.Leasing == nil {
			return nil
		}
		leasing := models.LeasingInfo{
			InventoryID:              created.ID,
			OwnershipType:            in.Leasing.OwnershipType,
			LeasingRefNo:             in.Leasing.LeasingRefNo,
			LessorAddressBookID:      in.Leasing.LessorAddressBookID,
			OnHireDate:               in.Leasing.OnHireDate,
			OffHireDate:              in.Leasing.OffHireDate,
			PortID:                   in.Leasing.PortID,
			OnHireDepotAddressBookID: in.Leasing.OnHireDepotAddressBookID,
		}
		if err := tx.Create(&leasing).Error; err != nil {
			return apperror.Wrap(err, "Failed to create leasing info")
		}

		if leasing.PortID != nil && leasing.OnHireDepotAddressBookID != nil {
			date := time.Now()
			if leasing.OnHireDate != nil {
				date = *leasing.OnHireDate
			}
			row := models.MovementHistory{
				InventoryID:   created.ID,
				Status:        movement.StatusAvailable,
				Date:          date,
				PortID:        leasing.PortID,
				AddressBookID: leasing.OnHireDepotAddressBookID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return apperror.Wrap(err, "Failed to append AVAILABLE entry")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

type UpdateInventoryInput struct {
	ContainerNumber   *string
	ContainerSize     *string
	ContainerClass    *string
	ContainerCapacity *string
	CapacityUnit      *string
	TareWeight        *string
}

// Update patches a container's physical attributes. Edits are refused while
// the container is anywhere but AVAILABLE.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInventoryInput) (*models.Inventory, error) {
	ok, reason, err := s.Movement.CanEditInventory(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Conflict("%s", reason)
	}

	var updated models.Inventory
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Inventory
		if err := tx.First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Container %d not found", id)
			}
			return apperror.Wrap(err, "Failed to load container")
		}

		if in.ContainerNumber != nil && *in.ContainerNumber != inv.ContainerNumber {
			if !validation.IsValidContainerNumber(*in.ContainerNumber) {
				return apperror.Validation("containerNumber must be 4-11 uppercase letters or digits")
			}
			var count int64
			if err := tx.Model(&models.Inventory{}).
				Where("container_number = ? AND id <> ?", *in.ContainerNumber, id).
				Count(&count).Error; err != nil {
				return apperror.Wrap(err, "Failed to check container number")
			}
			if count > 0 {
				return apperror.Conflict("Container %s already exists", *in.ContainerNumber)
			}
			inv.ContainerNumber = *in.ContainerNumber
		}
		if in.ContainerSize != nil {
			inv.ContainerSize = *in.ContainerSize
		}
		if in.ContainerClass != nil {
			inv.ContainerClass = *in.ContainerClass
		}
		if in.ContainerCapacity != nil {
			inv.ContainerCapacity = *in.ContainerCapacity
		}
		if in.CapacityUnit != nil {
			inv.CapacityUnit = *in.CapacityUnit
		}
		if in.TareWeight != nil {
			inv.TareWeight = *in.TareWeight
		}

		if err := tx.Save(&inv).Error; err != nil {
			return apperror.Wrap(err, "Failed to update container")
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a container that never physically moved. Its leasing
// records and pre-movement ledger rows go with it.
func (s *Service) Delete(ctx context.Context, id uint) error {
	ok, reason, err := s.Movement.CanDeleteContainer(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Conflict("%s", reason)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Inventory{}, id)
		if res.Error != nil {
			return apperror.Wrap(res.Error, "Failed to delete container")
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("Container %d not found", id)
		}
		if err := tx.Where("inventory_id = ?", id).Delete(&models.LeasingInfo{}).Error; err != nil {
			return apperror.Wrap(err, "Failed to delete leasing info")
		}
		if err := tx.Where("inventory_id = ?", id).Delete(&models.MovementHistory{}).Error; err != nil {
			return apperror.Wrap(err, "Failed to delete ledger rows")
		}
		return nil
	})
}

// InventoryView is a container plus its current ledger position.
type InventoryView struct {
	models.Inventory
	CurrentStatus string     `json:"currentStatus"`
	StatusDate    *time.Time `json:"statusDate,omitempty"`
	PortID        *uint      `json:"portId,omitempty"`
	AddressBookID *uint      `json:"addressBookId,omitempty"`
	JobNumber     string     `json:"jobNumber,omitempty"`
}

// GetAll lists containers decorated with the latest ledger row per
// container. Containers without ledger rows report an empty status.
func (s *Service) GetAll(ctx context.Context) ([]InventoryView, error) {
	var inventories []models.Inventory
	if err := s.DB.WithContext(ctx).Preload("LeasingInfos").Order("id ASC").Find(&inventories).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch containers")
	}

	latest, err := s.Movement.LatestPerContainer(ctx)
	if err != nil {
		return nil, err
	}
	byInventory := map[uint]models.MovementHistory{}
	for _, row := range latest {
		byInventory[row.InventoryID] = row
	}

	views := make([]InventoryView, 0, len(inventories))
	for _, inv := range inventories {
		view := InventoryView{Inventory: inv}
		if row, ok := byInventory[inv.ID]; ok {
			view.CurrentStatus = row.Status
			d := row.Date
			view.StatusDate = &d
			view.PortID = row.PortID
			view.AddressBookID = row.AddressBookID
			view.JobNumber = row.JobNumber
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*InventoryView, error) {
	var inv models.Inventory
	err := s.DB.WithContext(ctx).Preload("LeasingInfos").First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Container %d not found", id)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch container")
	}

	view := InventoryView{Inventory: inv}
	latest, err := movement.LatestForContainer(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		view.CurrentStatus = latest.Status
		d := latest.Date
		view.StatusDate = &d
		view.PortID = latest.PortID
		view.AddressBookID = latest.AddressBookID
		view.JobNumber = latest.JobNumber
	}
	return &view, nil
}

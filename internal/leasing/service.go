package leasing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"rst-backend/internal/models"
	"rst-backend/internal/movement"
	"rst-backend/internal/pkg/apperror"
)

type Service struct {
	DB *gorm.DB
}

type LeasingInput struct {
	OwnershipType            string
	LeasingRefNo             string
	LessorAddressBookID      *uint
	OnHireDate               *time.Time
	OffHireDate              *time.Time
	PortID                   *uint
	OnHireDepotAddressBookID *uint
}

// Create opens a new leasing record for a container. The container must be
// idle (latest ledger status AVAILABLE or ALLOTTED, or no ledger at all) and
// free of any job assignment, since a new record establishes the on-hire
// location released containers return to. A complete record also seeds the
// ledger with an AVAILABLE row at the on-hire depot so the container becomes
// visible to job planning.
func (s *Service) Create(ctx context.Context, inventoryID uint, in LeasingInput) (*models.LeasingInfo, error) {
	var created models.LeasingInfo
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Inventory
		if err := tx.First(&inv, inventoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Container %d not found", inventoryID)
			}
			return apperror.Wrap(err, "Failed to load container")
		}

		if err := guardIdle(tx, inventoryID); err != nil {
			return err
		}
		if err := guardUnassigned(tx, inventoryID); err != nil {
			return err
		}

		created = models.LeasingInfo{
			InventoryID:              inventoryID,
			OwnershipType:            in.OwnershipType,
			LeasingRefNo:             in.LeasingRefNo,
			LessorAddressBookID:      in.LessorAddressBookID,
			OnHireDate:               in.OnHireDate,
			OffHireDate:              in.OffHireDate,
			PortID:                   in.PortID,
			OnHireDepotAddressBookID: in.OnHireDepotAddressBookID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperror.Wrap(err, "Failed to create leasing info")
		}

		if in.PortID != nil && in.OnHireDepotAddressBookID != nil {
			date := time.Now()
			if in.OnHireDate != nil {
				date = *in.OnHireDate
			}
			row := models.MovementHistory{
				InventoryID:   inventoryID,
				Status:        movement.StatusAvailable,
				Date:          date,
				PortID:        in.PortID,
				AddressBookID: in.OnHireDepotAddressBookID,
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

type UpdateLeasingInput struct {
	OwnershipType            *string
	LeasingRefNo             *string
	LessorAddressBookID      *uint
	OnHireDate               *time.Time
	OffHireDate              *time.Time
	PortID                   *uint
	OnHireDepotAddressBookID *uint
}

// Update patches a leasing record. Commercial terms freeze once the
// container progresses past ALLOTTED; additionally the on-hire location
// (port or depot) cannot change while the container sits on any job, since
// released containers return to exactly this location.
func (s *Service) Update(ctx context.Context, id uint, in UpdateLeasingInput) (*models.LeasingInfo, error) {
	var updated models.LeasingInfo
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var leasing models.LeasingInfo
		if err := tx.First(&leasing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Leasing info %d not found", id)
			}
			return apperror.Wrap(err, "Failed to load leasing info")
		}

		if err := guardIdle(tx, leasing.InventoryID); err != nil {
			return err
		}
		if in.PortID != nil || in.OnHireDepotAddressBookID != nil {
			if err := guardUnassigned(tx, leasing.InventoryID); err != nil {
				return err
			}
		}

		if in.OwnershipType != nil {
			leasing.OwnershipType = *in.OwnershipType
		}
		if in.LeasingRefNo != nil {
			leasing.LeasingRefNo = *in.LeasingRefNo
		}
		if in.LessorAddressBookID != nil {
			leasing.LessorAddressBookID = in.LessorAddressBookID
		}
		if in.OnHireDate != nil {
			leasing.OnHireDate = in.OnHireDate
		}
		if in.OffHireDate != nil {
			leasing.OffHireDate = in.OffHireDate
		}
		if in.PortID != nil {
			leasing.PortID = in.PortID
		}
		if in.OnHireDepotAddressBookID != nil {
			leasing.OnHireDepotAddressBookID = in.OnHireDepotAddressBookID
		}

		if err := tx.Save(&leasing).Error; err != nil {
			return apperror.Wrap(err, "Failed to update leasing info")
		}
		updated = leasing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a leasing record without any status guard. Off-hired
// containers keep their ledger.
func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.LeasingInfo{}, id)
	if res.Error != nil {
		return apperror.Wrap(res.Error, "Failed to delete leasing info")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Leasing info %d not found", id)
	}
	return nil
}

func (s *Service) ListForInventory(ctx context.Context, inventoryID uint) ([]models.LeasingInfo, error) {
	var infos []models.LeasingInfo
	err := s.DB.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("id ASC").
		Find(&infos).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch leasing info")
	}
	return infos, nil
}

// guardIdle rejects leasing changes while the container is mid-journey.
func guardIdle(tx *gorm.DB, inventoryID uint) error {
	latest, err := movement.LatestForContainer(tx, inventoryID)
	if err != nil {
		return err
	}
	if latest == nil || latest.Status == movement.StatusAvailable || latest.Status == movement.StatusAllotted {
		return nil
	}
	return apperror.Conflict("Container is currently %s; leasing info cannot change mid-journey", latest.Status)
}

// guardUnassigned rejects on-hire location changes while the container is
// assigned to a shipment or an empty repo job.
func guardUnassigned(tx *gorm.DB, inventoryID uint) error {
	var n int64
	if err := tx.Model(&models.ShipmentContainer{}).Where("inventory_id = ?", inventoryID).Count(&n).Error; err != nil {
		return apperror.Wrap(err, "Failed to check shipment assignments")
	}
	if n > 0 {
		return conflictAssigned(n, "shipment")
	}
	if err := tx.Model(&models.RepoShipmentContainer{}).Where("inventory_id = ?", inventoryID).Count(&n).Error; err != nil {
		return apperror.Wrap(err, "Failed to check repo job assignments")
	}
	if n > 0 {
		return conflictAssigned(n, "empty repo job")
	}
	return nil
}

func conflictAssigned(n int64, kind string) error {
	plural := ""
	if n > 1 {
		plural = "s"
	}
	return apperror.Conflict("Container is assigned to %d %s%s; on-hire location cannot change", n, kind, plural)
}

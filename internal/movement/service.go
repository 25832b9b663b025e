package movement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rst-backend/internal/models"
	"rst-backend/internal/pkg/apperror"
)

type Service struct {
	DB *gorm.DB
}

// LatestForContainer returns the container's current-state row: latest date,
// ties broken by higher id. Nil when the container has no ledger rows.
func LatestForContainer(tx *gorm.DB, inventoryID uint) (*models.MovementHistory, error) {
	var row models.MovementHistory
	err := tx.Where("inventory_id = ?", inventoryID).
		Order("date DESC, id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load movement history")
	}
	return &row, nil
}

// AppendStatusInput is the bulk status-change request from the UI workflow.
type AppendStatusInput struct {
	InventoryIDs      []uint
	NewStatus         string
	JobNumber         string
	Date              *time.Time
	PortID            *uint
	AddressBookID     *uint
	MaintenanceStatus *string
	Remarks           string
	VesselName        string

	// ExpectedPreviousIDs optionally pins the latest row id per container;
	// the batch fails with Conflict when the ledger moved underneath the
	// caller (compare-and-append).
	ExpectedPreviousIDs map[uint]uint
}

// AppendStatus resolves and appends one ledger row per container inside a
// single transaction. A single unresolvable container aborts the whole
// batch.
func (s *Service) AppendStatus(ctx context.Context, in AppendStatusInput) ([]models.MovementHistory, error) {
	if len(in.InventoryIDs) == 0 {
		return nil, apperror.Validation("At least one container id is required")
	}

	var rows []models.MovementHistory
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, jobNumber, err := lookupJob(tx, in.JobNumber)
		if err != nil {
			return err
		}

		date := time.Now()
		if in.Date != nil {
			date = *in.Date
		}

		for _, invID := range in.InventoryIDs {
			prev, err := LatestForContainer(tx, invID)
			if err != nil {
				return err
			}
			if prev == nil {
				return apperror.NotFound("No movement history found for container %d", invID)
			}
			if expected, ok := in.ExpectedPreviousIDs[invID]; ok && expected != prev.ID {
				return apperror.Conflict("Movement history for container %d changed: expected latest row %d, found %d", invID, expected, prev.ID)
			}

			resolved, err := ResolveTransition(TransitionInput{
				RequestedStatus: in.NewStatus,
				Previous:        prev,
				Job:             job,
				PortID:          in.PortID,
				AddressBookID:   in.AddressBookID,
				Remarks:         in.Remarks,
				VesselName:      in.VesselName,
			})
			if err != nil {
				return err
			}

			row := models.MovementHistory{
				InventoryID:       invID,
				Status:            resolved.Status,
				Date:              date,
				PortID:            resolved.PortID,
				AddressBookID:     resolved.AddressBookID,
				MaintenanceStatus: in.MaintenanceStatus,
				Remarks:           resolved.Remarks,
				VesselName:        resolved.VesselName,
				JobNumber:         jobNumber,
			}
			if job.Shipment != nil {
				row.ShipmentID = &job.Shipment.ID
			}
			if job.RepoJob != nil {
				row.EmptyRepoJobID = &job.RepoJob.ID
			}
			if err := tx.Create(&row).Error; err != nil {
				return apperror.Wrap(err, "Failed to append movement history")
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// lookupJob finds the owning shipment or empty-repo job by job number. An
// empty job number means a lateral move with no owning job.
func lookupJob(tx *gorm.DB, jobNumber string) (JobContext, string, error) {
	if jobNumber == "" {
		return JobContext{}, "", nil
	}
	var shipment models.Shipment
	err := tx.Where("job_number = ?", jobNumber).First(&shipment).Error
	if err == nil {
		return JobContext{Shipment: &shipment}, shipment.JobNumber, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return JobContext{}, "", apperror.Wrap(err, "Failed to look up shipment")
	}
	var repoJob models.EmptyRepoJob
	err = tx.Where("job_number = ?", jobNumber).First(&repoJob).Error
	if err == nil {
		return JobContext{RepoJob: &repoJob}, repoJob.JobNumber, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return JobContext{}, "", apperror.Wrap(err, "Failed to look up empty repo job")
	}
	return JobContext{}, "", apperror.NotFound("No shipment or empty repo job found for job number %s", jobNumber)
}

// UpdateMovementInput patches incidental fields only; status and location
// are immutable once written.
type UpdateMovementInput struct {
	Date    *time.Time
	Remarks *string
}

func (s *Service) UpdateMovement(ctx context.Context, id uint, in UpdateMovementInput) (*models.MovementHistory, error) {
	var row models.MovementHistory
	if err := s.DB.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Movement history %d not found", id)
		}
		return nil, apperror.Wrap(err, "Failed to load movement history")
	}

	updates := map[string]interface{}{}
	if in.Date != nil {
		updates["date"] = *in.Date
	}
	if in.Remarks != nil {
		updates["remarks"] = *in.Remarks
	}
	if len(updates) == 0 {
		return &row, nil
	}
	if err := s.DB.WithContext(ctx).Model(&row).Updates(updates).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to update movement history")
	}
	return &row, nil
}

// LatestPerContainer returns one row per container: its current state. The
// correlated subquery keeps the query at one row per distinct container
// instead of scanning the full ledger in memory.
func (s *Service) LatestPerContainer(ctx context.Context) ([]models.MovementHistory, error) {
	var rows []models.MovementHistory
	err := s.DB.WithContext(ctx).
		Where(`id = (SELECT m2.id FROM movement_histories m2
			WHERE m2.inventory_id = movement_histories.inventory_id
			ORDER BY m2.date DESC, m2.id DESC LIMIT 1)`).
		Order("inventory_id").
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load current container states")
	}
	return rows, nil
}

// HistoryForContainer returns the container's full ledger, newest first.
func (s *Service) HistoryForContainer(ctx context.Context, inventoryID uint) ([]models.MovementHistory, error) {
	var rows []models.MovementHistory
	err := s.DB.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("date DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load movement history")
	}
	return rows, nil
}

// HistoryExcept returns all ledger rows excluding one status; the
// operational dashboard uses it to hide idle AVAILABLE rows.
func (s *Service) HistoryExcept(ctx context.Context, statusToExclude string) ([]models.MovementHistory, error) {
	var rows []models.MovementHistory
	err := s.DB.WithContext(ctx).
		Where("status <> ?", Normalize(statusToExclude)).
		Order("date DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load movement history")
	}
	return rows, nil
}

// CanEditInventory allows edits only while the container's latest ledger
// status is AVAILABLE (or it has no ledger rows at all).
func (s *Service) CanEditInventory(ctx context.Context, inventoryID uint) (bool, string, error) {
	latest, err := LatestForContainer(s.DB.WithContext(ctx), inventoryID)
	if err != nil {
		return false, "", err
	}
	if latest == nil || latest.Status == StatusAvailable {
		return true, "", nil
	}
	return false, fmt.Sprintf("Container is currently %s", latest.Status), nil
}

// CanDeleteContainer applies the deletion-eligibility rule: deletable only
// when the container never physically moved after allotment and its latest
// row carries no job reference. Movement history is preserved for audit, so
// a container that moved once is never deletable again.
func (s *Service) CanDeleteContainer(ctx context.Context, inventoryID uint) (bool, string, error) {
	var rows []models.MovementHistory
	err := s.DB.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return false, "", apperror.Wrap(err, "Failed to load movement history")
	}
	if len(rows) == 0 {
		return true, "", nil
	}
	for _, row := range rows {
		if movedStatuses[row.Status] {
			return false, fmt.Sprintf("Container has physical movement history (%s) and cannot be deleted", row.Status), nil
		}
	}
	latest := rows[len(rows)-1]
	if latest.ShipmentID != nil || latest.EmptyRepoJobID != nil {
		return false, fmt.Sprintf("Container is allotted to job %s; remove it from the job first", latest.JobNumber), nil
	}
	return true, "", nil
}

package repojobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"rst-backend/internal/jobevents"
	"rst-backend/internal/models"
	"rst-backend/internal/movement"
	"rst-backend/internal/pkg/apperror"
	"rst-backend/internal/refnum"
)

type Service struct {
	DB *gorm.DB
}

type CreateRepoJobInput struct {
	Date                          time.Time
	PolPortID                     uint
	PodPortID                     uint
	CarrierAddressBookID          *uint
	EmptyReturnDepotAddressBookID *uint
	VesselName                    string
	Remarks                       string
	InventoryIDs                  []uint
}

// Create mirrors shipment creation with one deliberate asymmetry: the ER
// sequence is global across all routes, while shipment house BLs count per
// POL/POD pair.
func (s *Service) Create(ctx context.Context, in CreateRepoJobInput) (*models.EmptyRepoJob, error) {
	if in.Date.IsZero() {
		return nil, apperror.Validation("Job date is required")
	}

	var created models.EmptyRepoJob
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pol, pod, err := loadPorts(tx, in.PolPortID, in.PodPortID)
		if err != nil {
			return err
		}

		year2 := refnum.Year2(in.Date)
		seedPattern := fmt.Sprintf("RST/%%/%s/ER%%", year2)
		seq, err := refnum.Next(tx, refnum.EntityEmptyRepoJob, refnum.GlobalScope, year2,
			refnum.SeedFromColumn(&models.EmptyRepoJob{}, "job_number", seedPattern))
		if err != nil {
			return err
		}

		created = models.EmptyRepoJob{
			JobNumber:                     refnum.FormatRepoJobNumber(pol.PortCode, pod.PortCode, year2, seq),
			Date:                          in.Date,
			Status:                        models.JobStatusActive,
			Remarks:                       in.Remarks,
			PolPortID:                     in.PolPortID,
			PodPortID:                     in.PodPortID,
			CarrierAddressBookID:          in.CarrierAddressBookID,
			EmptyReturnDepotAddressBookID: in.EmptyReturnDepotAddressBookID,
			VesselName:                    in.VesselName,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperror.Wrap(err, "Failed to create empty repo job")
		}

		for _, invID := range in.InventoryIDs {
			if err := s.attachContainer(tx, &created, invID); err != nil {
				return err
			}
		}

		return jobevents.Record(tx, models.JobEntityEmptyRepoJob, created.ID, created.JobNumber, models.JobEventCreated, map[string]interface{}{
			"jobNumber":  created.JobNumber,
			"containers": len(in.InventoryIDs),
		})
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) attachContainer(tx *gorm.DB, job *models.EmptyRepoJob, invID uint) error {
	var inv models.Inventory
	if err := tx.First(&inv, invID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Container %d not found", invID)
		}
		return apperror.Wrap(err, "Failed to load container")
	}

	if err := tx.Create(&models.RepoShipmentContainer{
		EmptyRepoJobID:  job.ID,
		InventoryID:     invID,
		ContainerNumber: inv.ContainerNumber,
	}).Error; err != nil {
		return apperror.Wrap(err, "Failed to assign container")
	}

	prev, err := movement.LatestForContainer(tx, invID)
	if err != nil {
		return err
	}
	if prev == nil || (prev.PortID == nil && prev.AddressBookID == nil) {
		log.Warn().Uint("inventoryId", invID).Str("jobNumber", job.JobNumber).
			Msg("container has no resolvable ledger location, skipping ALLOTTED entry")
		return nil
	}
	row := models.MovementHistory{
		InventoryID:    invID,
		Status:         movement.StatusAllotted,
		Date:           job.Date,
		PortID:         prev.PortID,
		AddressBookID:  prev.AddressBookID,
		EmptyRepoJobID: &job.ID,
		JobNumber:      job.JobNumber,
	}
	if err := tx.Create(&row).Error; err != nil {
		return apperror.Wrap(err, "Failed to append ALLOTTED entry")
	}
	return nil
}

type UpdateRepoJobInput struct {
	Date                          *time.Time
	PolPortID                     *uint
	PodPortID                     *uint
	CarrierAddressBookID          *uint
	EmptyReturnDepotAddressBookID *uint
	VesselName                    *string
	Remarks                       *string
	InventoryIDs                  *[]uint
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateRepoJobInput) (*models.EmptyRepoJob, error) {
	var updated models.EmptyRepoJob
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.EmptyRepoJob
		if err := tx.Preload("Containers").First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Empty repo job %d not found", id)
			}
			return apperror.Wrap(err, "Failed to load empty repo job")
		}
		if job.Status == models.JobStatusCancelled {
			return apperror.Conflict("Empty repo job %s is cancelled and cannot be edited", job.JobNumber)
		}

		if in.Date != nil {
			job.Date = *in.Date
		}
		if in.PolPortID != nil {
			job.PolPortID = *in.PolPortID
		}
		if in.PodPortID != nil {
			job.PodPortID = *in.PodPortID
		}
		if in.CarrierAddressBookID != nil {
			job.CarrierAddressBookID = in.CarrierAddressBookID
		}
		if in.EmptyReturnDepotAddressBookID != nil {
			job.EmptyReturnDepotAddressBookID = in.EmptyReturnDepotAddressBookID
		}
		if in.VesselName != nil {
			job.VesselName = *in.VesselName
		}
		if in.Remarks != nil {
			job.Remarks = *in.Remarks
		}

		// The ER sequence is preserved; only the port-code prefix follows a
		// route change.
		if in.PolPortID != nil || in.PodPortID != nil {
			pol, pod, err := loadPorts(tx, job.PolPortID, job.PodPortID)
			if err != nil {
				return err
			}
			job.JobNumber = rederiveRepoJobNumber(job.JobNumber, pol.PortCode, pod.PortCode)
		}

		added, removed := 0, 0
		if in.InventoryIDs != nil {
			existing := map[uint]bool{}
			for _, rc := range job.Containers {
				existing[rc.InventoryID] = true
			}
			wanted := map[uint]bool{}
			for _, invID := range *in.InventoryIDs {
				wanted[invID] = true
			}

			for _, rc := range job.Containers {
				if wanted[rc.InventoryID] {
					continue
				}
				if err := s.releaseContainer(tx, &job, rc.InventoryID); err != nil {
					return err
				}
				removed++
			}
			for _, invID := range *in.InventoryIDs {
				if existing[invID] {
					continue
				}
				if err := s.attachContainer(tx, &job, invID); err != nil {
					return err
				}
				added++
			}
		}

		job.Containers = nil
		if err := tx.Save(&job).Error; err != nil {
			return apperror.Wrap(err, "Failed to update empty repo job")
		}
		if err := jobevents.Record(tx, models.JobEntityEmptyRepoJob, job.ID, job.JobNumber, models.JobEventUpdated, map[string]interface{}{
			"containersAdded":   added,
			"containersRemoved": removed,
		}); err != nil {
			return err
		}

		if err := tx.Preload("Containers").First(&updated, id).Error; err != nil {
			return apperror.Wrap(err, "Failed to reload empty repo job")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) releaseContainer(tx *gorm.DB, job *models.EmptyRepoJob, invID uint) error {
	prev, err := movement.LatestForContainer(tx, invID)
	if err != nil {
		return err
	}
	row := models.MovementHistory{
		InventoryID: invID,
		Status:      movement.StatusAvailable,
		Date:        time.Now(),
	}
	if prev != nil {
		row.PortID = prev.PortID
		row.AddressBookID = prev.AddressBookID
	}
	if err := tx.Create(&row).Error; err != nil {
		return apperror.Wrap(err, "Failed to append AVAILABLE entry")
	}
	if err := tx.Where("empty_repo_job_id = ? AND inventory_id = ?", job.ID, invID).
		Delete(&models.RepoShipmentContainer{}).Error; err != nil {
		return apperror.Wrap(err, "Failed to remove container assignment")
	}
	return nil
}

// Cancel marks the job CANCELLED and frees its containers to their leasing
// depots, soft-skipping incomplete leasing info.
func (s *Service) Cancel(ctx context.Context, id uint, remarks string) (*models.EmptyRepoJob, error) {
	var cancelled models.EmptyRepoJob
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.EmptyRepoJob
		if err := tx.Preload("Containers").First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Empty repo job %d not found", id)
			}
			return apperror.Wrap(err, "Failed to load empty repo job")
		}
		if job.Status == models.JobStatusCancelled {
			return apperror.Conflict("Empty repo job %s is already cancelled", job.JobNumber)
		}

		job.Status = models.JobStatusCancelled
		job.Remarks = fmt.Sprintf("Cancelled on %s", time.Now().Format("2006-01-02"))
		if remarks != "" {
			job.Remarks += ": " + remarks
		}
		containers := job.Containers
		job.Containers = nil
		if err := tx.Save(&job).Error; err != nil {
			return apperror.Wrap(err, "Failed to cancel empty repo job")
		}

		for _, rc := range containers {
			if err := freeToLeasingDepot(tx, rc.InventoryID, job.JobNumber); err != nil {
				return err
			}
		}

		if err := jobevents.Record(tx, models.JobEntityEmptyRepoJob, job.ID, job.JobNumber, models.JobEventCancelled, map[string]interface{}{
			"remarks": remarks,
		}); err != nil {
			return err
		}
		cancelled = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cancelled, nil
}

// Delete frees containers, purges the job's own ledger and assignment rows
// and removes the entity. Empty-repo jobs carry no bill, so there is nothing
// to detach.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.EmptyRepoJob
		if err := tx.Preload("Containers").First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Empty repo job %d not found", id)
			}
			return apperror.Wrap(err, "Failed to load empty repo job")
		}

		for _, rc := range job.Containers {
			if err := freeToLeasingDepot(tx, rc.InventoryID, job.JobNumber); err != nil {
				return err
			}
		}

		if err := tx.Where("empty_repo_job_id = ?", job.ID).Delete(&models.MovementHistory{}).Error; err != nil {
			return apperror.Wrap(err, "Failed to purge ledger rows")
		}
		if err := tx.Where("empty_repo_job_id = ?", job.ID).Delete(&models.RepoShipmentContainer{}).Error; err != nil {
			return apperror.Wrap(err, "Failed to purge container assignments")
		}

		if err := jobevents.Record(tx, models.JobEntityEmptyRepoJob, job.ID, job.JobNumber, models.JobEventDeleted, nil); err != nil {
			return err
		}
		if err := tx.Delete(&models.EmptyRepoJob{}, job.ID).Error; err != nil {
			return apperror.Wrap(err, "Failed to delete empty repo job")
		}
		return nil
	})
}

func (s *Service) GetAll(ctx context.Context) ([]models.EmptyRepoJob, error) {
	var jobs []models.EmptyRepoJob
	err := s.DB.WithContext(ctx).Preload("Containers").Order("created_at DESC").Find(&jobs).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch empty repo jobs")
	}
	return jobs, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*models.EmptyRepoJob, error) {
	var job models.EmptyRepoJob
	err := s.DB.WithContext(ctx).Preload("Containers").First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Empty repo job %d not found", id)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch empty repo job")
	}
	return &job, nil
}

// rederiveRepoJobNumber swaps the port-code prefix of RST/{POL}{POD}/{yy}/ER{seq}.
func rederiveRepoJobNumber(jobNumber, polCode, podCode string) string {
	return refnum.RederiveHouseBL(jobNumber, polCode, podCode)
}

func loadPorts(tx *gorm.DB, polID, podID uint) (*models.Port, *models.Port, error) {
	var pol, pod models.Port
	if err := tx.First(&pol, polID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("POL port %d not found", polID)
		}
		return nil, nil, apperror.Wrap(err, "Failed to load POL port")
	}
	if err := tx.First(&pod, podID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("POD port %d not found", podID)
		}
		return nil, nil, apperror.Wrap(err, "Failed to load POD port")
	}
	return &pol, &pod, nil
}

// freeToLeasingDepot appends an AVAILABLE row at the container's leasing
// depot, skipping containers whose leasing info is incomplete.
func freeToLeasingDepot(tx *gorm.DB, invID uint, jobNumber string) error {
	var leasing models.LeasingInfo
	err := tx.Where("inventory_id = ?", invID).Order("id DESC").First(&leasing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && (leasing.PortID == nil || leasing.OnHireDepotAddressBookID == nil)) {
		log.Warn().Uint("inventoryId", invID).Str("jobNumber", jobNumber).
			Msg("leasing info incomplete, skipping AVAILABLE entry")
		return nil
	}
	if err != nil {
		return apperror.Wrap(err, "Failed to load leasing info")
	}

	row := models.MovementHistory{
		InventoryID:   invID,
		Status:        movement.StatusAvailable,
		Date:          time.Now(),
		PortID:        leasing.PortID,
		AddressBookID: leasing.OnHireDepotAddressBookID,
	}
	if err := tx.Create(&row).Error; err != nil {
		return apperror.Wrap(err, "Failed to append AVAILABLE entry")
	}
	return nil
}

package shipments

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

type CreateShipmentInput struct {
	Date                          time.Time
	PolPortID                     uint
	PodPortID                     uint
	CustomerAddressBookID         *uint
	CarrierAddressBookID          *uint
	EmptyReturnDepotAddressBookID *uint
	VesselName                    string
	Remarks                       string
	InventoryIDs                  []uint
}

// Create inserts the shipment with its generated job number and house BL,
// commits the submitted containers, writes ALLOTTED ledger rows dated to the
// shipment's own date (not wall clock, so backdated entries land correctly)
// and auto-creates the zero-amount bill.
func (s *Service) Create(ctx context.Context, in CreateShipmentInput) (*models.Shipment, error) {
	if in.Date.IsZero() {
		return nil, apperror.Validation("Shipment date is required")
	}

	var created models.Shipment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pol, pod, err := loadPorts(tx, in.PolPortID, in.PodPortID)
		if err != nil {
			return err
		}

		year2 := refnum.Year2(in.Date)
		seq, err := refnum.Next(tx, refnum.EntityShipmentJob, refnum.GlobalScope, year2, refnum.SeedFromColumn(&models.Shipment{}, "job_number", year2+"/%"))
		if err != nil {
			return err
		}
		jobNumber := refnum.FormatJobNumber(year2, seq)

		routeKey := pol.PortCode + pod.PortCode
		blPrefix := fmt.Sprintf("RST/%s/%s/%%", routeKey, year2)
		blSeq, err := refnum.Next(tx, refnum.EntityHouseBL, routeKey, year2, refnum.SeedFromColumn(&models.Shipment{}, "house_bl", blPrefix))
		if err != nil {
			return err
		}

		created = models.Shipment{
			JobNumber:                     jobNumber,
			HouseBL:                       refnum.FormatHouseBL(pol.PortCode, pod.PortCode, year2, blSeq),
			Date:                          in.Date,
			Status:                        models.JobStatusActive,
			Remarks:                       in.Remarks,
			CustomerAddressBookID:         in.CustomerAddressBookID,
			PolPortID:                     in.PolPortID,
			PodPortID:                     in.PodPortID,
			CarrierAddressBookID:          in.CarrierAddressBookID,
			EmptyReturnDepotAddressBookID: in.EmptyReturnDepotAddressBookID,
			VesselName:                    in.VesselName,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperror.Wrap(err, "Failed to create shipment")
		}

		for _, invID := range in.InventoryIDs {
			if err := s.attachContainer(tx, &created, invID); err != nil {
				return err
			}
		}

		bill := models.BillManagement{
			ShipmentID:    &created.ID,
			BillingStatus: models.BillingStatusPending,
			PaymentStatus: models.PaymentStatusUnpaid,
			DueAmount:     0,
		}
		if err := tx.Create(&bill).Error; err != nil {
			return apperror.Wrap(err, "Failed to create bill")
		}

		return jobevents.Record(tx, models.JobEntityShipment, created.ID, jobNumber, models.JobEventCreated, map[string]interface{}{
			"jobNumber":  jobNumber,
			"houseBL":    created.HouseBL,
			"containers": len(in.InventoryIDs),
		})
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// attachContainer commits one container to the shipment and writes its
// ALLOTTED ledger row from the container's current ledger location. A
// container with no resolvable location gets assignment rows but no ledger
// row.
func (s *Service) attachContainer(tx *gorm.DB, shipment *models.Shipment, invID uint) error {
	var inv models.Inventory
	if err := tx.First(&inv, invID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Container %d not found", invID)
		}
		return apperror.Wrap(err, "Failed to load container")
	}

	if err := tx.Create(&models.ShipmentContainer{
		ShipmentID:      shipment.ID,
		InventoryID:     invID,
		ContainerNumber: inv.ContainerNumber,
	}).Error; err != nil {
		return apperror.Wrap(err, "Failed to assign container")
	}
	if err := tx.Create(&models.BillOfLadingContainer{
		ShipmentID:      shipment.ID,
		InventoryID:     invID,
		ContainerNumber: inv.ContainerNumber,
	}).Error; err != nil {
		return apperror.Wrap(err, "Failed to assign BL container")
	}

	prev, err := movement.LatestForContainer(tx, invID)
	if err != nil {
		return err
	}
	if prev == nil || (prev.PortID == nil && prev.AddressBookID == nil) {
		log.Warn().Uint("inventoryId", invID).Str("jobNumber", shipment.JobNumber).
			Msg("container has no resolvable ledger location, skipping ALLOTTED entry")
		return nil
	}
	row := models.MovementHistory{
		InventoryID:   invID,
		Status:        movement.StatusAllotted,
		Date:          shipment.Date,
		PortID:        prev.PortID,
		AddressBookID: prev.AddressBookID,
		ShipmentID:    &shipment.ID,
		JobNumber:     shipment.JobNumber,
	}
	if err := tx.Create(&row).Error; err != nil {
		return apperror.Wrap(err, "Failed to append ALLOTTED entry")
	}
	return nil
}

type UpdateShipmentInput struct {
	Date                          *time.Time
	PolPortID                     *uint
	PodPortID                     *uint
	CustomerAddressBookID         *uint
	CarrierAddressBookID          *uint
	EmptyReturnDepotAddressBookID *uint
	VesselName                    *string
	Remarks                       *string

	// InventoryIDs, when non-nil, replaces the container set. The diff
	// drives ledger rows: removed containers get AVAILABLE, new ones get
	// ALLOTTED, unchanged ones get nothing.
	InventoryIDs *[]uint
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateShipmentInput) (*models.Shipment, error) {
	var updated models.Shipment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shipment models.Shipment
		if err := tx.Preload("Containers").First(&shipment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Shipment %d not found", id)
			}
			return apperror.Wrap(err, "Failed to load shipment")
		}
		if shipment.Status == models.JobStatusCancelled {
			return apperror.Conflict("Shipment %s is cancelled and cannot be edited", shipment.JobNumber)
		}

		if in.Date != nil {
			shipment.Date = *in.Date
		}
		if in.PolPortID != nil {
			shipment.PolPortID = *in.PolPortID
		}
		if in.PodPortID != nil {
			shipment.PodPortID = *in.PodPortID
		}
		if in.CustomerAddressBookID != nil {
			shipment.CustomerAddressBookID = in.CustomerAddressBookID
		}
		if in.CarrierAddressBookID != nil {
			shipment.CarrierAddressBookID = in.CarrierAddressBookID
		}
		if in.EmptyReturnDepotAddressBookID != nil {
			shipment.EmptyReturnDepotAddressBookID = in.EmptyReturnDepotAddressBookID
		}
		if in.VesselName != nil {
			shipment.VesselName = *in.VesselName
		}
		if in.Remarks != nil {
			shipment.Remarks = *in.Remarks
		}

		// Job number is immutable; the house BL keeps its year/sequence but
		// the port-code prefix follows the current route.
		if in.PolPortID != nil || in.PodPortID != nil {
			pol, pod, err := loadPorts(tx, shipment.PolPortID, shipment.PodPortID)
			if err != nil {
				return err
			}
			shipment.HouseBL = refnum.RederiveHouseBL(shipment.HouseBL, pol.PortCode, pod.PortCode)
		}

		added, removed := 0, 0
		if in.InventoryIDs != nil {
			existing := map[uint]bool{}
			for _, sc := range shipment.Containers {
				existing[sc.InventoryID] = true
			}
			wanted := map[uint]bool{}
			for _, invID := range *in.InventoryIDs {
				wanted[invID] = true
			}

			for _, sc := range shipment.Containers {
				if wanted[sc.InventoryID] {
					continue
				}
				if err := s.releaseContainer(tx, &shipment, sc.InventoryID); err != nil {
					return err
				}
				removed++
			}
			for _, invID := range *in.InventoryIDs {
				if existing[invID] {
					continue
				}
				if err := s.attachContainer(tx, &shipment, invID); err != nil {
					return err
				}
				added++
			}
		}

		shipment.Containers = nil
		if err := tx.Save(&shipment).Error; err != nil {
			return apperror.Wrap(err, "Failed to update shipment")
		}
		if err := jobevents.Record(tx, models.JobEntityShipment, shipment.ID, shipment.JobNumber, models.JobEventUpdated, map[string]interface{}{
			"containersAdded":   added,
			"containersRemoved": removed,
		}); err != nil {
			return err
		}

		if err := tx.Preload("Containers").First(&updated, id).Error; err != nil {
			return apperror.Wrap(err, "Failed to reload shipment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// releaseContainer removes a container from the shipment and writes its
// AVAILABLE ledger row at its last known location.
func (s *Service) releaseContainer(tx *gorm.DB, shipment *models.Shipment, invID uint) error {
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
	if err := tx.Where("shipment_id = ? AND inventory_id = ?", shipment.ID, invID).
		Delete(&models.ShipmentContainer{}).Error; err != nil {
		return apperror.Wrap(err, "Failed to remove container assignment")
	}
	if err := tx.Where("shipment_id = ? AND inventory_id = ?", shipment.ID, invID).
		Delete(&models.BillOfLadingContainer{}).Error; err != nil {
		return apperror.Wrap(err, "Failed to remove BL assignment")
	}
	return nil
}

// Cancel marks the shipment CANCELLED (it is not deleted) and frees every
// assigned container back to AVAILABLE at its leasing depot. Containers with
// incomplete leasing info are skipped with a warning: historical data must
// not block administrative cleanup.
func (s *Service) Cancel(ctx context.Context, id uint, remarks string) (*models.Shipment, error) {
	var cancelled models.Shipment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shipment models.Shipment
		if err := tx.Preload("Containers").First(&shipment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Shipment %d not found", id)
			}
			return apperror.Wrap(err, "Failed to load shipment")
		}
		if shipment.Status == models.JobStatusCancelled {
			return apperror.Conflict("Shipment %s is already cancelled", shipment.JobNumber)
		}

		shipment.Status = models.JobStatusCancelled
		shipment.Remarks = fmt.Sprintf("Cancelled on %s", time.Now().Format("2006-01-02"))
		if remarks != "" {
			shipment.Remarks += ": " + remarks
		}
		containers := shipment.Containers
		shipment.Containers = nil
		if err := tx.Save(&shipment).Error; err != nil {
			return apperror.Wrap(err, "Failed to cancel shipment")
		}

		for _, sc := range containers {
			if err := freeToLeasingDepot(tx, sc.InventoryID, shipment.JobNumber); err != nil {
				return err
			}
		}

		if err := jobevents.Record(tx, models.JobEntityShipment, shipment.ID, shipment.JobNumber, models.JobEventCancelled, map[string]interface{}{
			"remarks": remarks,
		}); err != nil {
			return err
		}
		cancelled = shipment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cancelled, nil
}

// Delete removes the shipment entirely: the bill is detached with a snapshot
// of shipment metadata, containers are freed to AVAILABLE, and the
// shipment's own ledger and assignment rows are purged.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shipment models.Shipment
		if err := tx.Preload("Containers").First(&shipment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Shipment %d not found", id)
			}
			return apperror.Wrap(err, "Failed to load shipment")
		}

		if err := detachBill(tx, &shipment); err != nil {
			return err
		}

		for _, sc := range shipment.Containers {
			if err := freeToLeasingDepot(tx, sc.InventoryID, shipment.JobNumber); err != nil {
				return err
			}
		}

		if err := tx.Where("shipment_id = ?", shipment.ID).Delete(&models.MovementHistory{}).Error; err != nil {
			return apperror.Wrap(err, "Failed to purge ledger rows")
		}
		if err := tx.Where("shipment_id = ?", shipment.ID).Delete(&models.ShipmentContainer{}).Error; err != nil {
			return apperror.Wrap(err, "Failed to purge container assignments")
		}
		if err := tx.Where("shipment_id = ?", shipment.ID).Delete(&models.BillOfLadingContainer{}).Error; err != nil {
			return apperror.Wrap(err, "Failed to purge BL assignments")
		}

		if err := jobevents.Record(tx, models.JobEntityShipment, shipment.ID, shipment.JobNumber, models.JobEventDeleted, nil); err != nil {
			return err
		}
		if err := tx.Delete(&models.Shipment{}, shipment.ID).Error; err != nil {
			return apperror.Wrap(err, "Failed to delete shipment")
		}
		return nil
	})
}

// detachBill clears the bill's shipment reference and snapshots shipment
// metadata onto it so billing history survives the deletion.
func detachBill(tx *gorm.DB, shipment *models.Shipment) error {
	var bill models.BillManagement
	err := tx.Where("shipment_id = ?", shipment.ID).First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Wrap(err, "Failed to load bill")
	}

	customerName := ""
	if shipment.CustomerAddressBookID != nil {
		var customer models.AddressBook
		if err := tx.First(&customer, *shipment.CustomerAddressBookID).Error; err == nil {
			customerName = customer.CompanyName
		}
	}
	portPair := ""
	pol, pod, err := loadPorts(tx, shipment.PolPortID, shipment.PodPortID)
	if err == nil {
		portPair = pol.PortCode + "-" + pod.PortCode
	}

	date := shipment.Date
	updates := map[string]interface{}{
		"shipment_id":   nil,
		"job_number":    shipment.JobNumber,
		"shipment_date": date,
		"customer_name": customerName,
		"port_pair":     portPair,
	}
	if err := tx.Model(&bill).Updates(updates).Error; err != nil {
		return apperror.Wrap(err, "Failed to detach bill")
	}
	return nil
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

func (s *Service) GetAll(ctx context.Context) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := s.DB.WithContext(ctx).Preload("Containers").Order("created_at DESC").Find(&shipments).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch shipments")
	}
	return shipments, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	err := s.DB.WithContext(ctx).Preload("Containers").First(&shipment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Shipment %d not found", id)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch shipment")
	}
	return &shipment, nil
}

// loadPorts validates that both route ports exist.
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

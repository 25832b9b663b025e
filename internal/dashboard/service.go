package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"rst-backend/internal/models"
	"rst-backend/internal/movement"
	"rst-backend/internal/pkg/apperror"
)

const (
	summaryCacheKey = "dashboard:summary"
	summaryCacheTTL = 60 * time.Second
)

type Service struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	Movement *movement.Service
}

// RouteSummary counts active shipments per POL/POD pair.
type RouteSummary struct {
	PolCode   string `json:"polCode"`
	PodCode   string `json:"podCode"`
	Shipments int64  `json:"shipments"`
}

// Summary is the back-office landing page payload.
type Summary struct {
	TotalContainers int64            `json:"totalContainers"`
	StatusCounts    map[string]int64 `json:"statusCounts"`
	ActiveShipments int64            `json:"activeShipments"`
	ActiveRepoJobs  int64            `json:"activeRepoJobs"`
	CancelledJobs   int64            `json:"cancelledJobs"`
	Routes          []RouteSummary   `json:"routes"`
	OutstandingDue  float64          `json:"outstandingDue"`
	PendingBills    int64            `json:"pendingBills"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// GetSummary serves the summary from a short-lived Redis cache; a miss (or
// an unavailable Redis) recomputes from the database.
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	if s.Rdb != nil {
		cached, err := s.Rdb.Get(ctx, summaryCacheKey).Result()
		if err == nil {
			var summary Summary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return &summary, nil
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Msg("dashboard cache unavailable, computing from database")
		}
	}

	summary, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.Rdb != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.Rdb.Set(ctx, summaryCacheKey, payload, summaryCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("failed to cache dashboard summary")
			}
		}
	}
	return summary, nil
}

// InvalidateSummary drops the cached summary. Called after mutations that
// change the counts.
func (s *Service) InvalidateSummary(ctx context.Context) {
	if s.Rdb == nil {
		return
	}
	if err := s.Rdb.Del(ctx, summaryCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dashboard summary")
	}
}

func (s *Service) compute(ctx context.Context) (*Summary, error) {
	db := s.DB.WithContext(ctx)
	summary := &Summary{
		StatusCounts: map[string]int64{},
		GeneratedAt:  time.Now(),
	}

	if err := db.Model(&models.Inventory{}).Count(&summary.TotalContainers).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to count containers")
	}

	latest, err := s.Movement.LatestPerContainer(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range latest {
		summary.StatusCounts[row.Status]++
	}

	if err := db.Model(&models.Shipment{}).
		Where("status = ?", models.JobStatusActive).
		Count(&summary.ActiveShipments).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to count shipments")
	}
	if err := db.Model(&models.EmptyRepoJob{}).
		Where("status = ?", models.JobStatusActive).
		Count(&summary.ActiveRepoJobs).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to count empty repo jobs")
	}

	var cancelledShipments, cancelledRepoJobs int64
	if err := db.Model(&models.Shipment{}).
		Where("status = ?", models.JobStatusCancelled).
		Count(&cancelledShipments).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to count cancelled shipments")
	}
	if err := db.Model(&models.EmptyRepoJob{}).
		Where("status = ?", models.JobStatusCancelled).
		Count(&cancelledRepoJobs).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to count cancelled empty repo jobs")
	}
	summary.CancelledJobs = cancelledShipments + cancelledRepoJobs

	if err := db.Table("shipments").
		Select("pol.port_code AS pol_code, pod.port_code AS pod_code, COUNT(*) AS shipments").
		Joins("JOIN ports pol ON pol.id = shipments.pol_port_id").
		Joins("JOIN ports pod ON pod.id = shipments.pod_port_id").
		Where("shipments.status = ?", models.JobStatusActive).
		Group("pol.port_code, pod.port_code").
		Order("COUNT(*) DESC").
		Scan(&summary.Routes).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to summarize routes")
	}

	var due *float64
	if err := db.Model(&models.BillManagement{}).
		Select("SUM(due_amount)").Scan(&due).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to sum outstanding dues")
	}
	if due != nil {
		summary.OutstandingDue = *due
	}
	if err := db.Model(&models.BillManagement{}).
		Where("billing_status = ?", models.BillingStatusPending).
		Count(&summary.PendingBills).Error; err != nil {
		return nil, apperror.Wrap(err, "Failed to count pending bills")
	}

	return summary, nil
}

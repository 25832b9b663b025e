package refnum

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"rst-backend/internal/models"
	"rst-backend/internal/pkg/apperror"
)

// Sequence entity types.
const (
	EntityShipmentJob  = "shipment_job"
	EntityHouseBL      = "house_bl"
	EntityEmptyRepoJob = "empty_repo_job"
)

// GlobalScope is the scope key for sequences not scoped to a route.
const GlobalScope = "global"

// Year2 returns the two-digit year prefix used in all reference numbers.
func Year2(t time.Time) string {
	return t.Format("06")
}

// FormatJobNumber renders a shipment job number, e.g. 25/00001.
func FormatJobNumber(year2 string, seq int) string {
	return fmt.Sprintf("%s/%05d", year2, seq)
}

// FormatHouseBL renders a house bill of lading, e.g. RST/NSAJEB/25/00001.
func FormatHouseBL(polCode, podCode, year2 string, seq int) string {
	return fmt.Sprintf("RST/%s%s/%s/%05d", polCode, podCode, year2, seq)
}

// FormatRepoJobNumber renders an empty-repo job number, e.g. RST/NSAJEB/25/ER00001.
func FormatRepoJobNumber(polCode, podCode, year2 string, seq int) string {
	return fmt.Sprintf("RST/%s%s/%s/ER%05d", polCode, podCode, year2, seq)
}

// RederiveHouseBL swaps the port-code prefix of an existing house BL while
// keeping its year and sequence. Unparseable input is returned unchanged.
func RederiveHouseBL(houseBL, polCode, podCode string) string {
	parts := strings.Split(houseBL, "/")
	if len(parts) != 4 || parts[0] != "RST" {
		return houseBL
	}
	return fmt.Sprintf("RST/%s%s/%s/%s", polCode, podCode, parts[2], parts[3])
}

// SuffixSeq parses the numeric sequence from the tail of a reference number
// ("25/00007" or "RST/NSAJEB/25/ER00007"); 0 when it has none.
func SuffixSeq(ref string) int {
	idx := strings.LastIndex(ref, "/")
	if idx < 0 {
		return 0
	}
	tail := strings.TrimPrefix(ref[idx+1:], "ER")
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0
	}
	return n
}

// SeedFunc computes the highest already-assigned sequence for a scope when
// no counter row exists yet (continuity with data that predates counters).
type SeedFunc func(tx *gorm.DB) (int, error)

// SeedFromColumn builds a seed from the highest suffix among existing
// reference numbers in column matching pattern.
func SeedFromColumn(model interface{}, column, pattern string) SeedFunc {
	return func(tx *gorm.DB) (int, error) {
		var numbers []string
		if err := tx.Model(model).Where(column+" LIKE ?", pattern).Pluck(column, &numbers).Error; err != nil {
			return 0, err
		}
		max := 0
		for _, n := range numbers {
			if v := SuffixSeq(n); v > max {
				max = v
			}
		}
		return max, nil
	}
}

// Next allocates the next sequence for (entityType, scopeKey, year) inside
// tx. The increment is a single UPDATE so the row lock it takes serializes
// concurrent creates; the first allocation for a scope seeds the counter
// from seed().
func Next(tx *gorm.DB, entityType, scopeKey, year string, seed SeedFunc) (int, error) {
	res := tx.Model(&models.JobSequence{}).
		Where("entity_type = ? AND scope_key = ? AND year = ?", entityType, scopeKey, year).
		Update("last_value", gorm.Expr("last_value + 1"))
	if res.Error != nil {
		return 0, apperror.Wrap(res.Error, "Failed to allocate sequence")
	}
	if res.RowsAffected == 0 {
		start := 0
		if seed != nil {
			var err error
			start, err = seed(tx)
			if err != nil {
				return 0, apperror.Wrap(err, "Failed to seed sequence")
			}
		}
		row := models.JobSequence{
			EntityType: entityType,
			ScopeKey:   scopeKey,
			Year:       year,
			LastValue:  start + 1,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, apperror.Wrap(err, "Failed to create sequence")
		}
		return row.LastValue, nil
	}

	var row models.JobSequence
	if err := tx.Where("entity_type = ? AND scope_key = ? AND year = ?", entityType, scopeKey, year).
		First(&row).Error; err != nil {
		return 0, apperror.Wrap(err, "Failed to read sequence")
	}
	return row.LastValue, nil
}

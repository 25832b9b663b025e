package refnum

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rst-backend/internal/models"
)

func setupRefnumTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.JobSequence{}))
	return db
}

func TestFormatters(t *testing.T) {
	y := Year2(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "25", y)
	assert.Equal(t, "25/00001", FormatJobNumber("25", 1))
	assert.Equal(t, "RST/NSAJEB/25/00001", FormatHouseBL("NSA", "JEB", "25", 1))
	assert.Equal(t, "RST/NSAJEB/25/ER00012", FormatRepoJobNumber("NSA", "JEB", "25", 12))
}

func TestRederiveHouseBL(t *testing.T) {
	assert.Equal(t, "RST/MUNJEB/25/00007", RederiveHouseBL("RST/NSAJEB/25/00007", "MUN", "JEB"))
	// Unparseable input comes back untouched.
	assert.Equal(t, "whatever", RederiveHouseBL("whatever", "MUN", "JEB"))
}

func TestSuffixSeq(t *testing.T) {
	assert.Equal(t, 7, SuffixSeq("25/00007"))
	assert.Equal(t, 12, SuffixSeq("RST/NSAJEB/25/ER00012"))
	assert.Equal(t, 0, SuffixSeq("garbage"))
}

func TestNext_Monotonic(t *testing.T) {
	db := setupRefnumTest(t)

	got := []int{}
	for i := 0; i < 3; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			n, err := Next(tx, EntityShipmentJob, GlobalScope, "25", nil)
			if err != nil {
				return err
			}
			got = append(got, n)
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestNext_SeedsFromExistingNumbers(t *testing.T) {
	db := setupRefnumTest(t)

	var n int
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = Next(tx, EntityHouseBL, "NSAJEB", "25", func(tx *gorm.DB) (int, error) {
			return 41, nil
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	// Seed only applies once; the counter row takes over.
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = Next(tx, EntityHouseBL, "NSAJEB", "25", func(tx *gorm.DB) (int, error) {
			return 999, nil
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 43, n)
}

func TestNext_IndependentScopes(t *testing.T) {
	db := setupRefnumTest(t)

	var a, b int
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if a, err = Next(tx, EntityHouseBL, "NSAJEB", "25", nil); err != nil {
			return err
		}
		b, err = Next(tx, EntityHouseBL, "MUNJEB", "25", nil)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

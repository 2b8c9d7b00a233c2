package db

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, LogLevel("off"))
	assert.Equal(t, logger.Error, LogLevel("ERROR"))
	assert.Equal(t, logger.Info, LogLevel(" debug "))
	assert.Equal(t, logger.Warn, LogLevel(""))
	assert.Equal(t, logger.Warn, LogLevel("verbose"))
}

func TestInventoryCheckDDL(t *testing.T) {
	ddls := inventoryCheckDDL()
	require.Len(t, ddls, 8)
	assert.Contains(t, ddls[0], "ADD CONSTRAINT inventory_days_three_hour_available_nonneg CHECK (three_hour_available >= 0)")
	assert.Contains(t, ddls[7], "overnight_booked >= 0")
}

func TestApplyInventoryChecks(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	ddls := inventoryCheckDDL()
	for _, ddl := range ddls[:2] {
		mock.ExpectExec(regexp.QuoteMeta(ddl)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta(ddls[2])).WillReturnError(assert.AnError)

	err = applyInventoryChecks(gormDB)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

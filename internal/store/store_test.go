package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"huts4u-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteDB opens a private in-memory database with the full schema.
func newSQLiteDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Hotel{},
		&model.Room{},
		&model.MealPlan{},
		&model.Coupon{},
		&model.InventoryDay{},
		&model.PushSubscription{},
	))
	return db
}

func sampleCatalog() []ApiHotel {
	return []ApiHotel{
		{
			ID:            1,
			PropertyName:  " Sea Breeze ",
			City:          "Puri",
			RoomAvailable: "Available",
			DiscountValue: 10,
			DiscountType:  "Percentage",
			Rooms: []ApiRoom{
				{ID: 11, RoomType: "Deluxe", Status: "Available", RateFor1Night: 2400, RateFor3Hour: 500, Amenities: []string{"AC", "WiFi"}},
				{ID: 12, RoomType: "Suite", Status: "active", RateFor1Night: 4000},
			},
			MealPlans: []ApiMealPlan{{ID: 100, Name: "Breakfast", Price: 200}},
		},
		{
			ID:           2,
			PropertyName: "Temple View",
			City:         "Bhubaneswar",
			Rooms:        []ApiRoom{{ID: 21, RoomType: "Standard", Status: "available", RateFor6Hour: 900}},
		},
	}
}

func TestGormStore_UpsertCatalog(t *testing.T) {
	db := newSQLiteDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	require.NoError(t, s.UpsertCatalog(ctx, sampleCatalog()))

	hotels, err := s.ListHotels(ctx, "")
	require.NoError(t, err)
	require.Len(t, hotels, 2)
	assert.Equal(t, "Sea Breeze", hotels[0].PropertyName)
	assert.Equal(t, "percentage", hotels[0].DiscountType)
	require.Len(t, hotels[0].Rooms, 2)
	assert.Equal(t, []string{"AC", "WiFi"}, hotels[0].Rooms[0].Amenities)
	assert.Equal(t, 500.0, hotels[0].Rooms[0].RateFor3Hour)
	require.Len(t, hotels[0].MealPlans, 1)

	// A second sync updates rows in place.
	catalog := sampleCatalog()
	catalog[0].RoomAvailable = model.RoomAvailableOff
	catalog[0].Rooms[0].RateFor3Hour = 650
	require.NoError(t, s.UpsertCatalog(ctx, catalog))

	hotel, err := s.GetHotel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.RoomAvailableOff, hotel.RoomAvailable)
	assert.Equal(t, 650.0, hotel.Rooms[0].RateFor3Hour)

	var roomCount int64
	db.Model(&model.Room{}).Count(&roomCount)
	assert.Equal(t, int64(3), roomCount)
}

func TestGormStore_ListHotelsByCity(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t))
	ctx := context.Background()
	require.NoError(t, s.UpsertCatalog(ctx, sampleCatalog()))

	hotels, err := s.ListHotels(ctx, "bhubaneswar")
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	assert.Equal(t, int64(2), hotels[0].ID)
}

func TestGormStore_Lookups(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t))
	ctx := context.Background()
	require.NoError(t, s.UpsertCatalog(ctx, sampleCatalog()))

	room, err := s.GetRoom(ctx, 11)
	require.NoError(t, err)
	require.NotNil(t, room.Hotel)
	assert.Equal(t, int64(1), room.Hotel.ID)

	mp, err := s.GetMealPlan(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 200.0, mp.Price)

	_, err = s.GetRoom(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetHotel(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetMealPlan(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_UpsertCoupons(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t))
	ctx := context.Background()

	expiry := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	require.NoError(t, s.UpsertCoupons(ctx, []ApiCoupon{
		{Code: "welcome5", Value: 0.05, Active: true, ValidThroughParsed: &expiry},
		{Code: "  ", Value: 0.5, Active: true},
	}))

	c, err := s.GetCoupon(ctx, " Welcome5")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME5", c.Code)
	assert.Equal(t, 0.05, c.Value)
	assert.True(t, c.ValidThrough.Equal(expiry))

	require.NoError(t, s.UpsertCoupons(ctx, []ApiCoupon{{Code: "WELCOME5", Value: 0.05, Active: false}}))
	c, err = s.GetCoupon(ctx, "welcome5")
	require.NoError(t, err)
	assert.False(t, c.Active)
}

func TestGormStore_UpsertInventory_ReportsReopenedRooms(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t))
	ctx := context.Background()
	require.NoError(t, s.UpsertCatalog(ctx, sampleCatalog()))

	isOpen := func(r model.InventoryDay) bool {
		return !r.IsBlocked && r.OvernightAvailable > r.OvernightBooked
	}

	soldOut := []model.InventoryDay{
		{RoomID: 11, Date: "2025-03-14", OvernightAvailable: 2, OvernightBooked: 2},
		{RoomID: 12, Date: "2025-03-14", IsBlocked: true, OvernightAvailable: 5},
		{RoomID: 21, Date: "2025-03-14", OvernightAvailable: 3},
	}
	ids, err := s.UpsertInventory(ctx, soldOut, isOpen)
	require.NoError(t, err)
	assert.Empty(t, ids, "first sight of a day never counts as reopened")

	reopened := []model.InventoryDay{
		{RoomID: 11, Date: "2025-03-14", OvernightAvailable: 3, OvernightBooked: 2},
		{RoomID: 12, Date: "2025-03-14", OvernightAvailable: 5, OvernightRate: 3500},
		{RoomID: 21, Date: "2025-03-14", OvernightAvailable: 3, OvernightBooked: 3},
		{RoomID: 21, Date: "2025-03-15", OvernightAvailable: 3},
	}
	ids, err = s.UpsertInventory(ctx, reopened, isOpen)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, ids)

	records, err := s.InventoryForRooms(ctx, []int64{12, 21}, "2025-03-14", "2025-03-15")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.False(t, records[0].IsBlocked)
	assert.Equal(t, 3500.0, records[0].OvernightRate)
	assert.Equal(t, "2025-03-15", records[2].Date)

	records, err = s.InventoryForRooms(ctx, []int64{21}, "2025-03-15", "2025-03-15")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGormStore_UpsertsCollapseDuplicateKeys(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t))
	ctx := context.Background()

	// Pagination shifted between pages, so hotel 1 shows up twice.
	page1 := sampleCatalog()
	page2 := sampleCatalog()[:1]
	page2[0].PropertyName = "Sea Breeze Resort"
	page2[0].Rooms[0].RateFor1Night = 2600
	page2[0].MealPlans[0].Price = 250
	require.NoError(t, s.UpsertCatalog(ctx, append(page1, page2...)))

	hotels, err := s.ListHotels(ctx, "")
	require.NoError(t, err)
	require.Len(t, hotels, 2)
	assert.Equal(t, "Sea Breeze Resort", hotels[0].PropertyName)
	assert.Equal(t, 2600.0, hotels[0].Rooms[0].RateFor1Night)
	assert.Equal(t, 250.0, hotels[0].MealPlans[0].Price)

	require.NoError(t, s.UpsertCoupons(ctx, []ApiCoupon{
		{Code: "welcome5", Value: 0.05, Active: true},
		{Code: "WELCOME5", Value: 0.1, Active: true},
	}))
	c, err := s.GetCoupon(ctx, "welcome5")
	require.NoError(t, err)
	assert.Equal(t, 0.1, c.Value)

	isOpen := func(r model.InventoryDay) bool { return r.OvernightAvailable > r.OvernightBooked }
	_, err = s.UpsertInventory(ctx, []model.InventoryDay{
		{RoomID: 11, Date: "2025-03-14", OvernightAvailable: 2, OvernightBooked: 2},
		{RoomID: 11, Date: "2025-03-14", OvernightAvailable: 2, OvernightBooked: 1},
	}, isOpen)
	require.NoError(t, err)
	records, err := s.InventoryForRooms(ctx, []int64{11}, "2025-03-14", "2025-03-14")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].OvernightBooked)
}

func TestGormStore_UpsertCoupons_SingleRowPerCode(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "coupons" ("code","value","valid_through","active","updated_at") VALUES ($1,$2,$3,$4,$5) ON CONFLICT`)).
		WithArgs("WELCOME5", 0.1, sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.UpsertCoupons(context.Background(), []ApiCoupon{
		{Code: "welcome5", Value: 0.05, Active: true},
		{Code: "WELCOME5", Value: 0.1},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestByKey(t *testing.T) {
	type row struct {
		id  int
		val string
	}
	got := latestByKey([]row{{1, "a"}, {2, "b"}, {1, "c"}, {3, "d"}, {2, "e"}}, func(r row) int { return r.id })
	assert.Equal(t, []row{{1, "c"}, {2, "e"}, {3, "d"}}, got)
	assert.Empty(t, latestByKey([]row{}, func(r row) int { return r.id }))
}

func TestGormStore_EmptyInputsAreNoops(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	assert.NoError(t, s.UpsertCatalog(ctx, nil))
	assert.NoError(t, s.UpsertCoupons(ctx, nil))
	ids, err := s.UpsertInventory(ctx, nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, ids)
	records, err := s.InventoryForRooms(ctx, nil, "2025-03-14", "2025-03-15")
	assert.NoError(t, err)
	assert.Nil(t, records)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetCoupon_NotFound(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "coupons" WHERE code = \$1 ORDER BY "coupons"."code" LIMIT \$[0-9]+`).
		WithArgs("NOPE", 1).
		WillReturnRows(sqlmock.NewRows([]string{"code", "value", "valid_through", "active"}))

	_, err := s.GetCoupon(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetRoom_DatabaseError(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "rooms" WHERE "rooms"."id" = $1`)).
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := s.GetRoom(context.Background(), 11)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

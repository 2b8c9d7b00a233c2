package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"huts4u-backend/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// upsertBatchSize keeps a single INSERT below the bind-variable limits of
// sqlite and postgres.
const upsertBatchSize = 500

// Store defines the interface for all database operations.
type Store interface {
	UpsertCatalog(ctx context.Context, hotels []ApiHotel) error
	UpsertCoupons(ctx context.Context, coupons []ApiCoupon) error
	UpsertInventory(ctx context.Context, records []model.InventoryDay, isOpen func(model.InventoryDay) bool) ([]int64, error)

	ListHotels(ctx context.Context, city string) ([]model.Hotel, error)
	GetHotel(ctx context.Context, id int64) (*model.Hotel, error)
	GetRoom(ctx context.Context, id int64) (*model.Room, error)
	GetMealPlan(ctx context.Context, id int64) (*model.MealPlan, error)
	GetCoupon(ctx context.Context, code string) (*model.Coupon, error)
	InventoryForRooms(ctx context.Context, roomIDs []int64, from, to string) ([]model.InventoryDay, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// UpsertCatalog writes hotels, their rooms and meal plans in one transaction.
// Rooms and meal plans that vanished upstream are left in place; their hotel
// row carries the current state.
func (s *gormStore) UpsertCatalog(ctx context.Context, items []ApiHotel) error {
	if len(items) == 0 {
		return nil
	}

	hotels := make([]model.Hotel, 0, len(items))
	var rooms []model.Room
	var mealPlans []model.MealPlan
	for _, item := range items {
		hotels = append(hotels, prepareHotel(item))
		for _, r := range item.Rooms {
			rooms = append(rooms, prepareRoom(item.ID, r))
		}
		for _, mp := range item.MealPlans {
			mealPlans = append(mealPlans, model.MealPlan{
				ID:      mp.ID,
				HotelID: item.ID,
				Name:    mp.Name,
				Price:   mp.Price,
			})
		}
	}
	// Postgres rejects an upsert that touches the same key twice, and paged
	// catalogs can repeat a hotel.
	hotels = latestByKey(hotels, func(h model.Hotel) int64 { return h.ID })
	rooms = latestByKey(rooms, func(r model.Room) int64 { return r.ID })
	mealPlans = latestByKey(mealPlans, func(mp model.MealPlan) int64 { return mp.ID })

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"property_name", "city", "address", "status", "room_available",
				"discount_value", "discount_type", "rating", "rating_count", "updated_at",
			}),
		}).CreateInBatches(&hotels, upsertBatchSize).Error; err != nil {
			return fmt.Errorf("batch upsert hotels failed: %w", err)
		}

		if len(rooms) > 0 {
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"hotel_id", "room_type", "status", "rate_for1_night", "rate_for3_hour",
					"rate_for6_hour", "rate_for12_hour", "standard_room_occupancy",
					"max_room_occupancy", "amenities", "updated_at",
				}),
			}).CreateInBatches(&rooms, upsertBatchSize).Error; err != nil {
				return fmt.Errorf("batch upsert rooms failed: %w", err)
			}
		}

		if len(mealPlans) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"hotel_id", "name", "price", "updated_at"}),
			}).CreateInBatches(&mealPlans, upsertBatchSize).Error; err != nil {
				return fmt.Errorf("batch upsert meal plans failed: %w", err)
			}
		}
		return nil
	})
}

// UpsertCoupons replaces the stored state of every coupon in coupons.
func (s *gormStore) UpsertCoupons(ctx context.Context, items []ApiCoupon) error {
	if len(items) == 0 {
		return nil
	}

	coupons := make([]model.Coupon, 0, len(items))
	for _, item := range items {
		code := strings.TrimSpace(item.Code)
		if code == "" {
			continue
		}
		c := model.Coupon{Code: strings.ToUpper(code), Value: item.Value, Active: item.Active}
		if item.ValidThroughParsed != nil {
			c.ValidThrough = *item.ValidThroughParsed
		}
		coupons = append(coupons, c)
	}
	if len(coupons) == 0 {
		return nil
	}
	coupons = latestByKey(coupons, func(c model.Coupon) string { return c.Code })

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "valid_through", "active", "updated_at"}),
	}).Create(&coupons).Error; err != nil {
		return fmt.Errorf("batch upsert coupons failed: %w", err)
	}
	return nil
}

// UpsertInventory stores records and returns the ids of rooms that had a
// stored day which was not open and is open now. A day seen for the first
// time never counts as reopened.
func (s *gormStore) UpsertInventory(ctx context.Context, records []model.InventoryDay, isOpen func(model.InventoryDay) bool) ([]int64, error) {
	if len(records) == 0 {
		return nil, nil
	}
	records = latestByKey(records, func(r model.InventoryDay) inventoryKey { return inventoryKey{r.RoomID, r.Date} })

	existing, err := s.fetchInventory(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing inventory: %w", err)
	}

	reopened := make(map[int64]struct{})
	for _, r := range records {
		old, ok := existing[inventoryKey{r.RoomID, r.Date}]
		if ok && !isOpen(old) && isOpen(r) {
			reopened[r.RoomID] = struct{}{}
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "room_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"is_blocked",
				"three_hour_available", "three_hour_booked",
				"six_hour_available", "six_hour_booked",
				"twelve_hour_available", "twelve_hour_booked",
				"overnight_available", "overnight_booked",
				"three_hour_rate", "six_hour_rate", "twelve_hour_rate", "overnight_rate",
				"updated_at",
			}),
		}).CreateInBatches(&records, upsertBatchSize).Error
	})
	if err != nil {
		return nil, fmt.Errorf("batch upsert inventory failed: %w", err)
	}

	ids := make([]int64, 0, len(reopened))
	for id := range reopened {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ListHotels returns every hotel with its rooms and meal plans, optionally
// filtered by city (case-insensitive).
func (s *gormStore) ListHotels(ctx context.Context, city string) ([]model.Hotel, error) {
	q := s.db.WithContext(ctx).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("rooms.id") }).
		Preload("MealPlans", func(db *gorm.DB) *gorm.DB { return db.Order("meal_plans.id") }).
		Order("hotels.id")
	if city = strings.TrimSpace(city); city != "" {
		q = q.Where("LOWER(hotels.city) = ?", strings.ToLower(city))
	}

	var hotels []model.Hotel
	if err := q.Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}

// GetHotel loads a hotel with its rooms and meal plans.
func (s *gormStore) GetHotel(ctx context.Context, id int64) (*model.Hotel, error) {
	var hotel model.Hotel
	err := s.db.WithContext(ctx).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("rooms.id") }).
		Preload("MealPlans", func(db *gorm.DB) *gorm.DB { return db.Order("meal_plans.id") }).
		First(&hotel, id).Error
	if err != nil {
		return nil, notFound(err, "hotel %d", id)
	}
	return &hotel, nil
}

// GetRoom loads a room together with its hotel.
func (s *gormStore) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	var room model.Room
	if err := s.db.WithContext(ctx).Preload("Hotel").First(&room, id).Error; err != nil {
		return nil, notFound(err, "room %d", id)
	}
	return &room, nil
}

func (s *gormStore) GetMealPlan(ctx context.Context, id int64) (*model.MealPlan, error) {
	var mp model.MealPlan
	if err := s.db.WithContext(ctx).First(&mp, id).Error; err != nil {
		return nil, notFound(err, "meal plan %d", id)
	}
	return &mp, nil
}

// GetCoupon looks a coupon up by code, ignoring case.
func (s *gormStore) GetCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	if err := s.db.WithContext(ctx).First(&c, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error; err != nil {
		return nil, notFound(err, "coupon %q", code)
	}
	return &c, nil
}

// InventoryForRooms returns the records of roomIDs with from <= date <= to.
// Dates are "2006-01-02" keys, so string comparison orders them.
func (s *gormStore) InventoryForRooms(ctx context.Context, roomIDs []int64, from, to string) ([]model.InventoryDay, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	var records []model.InventoryDay
	err := s.db.WithContext(ctx).
		Where("room_id IN ? AND date >= ? AND date <= ?", roomIDs, from, to).
		Order("room_id, date").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return records, nil
}

// --- Helpers ---

type inventoryKey struct {
	roomID int64
	date   string
}

func (s *gormStore) fetchInventory(ctx context.Context, records []model.InventoryDay) (map[inventoryKey]model.InventoryDay, error) {
	roomSet := make(map[int64]struct{})
	var roomIDs []int64
	from, to := records[0].Date, records[0].Date
	for _, r := range records {
		if _, ok := roomSet[r.RoomID]; !ok {
			roomSet[r.RoomID] = struct{}{}
			roomIDs = append(roomIDs, r.RoomID)
		}
		if r.Date < from {
			from = r.Date
		}
		if r.Date > to {
			to = r.Date
		}
	}

	stored, err := s.InventoryForRooms(ctx, roomIDs, from, to)
	if err != nil {
		return nil, err
	}
	m := make(map[inventoryKey]model.InventoryDay, len(stored))
	for _, r := range stored {
		m[inventoryKey{r.RoomID, r.Date}] = r
	}
	return m, nil
}

// latestByKey drops all but the last item of each key. Items keep the position
// of the first occurrence of their key.
func latestByKey[T any, K comparable](items []T, key func(T) K) []T {
	index := make(map[K]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if i, ok := index[k]; ok {
			out[i] = item
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}

func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func prepareHotel(item ApiHotel) model.Hotel {
	return model.Hotel{
		ID:            item.ID,
		PropertyName:  strings.TrimSpace(item.PropertyName),
		City:          strings.TrimSpace(item.City),
		Address:       item.Address,
		Status:        item.Status,
		RoomAvailable: item.RoomAvailable,
		DiscountValue: item.DiscountValue,
		DiscountType:  strings.ToLower(item.DiscountType),
		Rating:        item.Rating,
		RatingCount:   item.RatingCount,
	}
}

func prepareRoom(hotelID int64, item ApiRoom) model.Room {
	return model.Room{
		ID:       item.ID,
		HotelID:  hotelID,
		RoomType: item.RoomType,
		Status:   item.Status,
		RoomRate: model.RoomRate{
			RateFor1Night: item.RateFor1Night,
			RateFor3Hour:  item.RateFor3Hour,
			RateFor6Hour:  item.RateFor6Hour,
			RateFor12Hour: item.RateFor12Hour,
		},
		StandardRoomOccupancy: item.StandardRoomOccupancy,
		MaxRoomOccupancy:      item.MaxRoomOccupancy,
		Amenities:             item.Amenities,
	}
}

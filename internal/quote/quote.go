// Package quote prices a concrete booking: it loads the room, its hotel,
// inventory, meal plan and coupon from the store and runs them through the
// availability resolver and the pricing engines.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"huts4u-backend/internal/availability"
	"huts4u-backend/internal/model"
	"huts4u-backend/internal/pricing"
	"huts4u-backend/internal/store"
)

var (
	ErrUnavailable    = errors.New("room is not available")
	ErrSlotNotOffered = errors.New("slot is not offered for this room")
	ErrInvalidRequest = errors.New("invalid quote request")
)

// UnavailableError carries the status that made a booking impossible.
// errors.Is(err, ErrUnavailable) holds for it.
type UnavailableError struct {
	Status availability.HotelStatus
}

func (e *UnavailableError) Error() string {
	if e.Status.Reason == "" {
		return fmt.Sprintf("%s: %s", ErrUnavailable, e.Status.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrUnavailable, e.Status.Status, e.Status.Reason)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Request describes the booking to price. Dates are calendar days in the
// service time zone. Hourly bookings use Date and Slot; overnight bookings
// use CheckIn and CheckOut, with Date accepted as CheckIn.
type Request struct {
	RoomID      int64
	BookingType availability.BookingType
	Slot        availability.Slot
	Date        time.Time
	CheckIn     time.Time
	CheckOut    time.Time
	Rooms       int
	MealPlanID  int64
	CouponCode  string
}

// NightRate is the per-room rate charged for one night or slot.
type NightRate struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// MealPlanLine is the meal plan charged on a quote.
type MealPlanLine struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// CouponLine reports what happened to the requested coupon.
type CouponLine struct {
	Code    string  `json:"code"`
	Value   float64 `json:"value"`
	Applied bool    `json:"applied"`
	Reason  string  `json:"reason,omitempty"`
}

// Quote is a priced booking summary.
type Quote struct {
	ID          string                    `json:"id"`
	HotelID     int64                     `json:"hotelId"`
	HotelName   string                    `json:"hotelName"`
	RoomID      int64                     `json:"roomId"`
	RoomType    string                    `json:"roomType"`
	BookingType availability.BookingType  `json:"bookingType"`
	Slot        availability.Slot         `json:"slot"`
	CheckIn     string                    `json:"checkIn"`
	CheckOut    string                    `json:"checkOut"`
	Nights      int                       `json:"nights"`
	Rooms       int                       `json:"rooms"`
	UnitRates   []NightRate               `json:"unitRates"`
	MealPlan    *MealPlanLine             `json:"mealPlan,omitempty"`
	Coupon      *CouponLine               `json:"coupon,omitempty"`
	Status      availability.HotelStatus  `json:"status"`
	Breakdown   pricing.ExtendedBreakdown `json:"breakdown"`
	Invoice     pricing.Invoice           `json:"invoice"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

// DefaultMaxNights bounds overnight stays unless WithMaxNights says otherwise.
const DefaultMaxNights = 30

// Service builds quotes from stored data.
type Service struct {
	store     store.Store
	now       func() time.Time
	newID     func() string
	maxNights int
}

// NewService returns a quote service. now decides coupon expiry; nil means
// time.Now.
func NewService(s store.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: s, now: now, newID: uuid.NewString, maxNights: DefaultMaxNights}
}

// WithMaxNights sets the longest overnight stay s quotes. Values below one
// keep the current limit.
func (s *Service) WithMaxNights(n int) *Service {
	if n > 0 {
		s.maxNights = n
	}
	return s
}

// MaxNights returns the longest overnight stay s quotes.
func (s *Service) MaxNights() int {
	return s.maxNights
}

// Quote prices req. It returns ErrInvalidRequest for malformed requests,
// store.ErrNotFound for unknown rooms or meal plans, an *UnavailableError when
// the room cannot be booked and ErrSlotNotOffered when a requested slot or
// night has no rate.
func (s *Service) Quote(ctx context.Context, req Request) (*Quote, error) {
	if req.RoomID <= 0 {
		return nil, fmt.Errorf("%w: roomId is required", ErrInvalidRequest)
	}
	if req.Rooms == 0 {
		req.Rooms = 1
	}
	if req.Rooms < 0 {
		return nil, fmt.Errorf("%w: rooms must be at least 1", ErrInvalidRequest)
	}

	room, err := s.store.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	hotel := room.Hotel
	if hotel == nil {
		if hotel, err = s.store.GetHotel(ctx, room.HotelID); err != nil {
			return nil, err
		}
	}

	q := &Quote{
		ID:          s.newID(),
		HotelID:     hotel.ID,
		HotelName:   hotel.PropertyName,
		RoomID:      room.ID,
		RoomType:    room.RoomType,
		BookingType: req.BookingType,
		Rooms:       req.Rooms,
		CreatedAt:   s.now().UTC(),
	}

	switch req.BookingType {
	case availability.BookingHourly:
		err = s.priceHourly(ctx, q, *hotel, *room, req)
	case availability.BookingOvernight:
		err = s.priceOvernight(ctx, q, *hotel, *room, req)
	default:
		err = fmt.Errorf("%w: unknown booking type %q", ErrInvalidRequest, req.BookingType)
	}
	if err != nil {
		return nil, err
	}

	var basePrice float64
	for _, r := range q.UnitRates {
		basePrice += r.Rate * float64(req.Rooms)
	}

	var mealPrice float64
	if req.MealPlanID > 0 {
		mp, err := s.store.GetMealPlan(ctx, req.MealPlanID)
		if err != nil {
			return nil, err
		}
		if mp.HotelID != hotel.ID {
			return nil, fmt.Errorf("%w: meal plan %d does not belong to hotel %d", ErrInvalidRequest, mp.ID, hotel.ID)
		}
		mealPrice = mp.Price * float64(req.Rooms*q.Nights)
		q.MealPlan = &MealPlanLine{ID: mp.ID, Name: mp.Name, UnitPrice: mp.Price, Total: mealPrice}
	}

	discounts := pricing.Discounts{
		HotelDiscountValue: hotel.DiscountValue,
		HotelDiscountType:  pricing.DiscountType(strings.ToLower(hotel.DiscountType)),
	}
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		q.Coupon, err = s.coupon(ctx, code)
		if err != nil {
			return nil, err
		}
		if q.Coupon.Applied {
			discounts.CouponApplied = true
			discounts.CouponValue = q.Coupon.Value
		}
	}

	q.Breakdown = pricing.ComputeWithExtras(basePrice, mealPrice, discounts)
	q.Invoice = pricing.ComputeInvoice(basePrice, mealPrice, discounts)
	return q, nil
}

func (s *Service) priceHourly(ctx context.Context, q *Quote, hotel model.Hotel, room model.Room, req Request) error {
	if req.Slot == availability.SlotOvernight || !req.Slot.Valid() {
		return fmt.Errorf("%w: hourly bookings need a threeHour, sixHour or twelveHour slot", ErrInvalidRequest)
	}
	date := req.Date
	if date.IsZero() {
		date = req.CheckIn
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidRequest)
	}

	inv, err := s.inventory(ctx, room.ID, date, date)
	if err != nil {
		return err
	}

	day := date.Format(availability.DateLayout)
	q.Slot = req.Slot
	q.CheckIn, q.CheckOut = day, day
	q.Nights = 1

	q.Status = availability.Evaluate(hotel, room, inv, date, availability.BookingHourly)
	if !q.Status.IsAvailable {
		return &UnavailableError{Status: q.Status}
	}

	rate := availability.EffectiveRate(room, inv, date, req.Slot)
	if rate <= 0 {
		return fmt.Errorf("%w: %s", ErrSlotNotOffered, req.Slot)
	}
	if !availability.SlotAvailable(room, inv, date, req.Slot) {
		q.Status = availability.HotelStatus{
			Status: availability.StatusSoldOut,
			Reason: "sold out for " + string(req.Slot),
		}
		return &UnavailableError{Status: q.Status}
	}

	q.UnitRates = []NightRate{{Date: day, Rate: rate}}
	return nil
}

func (s *Service) priceOvernight(ctx context.Context, q *Quote, hotel model.Hotel, room model.Room, req Request) error {
	if req.Slot != "" && req.Slot != availability.SlotOvernight {
		return fmt.Errorf("%w: slot %s is not an overnight slot", ErrInvalidRequest, req.Slot)
	}
	checkIn := req.CheckIn
	if checkIn.IsZero() {
		checkIn = req.Date
	}
	if checkIn.IsZero() {
		return fmt.Errorf("%w: checkIn is required", ErrInvalidRequest)
	}
	checkOut := req.CheckOut
	if checkOut.IsZero() {
		checkOut = checkIn.AddDate(0, 0, 1)
	}
	if n := availability.NightCount(checkIn, checkOut); n > s.maxNights {
		return fmt.Errorf("%w: stay of %d nights exceeds the limit of %d", ErrInvalidRequest, n, s.maxNights)
	}

	nights := availability.Nights(checkIn, checkOut)
	inv, err := s.inventory(ctx, room.ID, nights[0], nights[len(nights)-1])
	if err != nil {
		return err
	}

	q.Slot = availability.SlotOvernight
	q.Nights = len(nights)
	q.CheckIn = nights[0].Format(availability.DateLayout)
	q.CheckOut = nights[len(nights)-1].AddDate(0, 0, 1).Format(availability.DateLayout)

	q.Status = availability.RangeStatus(hotel, room, inv, checkIn, checkOut)
	if !q.Status.IsAvailable {
		return &UnavailableError{Status: q.Status}
	}

	q.UnitRates = make([]NightRate, 0, len(nights))
	for _, night := range nights {
		rate := availability.EffectiveRate(room, inv, night, availability.SlotOvernight)
		if rate <= 0 {
			return fmt.Errorf("%w: overnight on %s", ErrSlotNotOffered, night.Format(availability.DateLayout))
		}
		q.UnitRates = append(q.UnitRates, NightRate{Date: night.Format(availability.DateLayout), Rate: rate})
	}
	return nil
}

func (s *Service) inventory(ctx context.Context, roomID int64, from, to time.Time) (*availability.Inventory, error) {
	records, err := s.store.InventoryForRooms(ctx, []int64{roomID},
		from.Format(availability.DateLayout), to.Format(availability.DateLayout))
	if err != nil {
		return nil, err
	}
	return availability.NewInventory(records), nil
}

// coupon resolves code. Unknown, inactive and expired coupons are reported
// as not applied rather than failing the quote.
func (s *Service) coupon(ctx context.Context, code string) (*CouponLine, error) {
	line := &CouponLine{Code: strings.ToUpper(code)}

	c, err := s.store.GetCoupon(ctx, code)
	switch {
	case errors.Is(err, store.ErrNotFound):
		line.Reason = "unknown coupon"
		return line, nil
	case err != nil:
		return nil, err
	}

	line.Value = c.Value
	switch {
	case !c.Active:
		line.Reason = "coupon inactive"
	case !c.ValidThrough.IsZero() && s.now().After(c.ValidThrough):
		line.Reason = "coupon expired"
	case c.Value <= 0:
		line.Reason = "coupon has no value"
	default:
		line.Applied = true
	}
	return line, nil
}

package availability

import (
	"time"

	"huts4u-backend/internal/model"
)

// DateLayout is the calendar-day key used by inventory records.
const DateLayout = "2006-01-02"

// Slot is a bookable stay length.
type Slot string

const (
	SlotThreeHour  Slot = "threeHour"
	SlotSixHour    Slot = "sixHour"
	SlotTwelveHour Slot = "twelveHour"
	SlotOvernight  Slot = "overnight"
)

// HourlySlots lists the hourly slots in display order.
var HourlySlots = []Slot{SlotThreeHour, SlotSixHour, SlotTwelveHour}

// Valid reports whether s is one of the four known slots.
func (s Slot) Valid() bool {
	switch s {
	case SlotThreeHour, SlotSixHour, SlotTwelveHour, SlotOvernight:
		return true
	}
	return false
}

// Hours returns the stay length of the slot; overnight counts as 24.
func (s Slot) Hours() int {
	switch s {
	case SlotThreeHour:
		return 3
	case SlotSixHour:
		return 6
	case SlotTwelveHour:
		return 12
	case SlotOvernight:
		return 24
	}
	return 0
}

// BookingType selects between hourly and overnight stays.
type BookingType string

const (
	BookingHourly    BookingType = "hourly"
	BookingOvernight BookingType = "overnight"
)

// Valid reports whether b is hourly or overnight.
func (b BookingType) Valid() bool {
	return b == BookingHourly || b == BookingOvernight
}

type dayKey struct {
	roomID int64
	date   string
}

// Inventory indexes inventory records by room and day. The zero value and a
// nil *Inventory both behave as an empty index.
type Inventory struct {
	days map[dayKey]model.InventoryDay
}

// NewInventory indexes records. A later record for the same room and day
// replaces an earlier one.
func NewInventory(records []model.InventoryDay) *Inventory {
	inv := &Inventory{days: make(map[dayKey]model.InventoryDay, len(records))}
	for _, r := range records {
		inv.days[dayKey{roomID: r.RoomID, date: r.Date}] = r
	}
	return inv
}

// Lookup returns the record for roomID on date, if any.
func (inv *Inventory) Lookup(roomID int64, date time.Time) (model.InventoryDay, bool) {
	if inv == nil || inv.days == nil {
		return model.InventoryDay{}, false
	}
	r, ok := inv.days[dayKey{roomID: roomID, date: date.Format(DateLayout)}]
	return r, ok
}

// Len returns the number of indexed records.
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.days)
}

// counters returns the available and booked counters of slot in r.
func counters(r model.InventoryDay, slot Slot) (available, booked int, ok bool) {
	switch slot {
	case SlotThreeHour:
		return r.ThreeHourAvailable, r.ThreeHourBooked, true
	case SlotSixHour:
		return r.SixHourAvailable, r.SixHourBooked, true
	case SlotTwelveHour:
		return r.TwelveHourAvailable, r.TwelveHourBooked, true
	case SlotOvernight:
		return r.OvernightAvailable, r.OvernightBooked, true
	}
	return 0, 0, false
}

func overrideRate(r model.InventoryDay, slot Slot) float64 {
	switch slot {
	case SlotThreeHour:
		return r.ThreeHourRate
	case SlotSixHour:
		return r.SixHourRate
	case SlotTwelveHour:
		return r.TwelveHourRate
	case SlotOvernight:
		return r.OvernightRate
	}
	return 0
}

func staticRate(rate model.RoomRate, slot Slot) float64 {
	switch slot {
	case SlotThreeHour:
		return rate.RateFor3Hour
	case SlotSixHour:
		return rate.RateFor6Hour
	case SlotTwelveHour:
		return rate.RateFor12Hour
	case SlotOvernight:
		return rate.RateFor1Night
	}
	return 0
}

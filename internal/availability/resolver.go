package availability

import (
	"time"

	"huts4u-backend/internal/model"
)

// EffectiveRate returns the price of slot for room on date: the inventory
// override when one is set, otherwise the room's static rate, otherwise 0.
func EffectiveRate(room model.Room, inv *Inventory, date time.Time, slot Slot) float64 {
	if r, ok := inv.Lookup(room.ID, date); ok {
		if rate := overrideRate(r, slot); rate > 0 {
			return rate
		}
	}
	if rate := staticRate(room.RoomRate, slot); rate > 0 {
		return rate
	}
	return 0
}

// SlotAvailable reports whether slot can still be booked for room on date.
// Without an inventory record the slot is assumed open.
func SlotAvailable(room model.Room, inv *Inventory, date time.Time, slot Slot) bool {
	r, ok := inv.Lookup(room.ID, date)
	if !ok {
		return true
	}
	return slotOpen(r, slot)
}

func slotOpen(r model.InventoryDay, slot Slot) bool {
	if r.IsBlocked {
		return false
	}
	available, booked, ok := counters(r, slot)
	return ok && available > booked
}

// DayOpen reports whether r leaves any slot of bookingType open.
func DayOpen(r model.InventoryDay, bookingType BookingType) bool {
	if r.IsBlocked {
		return false
	}
	if bookingType == BookingHourly {
		for _, slot := range HourlySlots {
			if slotOpen(r, slot) {
				return true
			}
		}
		return false
	}
	return slotOpen(r, SlotOvernight)
}

// SlotQuote is a slot as shown on the hotel detail page.
type SlotQuote struct {
	Slot      Slot    `json:"slot"`
	Rate      float64 `json:"rate"`
	Available bool    `json:"available"`
}

// Slots returns every slot of bookingType that room offers on date (a rate
// above zero) together with its availability, in display order.
func Slots(room model.Room, inv *Inventory, date time.Time, bookingType BookingType) []SlotQuote {
	slots := []Slot{SlotOvernight}
	if bookingType == BookingHourly {
		slots = HourlySlots
	}

	quotes := make([]SlotQuote, 0, len(slots))
	for _, slot := range slots {
		rate := EffectiveRate(room, inv, date, slot)
		if rate <= 0 {
			continue
		}
		quotes = append(quotes, SlotQuote{
			Slot:      slot,
			Rate:      rate,
			Available: SlotAvailable(room, inv, date, slot),
		})
	}
	return quotes
}

// BookableSlots returns the offered slots of bookingType that are still open.
func BookableSlots(room model.Room, inv *Inventory, date time.Time, bookingType BookingType) []Slot {
	var open []Slot
	for _, q := range Slots(room, inv, date, bookingType) {
		if q.Available {
			open = append(open, q.Slot)
		}
	}
	return open
}

package availability

import (
	"fmt"
	"strings"
	"time"

	"huts4u-backend/internal/model"
)

// Status labels shown on hotel cards and room rows.
const (
	StatusAvailable   = "Available"
	StatusSoldOut     = "Sold Out"
	StatusBlocked     = "Blocked"
	StatusUnavailable = "Unavailable"
)

// HotelStatus is the outcome of evaluating a room of a hotel for a date.
type HotelStatus struct {
	IsAvailable bool   `json:"isAvailable"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

func available() HotelStatus {
	return HotelStatus{IsAvailable: true, Status: StatusAvailable}
}

func unavailable(status, reason string) HotelStatus {
	return HotelStatus{Status: status, Reason: reason}
}

func roomActive(room model.Room) bool {
	switch strings.ToLower(strings.TrimSpace(room.Status)) {
	case "available", "active":
		return true
	}
	return false
}

// precheck applies the room and owner overrides that come before any
// inventory record is consulted.
func precheck(hotel model.Hotel, room model.Room) (HotelStatus, bool) {
	if !roomActive(room) {
		return unavailable(StatusUnavailable, "room unavailable"), true
	}
	if hotel.RoomAvailable == model.RoomAvailableOff {
		return unavailable(StatusSoldOut, "hotel marked sold out"), true
	}
	return HotelStatus{}, false
}

// Evaluate returns the status of room of hotel on date. Rules are checked in
// order and the first match wins: inactive room, owner kill switch, missing
// inventory record, blocked day, sold-out booking type.
func Evaluate(hotel model.Hotel, room model.Room, inv *Inventory, date time.Time, bookingType BookingType) HotelStatus {
	if s, done := precheck(hotel, room); done {
		return s
	}
	r, ok := inv.Lookup(room.ID, date)
	if !ok {
		return available()
	}
	if r.IsBlocked {
		return unavailable(StatusBlocked, "blocked for date")
	}
	if bookingType != BookingHourly {
		bookingType = BookingOvernight
	}
	if !DayOpen(r, bookingType) {
		return unavailable(StatusSoldOut, "sold out for "+string(bookingType))
	}
	return available()
}

// RangeStatus evaluates an overnight stay covering every night in
// [checkIn, checkOut). A checkOut on or before checkIn is one night. The first
// night that fails decides the result.
func RangeStatus(hotel model.Hotel, room model.Room, inv *Inventory, checkIn, checkOut time.Time) HotelStatus {
	if s, done := precheck(hotel, room); done {
		return s
	}
	for _, night := range Nights(checkIn, checkOut) {
		r, ok := inv.Lookup(room.ID, night)
		if !ok {
			continue
		}
		day := night.Format(DateLayout)
		if r.IsBlocked {
			return unavailable(StatusBlocked, fmt.Sprintf("blocked for date %s", day))
		}
		if !slotOpen(r, SlotOvernight) {
			return unavailable(StatusSoldOut, fmt.Sprintf("sold out for overnight on %s", day))
		}
	}
	return available()
}

// NightCount is len(Nights(checkIn, checkOut)) without building the slice.
func NightCount(checkIn, checkOut time.Time) int {
	y1, m1, d1 := checkIn.Date()
	y2, m2, d2 := checkOut.Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	if n := int(end.Sub(start).Hours() / 24); n > 1 {
		return n
	}
	return 1
}

// Nights returns the calendar days in [checkIn, checkOut), at least one.
func Nights(checkIn, checkOut time.Time) []time.Time {
	start := truncateDay(checkIn)
	end := truncateDay(checkOut)
	if !end.After(start) {
		return []time.Time{start}
	}
	var nights []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Summarize folds per-room statuses into the status of the hotel card. The
// owner kill switch wins, then any available room, then an all-blocked hotel.
func Summarize(hotel model.Hotel, statuses []HotelStatus) HotelStatus {
	if hotel.RoomAvailable == model.RoomAvailableOff {
		return unavailable(StatusSoldOut, "hotel marked sold out")
	}
	if len(statuses) == 0 {
		return unavailable(StatusSoldOut, "no rooms")
	}

	blocked := 0
	for _, s := range statuses {
		if s.IsAvailable {
			return available()
		}
		if s.Status == StatusBlocked {
			blocked++
		}
	}
	if blocked == len(statuses) {
		return unavailable(StatusBlocked, "blocked for date")
	}
	return unavailable(StatusSoldOut, "no rooms available")
}

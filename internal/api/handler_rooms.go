package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"huts4u-backend/internal/availability"
	"huts4u-backend/internal/parse"
)

// DayStatus is one night of a range availability check.
type DayStatus struct {
	Date   string                   `json:"date"`
	Rate   float64                  `json:"rate"`
	Status availability.HotelStatus `json:"status"`
}

// RoomAvailability is the response of GET /api/rooms/:room_id/availability.
type RoomAvailability struct {
	RoomID   int64                    `json:"roomId"`
	HotelID  int64                    `json:"hotelId"`
	CheckIn  string                   `json:"checkIn"`
	CheckOut string                   `json:"checkOut"`
	Nights   int                      `json:"nights"`
	Status   availability.HotelStatus `json:"status"`
	Days     []DayStatus              `json:"days"`
}

// GetRoomAvailability checks an overnight stay for a single room.
func (h *Handler) GetRoomAvailability(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil || roomID <= 0 {
		abort(c, http.StatusBadRequest, "Invalid room ID")
		return
	}

	rawCheckIn := c.Query("checkIn")
	if rawCheckIn == "" {
		rawCheckIn = h.today().Format(availability.DateLayout)
	}
	checkIn, checkOut, err := parse.ParseStay(rawCheckIn, c.Query("checkOut"), h.loc)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if n := availability.NightCount(checkIn, checkOut); n > h.quotes.MaxNights() {
		abort(c, http.StatusBadRequest, fmt.Sprintf("stay of %d nights exceeds the limit of %d", n, h.quotes.MaxNights()))
		return
	}
	ctx := c.Request.Context()

	room, err := h.store.GetRoom(ctx, roomID)
	if err != nil {
		h.fail(c, err)
		return
	}
	hotel := room.Hotel
	if hotel == nil {
		if hotel, err = h.store.GetHotel(ctx, room.HotelID); err != nil {
			h.fail(c, err)
			return
		}
	}

	nights := availability.Nights(checkIn, checkOut)
	records, err := h.store.InventoryForRooms(ctx, []int64{room.ID},
		nights[0].Format(availability.DateLayout), nights[len(nights)-1].Format(availability.DateLayout))
	if err != nil {
		h.fail(c, err)
		return
	}
	inv := availability.NewInventory(records)

	resp := RoomAvailability{
		RoomID:   room.ID,
		HotelID:  room.HotelID,
		CheckIn:  nights[0].Format(availability.DateLayout),
		CheckOut: nights[len(nights)-1].AddDate(0, 0, 1).Format(availability.DateLayout),
		Nights:   len(nights),
		Status:   availability.RangeStatus(*hotel, *room, inv, checkIn, checkOut),
		Days:     make([]DayStatus, 0, len(nights)),
	}
	for _, night := range nights {
		resp.Days = append(resp.Days, DayStatus{
			Date:   night.Format(availability.DateLayout),
			Rate:   availability.EffectiveRate(*room, inv, night, availability.SlotOvernight),
			Status: availability.Evaluate(*hotel, *room, inv, night, availability.BookingOvernight),
		})
	}
	c.JSON(http.StatusOK, resp)
}

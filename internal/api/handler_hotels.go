package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"huts4u-backend/internal/availability"
	"huts4u-backend/internal/model"
	"huts4u-backend/internal/parse"
	"huts4u-backend/internal/pricing"
)

type hotelQuery struct {
	Date        string `form:"date"`
	BookingType string `form:"bookingType" binding:"omitempty,bookingtype"`
	Slot        string `form:"slot" binding:"omitempty,slot"`
	City        string `form:"city" binding:"omitempty,max=128"`
	IDs         string `form:"ids"`
}

// HotelCard is a hotel as shown in search results.
type HotelCard struct {
	ID            int64                    `json:"id"`
	PropertyName  string                   `json:"propertyName"`
	City          string                   `json:"city"`
	Address       string                   `json:"address"`
	Rating        float64                  `json:"rating"`
	RatingCount   int                      `json:"ratingCount"`
	DiscountValue float64                  `json:"discountValue"`
	DiscountType  string                   `json:"discountType"`
	Status        availability.HotelStatus `json:"status"`
	StartingPrice float64                  `json:"startingPrice"`
	StartingSlot  availability.Slot        `json:"startingSlot,omitempty"`
	Breakdown     *pricing.Breakdown       `json:"priceBreakdown,omitempty"`
}

// SlotView is an offered slot with its price breakdown.
type SlotView struct {
	availability.SlotQuote
	Breakdown pricing.Breakdown `json:"priceBreakdown"`
}

// RoomView is a room on the hotel detail page.
type RoomView struct {
	model.Room
	Availability availability.HotelStatus `json:"availability"`
	Slots        []SlotView               `json:"slots"`
}

// HotelDetail is the hotel detail page payload.
type HotelDetail struct {
	HotelCard
	Date        string                   `json:"date"`
	BookingType availability.BookingType `json:"bookingType"`
	Rooms       []RoomView               `json:"rooms"`
	MealPlans   []model.MealPlan         `json:"mealPlans"`
}

// searchParams is a parsed hotelQuery.
type searchParams struct {
	date        time.Time
	bookingType availability.BookingType
	slot        availability.Slot
	city        string
	ids         map[int64]struct{}
}

func (h *Handler) bindSearch(c *gin.Context) (searchParams, bool) {
	var q hotelQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return searchParams{}, false
	}

	p := searchParams{date: h.today(), city: q.City}
	if q.Date != "" {
		d, err := parse.ParseDate(q.Date, h.loc)
		if err != nil {
			abort(c, http.StatusBadRequest, "Invalid date: "+err.Error())
			return searchParams{}, false
		}
		p.date = d
	}
	if q.IDs != "" {
		ids, err := parse.ParseIDs(q.IDs)
		if err != nil {
			abort(c, http.StatusBadRequest, "Invalid ids: "+err.Error())
			return searchParams{}, false
		}
		p.ids = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			p.ids[id] = struct{}{}
		}
	}
	// Both were validated by the binding rules above.
	p.bookingType, _ = parse.ParseBookingType(q.BookingType)
	if q.Slot != "" {
		p.slot, _ = parse.ParseSlot(q.Slot)
		if p.slot == availability.SlotOvernight {
			p.bookingType = availability.BookingOvernight
		} else {
			p.bookingType = availability.BookingHourly
		}
	}
	return p, true
}

// roomStatus evaluates room for p and returns its status and offered slots.
// When p names a slot, only that slot is considered.
func roomStatus(hotel model.Hotel, room model.Room, inv *availability.Inventory, p searchParams) (availability.HotelStatus, []availability.SlotQuote) {
	status := availability.Evaluate(hotel, room, inv, p.date, p.bookingType)
	slots := availability.Slots(room, inv, p.date, p.bookingType)
	if p.slot == "" {
		return status, slots
	}

	for _, q := range slots {
		if q.Slot != p.slot {
			continue
		}
		if status.IsAvailable && !q.Available {
			status = availability.HotelStatus{Status: availability.StatusSoldOut, Reason: "sold out for " + string(p.slot)}
		}
		return status, []availability.SlotQuote{q}
	}
	if status.IsAvailable {
		status = availability.HotelStatus{Status: availability.StatusUnavailable, Reason: "slot not offered"}
	}
	return status, nil
}

// card builds the search card of hotel. Its starting price is the cheapest
// open slot over the hotel's available rooms.
func card(hotel model.Hotel, inv *availability.Inventory, p searchParams) HotelCard {
	hc := HotelCard{
		ID:            hotel.ID,
		PropertyName:  hotel.PropertyName,
		City:          hotel.City,
		Address:       hotel.Address,
		Rating:        hotel.Rating,
		RatingCount:   hotel.RatingCount,
		DiscountValue: hotel.DiscountValue,
		DiscountType:  hotel.DiscountType,
	}

	statuses := make([]availability.HotelStatus, 0, len(hotel.Rooms))
	for _, room := range hotel.Rooms {
		status, slots := roomStatus(hotel, room, inv, p)
		statuses = append(statuses, status)
		if !status.IsAvailable {
			continue
		}
		for _, q := range slots {
			if q.Available && (hc.StartingPrice == 0 || q.Rate < hc.StartingPrice) {
				hc.StartingPrice = q.Rate
				hc.StartingSlot = q.Slot
			}
		}
	}

	hc.Status = availability.Summarize(hotel, statuses)
	if hc.Status.IsAvailable && hc.StartingPrice > 0 {
		b := pricing.Compute(hc.StartingPrice)
		hc.Breakdown = &b
	}
	return hc
}

func roomIDs(hotels ...model.Hotel) []int64 {
	var ids []int64
	for _, hotel := range hotels {
		for _, room := range hotel.Rooms {
			ids = append(ids, room.ID)
		}
	}
	return ids
}

// ListHotels handles GET /api/hotels. ids restricts the result to a comma
// separated list of hotel ids.
func (h *Handler) ListHotels(c *gin.Context) {
	p, ok := h.bindSearch(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	hotels, err := h.store.ListHotels(ctx, p.city)
	if err != nil {
		h.fail(c, err)
		return
	}
	if p.ids != nil {
		kept := hotels[:0]
		for _, hotel := range hotels {
			if _, ok := p.ids[hotel.ID]; ok {
				kept = append(kept, hotel)
			}
		}
		hotels = kept
	}

	day := p.date.Format(availability.DateLayout)
	records, err := h.store.InventoryForRooms(ctx, roomIDs(hotels...), day, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	inv := availability.NewInventory(records)

	cards := make([]HotelCard, 0, len(hotels))
	for _, hotel := range hotels {
		cards = append(cards, card(hotel, inv, p))
	}
	c.JSON(http.StatusOK, cards)
}

// GetHotel handles GET /api/hotels/:hotel_id.
func (h *Handler) GetHotel(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Param("hotel_id"), 10, 64)
	if err != nil || hotelID <= 0 {
		abort(c, http.StatusBadRequest, "Invalid hotel ID")
		return
	}
	p, ok := h.bindSearch(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	hotel, err := h.store.GetHotel(ctx, hotelID)
	if err != nil {
		h.fail(c, err)
		return
	}

	day := p.date.Format(availability.DateLayout)
	records, err := h.store.InventoryForRooms(ctx, roomIDs(*hotel), day, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	inv := availability.NewInventory(records)

	detail := HotelDetail{
		HotelCard:   card(*hotel, inv, p),
		Date:        day,
		BookingType: p.bookingType,
		Rooms:       make([]RoomView, 0, len(hotel.Rooms)),
		MealPlans:   hotel.MealPlans,
	}
	if detail.MealPlans == nil {
		detail.MealPlans = []model.MealPlan{}
	}
	for _, room := range hotel.Rooms {
		status, slots := roomStatus(*hotel, room, inv, p)
		view := RoomView{Room: room, Availability: status, Slots: make([]SlotView, 0, len(slots))}
		for _, q := range slots {
			view.Slots = append(view.Slots, SlotView{SlotQuote: q, Breakdown: pricing.Compute(q.Rate)})
		}
		detail.Rooms = append(detail.Rooms, view)
	}
	c.JSON(http.StatusOK, detail)
}

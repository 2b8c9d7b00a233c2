package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"huts4u-backend/internal/availability"
	"huts4u-backend/internal/parse"
	"huts4u-backend/internal/quote"
)

type quoteRequest struct {
	RoomID      int64  `json:"roomId" binding:"required,gt=0"`
	BookingType string `json:"bookingType" binding:"omitempty,bookingtype"`
	Slot        string `json:"slot" binding:"omitempty,slot"`
	Date        string `json:"date"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Rooms       int    `json:"rooms" binding:"omitempty,min=1,max=50"`
	MealPlanID  int64  `json:"mealPlanId" binding:"omitempty,gt=0"`
	CouponCode  string `json:"couponCode" binding:"omitempty,max=64"`
}

// optionalDate parses raw when it is set.
func (h *Handler) optionalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return parse.ParseDate(raw, h.loc)
}

// CreateQuote handles POST /api/quotes.
func (h *Handler) CreateQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	qr := quote.Request{
		RoomID:     req.RoomID,
		Rooms:      req.Rooms,
		MealPlanID: req.MealPlanID,
		CouponCode: req.CouponCode,
	}
	// Both were validated by the binding rules above. A slot implies its
	// booking type, as in search.
	qr.BookingType, _ = parse.ParseBookingType(req.BookingType)
	if req.Slot != "" {
		qr.Slot, _ = parse.ParseSlot(req.Slot)
		implied := availability.BookingHourly
		if qr.Slot == availability.SlotOvernight {
			implied = availability.BookingOvernight
		}
		if req.BookingType != "" && qr.BookingType != implied {
			h.fail(c, fmt.Errorf("%w: slot %s does not match bookingType %s", quote.ErrInvalidRequest, qr.Slot, qr.BookingType))
			return
		}
		qr.BookingType = implied
	}

	var err error
	for _, f := range []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{"date", req.Date, &qr.Date},
		{"checkIn", req.CheckIn, &qr.CheckIn},
		{"checkOut", req.CheckOut, &qr.CheckOut},
	} {
		if *f.dst, err = h.optionalDate(f.raw); err != nil {
			abort(c, http.StatusBadRequest, f.name+": "+err.Error())
			return
		}
	}
	if qr.Date.IsZero() && qr.CheckIn.IsZero() {
		qr.Date = h.today()
	}

	q, err := h.quotes.Quote(c.Request.Context(), qr)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Debugw("quote created", "id", q.ID, "room", q.RoomID, "final", q.Breakdown.FinalPrice)
	c.JSON(http.StatusCreated, q)
}

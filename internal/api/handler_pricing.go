package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"huts4u-backend/internal/pricing"
)

type breakdownRequest struct {
	BasePrice *float64 `json:"basePrice" binding:"required"`
}

type reverseRequest struct {
	FinalAmount *float64 `json:"finalAmount" binding:"required"`
}

type discountFields struct {
	HotelDiscountValue float64 `json:"hotelDiscountValue" binding:"gte=0"`
	HotelDiscountType  string  `json:"hotelDiscountType" binding:"omitempty,oneof=percentage flat"`
	CouponApplied      bool    `json:"couponApplied"`
	CouponValue        float64 `json:"couponValue" binding:"gte=0,lte=1"`
}

func (d discountFields) discounts() pricing.Discounts {
	return pricing.Discounts{
		HotelDiscountValue: d.HotelDiscountValue,
		HotelDiscountType:  pricing.DiscountType(d.HotelDiscountType),
		CouponApplied:      d.CouponApplied,
		CouponValue:        d.CouponValue,
	}
}

type extrasRequest struct {
	BasePrice     *float64 `json:"basePrice" binding:"required"`
	MealPlanPrice float64  `json:"mealPlanPrice"`
	discountFields
}

type invoiceRequest struct {
	FinalAmount   *float64 `json:"finalAmount" binding:"required"`
	MealPlanPrice float64  `json:"mealPlanPrice"`
	discountFields
}

// InvoiceResponse is a reconstructed invoice with its reference.
type InvoiceResponse struct {
	InvoiceID string          `json:"invoiceId"`
	Invoice   pricing.Invoice `json:"invoice"`
}

// PriceBreakdown handles POST /api/pricing/breakdown.
func (h *Handler) PriceBreakdown(c *gin.Context) {
	var req breakdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, pricing.Compute(*req.BasePrice))
}

// PriceBreakdownWithExtras handles POST /api/pricing/breakdown/extras.
func (h *Handler) PriceBreakdownWithExtras(c *gin.Context) {
	var req extrasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, pricing.ComputeWithExtras(*req.BasePrice, req.MealPlanPrice, req.discounts()))
}

// ReversePrice handles POST /api/pricing/reverse.
func (h *Handler) ReversePrice(c *gin.Context) {
	var req reverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, pricing.ReversePriceFromFinal(*req.FinalAmount))
}

// ReverseInvoice handles POST /api/pricing/invoice.
func (h *Handler) ReverseInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := pricing.ReverseInvoice(*req.FinalAmount, req.MealPlanPrice, req.discounts())
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, InvoiceResponse{InvoiceID: uuid.NewString(), Invoice: inv})
}

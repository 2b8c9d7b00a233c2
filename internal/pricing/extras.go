package pricing

import "math"

// DiscountType says how a hotel discount value is interpreted.
type DiscountType string

const (
	DiscountNone       DiscountType = ""
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// Discounts are the reductions applied on top of the taxed total.
//
// HotelDiscountValue is a whole percentage (10 means 10%) when the type is
// percentage, or an amount when flat. CouponValue is a fraction (0.05 means 5%).
type Discounts struct {
	HotelDiscountValue float64      `json:"hotelDiscountValue"`
	HotelDiscountType  DiscountType `json:"hotelDiscountType"`
	CouponApplied      bool         `json:"couponApplied"`
	CouponValue        float64      `json:"couponValue"`
}

// ExtendedBreakdown is the booking summary breakdown including a meal plan,
// the convenience fee and discounts.
type ExtendedBreakdown struct {
	BasePrice            float64 `json:"basePrice"`
	MealPlanPrice        float64 `json:"mealPlanPrice"`
	TaxableValue         float64 `json:"taxableValue"`
	GSTOnBase            float64 `json:"gstOnBase"`
	PlatformFee          float64 `json:"platformFee"`
	GSTOnPlatform        float64 `json:"gstOnPlatform"`
	Subtotal             float64 `json:"subtotal"`
	ConvenienceFee       float64 `json:"convenienceFee"`
	GSTOnConvenience     float64 `json:"gstOnConvenience"`
	GSTTotal             float64 `json:"gstTotal"`
	TotalWithoutDiscount float64 `json:"totalWithoutDiscount"`
	HotelDiscount        float64 `json:"hotelDiscount"`
	CouponDiscount       float64 `json:"couponDiscount"`
	TotalDiscount        float64 `json:"totalDiscount"`
	FinalPrice           float64 `json:"finalPrice"`
}

// ComputeWithExtras prices basePrice plus an optional meal plan. GST and the
// platform fee are charged on the combined taxable value. FinalPrice never
// goes below zero, even when stacked discounts exceed the total.
func ComputeWithExtras(basePrice, mealPlanPrice float64, d Discounts) ExtendedBreakdown {
	if !positive(basePrice) {
		return ExtendedBreakdown{}
	}
	if !positive(mealPlanPrice) {
		mealPlanPrice = 0
	}

	taxable := basePrice + mealPlanPrice
	gstOnBase := taxable * GSTRate
	platformFee := (taxable + gstOnBase) * PlatformFeeRate
	gstOnPlatform := platformFee * ServiceGSTRate
	subtotal := taxable + gstOnBase + platformFee + gstOnPlatform

	convenienceFee, gstOnConvenience := gatewayCascade(subtotal)
	totalWithoutDiscount := subtotal + convenienceFee + gstOnConvenience

	hotelDiscount := hotelDiscountAmount(totalWithoutDiscount, d)
	couponDiscount := couponDiscountAmount(totalWithoutDiscount, d)
	totalDiscount := hotelDiscount + couponDiscount

	return ExtendedBreakdown{
		BasePrice:            basePrice,
		MealPlanPrice:        mealPlanPrice,
		TaxableValue:         taxable,
		GSTOnBase:            gstOnBase,
		PlatformFee:          platformFee,
		GSTOnPlatform:        gstOnPlatform,
		Subtotal:             subtotal,
		ConvenienceFee:       convenienceFee,
		GSTOnConvenience:     gstOnConvenience,
		GSTTotal:             gstOnBase + gstOnPlatform + gstOnConvenience,
		TotalWithoutDiscount: totalWithoutDiscount,
		HotelDiscount:        hotelDiscount,
		CouponDiscount:       couponDiscount,
		TotalDiscount:        totalDiscount,
		FinalPrice:           math.Max(totalWithoutDiscount-totalDiscount, 0),
	}
}

func hotelDiscountAmount(total float64, d Discounts) float64 {
	if !positive(d.HotelDiscountValue) {
		return 0
	}
	switch d.HotelDiscountType {
	case DiscountPercentage:
		return total * (d.HotelDiscountValue / 100)
	case DiscountFlat:
		return math.Min(d.HotelDiscountValue, total)
	default:
		return 0
	}
}

func couponDiscountAmount(total float64, d Discounts) float64 {
	if !d.CouponApplied || !positive(d.CouponValue) {
		return 0
	}
	return total * d.CouponValue
}

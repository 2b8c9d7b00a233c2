package pricing

import "math"

// TaxSplit is a GST amount split into its central and state halves.
type TaxSplit struct {
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
}

// Total returns CGST + SGST.
func (t TaxSplit) Total() float64 {
	return t.CGST + t.SGST
}

func (t TaxSplit) add(o TaxSplit) TaxSplit {
	return TaxSplit{CGST: t.CGST + o.CGST, SGST: t.SGST + o.SGST}
}

// Invoice is the rounded, CGST/SGST-split breakdown printed on a booking invoice.
// Every amount is rounded to two decimals at the point it is produced.
type Invoice struct {
	BasePrice            float64  `json:"basePrice"`
	MealPlanPrice        float64  `json:"mealPlanPrice"`
	TaxableValue         float64  `json:"taxableValue"`
	GSTOnBase            TaxSplit `json:"gstOnBase"`
	ServiceFee           float64  `json:"serviceFee"`
	GSTOnService         TaxSplit `json:"gstOnService"`
	Subtotal             float64  `json:"subtotal"`
	ConvenienceFee       float64  `json:"convenienceFee"`
	GSTOnConvenience     TaxSplit `json:"gstOnConvenience"`
	TotalWithoutDiscount float64  `json:"totalWithoutDiscount"`
	HotelDiscount        float64  `json:"hotelDiscount"`
	CouponDiscount       float64  `json:"couponDiscount"`
	TotalDiscount        float64  `json:"totalDiscount"`
	GSTTotal             float64  `json:"gstTotal"`
	FinalPrice           float64  `json:"finalPrice"`
}

// Round2 rounds n to two decimals, half away from zero.
func Round2(n float64) float64 {
	return math.Round(n*100) / 100
}

// splitGST charges rate on amount and splits it in two rounded halves.
func splitGST(amount, rate float64) TaxSplit {
	half := Round2(amount * rate / 2)
	return TaxSplit{CGST: half, SGST: half}
}

// ComputeInvoice builds the invoice for basePrice plus an optional meal plan.
// It follows the same cascade as ComputeWithExtras but rounds each component,
// so totals can differ from it by a few paise.
func ComputeInvoice(basePrice, mealPlanPrice float64, d Discounts) Invoice {
	if !positive(basePrice) {
		return Invoice{}
	}
	if !positive(mealPlanPrice) {
		mealPlanPrice = 0
	}

	taxable := Round2(basePrice + mealPlanPrice)
	gstOnBase := splitGST(taxable, GSTRate)
	serviceFee := Round2((taxable + gstOnBase.Total()) * PlatformFeeRate)
	gstOnService := splitGST(serviceFee, ServiceGSTRate)
	subtotal := Round2(taxable + gstOnBase.Total() + serviceFee + gstOnService.Total())

	var convenienceFee float64
	var gstOnConvenience TaxSplit
	running := subtotal
	for _, rate := range [...]float64{GatewayFirstRate, GatewayLastRate} {
		tranche := Round2(running * rate)
		trancheGST := splitGST(tranche, ServiceGSTRate)
		running = Round2(running + tranche + trancheGST.Total())
		convenienceFee += tranche
		gstOnConvenience = gstOnConvenience.add(trancheGST)
	}
	convenienceFee = Round2(convenienceFee)
	gstOnConvenience = TaxSplit{CGST: Round2(gstOnConvenience.CGST), SGST: Round2(gstOnConvenience.SGST)}

	total := Round2(subtotal + convenienceFee + gstOnConvenience.Total())
	hotelDiscount := Round2(hotelDiscountAmount(total, d))
	couponDiscount := Round2(couponDiscountAmount(total, d))
	totalDiscount := Round2(hotelDiscount + couponDiscount)

	return Invoice{
		BasePrice:            basePrice,
		MealPlanPrice:        mealPlanPrice,
		TaxableValue:         taxable,
		GSTOnBase:            gstOnBase,
		ServiceFee:           serviceFee,
		GSTOnService:         gstOnService,
		Subtotal:             subtotal,
		ConvenienceFee:       convenienceFee,
		GSTOnConvenience:     gstOnConvenience,
		TotalWithoutDiscount: total,
		HotelDiscount:        hotelDiscount,
		CouponDiscount:       couponDiscount,
		TotalDiscount:        totalDiscount,
		GSTTotal:             Round2(gstOnBase.Total() + gstOnService.Total() + gstOnConvenience.Total()),
		FinalPrice:           Round2(math.Max(total-totalDiscount, 0)),
	}
}

package pricing

import "math"

// Rates applied by every breakdown. They are properties of the marketplace,
// not inputs of a single calculation.
const (
	GSTRate          = 0.05
	PlatformFeeRate  = 0.13
	ServiceGSTRate   = 0.18
	GatewayFirstRate = 0.016
	GatewayLastRate  = 0.003
)

// Breakdown is the tax and fee cascade for a single base price.
type Breakdown struct {
	BasePrice     float64 `json:"basePrice"`
	PlatformFee   float64 `json:"platformFee"`
	GSTOnBase     float64 `json:"gstOnBase"`
	GSTOnPlatform float64 `json:"gstOnPlatform"`
	GatewayFee    float64 `json:"gatewayFee"`
	GSTOnGateway  float64 `json:"gstOnGateway"`
	GSTTotal      float64 `json:"gstTotal"`
	FinalPrice    float64 `json:"finalPrice"`
}

// Compute returns the breakdown for basePrice. Non-positive or non-finite
// prices produce a zero Breakdown.
//
// The gateway fee is charged in two tranches: the second one is computed on the
// running total after the first tranche and its GST were added. The gateway fee
// is reported but only its GST is carried into GSTTotal and FinalPrice.
func Compute(basePrice float64) Breakdown {
	if !positive(basePrice) {
		return Breakdown{}
	}

	gstOnBase := basePrice * GSTRate
	platformFee := (basePrice + gstOnBase) * PlatformFeeRate
	gstOnPlatform := platformFee * ServiceGSTRate

	amountBeforeGateway := basePrice + gstOnBase + platformFee + gstOnPlatform
	gatewayFee, gstOnGateway := gatewayCascade(amountBeforeGateway)

	gstTotal := gstOnBase + gstOnPlatform + gstOnGateway

	return Breakdown{
		BasePrice:     basePrice,
		PlatformFee:   platformFee,
		GSTOnBase:     gstOnBase,
		GSTOnPlatform: gstOnPlatform,
		GatewayFee:    gatewayFee,
		GSTOnGateway:  gstOnGateway,
		GSTTotal:      gstTotal,
		FinalPrice:    basePrice + platformFee + gstTotal,
	}
}

// gatewayCascade applies the two sequential gateway tranches to amount and
// returns the summed fee and the summed GST on it.
func gatewayCascade(amount float64) (fee, gst float64) {
	running := amount
	for _, rate := range [...]float64{GatewayFirstRate, GatewayLastRate} {
		tranche := running * rate
		trancheGST := tranche * ServiceGSTRate
		running = running + tranche + trancheGST
		fee += tranche
		gst += trancheGST
	}
	return fee, gst
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

package pricing

import (
	"errors"
	"math"
)

// ErrUnreachableFinal is returned when no positive base price produces the
// requested final amount, e.g. when the meal plan alone costs more.
var ErrUnreachableFinal = errors.New("final amount is not reachable")

const (
	// Rough final/base ratios used as the first guess of the reversal.
	breakdownMultiplier = 1.2156
	invoiceMultiplier   = 1.23965

	maxReverseIterations = 10
	reverseTolerance     = 0.01
)

// ReversePriceFromFinal recovers the base price whose Compute breakdown ends at
// finalAmount. The fee cascade has no closed-form inverse, so the guess is
// rescaled by finalAmount/computed until it lands within a paisa.
func ReversePriceFromFinal(finalAmount float64) Breakdown {
	if !positive(finalAmount) {
		return Breakdown{}
	}

	base := finalAmount / breakdownMultiplier
	for i := 0; i < maxReverseIterations; i++ {
		computed := Compute(base).FinalPrice
		if computed <= 0 || math.Abs(finalAmount-computed) < reverseTolerance {
			break
		}
		base *= finalAmount / computed
	}
	return Compute(base)
}

// ReverseInvoiceFromFinal recovers the invoice whose FinalPrice is finalAmount
// for the given meal plan price and discounts. The taxable value (base plus meal
// plan) is rescaled rather than the base alone so a fixed meal plan price does
// not slow convergence down. A finalAmount below what the meal plan alone
// costs after fees has no positive base; the zero Invoice is returned then.
// Use ReverseInvoice to tell that case apart.
func ReverseInvoiceFromFinal(finalAmount, mealPlanPrice float64, d Discounts) Invoice {
	if !positive(finalAmount) {
		return Invoice{}
	}
	if !positive(mealPlanPrice) {
		mealPlanPrice = 0
	}

	// The base has to stay positive or ComputeInvoice zeroes out.
	taxable := math.Max(finalAmount/invoiceMultiplier, mealPlanPrice+reverseTolerance)
	for i := 0; i < maxReverseIterations; i++ {
		computed := ComputeInvoice(taxable-mealPlanPrice, mealPlanPrice, d).FinalPrice
		if computed <= 0 || math.Abs(finalAmount-computed) < reverseTolerance {
			break
		}
		taxable *= finalAmount / computed
	}
	return ComputeInvoice(taxable-mealPlanPrice, mealPlanPrice, d)
}

// ReverseInvoice is ReverseInvoiceFromFinal that fails with
// ErrUnreachableFinal when the recovered invoice does not end at finalAmount.
func ReverseInvoice(finalAmount, mealPlanPrice float64, d Discounts) (Invoice, error) {
	inv := ReverseInvoiceFromFinal(finalAmount, mealPlanPrice, d)
	if !positive(inv.BasePrice) || math.Abs(inv.FinalPrice-finalAmount) > 1 {
		return Invoice{}, ErrUnreachableFinal
	}
	return inv, nil
}

package pricing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReversePriceFromFinal_RoundTrip(t *testing.T) {
	for _, base := range []float64{100, 250, 1000, 5000, 19999, 42000.5, 100000} {
		t.Run(fmt.Sprintf("base %v", base), func(t *testing.T) {
			final := Compute(base).FinalPrice
			recovered := ReversePriceFromFinal(final)

			assert.InDelta(t, base, recovered.BasePrice, 1)
			assert.InDelta(t, final, recovered.FinalPrice, 0.01)
		})
	}
}

func TestReversePriceFromFinal_ReturnsFullBreakdown(t *testing.T) {
	b := ReversePriceFromFinal(1215.224206500864)

	assert.InDelta(t, 1000, b.BasePrice, 0.01)
	assert.InDelta(t, 136.5, b.PlatformFee, 0.01)
	assert.InDelta(t, 50, b.GSTOnBase, 0.01)
}

func TestReversePriceFromFinal_DegenerateInputs(t *testing.T) {
	assert.Equal(t, Breakdown{}, ReversePriceFromFinal(0))
	assert.Equal(t, Breakdown{}, ReversePriceFromFinal(-99))
}

func TestComputeInvoice(t *testing.T) {
	inv := ComputeInvoice(1000, 200, Discounts{
		HotelDiscountValue: 10, HotelDiscountType: DiscountPercentage,
		CouponApplied: true, CouponValue: 0.05,
	})

	assert.Equal(t, 1200.0, inv.TaxableValue)
	assert.Equal(t, TaxSplit{CGST: 30, SGST: 30}, inv.GSTOnBase)
	assert.Equal(t, 163.8, inv.ServiceFee)
	assert.Equal(t, TaxSplit{CGST: 14.74, SGST: 14.74}, inv.GSTOnService)
	assert.Equal(t, 1453.28, inv.Subtotal)
	assert.Equal(t, 27.69, inv.ConvenienceFee)
	assert.Equal(t, TaxSplit{CGST: 2.49, SGST: 2.49}, inv.GSTOnConvenience)
	assert.Equal(t, 1485.95, inv.TotalWithoutDiscount)
	assert.Equal(t, 148.6, inv.HotelDiscount)
	assert.Equal(t, 74.3, inv.CouponDiscount)
	assert.Equal(t, 222.9, inv.TotalDiscount)
	assert.Equal(t, 94.46, inv.GSTTotal)
	assert.Equal(t, 1263.05, inv.FinalPrice)
}

func TestComputeInvoice_HalvesAreEqual(t *testing.T) {
	for _, base := range []float64{99.99, 1234.56, 8000} {
		inv := ComputeInvoice(base, 0, Discounts{})
		assert.Equal(t, inv.GSTOnBase.CGST, inv.GSTOnBase.SGST)
		assert.Equal(t, inv.GSTOnService.CGST, inv.GSTOnService.SGST)
		assert.Equal(t, inv.GSTOnConvenience.CGST, inv.GSTOnConvenience.SGST)
	}
}

func TestComputeInvoice_DegenerateInputs(t *testing.T) {
	assert.Equal(t, Invoice{}, ComputeInvoice(0, 100, Discounts{}))
}

func TestReverseInvoiceFromFinal_RoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		mealPlan  float64
		discounts Discounts
	}{
		{name: "room only"},
		{
			name:     "meal plan with percentage and coupon",
			mealPlan: 250,
			discounts: Discounts{
				HotelDiscountValue: 10, HotelDiscountType: DiscountPercentage,
				CouponApplied: true, CouponValue: 0.05,
			},
		},
		{
			name:      "meal plan with flat discount",
			mealPlan:  300,
			discounts: Discounts{HotelDiscountValue: 150, HotelDiscountType: DiscountFlat},
		},
	}

	for _, tc := range cases {
		for _, base := range []float64{100, 1000, 5000, 19999, 100000} {
			t.Run(fmt.Sprintf("%s/%v", tc.name, base), func(t *testing.T) {
				final := ComputeInvoice(base, tc.mealPlan, tc.discounts).FinalPrice
				require.Greater(t, final, 0.0)

				inv := ReverseInvoiceFromFinal(final, tc.mealPlan, tc.discounts)
				assert.InDelta(t, base, inv.BasePrice, 1)
				assert.InDelta(t, final, inv.FinalPrice, 0.02)
				assert.Equal(t, tc.mealPlan, inv.MealPlanPrice)
			})
		}
	}
}

func TestReverseInvoice_UnreachableFinal(t *testing.T) {
	assert.Equal(t, Invoice{}, ReverseInvoiceFromFinal(500, 450, Discounts{}))

	_, err := ReverseInvoice(500, 450, Discounts{})
	assert.ErrorIs(t, err, ErrUnreachableFinal)
	_, err = ReverseInvoice(0, 0, Discounts{})
	assert.ErrorIs(t, err, ErrUnreachableFinal)

	final := ComputeInvoice(1000, 450, Discounts{}).FinalPrice
	inv, err := ReverseInvoice(final, 450, Discounts{})
	require.NoError(t, err)
	assert.InDelta(t, 1000, inv.BasePrice, 1)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, 2.0, Round2(1.999))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 1215.22, Round2(1215.224206500864))
}

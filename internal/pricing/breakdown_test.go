package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_ThousandRupees(t *testing.T) {
	b := Compute(1000)

	assert.InDelta(t, 1000, b.BasePrice, 1e-9)
	assert.InDelta(t, 50, b.GSTOnBase, 1e-9)
	assert.InDelta(t, 136.5, b.PlatformFee, 1e-9)
	assert.InDelta(t, 24.57, b.GSTOnPlatform, 1e-9)
	assert.InDelta(t, 23.0789250048, b.GatewayFee, 1e-9)
	assert.InDelta(t, 4.154206500864, b.GSTOnGateway, 1e-9)
	assert.InDelta(t, 78.724206500864, b.GSTTotal, 1e-9)
	assert.InDelta(t, 1215.224206500864, b.FinalPrice, 1e-9)
	assert.Equal(t, 1215.22, Round2(b.FinalPrice))
}

func TestCompute_Identities(t *testing.T) {
	for _, base := range []float64{1, 99.5, 500, 1000, 7350, 19999, 100000} {
		b := Compute(base)
		assert.InDelta(t, b.GSTOnBase+b.GSTOnPlatform+b.GSTOnGateway, b.GSTTotal, 1e-9, "base %v", base)
		assert.InDelta(t, b.BasePrice+b.PlatformFee+b.GSTTotal, b.FinalPrice, 1e-9, "base %v", base)
		assert.InDelta(t, b.GatewayFee*ServiceGSTRate, b.GSTOnGateway, 1e-9, "base %v", base)
	}
}

func TestCompute_DegenerateInputs(t *testing.T) {
	testCases := []struct {
		name string
		base float64
	}{
		{name: "zero", base: 0},
		{name: "negative", base: -250},
		{name: "tiny negative", base: -0.0001},
		{name: "NaN", base: math.NaN()},
		{name: "positive infinity", base: math.Inf(1)},
		{name: "negative infinity", base: math.Inf(-1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, Breakdown{}, Compute(tc.base))
		})
	}
}

func TestCompute_NonNegative(t *testing.T) {
	for base := 0.0; base <= 50000; base += 123.45 {
		b := Compute(base)
		for name, v := range map[string]float64{
			"basePrice":     b.BasePrice,
			"platformFee":   b.PlatformFee,
			"gstOnBase":     b.GSTOnBase,
			"gstOnPlatform": b.GSTOnPlatform,
			"gatewayFee":    b.GatewayFee,
			"gstOnGateway":  b.GSTOnGateway,
			"gstTotal":      b.GSTTotal,
			"finalPrice":    b.FinalPrice,
		} {
			assert.GreaterOrEqual(t, v, 0.0, "%s for base %v", name, base)
		}
	}
}

func TestCompute_Monotonic(t *testing.T) {
	prev := Compute(0.01).FinalPrice
	for base := 0.5; base <= 100000; base *= 1.37 {
		cur := Compute(base).FinalPrice
		assert.Less(t, prev, cur, "final price must grow with base %v", base)
		prev = cur
	}
}

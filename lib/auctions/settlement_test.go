package auctions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMolotokTierBreakpoints(t *testing.T) {
	cases := []struct {
		price    float64
		expected float64
	}{
		// flat 5% below the first tier
		{100, 95},
		{500, 475},
		// 25 + 3.5% of the excess over 500
		{10000, 9642.5},
		// 357.5 + 3% of the excess over 10000
		{50000, 48442.5},
		// 1557.5 + 2.5% of the excess over 50000
		{100000, 100000 - (1557.5 + 50000*2.5/100)},
		// commission clamps at 3999
		{10000000, 10000000 - 3999},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, molotokSellerNet(test.price), "price: %v", test.price)
	}
}

func TestMolotokTierContinuity(t *testing.T) {
	// the schedule has no jump at a tier boundary
	for _, boundary := range []float64{500, 10000, 50000} {
		below := molotokSellerNet(boundary)
		above := molotokSellerNet(boundary + 0.01)
		require.InDelta(t, below, above, 0.02, "boundary: %v", boundary)
	}
}

func TestSpbSellerFloor(t *testing.T) {
	// 15% of 100 is 15, below the 35 minimum, so the floor applies
	require.Equal(t, 65.0, spbSellerNet(100))
	// the payout never goes negative even when the floor exceeds the price
	require.Equal(t, 0.0, spbSellerNet(20))
	require.Equal(t, 850.0, spbSellerNet(1000))
	require.Equal(t, 1100.0, spbBuyerTotal(1000))
}

func TestConrosSettlement(t *testing.T) {
	require.Equal(t, 85.0, conrosSellerNet(100))
	require.Equal(t, 0.0, conrosSellerNet(0))
	require.Equal(t, 110.0, conrosBuyerTotal(100))
}

func TestWolmarSettlement(t *testing.T) {
	require.Equal(t, 1100.0, wolmarBuyerTotal(1000))
	require.Equal(t, 900.0, wolmarSellerNet(1000))
}

func TestSettlementMonotonicity(t *testing.T) {
	sellers := map[string]func(float64) float64{
		"molotok": molotokSellerNet,
		"spb":     spbSellerNet,
		"conros":  conrosSellerNet,
		"wolmar":  wolmarSellerNet,
	}
	buyers := map[string]func(float64) float64{
		"spb":    spbBuyerTotal,
		"conros": conrosBuyerTotal,
		"wolmar": wolmarBuyerTotal,
	}

	for site, net := range sellers {
		prev := net(0)
		for price := 50.0; price <= 200000; price += 50 {
			current := net(price)
			require.GreaterOrEqual(t, current, prev, "%s at price %v", site, price)
			prev = current
		}
	}
	for site, total := range buyers {
		prev := total(0)
		for price := 50.0; price <= 200000; price += 50 {
			current := total(price)
			require.GreaterOrEqual(t, current, prev, "%s at price %v", site, price)
			prev = current
		}
	}
}

func TestSettlementInvariant(t *testing.T) {
	// buyer pays at least the hammer price, seller receives at most it
	for price := 0.0; price <= 100000; price += 997 {
		require.GreaterOrEqual(t, spbBuyerTotal(price), price)
		require.LessOrEqual(t, spbSellerNet(price), price)
		require.GreaterOrEqual(t, conrosBuyerTotal(price), price)
		require.LessOrEqual(t, conrosSellerNet(price), price)
		require.GreaterOrEqual(t, wolmarBuyerTotal(price), price)
		require.LessOrEqual(t, wolmarSellerNet(price), price)
		require.LessOrEqual(t, molotokSellerNet(price), price)
	}
}

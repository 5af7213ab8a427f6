package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatch/dealmaker/internal/deal"
	"github.com/bizmatch/dealmaker/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name string
		in   model.Optional[float64]
		want string
	}{
		{name: "unknown", in: model.Unknown[float64](), want: "N/A"},
		{name: "zero", in: model.Known(0.0), want: "$0"},
		{name: "round thousands", in: model.Known(400000.0), want: "$400,000"},
		{name: "cents", in: model.Known(633.33), want: "$633.33"},
		{name: "millions", in: model.Known(1250000.0), want: "$1,250,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.in))
		})
	}
}

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "N/A", FormatPct(model.Unknown[float64]()))
	assert.Equal(t, "33%", FormatPct(model.Known(33.0)))
	assert.Equal(t, "12.5%", FormatPct(model.Known(12.5)))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "TBD", formatRate(model.Unknown[float64]()))
	assert.Equal(t, "8%", formatRate(model.Known(8.0)))
}

func render(t *testing.T, ctx model.DealContext) string {
	t.Helper()
	p := deal.DefaultPolicy()
	r, err := NewRenderer(p)
	require.NoError(t, err)
	out, err := r.Render(ctx, deal.Compute(ctx, p))
	require.NoError(t, err)
	return out
}

func TestRender_ProfitSplitIllustration(t *testing.T) {
	ctx := model.DealContext{
		Seller: model.SellerListing{
			Title:         "Landscaping business",
			AskingPrice:   model.Known(400000.0),
			AvgJobRevenue: model.Known(50000.0),
			AvgJobCost:    model.Known(10000.0),
		},
		Buyer: model.BuyerProfile{
			ProfitSplitPct: model.Known(33.0),
		},
	}

	out := render(t, ctx)

	assert.Contains(t, out, "Asking price: $400,000")
	assert.Contains(t, out, "leaving $40,000 of profit")
	assert.Contains(t, out, "the buyer keeps $13,200 (or 33%)")
	assert.Contains(t, out, "the seller receives $26,800 (or 67%)")
}

func TestRender_EconomicsOmittedWhenIncomplete(t *testing.T) {
	ctx := model.DealContext{
		Seller: model.SellerListing{
			AskingPrice:   model.Known(400000.0),
			AvgJobRevenue: model.Known(50000.0),
		},
		Buyer: model.BuyerProfile{
			ProfitSplitPct: model.Known(33.0),
		},
	}

	out := render(t, ctx)
	assert.NotContains(t, out, "Illustrative job economics")
}

func TestRender_OfferNotSpecified(t *testing.T) {
	ctx := model.DealContext{
		Seller: model.SellerListing{AskingPrice: model.Known(400000.0)},
	}

	out := render(t, ctx)

	assert.Contains(t, out, "Buyer offer price not specified.")
	assert.Contains(t, out, "Down payment requirement not specified.")
	assert.Contains(t, out, "Recommended structure: seller-financed amortizing note")
}

func TestRender_AskingNotSpecified(t *testing.T) {
	ctx := model.DealContext{
		Buyer: model.BuyerProfile{TargetPurchasePrice: model.Known(350000.0)},
	}

	out := render(t, ctx)
	assert.Contains(t, out, "Asking price not specified.")
}

func TestRender_UnknownRendersPlaceholder(t *testing.T) {
	out := render(t, model.DealContext{})

	assert.Contains(t, out, "Asking price: N/A")
	assert.Contains(t, out, "Available capital: N/A")
	assert.Contains(t, out, "Stated interest rate: TBD")
	assert.NotContains(t, out, "$0")
}

func bridgeContext() model.DealContext {
	return model.DealContext{
		Seller: model.SellerListing{
			Title:       "HVAC business",
			AskingPrice: model.Known(400000.0),
			SellerFinancing: model.SellerFinancing{
				Considered:      model.FinancingYes,
				DownPaymentPct:  model.Known(20.0),
				InterestRatePct: model.Known(8.0),
			},
		},
		Buyer: model.BuyerProfile{
			AvailableCapital:    model.Known(20000.0),
			TargetPurchasePrice: model.Known(400000.0),
		},
	}
}

func TestRender_BridgeTerms(t *testing.T) {
	out := render(t, bridgeContext())

	assert.Contains(t, out, "Recommended structure: interest-only bridge with balloon refinance")
	assert.Contains(t, out, "Months 1-24: interest-only payments on the note; the remaining balance balloons at month 24")
	assert.Contains(t, out,
		"If refinance has not occurred by month 24, the note auto-extends 12 months at a step-up rate, "+
			"or converts at the buyer's option to an amortizing note over 36 months or longer.")
	assert.NotContains(t, out, "amortizes in equal monthly payments")
}

func TestRender_ShortfallAmountsGrouped(t *testing.T) {
	out := render(t, bridgeContext())

	// The fit check and the suggestion both describe the same shortfall and
	// must render it identically.
	assert.Contains(t, out, "falls short by $60,000.")
	assert.Contains(t, out, "Buyer is short $60,000 on the required down payment")
	assert.NotContains(t, out, "$60000")
}

func TestRender_EquityCreditClause(t *testing.T) {
	out := render(t, bridgeContext())

	assert.Contains(t, out, "Equity credit: $633.33 of each monthly payment accrues as buyer equity, up to $19,000.")
	assert.Contains(t, out, "two or more payments more than 15 days late suspend further accrual")
}

func TestRender_EquityCreditOmittedWithoutRate(t *testing.T) {
	ctx := bridgeContext()
	ctx.Seller.SellerFinancing.InterestRatePct = model.Unknown[float64]()

	out := render(t, ctx)

	assert.Contains(t, out, "Seller note: $380,000 at TBD interest")
	assert.NotContains(t, out, "Equity credit")
	// The refinance fallback clause does not depend on the credit.
	assert.Contains(t, out, "auto-extends 12 months")
}

func TestRender_ConversionStretchesToSellerTerm(t *testing.T) {
	ctx := bridgeContext()
	ctx.Seller.SellerFinancing.TermYears = model.Known(5.0)

	out := render(t, ctx)
	assert.Contains(t, out, "amortizing note over 60 months or longer")
}

func TestRender_AmortizingTerms(t *testing.T) {
	ctx := model.DealContext{
		Seller: model.SellerListing{
			AskingPrice: model.Known(400000.0),
			SellerFinancing: model.SellerFinancing{
				Considered:      model.FinancingYes,
				DownPaymentPct:  model.Known(10.0),
				InterestRatePct: model.Known(7.0),
				TermYears:       model.Known(10.0),
			},
		},
		Buyer: model.BuyerProfile{
			AvailableCapital:    model.Known(50000.0),
			TargetPurchasePrice: model.Known(400000.0),
		},
	}

	out := render(t, ctx)

	assert.Contains(t, out, "Cash at close: $40,000 (10% of the price)")
	assert.Contains(t, out, "Seller note: $360,000 at 7% interest")
	assert.Contains(t, out, "over 10 years.")
	assert.NotContains(t, out, "balloons at month")
	assert.NotContains(t, out, "Equity credit")
}

func TestRender_SectionOrder(t *testing.T) {
	ctx := bridgeContext()
	ctx.Seller.Description = "Established HVAC contractor with recurring commercial accounts."
	ctx.Seller.AvgJobRevenue = model.Known(50000.0)
	ctx.Seller.AvgJobCost = model.Known(10000.0)
	ctx.Buyer.ProfitSplitPct = model.Known(33.0)

	out := render(t, ctx)

	markers := []string{
		"Listing summary:",
		"Seller financing:",
		"Buyer profile:",
		"Illustrative job economics:",
		"Fit check:",
		"Proposed terms:",
		"Business description:",
		"Using the details above",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(out, m)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", m)
		assert.Greater(t, idx, last, "section %q out of order", m)
		last = idx
	}
}

func TestRender_DescriptionOmittedWhenEmpty(t *testing.T) {
	out := render(t, bridgeContext())
	assert.NotContains(t, out, "Business description:")
}

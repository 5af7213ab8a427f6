package deal

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/bizmatch/dealmaker/internal/model"
)

// Compute derives a DealStrategy from a seller/buyer pairing. It is total:
// missing inputs degrade to Unknown fields rather than errors, so the result
// is always renderable.
func Compute(ctx model.DealContext, p Policy) model.DealStrategy {
	s := model.DealStrategy{
		GapBucket:    model.GapUnknown,
		BuyerCapital: ctx.Buyer.AvailableCapital,
	}

	ask := ctx.Seller.AskingPrice
	target := ctx.Buyer.TargetPurchasePrice

	// Gap analysis. A zero asking price cannot anchor a percentage gap, so
	// it is treated the same as an unstated one.
	if askV, ok := ask.Value(); ok && askV != 0 {
		if targetV, ok := target.Value(); ok {
			gap := round1((targetV - askV) / askV * 100)
			s.GapPct = model.Known(gap)
			s.GapBucket = bucketGap(gap, p)
		}
	}

	// Down-payment feasibility.
	if askV, ok := ask.Value(); ok {
		if pct, ok := ctx.Seller.SellerFinancing.DownPaymentPct.Value(); ok {
			s.RequiredDown = model.Known(round2(askV * pct / 100))
		}
	}
	if required, ok := s.RequiredDown.Value(); ok {
		if capital, ok := s.BuyerCapital.Value(); ok {
			s.DownOk = model.Known(capital >= required)
			s.DownShort = model.Known(math.Max(0, round2(required-capital)))
		}
	}

	s.Structure = chooseStructure(ctx, s, p)
	s.Recommended = recommendTerms(ctx, s, p)
	s.Suggestions = buildSuggestions(ctx, s, p)
	return s
}

func bucketGap(gap float64, p Policy) model.GapBucket {
	switch {
	case math.Abs(gap) <= p.GapTightPct:
		return model.GapTight
	case math.Abs(gap) <= p.GapModeratePct:
		return model.GapModerate
	default:
		return model.GapWide
	}
}

// chooseStructure picks bridge/balloon only when the seller is open to
// financing and the buyer's shortfall is significant relative to the asking
// price. Every other case, including any unknown input, resolves to the
// simpler amortizing note.
func chooseStructure(ctx model.DealContext, s model.DealStrategy, p Policy) model.Structure {
	if !ctx.Seller.SellerFinancing.Considered.Open() {
		return model.StructureAmortizing
	}
	short, ok := s.DownShort.Value()
	if !ok {
		return model.StructureAmortizing
	}
	askV, ok := ctx.Seller.AskingPrice.Value()
	if !ok {
		return model.StructureAmortizing
	}
	if short > askV*p.BridgeShortfallPct/100 {
		return model.StructureBridgeBalloon
	}
	return model.StructureAmortizing
}

func recommendTerms(ctx model.DealContext, s model.DealStrategy, p Policy) model.RecommendedTerms {
	terms := model.RecommendedTerms{
		InterestPct: ctx.Seller.SellerFinancing.InterestRatePct,
	}

	// Cash down is the available capital capped at the required down
	// payment; excess capital is never pushed into a larger down payment.
	if required, ok := s.RequiredDown.Value(); ok {
		down := required
		if capital, ok := s.BuyerCapital.Value(); ok && capital < required {
			down = capital
		}
		terms.CashDownAtClose = model.Known(round2(down))
	}

	if askV, ok := ctx.Seller.AskingPrice.Value(); ok && askV != 0 {
		if down, ok := terms.CashDownAtClose.Value(); ok {
			terms.CashDownPct = model.Known(round1(down / askV * 100))
			terms.NotePrincipal = model.Known(round2(askV - down))
		}
	}

	switch s.Structure {
	case model.StructureBridgeBalloon:
		terms.BridgeMonths = model.Known(p.BridgeMonths)
		terms.BalloonAtMonth = model.Known(p.BalloonAtMonth)

		// Equity credit needs a computable interest-only payment, so it is
		// set only when both the principal and the rate are known.
		if principal, ok := terms.NotePrincipal.Value(); ok {
			if rate, ok := terms.InterestPct.Value(); ok {
				monthly := principal * rate / 100 / 12
				terms.EquityCreditMonthly = model.Known(round2(monthly * p.EquityCreditShare))
				terms.EquityCreditCap = model.Known(round2(principal * p.EquityCreditCapPct / 100))
			}
		}
	case model.StructureAmortizing:
		terms.AmortYears = ctx.Seller.SellerFinancing.TermYears
	}

	return terms
}

// buildSuggestions produces the ordered advisory list. Rules fire in a fixed
// order so identical inputs always yield identical output.
func buildSuggestions(ctx model.DealContext, s model.DealStrategy, p Policy) []string {
	var out []string

	if gap, ok := s.GapPct.Value(); ok && s.GapBucket == model.GapWide {
		if gap < 0 {
			out = append(out, fmt.Sprintf(
				"Offer is %.1f%% below asking; consider an earnout of 5-10%% of the price to close the valuation gap.", -gap))
		} else {
			out = append(out, fmt.Sprintf(
				"Offer is %.1f%% above asking; there is room to negotiate the price down.", gap))
		}
	}

	if ok, known := s.DownOk.Value(); known && !ok {
		short := s.DownShort.Or(0)
		out = append(out, fmt.Sprintf(
			"Buyer is short $%s on the required down payment; consider a smaller down payment at a higher note rate, or an outside equity partner.", humanize.Commaf(short)))
	}

	if s.Structure == model.StructureBridgeBalloon {
		out = append(out, fmt.Sprintf(
			"An interest-only bridge keeps early payments low; start the refinance process well before month %d.", p.BalloonAtMonth))
	}

	if ctx.Seller.SellerFinancing.Considered.Open() && !ctx.Seller.SellerFinancing.InterestRatePct.IsKnown() {
		out = append(out, "Seller has not stated an interest rate; benchmark against current SBA 7(a) rates before proposing terms.")
	}

	if ctx.Seller.SellerFinancing.Considered == model.FinancingNo {
		if ok, known := s.DownOk.Value(); known && !ok {
			out = append(out, "Seller is not open to carrying a note; the buyer will likely need bank financing for the balance.")
		}
	}

	if ctx.Seller.IncludesBuilding {
		out = append(out, "The building is included in the sale; consider carving the real estate into a separate note.")
	}

	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package deal computes a recommended financing structure for one
// seller/buyer pairing. The computation is pure: no I/O, no mutation of its
// inputs, and identical inputs produce identical strategies.
package deal

// Policy holds the tunable constants of the structuring rules. The defaults
// are the documented baseline; hosts may override them through configuration.
type Policy struct {
	// GapTightPct and GapModeratePct classify the absolute offer/ask gap:
	// within ±GapTightPct is tight, within ±GapModeratePct is moderate,
	// beyond is wide.
	GapTightPct    float64
	GapModeratePct float64

	// BridgeShortfallPct is the down-payment shortfall, as a percentage of
	// asking price, above which an interest-only bridge is recommended for
	// a financing-open seller.
	BridgeShortfallPct float64

	// BridgeMonths is the length of the interest-only period; the balloon
	// comes due at BalloonAtMonth.
	BridgeMonths   int
	BalloonAtMonth int

	// ExtensionMonths is the automatic note extension when refinance has
	// not occurred by the balloon date. MinConversionMonths is the floor on
	// the amortization term if the buyer instead converts the note.
	ExtensionMonths     int
	MinConversionMonths int

	// EquityCreditShare is the fraction of each monthly interest-only
	// payment that accrues as buyer equity credit, capped at
	// EquityCreditCapPct of the note principal.
	EquityCreditShare  float64
	EquityCreditCapPct float64
}

// DefaultPolicy returns the baseline structuring constants.
func DefaultPolicy() Policy {
	return Policy{
		GapTightPct:         5,
		GapModeratePct:      15,
		BridgeShortfallPct:  10,
		BridgeMonths:        24,
		BalloonAtMonth:      24,
		ExtensionMonths:     12,
		MinConversionMonths: 36,
		EquityCreditShare:   0.25,
		EquityCreditCapPct:  5,
	}
}

package model

import "time"

// Structure identifies the recommended financing structure.
type Structure string

// Financing structure constants.
const (
	StructureAmortizing    Structure = "amortizing"
	StructureBridgeBalloon Structure = "bridge_balloon"
)

// GapBucket is a coarse classification of the buyer-offer vs asking-price gap.
type GapBucket string

// Gap bucket constants.
const (
	GapTight    GapBucket = "tight"
	GapModerate GapBucket = "moderate"
	GapWide     GapBucket = "wide"
	GapUnknown  GapBucket = "unknown"
)

// RecommendedTerms holds the concrete numbers of a proposed deal structure.
// Bridge-only fields are Unknown on amortizing structures.
type RecommendedTerms struct {
	CashDownPct     Optional[float64] `json:"cash_down_pct"`
	CashDownAtClose Optional[float64] `json:"cash_down_at_close"`
	NotePrincipal   Optional[float64] `json:"note_principal"`
	InterestPct     Optional[float64] `json:"interest_pct"`
	AmortYears      Optional[float64] `json:"amort_years"`

	BridgeMonths   Optional[int] `json:"bridge_months"`
	BalloonAtMonth Optional[int] `json:"balloon_at_month"`

	EquityCreditMonthly Optional[float64] `json:"equity_credit_monthly"`
	EquityCreditCap     Optional[float64] `json:"equity_credit_cap"`
}

// DealStrategy is the computed result for one seller/buyer pairing. It is a
// pure function of its DealContext and carries no identity of its own.
type DealStrategy struct {
	Structure Structure `json:"structure"`

	GapPct    Optional[float64] `json:"gap_pct"`
	GapBucket GapBucket         `json:"gap_bucket"`

	RequiredDown Optional[float64] `json:"required_down"`
	BuyerCapital Optional[float64] `json:"buyer_capital"`
	DownOk       Optional[bool]    `json:"down_ok"`
	DownShort    Optional[float64] `json:"down_short"`

	Recommended RecommendedTerms `json:"recommended"`
	Suggestions []string         `json:"suggestions"`
}

// StrategyRecord wraps a computed strategy for persistence.
type StrategyRecord struct {
	CreatedAt time.Time    `json:"created_at"`
	ID        string       `json:"id"`
	ListingID string       `json:"listing_id"`
	BuyerID   string       `json:"buyer_id"`
	Narrative string       `json:"narrative"`
	Strategy  DealStrategy `json:"strategy"`
}

// Draft is a language-model expansion of a rendered narrative.
type Draft struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	StrategyID string    `json:"strategy_id"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Content    string    `json:"content"`
}

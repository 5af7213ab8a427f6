// Package model defines the core domain models used throughout the application.
package model

// FinancingConsidered indicates a seller's stated openness to carrying a note.
type FinancingConsidered string

// Seller financing stance constants.
const (
	FinancingYes   FinancingConsidered = "yes"
	FinancingMaybe FinancingConsidered = "maybe"
	FinancingNo    FinancingConsidered = "no"
	FinancingUnset FinancingConsidered = ""
)

// Open reports whether the seller has expressed any openness to financing.
func (f FinancingConsidered) Open() bool {
	return f == FinancingYes || f == FinancingMaybe
}

// SellerFinancing captures the seller's stated financing preferences.
type SellerFinancing struct {
	Considered      FinancingConsidered `json:"considered"`
	DownPaymentPct  Optional[float64]   `json:"down_payment_pct"`
	InterestRatePct Optional[float64]   `json:"interest_rate_pct"`
	TermYears       Optional[float64]   `json:"term_years"`
}

// SellerListing is the normalized shape of a business-for-sale record.
// Numeric fields that were absent or unparseable in the raw record are
// Unknown, never zero.
type SellerListing struct {
	ListingID   string `json:"listing_id"`
	Title       string `json:"title"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	Description string `json:"description"`

	AskingPrice   Optional[float64] `json:"asking_price"`
	SDE           Optional[float64] `json:"sde"`
	AnnualRevenue Optional[float64] `json:"annual_revenue"`
	AnnualProfit  Optional[float64] `json:"annual_profit"`
	MonthlyLease  Optional[float64] `json:"monthly_lease"`
	Employees     Optional[float64] `json:"employees"`

	// Per-job operating economics, used for the illustrative profit split.
	AvgJobRevenue Optional[float64] `json:"avg_job_revenue"`
	AvgJobCost    Optional[float64] `json:"avg_job_cost"`

	IncludesInventory bool `json:"includes_inventory"`
	IncludesBuilding  bool `json:"includes_building"`

	SellerFinancing SellerFinancing `json:"seller_financing"`
}

// BuyerProfile is the normalized shape of a buyer record.
type BuyerProfile struct {
	BuyerID             string            `json:"buyer_id"`
	AvailableCapital    Optional[float64] `json:"available_capital"`
	TargetPurchasePrice Optional[float64] `json:"target_purchase_price"`
	PreferredFinancing  string            `json:"preferred_financing"`

	// Buyer's share of operating profit during an earn-in period.
	ProfitSplitPct Optional[float64] `json:"profit_split_pct"`
}

// DealContext pairs a seller listing with a buyer profile for one
// computation. It is constructed fresh per call and never mutated.
type DealContext struct {
	Seller SellerListing `json:"seller"`
	Buyer  BuyerProfile  `json:"buyer"`
}

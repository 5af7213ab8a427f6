// Package normalize converts loosely-typed persisted records into the strict
// domain shapes. Raw records come from storage schema revisions that disagree
// on field names and encodings, so every field is resolved through a fixed
// candidate list and parsed defensively. Normalization never fails; missing
// or unparseable data degrades to Unknown.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/bizmatch/dealmaker/internal/model"
)

// DefaultTitle is used when a listing has neither a visible business name
// nor an industry to derive a title from.
const DefaultTitle = "Business for sale"

// Seller converts a raw seller record into a SellerListing.
func Seller(raw map[string]any) model.SellerListing {
	listing := model.SellerListing{
		ListingID:   str(raw, "id", "listing_id", "listingId"),
		Industry:    str(raw, "industry", "business_type"),
		Title:       sellerTitle(raw),
		Location:    sellerLocation(raw),
		Description: sellerDescription(raw),

		AskingPrice:   number(raw, "asking_price", "askingPrice", "price"),
		SDE:           number(raw, "sde", "SDE", "seller_discretionary_earnings", "cash_flow"),
		AnnualRevenue: number(raw, "annual_revenue", "annualRevenue", "gross_revenue", "revenue"),
		AnnualProfit:  number(raw, "annual_profit", "annualProfit", "net_profit", "profit"),
		MonthlyLease:  number(raw, "monthly_lease", "monthlyLease", "lease", "rent"),
		Employees:     number(raw, "employees", "num_employees", "employee_count"),
		AvgJobRevenue: number(raw, "avg_job_revenue", "avgJobRevenue", "job_revenue"),
		AvgJobCost:    number(raw, "avg_job_cost", "avgJobCost", "job_cost"),

		IncludesInventory: boolean(raw, "includes_inventory", "includesInventory", "inventory_included"),
		IncludesBuilding:  boolean(raw, "includes_building", "includesBuilding", "real_estate_included"),

		SellerFinancing: model.SellerFinancing{
			Considered:      financingConsidered(raw),
			DownPaymentPct:  number(raw, "seller_financing_down_payment_pct", "down_payment_pct", "downPaymentPct"),
			InterestRatePct: number(raw, "seller_financing_interest_pct", "interest_rate_pct", "interestRatePct"),
			TermYears:       number(raw, "seller_financing_term_years", "term_years", "termYears"),
		},
	}
	return listing
}

// Buyer converts a raw buyer record into a BuyerProfile.
func Buyer(raw map[string]any) model.BuyerProfile {
	return model.BuyerProfile{
		BuyerID:             str(raw, "id", "buyer_id", "buyerId"),
		AvailableCapital:    number(raw, "available_capital", "availableCapital", "capital"),
		TargetPurchasePrice: number(raw, "target_purchase_price", "targetPurchasePrice", "offer_price", "target_price"),
		PreferredFinancing:  str(raw, "preferred_financing", "preferredFinancing", "financing_preference"),
		ProfitSplitPct:      number(raw, "profit_split_pct", "profitSplitPct", "buyer_split_pct"),
	}
}

// Validate enumerates the recommended fields a listing is missing. The list
// is advisory; callers decide whether to proceed with an incomplete listing.
func Validate(l model.SellerListing) []string {
	var missing []string
	if !l.AskingPrice.IsKnown() {
		missing = append(missing, "asking_price")
	}
	if !l.SDE.IsKnown() && !l.AnnualProfit.IsKnown() && !l.AnnualRevenue.IsKnown() {
		missing = append(missing, "profitability")
	}
	if l.Industry == "" {
		missing = append(missing, "industry")
	}
	if l.Location == "" {
		missing = append(missing, "location")
	}
	if l.SellerFinancing.Considered == model.FinancingUnset {
		missing = append(missing, "financing_preference")
	}
	return missing
}

func sellerTitle(raw map[string]any) string {
	hide := boolean(raw, "hide_business_name", "hideBusinessName", "name_hidden")
	name := str(raw, "business_name", "businessName", "name")
	if !hide && name != "" {
		return name
	}
	if industry := str(raw, "industry", "business_type"); industry != "" {
		return capitalize(industry) + " business"
	}
	return DefaultTitle
}

func sellerLocation(raw map[string]any) string {
	if loc := str(raw, "location"); loc != "" {
		return loc
	}
	city := str(raw, "city")
	state := str(raw, "state", "region")
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}

func sellerDescription(raw map[string]any) string {
	human := str(raw, "description", "business_description")
	ai := str(raw, "ai_description", "generated_description")

	choice := strings.ToLower(str(raw, "description_choice", "descriptionChoice"))
	useAI := choice == "ai" || choice == "generated" || boolean(raw, "use_ai_description", "useAiDescription")
	if useAI && ai != "" {
		return ai
	}
	return human
}

func financingConsidered(raw map[string]any) model.FinancingConsidered {
	v := strings.ToLower(strings.TrimSpace(str(raw,
		"seller_financing_considered", "sellerFinancingConsidered", "financing_considered", "seller_financing")))
	switch v {
	case "yes", "true":
		return model.FinancingYes
	case "maybe":
		return model.FinancingMaybe
	case "no", "false":
		return model.FinancingNo
	default:
		return model.FinancingUnset
	}
}

// number resolves the first candidate field that parses to a finite number.
func number(raw map[string]any, candidates ...string) model.Optional[float64] {
	for _, key := range candidates {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if f, ok := parseNumber(v); ok {
			return model.Known(f)
		}
	}
	return model.Unknown[float64]()
}

// parseNumber accepts the numeric encodings seen across schema revisions:
// Go numbers, json.Number, and strings with currency/grouping noise.
func parseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		cleaned := strings.TrimSpace(n)
		cleaned = strings.TrimSuffix(cleaned, "%")
		cleaned = strings.NewReplacer("$", "", ",", "", " ", "").Replace(cleaned)
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func str(raw map[string]any, candidates ...string) string {
	for _, key := range candidates {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

func boolean(raw map[string]any, candidates ...string) bool {
	for _, key := range candidates {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case string:
			switch strings.ToLower(strings.TrimSpace(b)) {
			case "true", "yes", "1":
				return true
			case "false", "no", "0":
				return false
			}
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

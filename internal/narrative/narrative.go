// Package narrative renders a computed deal strategy into a single
// human-readable text block, suitable as a drafting prompt for a language
// model or as a buyer-facing summary. The document is an ordered list of
// independently rendered sections; conditional clauses (bridge vs amortizing
// terms, the equity-credit clause) are whole sections or template branches,
// never inline string surgery.
package narrative

import (
	"embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/bizmatch/dealmaker/internal/deal"
	"github.com/bizmatch/dealmaker/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Placeholder is rendered for every unknown value. No value bypasses the
// shared formatting rules below.
const Placeholder = "N/A"

// FormatMoney renders a monetary amount with a currency prefix and grouped
// thousands, or the placeholder when unknown.
func FormatMoney(v model.Optional[float64]) string {
	f, ok := v.Value()
	if !ok {
		return Placeholder
	}
	return "$" + humanize.Commaf(f)
}

// FormatPct renders a percentage without trailing zeros, or the placeholder
// when unknown.
func FormatPct(v model.Optional[float64]) string {
	f, ok := v.Value()
	if !ok {
		return Placeholder
	}
	return strconv.FormatFloat(f, 'f', -1, 64) + "%"
}

// formatRate is FormatPct with the interest-rate fallback: a seller who has
// not stated a rate yields TBD, never a synthesized market rate.
func formatRate(v model.Optional[float64]) string {
	if !v.IsKnown() {
		return "TBD"
	}
	return FormatPct(v)
}

// section names a template and decides whether it appears for a given view.
// A nil include means the section always renders. Order is fixed.
type section struct {
	include func(v *view) bool
	name    string
}

var sections = []section{
	{name: "listing_summary"},
	{name: "financing_stance"},
	{name: "buyer_summary"},
	{name: "economics", include: func(v *view) bool { return v.Economics != nil }},
	{name: "fit_check"},
	{name: "terms_bridge", include: func(v *view) bool { return v.Bridge }},
	{name: "terms_amortizing", include: func(v *view) bool { return !v.Bridge }},
	{name: "description", include: func(v *view) bool { return v.Description != "" }},
	{name: "closing"},
}

// Renderer composes the narrative sections from embedded templates.
type Renderer struct {
	templates map[string]*template.Template
	policy    deal.Policy
}

// NewRenderer parses the section templates. The policy supplies the
// bridge-fallback constants referenced by the terms section.
func NewRenderer(p deal.Policy) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template, len(sections)),
		policy:    p,
	}
	for _, s := range sections {
		filename := fmt.Sprintf("templates/%s.tmpl", s.name)
		tmpl, err := template.New(s.name + ".tmpl").ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", s.name, err)
		}
		r.templates[s.name] = tmpl
	}
	return r, nil
}

// Render produces the full narrative for a context and its computed strategy.
func (r *Renderer) Render(ctx model.DealContext, strategy model.DealStrategy) (string, error) {
	v := buildView(ctx, strategy, r.policy)

	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.include != nil && !s.include(v) {
			continue
		}
		var sb strings.Builder
		if err := r.templates[s.name].Execute(&sb, v); err != nil {
			return "", fmt.Errorf("failed to render section %s: %w", s.name, err)
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n\n"), nil
}

// view is the fully formatted data handed to the templates. All formatting
// decisions live here so the templates stay declarative.
type view struct {
	Economics   *economicsView
	Listing     listingView
	Financing   financingView
	Buyer       buyerView
	Fit         fitView
	Terms       termsView
	Description string
	Bridge      bool
}

type listingView struct {
	Title         string
	Industry      string
	Location      string
	AskingPrice   string
	SDE           string
	AnnualRevenue string
	AnnualProfit  string
	MonthlyLease  string
	Employees     string
	Inventory     string
	Building      string
}

type financingView struct {
	Considered  string
	DownPayment string
	Interest    string
	Term        string
}

type buyerView struct {
	Capital   string
	Target    string
	Preferred string
	Split     string
}

type economicsView struct {
	Revenue     string
	Cost        string
	Profit      string
	BuyerShare  string
	BuyerPct    string
	SellerShare string
	SellerPct   string
}

type fitView struct {
	GapLine     string
	DownLine    string
	Structure   string
	Suggestions []string
}

type termsView struct {
	CashDown            string
	CashDownPct         string
	NotePrincipal       string
	Interest            string
	AmortPeriod         string
	EquityCreditMonthly string
	EquityCreditCap     string
	BridgeMonths        int
	BalloonAtMonth      int
	ExtensionMonths     int
	ConversionMonths    int
	EquityCredit        bool
}

func buildView(ctx model.DealContext, s model.DealStrategy, p deal.Policy) *view {
	return &view{
		Bridge:      s.Structure == model.StructureBridgeBalloon,
		Description: ctx.Seller.Description,
		Listing: listingView{
			Title:         orPlaceholder(ctx.Seller.Title),
			Industry:      orPlaceholder(ctx.Seller.Industry),
			Location:      orPlaceholder(ctx.Seller.Location),
			AskingPrice:   FormatMoney(ctx.Seller.AskingPrice),
			SDE:           FormatMoney(ctx.Seller.SDE),
			AnnualRevenue: FormatMoney(ctx.Seller.AnnualRevenue),
			AnnualProfit:  FormatMoney(ctx.Seller.AnnualProfit),
			MonthlyLease:  FormatMoney(ctx.Seller.MonthlyLease),
			Employees:     formatCount(ctx.Seller.Employees),
			Inventory:     yesNo(ctx.Seller.IncludesInventory),
			Building:      yesNo(ctx.Seller.IncludesBuilding),
		},
		Financing: financingView{
			Considered:  orPlaceholder(string(ctx.Seller.SellerFinancing.Considered)),
			DownPayment: FormatPct(ctx.Seller.SellerFinancing.DownPaymentPct),
			Interest:    formatRate(ctx.Seller.SellerFinancing.InterestRatePct),
			Term:        formatYears(ctx.Seller.SellerFinancing.TermYears),
		},
		Buyer: buyerView{
			Capital:   FormatMoney(ctx.Buyer.AvailableCapital),
			Target:    FormatMoney(ctx.Buyer.TargetPurchasePrice),
			Preferred: orPlaceholder(ctx.Buyer.PreferredFinancing),
			Split:     FormatPct(ctx.Buyer.ProfitSplitPct),
		},
		Economics: buildEconomics(ctx),
		Fit:       buildFit(ctx, s),
		Terms:     buildTerms(ctx, s, p),
	}
}

// buildEconomics returns nil unless job revenue, job cost and the profit
// split are all known; the section is omitted entirely otherwise.
func buildEconomics(ctx model.DealContext) *economicsView {
	revenue, ok := ctx.Seller.AvgJobRevenue.Value()
	if !ok {
		return nil
	}
	cost, ok := ctx.Seller.AvgJobCost.Value()
	if !ok {
		return nil
	}
	split, ok := ctx.Buyer.ProfitSplitPct.Value()
	if !ok {
		return nil
	}

	profit := revenue - cost
	buyerShare := math.Round(profit*split) / 100
	sellerShare := profit - buyerShare

	return &economicsView{
		Revenue:     FormatMoney(model.Known(revenue)),
		Cost:        FormatMoney(model.Known(cost)),
		Profit:      FormatMoney(model.Known(profit)),
		BuyerShare:  FormatMoney(model.Known(buyerShare)),
		BuyerPct:    strconv.FormatFloat(split, 'f', -1, 64),
		SellerShare: FormatMoney(model.Known(sellerShare)),
		SellerPct:   strconv.FormatFloat(100-split, 'f', -1, 64),
	}
}

func buildFit(ctx model.DealContext, s model.DealStrategy) fitView {
	fit := fitView{
		Suggestions: s.Suggestions,
	}

	if gap, ok := s.GapPct.Value(); ok {
		switch {
		case gap > 0:
			fit.GapLine = fmt.Sprintf("Buyer offer is %.1f%% above asking (%s gap).", gap, s.GapBucket)
		case gap < 0:
			fit.GapLine = fmt.Sprintf("Buyer offer is %.1f%% below asking (%s gap).", -gap, s.GapBucket)
		default:
			fit.GapLine = "Buyer offer matches the asking price."
		}
	} else if !ctx.Buyer.TargetPurchasePrice.IsKnown() {
		fit.GapLine = "Buyer offer price not specified."
	} else {
		fit.GapLine = "Asking price not specified."
	}

	required, requiredKnown := s.RequiredDown.Value()
	capital, capitalKnown := s.BuyerCapital.Value()
	switch {
	case requiredKnown && capitalKnown:
		if ok, _ := s.DownOk.Value(); ok {
			fit.DownLine = fmt.Sprintf("Required down payment is %s; buyer capital of %s covers it.",
				FormatMoney(model.Known(required)), FormatMoney(model.Known(capital)))
		} else {
			fit.DownLine = fmt.Sprintf("Required down payment is %s; buyer capital of %s falls short by %s.",
				FormatMoney(model.Known(required)), FormatMoney(model.Known(capital)), FormatMoney(s.DownShort))
		}
	case requiredKnown:
		fit.DownLine = fmt.Sprintf("Required down payment is %s; buyer capital not specified.",
			FormatMoney(model.Known(required)))
	default:
		fit.DownLine = "Down payment requirement not specified."
	}

	if s.Structure == model.StructureBridgeBalloon {
		fit.Structure = "interest-only bridge with balloon refinance"
	} else {
		fit.Structure = "seller-financed amortizing note"
	}
	return fit
}

func buildTerms(ctx model.DealContext, s model.DealStrategy, p deal.Policy) termsView {
	t := termsView{
		CashDown:      FormatMoney(s.Recommended.CashDownAtClose),
		NotePrincipal: FormatMoney(s.Recommended.NotePrincipal),
		Interest:      formatRate(s.Recommended.InterestPct),
		AmortPeriod:   "a period to be negotiated",
	}
	if s.Recommended.CashDownPct.IsKnown() {
		t.CashDownPct = FormatPct(s.Recommended.CashDownPct)
	}
	if years, ok := s.Recommended.AmortYears.Value(); ok {
		t.AmortPeriod = formatYearsValue(years)
	}

	t.BridgeMonths = s.Recommended.BridgeMonths.Or(p.BridgeMonths)
	t.BalloonAtMonth = s.Recommended.BalloonAtMonth.Or(p.BalloonAtMonth)
	t.ExtensionMonths = p.ExtensionMonths

	// Conversion term is the policy floor, or the seller's originally
	// stated term when that is longer.
	t.ConversionMonths = p.MinConversionMonths
	if years, ok := ctx.Seller.SellerFinancing.TermYears.Value(); ok {
		if months := int(years * 12); months > t.ConversionMonths {
			t.ConversionMonths = months
		}
	}

	if s.Recommended.EquityCreditMonthly.IsKnown() && s.Recommended.EquityCreditCap.IsKnown() {
		t.EquityCredit = true
		t.EquityCreditMonthly = FormatMoney(s.Recommended.EquityCreditMonthly)
		t.EquityCreditCap = FormatMoney(s.Recommended.EquityCreditCap)
	}
	return t
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatCount(v model.Optional[float64]) string {
	f, ok := v.Value()
	if !ok {
		return Placeholder
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatYears(v model.Optional[float64]) string {
	f, ok := v.Value()
	if !ok {
		return Placeholder
	}
	return formatYearsValue(f)
}

func formatYearsValue(years float64) string {
	s := strconv.FormatFloat(years, 'f', -1, 64)
	if years == 1 {
		return s + " year"
	}
	return s + " years"
}

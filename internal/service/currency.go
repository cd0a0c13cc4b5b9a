package service

import (
	"math"
	"strconv"
	"strings"

	"kapebot/internal/domain"
)

const (
	// GuaraniesPerDollar is the fixed conversion rate used for the
	// canonical USD storage unit.
	GuaraniesPerDollar = 7500

	// MillionThreshold: a guaraní amount below this is taken to be
	// expressed in millions ("3" meaning 3.000.000). Known approximation;
	// amounts near the threshold stated in raw guaraníes will be
	// misread, but nobody rents for 950 guaraníes.
	MillionThreshold = 1000

	// BudgetTolerance widens a stated budget so an exact cutoff does
	// not produce empty results.
	BudgetTolerance = 1.30
)

var guaraniMarkers = []string{"millon", "millón", "gs", "guarani", "guaraní", "₲"}

// HasGuaraniMarker reports whether the text mentions a local-currency
// marker (million stems, the gs code, the ₲ symbol).
func HasGuaraniMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range guaraniMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// CanonicalizeGuaranies converts a guaraní amount to the canonical USD
// unit, first expanding sub-threshold amounts stated in millions.
func CanonicalizeGuaranies(amount float64) float64 {
	if amount < MillionThreshold {
		amount *= 1_000_000
	}
	return math.Round(amount / GuaraniesPerDollar)
}

// ParseBudget interprets a budget expression. It returns nil when no
// digits can be extracted, which callers must treat as "no constraint",
// never as zero. Guaraní amounts are returned in guaraníes; use
// ToUSD for the canonical matching value.
func ParseBudget(text string) *domain.Money {
	lower := strings.ToLower(strings.TrimSpace(text))

	isGuaranies := false
	for _, marker := range guaraniMarkers {
		if strings.Contains(lower, marker) {
			isGuaranies = true
			break
		}
	}

	amount, ok := extractNumber(lower)
	if !ok {
		return nil
	}

	if isGuaranies {
		if amount < MillionThreshold {
			amount *= 1_000_000
		}
		return &domain.Money{Amount: amount, Currency: domain.CurrencyGS}
	}
	return &domain.Money{Amount: amount, Currency: domain.CurrencyUSD}
}

// ToUSD converts a parsed budget to the canonical storage unit,
// rounding guaraní conversions to the nearest dollar.
func ToUSD(m *domain.Money) float64 {
	if m == nil {
		return 0
	}
	if m.Currency == domain.CurrencyGS {
		return math.Round(m.Amount / GuaraniesPerDollar)
	}
	return m.Amount
}

// WithTolerance applies the 30% widening to a canonical amount
func WithTolerance(usd float64) float64 {
	return math.Round(usd * BudgetTolerance)
}

// extractNumber strips everything but digits and separators, then
// parses the remainder. Repeated dots are thousands grouping
// ("3.500.000"), a comma is a decimal separator ("3,5").
func extractNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	if strings.Count(cleaned, ".") > 1 {
		// dots are thousands separators
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if strings.Count(cleaned, ".") > 1 {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	n, err := strconv.ParseFloat(strings.Trim(cleaned, "."), 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

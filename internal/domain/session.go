package domain

// Step identifies which question of the guided flow is pending
type Step string

const (
	StepStart       Step = "inicio"
	StepMenu        Step = "menu"
	StepAskZone     Step = "preguntar_zona"
	StepAskBudget   Step = "preguntar_presupuesto"
	StepAskKind     Step = "preguntar_tipo"
	StepSellDetails Step = "vender_datos"
	StepContact     Step = "contacto"
)

// Intent is what the user came to do
type Intent string

const (
	IntentNone    Intent = ""
	IntentRent    Intent = "alquilar"
	IntentBuy     Intent = "comprar"
	IntentSell    Intent = "vender"
	IntentContact Intent = "contactar_agente"
)

// Currency tags a budget as dollars or guaraníes
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyGS  Currency = "GS"
)

// Session holds per-user conversation state. Mutated exactly once per
// inbound message, exclusively by the engine.
type Session struct {
	Step     Step     `json:"step"`
	Intent   Intent   `json:"intent"`
	Criteria Criteria `json:"criteria"`
	Currency Currency `json:"currency"`

	// BudgetLocal keeps the guaraní amount as the user stated it,
	// for display; matching always uses Criteria.MaxPriceUSD.
	BudgetLocal float64 `json:"budget_local,omitempty"`
	// BudgetStated is the pre-tolerance amount in the canonical unit.
	BudgetStated float64 `json:"budget_stated,omitempty"`
}

// NewSession returns a fresh session at the start step
func NewSession() *Session {
	return &Session{Step: StepStart, Currency: CurrencyUSD}
}

// Money is a parsed budget. Amount is in the units of Currency
// (guaraníes when GS, dollars when USD).
type Money struct {
	Amount   float64
	Currency Currency
}

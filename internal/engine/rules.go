package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"kapebot/internal/domain"
	"kapebot/internal/service"
)

// turn is the per-message working state the rules operate on
type turn struct {
	userID       string
	displayName  string
	text         string
	lower        string
	session      *domain.Session
	hasSession   bool
	firstContact bool
}

func (e *Engine) newTurn(ctx context.Context, msg domain.InboundMessage) (*turn, error) {
	text := strings.TrimSpace(msg.Text)

	sess, err := e.sessions.Get(ctx, msg.SenderID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	hasSession := sess != nil
	if sess == nil {
		sess = domain.NewSession()
	}

	greeted, err := e.greeted.WasGreeted(ctx, msg.SenderID)
	if err != nil {
		return nil, fmt.Errorf("load greeted flag: %w", err)
	}

	return &turn{
		userID:       msg.SenderID,
		displayName:  msg.DisplayName,
		text:         text,
		lower:        strings.ToLower(text),
		session:      sess,
		hasSession:   hasSession,
		firstContact: !greeted,
	}, nil
}

// rule pairs a classifier predicate with its transition. The rules
// slice is evaluated top to bottom; the first match wins, which makes
// the precedence explicit and testable.
type rule struct {
	name    string
	matches func(t *turn) bool
	run     func(ctx context.Context, e *Engine, t *turn) ([]string, error)
}

var rules = []rule{
	{name: "reset", matches: isReset, run: runReset},
	{name: "direct_search", matches: isDirectSearch, run: runDirectSearch},
	{name: "greeting", matches: isGreetingTurn, run: runGreeting},
	{name: "menu_digit", matches: isMenuDigit, run: runMenuDigit},
	{name: "zone_answer", matches: atStep(domain.StepAskZone), run: runZoneAnswer},
	{name: "budget_answer", matches: atStep(domain.StepAskBudget), run: runBudgetAnswer},
	{name: "kind_answer", matches: atStep(domain.StepAskKind), run: runKindAnswer},
	{name: "sell_details", matches: atStep(domain.StepSellDetails), run: runSellDetails},
	{name: "contact_topic", matches: atStep(domain.StepContact), run: runContactTopic},
	{name: "free_text", matches: func(*turn) bool { return true }, run: runFreeText},
}

var resetKeywords = map[string]bool{
	"menu": true, "menú": true, "inicio": true,
	"empezar": true, "reiniciar": true, "volver": true,
}

func isReset(t *turn) bool {
	return resetKeywords[t.lower]
}

var (
	zoneMarkerPattern  = regexp.MustCompile(`(?i)(cerca de|zona|barrio|lugar|ubicado|ubicación|en |cerca del|cerca de la)`)
	moneyMarkerPattern = regexp.MustCompile(`(?i)(\d+\s*(millones?|millon|gs|guaraníes|usd|\$)|\d{6,})`)
	bareDigitPattern   = regexp.MustCompile(`^\d+$`)
)

// isDirectSearch spots a complete search written in one message: a
// location reference plus a money amount, from an idle session.
func isDirectSearch(t *turn) bool {
	return t.session.Step == domain.StepStart &&
		zoneMarkerPattern.MatchString(t.text) &&
		moneyMarkerPattern.MatchString(t.text)
}

var greetingWords = []string{"hola", "buenas", "hey"}

func isGreeting(lower string) bool {
	for _, w := range greetingWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return lower == "kape" || lower == "holi"
}

var searchIntentWords = []string{
	"casa", "departamento", "depto", "duplex", "dúplex", "terreno",
	"oficina", "local", "alquil", "compr", "busco", "necesito",
	"vendo", "vender",
}

func wantsSearch(t *turn) bool {
	for _, w := range searchIntentWords {
		if strings.Contains(t.lower, w) {
			return true
		}
	}
	return bareDigitPattern.MatchString(t.text)
}

// isGreetingTurn only applies before the guided flow starts; a user
// answering the zone question must not be re-greeted just because a
// restart lost the greeted flag.
func isGreetingTurn(t *turn) bool {
	if t.session.Step != domain.StepStart && t.session.Step != domain.StepMenu {
		return false
	}
	return (t.firstContact || isGreeting(t.lower)) && !wantsSearch(t)
}

func isMenuDigit(t *turn) bool {
	switch t.text {
	case "1", "2", "3", "4":
		return true
	}
	return false
}

func atStep(step domain.Step) func(*turn) bool {
	return func(t *turn) bool {
		return t.session.Step == step && t.text != ""
	}
}

var noPreferenceTokens = map[string]bool{
	"cualquiera": true, "no": true, "nop": true,
}

// runReset returns the user to a clean start from any state
func runReset(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	sess := domain.NewSession()
	if err := e.sessions.Set(ctx, t.userID, sess); err != nil {
		return nil, fmt.Errorf("reset session: %w", err)
	}
	if err := e.greeted.MarkGreeted(ctx, t.userID); err != nil {
		return nil, fmt.Errorf("mark greeted: %w", err)
	}
	return []string{msgMenuAfterReset}, nil
}

// runDirectSearch handles a full search in one message, skipping the
// guided questions entirely.
func runDirectSearch(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	replies := []string{msgDirectSearchAck}

	op := classifyOperation(t.lower)
	criteria := e.assistant.Extract(ctx, t.text)
	criteria.Operation = op

	currency := domain.CurrencyUSD
	if service.HasGuaraniMarker(t.lower) {
		currency = domain.CurrencyGS
		if criteria.MaxPriceUSD != nil {
			usd := service.CanonicalizeGuaranies(*criteria.MaxPriceUSD)
			criteria.MaxPriceUSD = &usd
		}
	}
	if criteria.MaxPriceUSD != nil {
		widened := service.WithTolerance(*criteria.MaxPriceUSD)
		criteria.MaxPriceUSD = &widened
	}

	results, err := e.properties.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}

	if len(results) == 0 {
		replies = append(replies, noResultsDirectMessage(op))
	} else {
		replies = append(replies, directResultsMessage(results, currency, op, criteria.Neighborhood))
	}

	// one-shot search: a fresh conversation starts clean
	if err := e.sessions.Delete(ctx, t.userID); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}
	return replies, nil
}

// runGreeting shows the welcome menu
func runGreeting(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	if err := e.greeted.MarkGreeted(ctx, t.userID); err != nil {
		return nil, fmt.Errorf("mark greeted: %w", err)
	}
	sess := domain.NewSession()
	sess.Step = domain.StepMenu
	if err := e.sessions.Set(ctx, t.userID, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return []string{msgMenu}, nil
}

// runMenuDigit starts the flow the chosen menu option selects
func runMenuDigit(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	sess := t.session
	var reply string

	switch t.text {
	case "1":
		sess.Intent = domain.IntentRent
		sess.Step = domain.StepAskZone
		reply = msgAskZoneRent
	case "2":
		sess.Intent = domain.IntentBuy
		sess.Step = domain.StepAskZone
		reply = msgAskZoneBuy
	case "3":
		sess.Intent = domain.IntentSell
		sess.Step = domain.StepSellDetails
		reply = msgAskSellDetails
	case "4":
		sess.Intent = domain.IntentContact
		sess.Step = domain.StepContact
		reply = msgAskContactTopic
	}

	if err := e.sessions.Set(ctx, t.userID, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return []string{reply}, nil
}

// runZoneAnswer records the neighborhood (or no preference) and asks
// for the budget.
func runZoneAnswer(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	sess := t.session
	hasZone := !noPreferenceTokens[t.lower]
	if hasZone {
		sess.Criteria.Neighborhood = t.text
	}
	sess.Step = domain.StepAskBudget

	if err := e.sessions.Set(ctx, t.userID, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return []string{askBudgetMessage(t.text, hasZone)}, nil
}

// runBudgetAnswer normalizes the budget (or records no constraint) and
// asks for the property kind. Unparseable amounts become "no
// constraint", never an error.
func runBudgetAnswer(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	sess := t.session
	sess.Step = domain.StepAskKind

	declinesBudget := strings.Contains(t.lower, "no") ||
		strings.Contains(t.lower, "sin") ||
		strings.Contains(t.lower, "cualquiera")

	money := service.ParseBudget(t.text)
	if declinesBudget || money == nil {
		// no amount extractable means no constraint, never zero
		sess.Criteria.MaxPriceUSD = nil
		if err := e.sessions.Set(ctx, t.userID, sess); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
		return []string{noBudgetMessage()}, nil
	}

	sess.Currency = money.Currency
	if money.Currency == domain.CurrencyGS {
		sess.BudgetLocal = money.Amount
	}
	usd := service.ToUSD(money)
	sess.BudgetStated = usd
	widened := service.WithTolerance(usd)
	sess.Criteria.MaxPriceUSD = &widened

	if err := e.sessions.Set(ctx, t.userID, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return []string{budgetNotedMessage(sess)}, nil
}

// runKindAnswer records the property kind, runs the search, replies
// with the top results, and clears the session.
func runKindAnswer(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	sess := t.session
	if !noPreferenceTokens[t.lower] {
		if kind := service.MapPropertyKind(t.lower); kind != "" {
			sess.Criteria.PropertyKind = kind
		}
	}
	sess.Criteria.Operation = operationForIntent(sess.Intent)

	replies := []string{msgSearching}

	results, err := e.properties.Search(ctx, sess.Criteria)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}

	if len(results) == 0 {
		replies = append(replies, msgNoResults)
	} else {
		replies = append(replies, resultsMessage(results, sess.Currency))
	}

	// terminal step: the next search starts from a clean session
	if err := e.sessions.Delete(ctx, t.userID); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}
	return replies, nil
}

// runSellDetails collects the seller's free-text description for agent
// hand-off; nothing is matched against the catalog.
func runSellDetails(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	e.logger.Info("sell lead collected",
		zap.String("user_id", t.userID),
		zap.String("name", t.displayName),
		zap.String("details", t.text),
	)
	if err := e.sessions.Delete(ctx, t.userID); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}
	return []string{msgSellHandoff}, nil
}

// runContactTopic collects the topic for the agent hand-off
func runContactTopic(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	e.logger.Info("agent contact requested",
		zap.String("user_id", t.userID),
		zap.String("name", t.displayName),
		zap.String("topic", t.text),
	)
	if err := e.sessions.Delete(ctx, t.userID); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}
	return []string{msgContactHandoff}, nil
}

// runFreeText treats anything unrecognized as a brand-new free-text
// search. The session is deliberately left untouched so a guided flow
// in progress can be resumed.
func runFreeText(ctx context.Context, e *Engine, t *turn) ([]string, error) {
	replies := []string{msgSearchingFreeText}

	criteria := e.assistant.Extract(ctx, t.text)
	results, err := e.properties.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}

	reply := e.assistant.Reply(ctx, t.text, results)
	replies = append(replies, freeTextResultsMessage(reply, results))
	return replies, nil
}

// classifyOperation reads rental vs purchase wording; rent is the default
func classifyOperation(lower string) domain.Operation {
	if strings.Contains(lower, "compr") || strings.Contains(lower, "venta") ||
		strings.Contains(lower, "adquirir") {
		return domain.OperationSale
	}
	return domain.OperationRent
}

func operationForIntent(intent domain.Intent) domain.Operation {
	if intent == domain.IntentBuy {
		return domain.OperationSale
	}
	return domain.OperationRent
}

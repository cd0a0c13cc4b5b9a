package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kapebot/internal/domain"
	"kapebot/internal/repository/memory"
	"kapebot/internal/service"
	"kapebot/internal/testutil"
)

// testEngine bundles an engine with its in-memory stores so tests can
// inspect session state between turns.
type testEngine struct {
	engine   *Engine
	sessions *memory.SessionStore
	greeted  *memory.GreetedStore
	sender   *testutil.RecordingSender
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	sessions := memory.NewSessionStore()
	greeted := memory.NewGreetedStore()
	sender := &testutil.RecordingSender{}
	properties := service.NewPropertyService(memory.NewPropertyRepo(testutil.TestProperties()))
	assistant := service.NewAssistant(nil, "", testutil.NewTestLogger())

	return &testEngine{
		engine:   New(sessions, greeted, properties, assistant, sender, testutil.NewTestLogger()),
		sessions: sessions,
		greeted:  greeted,
		sender:   sender,
	}
}

func (te *testEngine) process(t *testing.T, userID, text string) []string {
	t.Helper()
	replies, err := te.engine.Process(context.Background(), domain.InboundMessage{
		Text:     text,
		SenderID: userID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, replies)
	return replies
}

func (te *testEngine) session(t *testing.T, userID string) *domain.Session {
	t.Helper()
	sess, err := te.sessions.Get(context.Background(), userID)
	require.NoError(t, err)
	return sess
}

func TestEngine_GreetingShowsMenu(t *testing.T) {
	te := newTestEngine(t)

	replies := te.process(t, "user-1", "hola")

	require.Len(t, replies, 1)
	assert.Equal(t, msgMenu, replies[0])

	greeted, err := te.greeted.WasGreeted(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, greeted)

	sess := te.session(t, "user-1")
	require.NotNil(t, sess)
	assert.Equal(t, domain.StepMenu, sess.Step)
}

func TestEngine_FirstContactWithoutGreetingWordShowsMenu(t *testing.T) {
	te := newTestEngine(t)

	replies := te.process(t, "user-1", "qué tal")

	require.Len(t, replies, 1)
	assert.Equal(t, msgMenu, replies[0])
}

func TestEngine_GuidedRentFlow(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	// option 1: rent search
	replies := te.process(t, user, "1")
	require.Len(t, replies, 1)
	assert.Equal(t, msgAskZoneRent, replies[0])

	sess := te.session(t, user)
	require.NotNil(t, sess)
	assert.Equal(t, domain.StepAskZone, sess.Step)
	assert.Equal(t, domain.IntentRent, sess.Intent)

	// zone
	replies = te.process(t, user, "Villa Morra")
	assert.Contains(t, replies[0], "Zona Villa Morra anotada")

	sess = te.session(t, user)
	assert.Equal(t, domain.StepAskBudget, sess.Step)
	assert.Equal(t, "Villa Morra", sess.Criteria.Neighborhood)

	// budget: 800 USD widened by 30%
	replies = te.process(t, user, "800")
	assert.Contains(t, replies[0], "USD 800 anotado")
	assert.Contains(t, replies[0], "30% más")

	sess = te.session(t, user)
	assert.Equal(t, domain.StepAskKind, sess.Step)
	require.NotNil(t, sess.Criteria.MaxPriceUSD)
	assert.Equal(t, float64(1040), *sess.Criteria.MaxPriceUSD)
	assert.Equal(t, domain.CurrencyUSD, sess.Currency)

	// kind: the Villa Morra duplex rents for 750, inside the budget
	replies = te.process(t, user, "duplex")
	require.Len(t, replies, 2)
	assert.Equal(t, msgSearching, replies[0])
	assert.Contains(t, replies[1], "¡Encontré 1 propiedad para vos!")
	assert.Contains(t, replies[1], "Dúplex moderno en Villa Morra")
	assert.Contains(t, replies[1], "USD 750/mes")

	// terminal step clears the session
	assert.Nil(t, te.session(t, user))
}

func TestEngine_GuidedFlowNoPreferences(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	te.process(t, user, "1")

	replies := te.process(t, user, "cualquiera")
	assert.Contains(t, replies[0], "¡Zona anotada!")
	sess := te.session(t, user)
	assert.Empty(t, sess.Criteria.Neighborhood)

	replies = te.process(t, user, "no tengo presupuesto")
	assert.Contains(t, replies[0], "todos los precios")
	sess = te.session(t, user)
	assert.Nil(t, sess.Criteria.MaxPriceUSD)

	replies = te.process(t, user, "casa")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1], "Casa familiar en Luque")
}

func TestEngine_GuaraniBudgetFlow(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	te.process(t, user, "1")
	te.process(t, user, "cualquiera")

	replies := te.process(t, user, "3 millones")
	assert.Contains(t, replies[0], "Gs. 3.000.000 anotado")

	sess := te.session(t, user)
	assert.Equal(t, domain.CurrencyGS, sess.Currency)
	assert.Equal(t, float64(3_000_000), sess.BudgetLocal)
	require.NotNil(t, sess.Criteria.MaxPriceUSD)
	// 3M Gs -> 400 USD -> widened to 520
	assert.Equal(t, float64(520), *sess.Criteria.MaxPriceUSD)

	// prices render in guaraníes for this session
	replies = te.process(t, user, "departamento")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1], "Departamento céntrico")
	assert.Contains(t, replies[1], "Gs. 3.375.000/mes")
}

func TestEngine_UnparseableBudgetMeansNoConstraint(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	te.process(t, user, "1")
	te.process(t, user, "Centro")

	replies := te.process(t, user, "todavía estoy viendo")
	assert.Contains(t, replies[0], "todos los precios")

	sess := te.session(t, user)
	assert.Equal(t, domain.StepAskKind, sess.Step)
	assert.Nil(t, sess.Criteria.MaxPriceUSD)
}

func TestEngine_ZeroResultsApology(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	te.process(t, user, "1")
	te.process(t, user, "Sajonia")
	te.process(t, user, "500")

	replies := te.process(t, user, "casa")
	require.Len(t, replies, 2)
	assert.Equal(t, msgNoResults, replies[1])
	assert.NotContains(t, replies[1], "0 propiedades")

	assert.Nil(t, te.session(t, user))
}

func TestEngine_ResetFromAnyState(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	te.process(t, user, "1")
	te.process(t, user, "Villa Morra")

	for _, keyword := range []string{"menu", "Menú", "INICIO", " volver "} {
		t.Run(keyword, func(t *testing.T) {
			replies := te.process(t, user, keyword)
			require.Len(t, replies, 1)
			assert.Equal(t, msgMenuAfterReset, replies[0])

			sess := te.session(t, user)
			require.NotNil(t, sess)
			assert.Equal(t, domain.StepStart, sess.Step)
			assert.True(t, sess.Criteria.IsEmpty())
		})
	}
}

func TestEngine_DirectSearchBypassesQuestions(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	replies := te.process(t, user, "busco depto en Centro por 800 usd")

	require.Len(t, replies, 2)
	assert.Equal(t, msgDirectSearchAck, replies[0])
	assert.Contains(t, replies[1], "¡Encontré 1 propiedad para alquiler cerca de Centro!")
	assert.Contains(t, replies[1], "Departamento céntrico")

	// one-shot search leaves no session behind
	assert.Nil(t, te.session(t, user))
}

func TestEngine_DirectSearchGuaranies(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	replies := te.process(t, user, "alquilo depto en zona Centro por 3 millones")

	require.Len(t, replies, 2)
	assert.Contains(t, replies[1], "Departamento céntrico")
	assert.Contains(t, replies[1], "Gs. 3.375.000/mes")
}

func TestEngine_SellFlowHandsOff(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	replies := te.process(t, user, "3")
	require.Len(t, replies, 1)
	assert.Equal(t, msgAskSellDetails, replies[0])

	sess := te.session(t, user)
	assert.Equal(t, domain.StepSellDetails, sess.Step)
	assert.Equal(t, domain.IntentSell, sess.Intent)

	replies = te.process(t, user, "Casa de 4 dormitorios en Lambaré, 150.000 usd")
	require.Len(t, replies, 1)
	assert.Equal(t, msgSellHandoff, replies[0])
	assert.Nil(t, te.session(t, user))
}

func TestEngine_ContactFlowHandsOff(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	replies := te.process(t, user, "4")
	require.Len(t, replies, 1)
	assert.Equal(t, msgAskContactTopic, replies[0])

	replies = te.process(t, user, "quisiera visitar el dúplex de Villa Morra")
	require.Len(t, replies, 1)
	assert.Equal(t, msgContactHandoff, replies[0])
	assert.Nil(t, te.session(t, user))
}

func TestEngine_FreeTextLeavesSessionUntouched(t *testing.T) {
	te := newTestEngine(t)
	const user = "user-1"

	te.process(t, user, "hola")
	before := te.session(t, user)
	require.NotNil(t, before)

	replies := te.process(t, user, "quiero algo lindo y luminoso")
	require.Len(t, replies, 2)
	assert.Equal(t, msgSearchingFreeText, replies[0])

	after := te.session(t, user)
	require.NotNil(t, after)
	assert.Equal(t, before.Step, after.Step)
}

func TestEngine_HandleSendsApologyOnFailure(t *testing.T) {
	sessions := memory.NewSessionStore()
	greeted := memory.NewGreetedStore()
	sender := &testutil.RecordingSender{}

	repo := new(testutil.MockPropertyRepository)
	repo.On("All", context.Background()).Return(nil, fmt.Errorf("catalog down"))
	properties := service.NewPropertyService(repo)
	assistant := service.NewAssistant(nil, "", testutil.NewTestLogger())

	eng := New(sessions, greeted, properties, assistant, sender, testutil.NewTestLogger())

	// direct search path hits the failing catalog
	eng.Handle(context.Background(), domain.InboundMessage{
		Text:     "busco depto en zona Centro por 800 usd",
		SenderID: "user-1",
	})

	require.NotEmpty(t, sender.Bodies)
	assert.Equal(t, msgGenericError, sender.Bodies[len(sender.Bodies)-1])
}

func TestEngine_HandleSendsAllReplies(t *testing.T) {
	te := newTestEngine(t)

	te.engine.Handle(context.Background(), domain.InboundMessage{
		Text:     "busco depto en Centro por 800 usd",
		SenderID: "user-1",
	})

	require.Len(t, te.sender.Bodies, 2)
	assert.Equal(t, []string{"user-1", "user-1"}, te.sender.Recipients)
	assert.Equal(t, msgDirectSearchAck, te.sender.Bodies[0])
}

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilioClient_Send(t *testing.T) {
	var gotForm map[string]string
	var gotAuthUser string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"Body": r.PostFormValue("Body"),
			"From": r.PostFormValue("From"),
			"To":   r.PostFormValue("To"),
		}
		gotAuthUser, _, _ = r.BasicAuth()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	client := NewTwilioClient("AC123", "token", "+595981000000")
	client.baseURL = srv.URL

	result, err := client.SendWithResult(context.Background(), "whatsapp:+595982111222", "hola")

	require.NoError(t, err)
	assert.Equal(t, "SM123", result.SID)
	assert.Equal(t, "queued", result.Status)
	assert.Equal(t, "AC123", gotAuthUser)
	assert.Equal(t, "hola", gotForm["Body"])
	assert.Equal(t, "whatsapp:+595981000000", gotForm["From"])
	// already-prefixed recipients are not double-prefixed
	assert.Equal(t, "whatsapp:+595982111222", gotForm["To"])
}

func TestTwilioClient_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Authentication Error"}`))
	}))
	defer srv.Close()

	client := NewTwilioClient("AC123", "bad-token", "+595981000000")
	client.baseURL = srv.URL

	err := client.Send(context.Background(), "+595982111222", "hola")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestWhatsappAddr(t *testing.T) {
	assert.Equal(t, "whatsapp:+595981", whatsappAddr("+595981"))
	assert.Equal(t, "whatsapp:+595981", whatsappAddr("whatsapp:+595981"))
}

func TestRouter_Send(t *testing.T) {
	wa := &recordingSender{}
	tg := &recordingSender{}
	router := NewRouter(wa, tg)

	require.NoError(t, router.Send(context.Background(), "whatsapp:+595981", "a"))
	require.NoError(t, router.Send(context.Background(), "tg:12345", "b"))

	assert.Equal(t, []string{"whatsapp:+595981"}, wa.recipients)
	assert.Equal(t, []string{"tg:12345"}, tg.recipients)
}

func TestRouter_TelegramDisabled(t *testing.T) {
	router := NewRouter(&recordingSender{}, nil)

	err := router.Send(context.Background(), "tg:12345", "a")
	assert.Error(t, err)
}

type recordingSender struct {
	recipients []string
}

func (s *recordingSender) Send(_ context.Context, recipientID, _ string) error {
	s.recipients = append(s.recipients, recipientID)
	return nil
}

package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCustomerEstimate(t *testing.T) {
	msg, err := RenderCustomerEstimate(CustomerEstimateData{
		FullName:     "Marie <b>Tremblay</b>",
		Low:          7097,
		Mid:          8349,
		High:         9601,
		Timeline:     "1-2 jours",
		CompanyPhone: "+14505551234",
	})
	require.NoError(t, err)

	assert.Equal(t, "Votre estimation Chevalier Couvreur", msg.Subject)
	assert.Contains(t, msg.HTML, "1-2 jours")
	assert.Contains(t, msg.HTML, "Prochaines étapes")
	assert.Contains(t, msg.HTML, "tel:+14505551234")
	assert.Contains(t, msg.HTML, "349 $")
	assert.NotContains(t, msg.HTML, "<b>Tremblay</b>")
}

func TestRenderOperatorAlert(t *testing.T) {
	msg, err := RenderOperatorAlert(OperatorAlertData{
		FullName:    "Jean Roy",
		Phone:       "+15148720134",
		Email:       "jean@example.com",
		Address:     "45 boul. Saint-Martin, Laval",
		ProjectType: "emergency",
		Issues:      []string{"fuite", "bardeaux manquants"},
		Mid:         10854,
		Timeline:    "1-2 jours",
		PhotoCount:  3,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(msg.Subject, "🔔 Nouveau lead: Jean Roy - "))
	assert.Contains(t, msg.HTML, "🚨 Urgence")
	assert.Contains(t, msg.HTML, "Photos (3)")
	assert.Contains(t, msg.HTML, "fuite, bardeaux manquants")
	assert.Contains(t, msg.HTML, "Non spécifié")
}

func TestResendMailer_Send(t *testing.T) {
	var got resendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"em_1"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(ResendConfig{APIKey: "re_test", FromName: "Chevalier Couvreur", FromEmail: "estimation@chevalier-couvreur.com", BaseURL: srv.URL}, nil)
	err := m.Send(context.Background(), Message{To: "marie@example.com", Subject: "Bonjour", HTML: "<p>Salut</p>"})
	require.NoError(t, err)

	assert.Equal(t, "Chevalier Couvreur <estimation@chevalier-couvreur.com>", got.From)
	assert.Equal(t, []string{"marie@example.com"}, got.To)
}

func TestResendMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid to"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(ResendConfig{APIKey: "re_test", FromEmail: "estimation@chevalier-couvreur.com", BaseURL: srv.URL}, nil)
	err := m.Send(context.Background(), Message{To: "bad", Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid to")
}

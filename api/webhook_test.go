package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchledger/server/donations"
	"github.com/churchledger/server/eventledger"
	"github.com/churchledger/server/models"
	"github.com/churchledger/server/webhooks"
)

const testSecret = "whsec_api_test"

func signature(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(id, eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"type":%q,"created":%d,"data":{"object":%s}}`,
		id, eventType, time.Now().Add(-time.Hour).Unix(), object))
}

func newTestServer(t *testing.T, secret string) *Server {
	t.Helper()

	store := donations.NewMemoryStore()
	require.NoError(t, store.CreateCategory(context.Background(), &models.DonationCategory{
		ID: "general-fund", Name: "General Fund", Active: true,
	}))

	repo := donations.NewRepo(store)
	handlers := webhooks.NewHandlers(repo, webhooks.Defaults{
		CategoryID:   "general-fund",
		CategoryName: "General Fund",
	})
	dispatcher := webhooks.NewDispatcher(secret, eventledger.NewMemory(), handlers)
	return NewServer(repo, dispatcher, nil)
}

func postWebhook(t *testing.T, srv *Server, payload []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(string(payload)))
	if sig != "" {
		req.Header.Set("Stripe-Signature", sig)
	}
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWebhookRejectsNonPOST(t *testing.T) {
	srv := newTestServer(t, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/webhooks/stripe", nil)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebhookRejectsEmptyBody(t *testing.T) {
	srv := newTestServer(t, testSecret)

	rec := postWebhook(t, srv, nil, "t=1,v1=abc")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebhookMissingSignatureHeader(t *testing.T) {
	srv := newTestServer(t, testSecret)
	payload := eventPayload("evt_1", webhooks.EventPaymentSucceeded, `{"id":"pi_1","amount":1000}`)

	rec := postWebhook(t, srv, payload, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, webhooks.CodeMissingSignature, decodeBody(t, rec)["code"])
}

func TestWebhookInvalidSignature(t *testing.T) {
	srv := newTestServer(t, testSecret)
	payload := eventPayload("evt_1", webhooks.EventPaymentSucceeded, `{"id":"pi_1","amount":1000}`)

	rec := postWebhook(t, srv, payload, signature(payload, "whsec_wrong"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, webhooks.CodeInvalidSignature, decodeBody(t, rec)["code"])
}

func TestWebhookMissingSecret(t *testing.T) {
	srv := newTestServer(t, "")
	payload := eventPayload("evt_1", webhooks.EventPaymentSucceeded, `{"id":"pi_1","amount":1000}`)

	rec := postWebhook(t, srv, payload, signature(payload, testSecret))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, webhooks.CodeMissingSecret, decodeBody(t, rec)["code"])
}

func TestWebhookProcessesPayment(t *testing.T) {
	srv := newTestServer(t, testSecret)
	payload := eventPayload("evt_ok", webhooks.EventPaymentSucceeded,
		`{"id":"pi_ok","amount":10000,"metadata":{"memberId":"member_123"}}`)

	rec := postWebhook(t, srv, payload, signature(payload, testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["received"])
	assert.Equal(t, true, body["processed"])
	assert.Equal(t, "evt_ok", body["eventId"])
	assert.NotEmpty(t, body["donationId"])
}

func TestWebhookUnsupportedEventType(t *testing.T) {
	srv := newTestServer(t, testSecret)
	payload := eventPayload("evt_pm", "payment_method.attached", `{"id":"pm_1"}`)

	rec := postWebhook(t, srv, payload, signature(payload, testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["processed"])
	assert.Equal(t, "Unsupported event type: payment_method.attached", body["skipReason"])
}

func TestWebhookProcessingFailureReturns500(t *testing.T) {
	srv := newTestServer(t, testSecret)
	payload := eventPayload("evt_zero", webhooks.EventPaymentSucceeded,
		`{"id":"pi_zero","amount":0,"metadata":{"memberId":"member_123"}}`)

	rec := postWebhook(t, srv, payload, signature(payload, testSecret))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "evt_zero", body["eventId"])
	assert.Contains(t, body["details"], "must be greater than 0")
}

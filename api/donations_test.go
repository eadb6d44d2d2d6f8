package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchledger/server/auth"
	"github.com/churchledger/server/models"
)

func asPrincipal(p *auth.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

func donationJSON(amount float64) string {
	date := time.Now().Add(-24 * time.Hour).Format(time.RFC3339)
	return `{
		"donorId": "member_123",
		"donorName": "Pat Example",
		"amount": ` + jsonNumber(amount) + `,
		"date": "` + date + `",
		"method": "check",
		"categoryId": "general-fund",
		"taxCompliance": {
			"lineItem": "cash_contribution",
			"isTaxDeductible": true,
			"restriction": "unrestricted"
		}
	}`
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func TestCreateDonationRequiresFinanceRole(t *testing.T) {
	srv := newTestServer(t, testSecret)
	donor := &auth.Principal{UID: "member_123", Role: auth.RoleDonor}

	req := httptest.NewRequest(http.MethodPost, "/donations/", strings.NewReader(donationJSON(100)))
	rec := httptest.NewRecorder()
	srv.Router(asPrincipal(donor)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateAndGetDonation(t *testing.T) {
	srv := newTestServer(t, testSecret)
	finance := &auth.Principal{UID: "treasurer_1", Role: auth.RoleFinance}
	router := srv.Router(asPrincipal(finance))

	req := httptest.NewRequest(http.MethodPost, "/donations/", strings.NewReader(donationJSON(100)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "treasurer_1", created.CreatedBy)

	req = httptest.NewRequest(http.MethodGet, "/donations/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateDonationValidationErrorsAreBadRequests(t *testing.T) {
	srv := newTestServer(t, testSecret)
	finance := &auth.Principal{UID: "treasurer_1", Role: auth.RoleFinance}

	req := httptest.NewRequest(http.MethodPost, "/donations/", strings.NewReader(donationJSON(0)))
	rec := httptest.NewRecorder()
	srv.Router(asPrincipal(finance)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be greater than 0")
}

func TestTransitionDonation(t *testing.T) {
	srv := newTestServer(t, testSecret)
	finance := &auth.Principal{UID: "treasurer_1", Role: auth.RoleFinance}
	router := srv.Router(asPrincipal(finance))

	req := httptest.NewRequest(http.MethodPost, "/donations/", strings.NewReader(donationJSON(100)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req = httptest.NewRequest(http.MethodPost, "/donations/"+created.ID+"/status", strings.NewReader(`{"status":"verified"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.StatusVerified, updated.Status)
	assert.Equal(t, "treasurer_1", updated.UpdatedBy)
}

func TestSummaryReportRequiresOversight(t *testing.T) {
	srv := newTestServer(t, testSecret)
	donor := &auth.Principal{UID: "member_123", Role: auth.RoleDonor}

	req := httptest.NewRequest(http.MethodGet, "/reports/summary", nil)
	rec := httptest.NewRecorder()
	srv.Router(asPrincipal(donor)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSummaryReport(t *testing.T) {
	srv := newTestServer(t, testSecret)
	finance := &auth.Principal{UID: "treasurer_1", Role: auth.RoleFinance}
	router := srv.Router(asPrincipal(finance))

	for _, amount := range []float64{100, 250} {
		req := httptest.NewRequest(http.MethodPost, "/donations/", strings.NewReader(donationJSON(amount)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/reports/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.FinancialSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 350.0, summary.TotalDonations)
	assert.Equal(t, 2, summary.DonationCount)
}

func TestUnauthenticatedListIsDenied(t *testing.T) {
	srv := newTestServer(t, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/donations/", nil)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// Verify context helper round-trip used by the auth middleware
func TestPrincipalContext(t *testing.T) {
	p := &auth.Principal{UID: "member_1", Role: auth.RoleDonor}
	ctx := auth.WithPrincipal(context.Background(), p)
	assert.Equal(t, p, auth.ForContext(ctx))
	assert.Nil(t, auth.ForContext(context.Background()))
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/churchledger/server/auth"
	"github.com/churchledger/server/payments"
)

func (s *Server) handleOneTimePayment(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	if s.payments == nil {
		writeError(w, http.StatusServiceUnavailable, "payments are not configured")
		return
	}

	var req payments.OneTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Donors can only give as themselves
	if !principal.CanSeeAll() {
		req.DonorID = principal.UID
	}

	d, err := s.payments.OneTime(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleRecurringPayment(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	if s.payments == nil {
		writeError(w, http.StatusServiceUnavailable, "payments are not configured")
		return
	}

	var req payments.RecurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !principal.CanSeeAll() {
		req.DonorID = principal.UID
	}

	d, err := s.payments.Recurring(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

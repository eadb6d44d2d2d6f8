package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/churchledger/server/auth"
	"github.com/churchledger/server/donations"
	"github.com/churchledger/server/models"
)

func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())
	if principal == nil || !principal.CanSeeAll() {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	var d models.Donation
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d.CreatedBy = principal.UID

	created, err := s.repo.Create(r.Context(), &d)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())

	d, err := s.repo.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if errors.Is(err, donations.ErrNotFound) {
		writeError(w, http.StatusNotFound, "donation not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.repo.List(r.Context(), principal, filter)
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())
	if principal == nil || !principal.CanSeeAll() {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	var body struct {
		Status models.DonationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := s.repo.Transition(r.Context(), chi.URLParam(r, "id"), body.Status, principal.UID)
	if errors.Is(err, donations.ErrNotFound) {
		writeError(w, http.StatusNotFound, "donation not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDonation(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())

	err := s.repo.Delete(r.Context(), principal, chi.URLParam(r, "id"))
	if errors.Is(err, donations.ErrNotFound) {
		writeError(w, http.StatusNotFound, "donation not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendReceipt(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())
	if principal == nil || !principal.CanSeeAll() {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	if s.receipts == nil {
		writeError(w, http.StatusServiceUnavailable, "receipt mail is not configured")
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := s.repo.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if errors.Is(err, donations.ErrNotFound) {
		writeError(w, http.StatusNotFound, "donation not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	if err := s.receipts.Send(r.Context(), d, body.Email); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if auth.ForContext(r.Context()) == nil {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	out, err := s.repo.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func filterFromQuery(r *http.Request) (donations.Filter, error) {
	var f donations.Filter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, errors.New("invalid from date, expected YYYY-MM-DD")
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, errors.New("invalid to date, expected YYYY-MM-DD")
		}
		f.To = &t
	}
	f.CategoryID = q.Get("categoryId")
	f.Method = models.PaymentMethod(q.Get("method"))
	f.Status = models.DonationStatus(q.Get("status"))
	if v := q.Get("taxYear"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("invalid taxYear")
		}
		f.TaxYear = year
	}
	if v := q.Get("minAmount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("invalid minAmount")
		}
		f.MinAmount = amount
	}
	return f, nil
}

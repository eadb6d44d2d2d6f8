package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/churchledger/server/auth"
	"github.com/churchledger/server/donations"
	"github.com/churchledger/server/reports"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())
	if principal == nil || !principal.CanSeeAll() {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	set, err := s.repo.List(r.Context(), principal, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var from, to time.Time
	if filter.From != nil {
		from = *filter.From
	}
	if filter.To != nil {
		to = *filter.To
	}
	writeJSON(w, http.StatusOK, reports.Summarize(set, from, to))
}

func (s *Server) handleForm990(w http.ResponseWriter, r *http.Request) {
	principal := auth.ForContext(r.Context())
	if principal == nil || !principal.CanSeeAll() {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	year := time.Now().Year()
	if v := r.URL.Query().Get("taxYear"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid taxYear")
			return
		}
		year = parsed
	}

	set, err := s.repo.List(r.Context(), principal, donations.Filter{TaxYear: year})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reports.Form990(set, year))
}

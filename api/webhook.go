package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/churchledger/server/webhooks"
)

// handleStripeWebhook maps dispatcher outcomes onto the contract the
// provider retries against: 2xx stops redelivery, 4xx/5xx does not.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil || len(payload) == 0 {
		writeError(w, http.StatusMethodNotAllowed, "empty request body")
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		werr := webhooks.ErrMissingSignature()
		writeJSON(w, werr.Status, map[string]string{"error": werr.Message, "code": werr.Code})
		return
	}

	result, err := s.dispatcher.Handle(r.Context(), payload, sig)
	if err != nil {
		var werr *webhooks.Error
		if errors.As(err, &werr) {
			writeJSON(w, werr.Status, map[string]string{"error": werr.Message, "code": werr.Code})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":     "webhook processing failed",
			"eventId":   result.EventID,
			"eventType": result.EventType,
			"details":   result.Err,
		})
		return
	}

	response := map[string]interface{}{
		"received":  true,
		"eventId":   result.EventID,
		"eventType": result.EventType,
		"processed": result.Processed,
	}
	if result.DonationID != "" {
		response["donationId"] = result.DonationID
	}
	if result.SkipReason != "" {
		response["skipReason"] = result.SkipReason
	}
	writeJSON(w, http.StatusOK, response)
}

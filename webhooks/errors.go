package webhooks

import "net/http"

const (
	CodeMissingSecret    = "MISSING_SECRET"
	CodeMissingSignature = "MISSING_SIGNATURE"
	CodeInvalidSignature = "INVALID_SIGNATURE"
)

// Error is a verification failure surfaced directly to the caller, carrying
// the HTTP status the endpoint should answer with and a machine code.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errMissingSecret() *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeMissingSecret,
		Message: "webhook secret is not configured",
	}
}

func errInvalidSignature(cause error) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidSignature,
		Message: "webhook signature verification failed: " + cause.Error(),
	}
}

// ErrMissingSignature is returned by the HTTP layer when the signature
// header is absent entirely.
func ErrMissingSignature() *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeMissingSignature,
		Message: "missing stripe-signature header",
	}
}

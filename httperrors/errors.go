package httperrors

import (
	"net/http"

	"github.com/txix-open/isp-kit/json"
)

type HttpError struct {
	statusCode  int
	errorLabel  string
	userMessage string
	err         error
}

func New(statusCode int, userMessage string, internalError error) HttpError {
	return NewLabeled(statusCode, http.StatusText(statusCode), userMessage, internalError)
}

// NewLabeled overrides the "error" field of the response body, for endpoints
// whose error contract does not match the standard status text.
func NewLabeled(statusCode int, errorLabel string, userMessage string, internalError error) HttpError {
	return HttpError{
		statusCode:  statusCode,
		errorLabel:  errorLabel,
		userMessage: userMessage,
		err:         internalError,
	}
}

func (e HttpError) Error() string {
	return e.err.Error()
}

func (e HttpError) WriteError(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.statusCode)
	data := map[string]any{
		"error": e.errorLabel,
	}
	if e.userMessage != "" {
		data["message"] = e.userMessage
	}
	return json.NewEncoder(w).Encode(data)
}

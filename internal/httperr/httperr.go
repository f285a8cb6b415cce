// Package httperr defines the error taxonomy shared by services and
// repositories, and the single JSON error shape returned to clients.
// Sentinel values let handlers map failures to HTTP statuses without
// inspecting error strings.
package httperr

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
)

var (
	// ErrNotFound is returned when a journal with the requested id does not exist.
	ErrNotFound = errors.New("journal not found")
	// ErrPageNotFound is returned when the parent journal exists but holds no
	// page with the requested id. Kept distinct from ErrNotFound so callers can
	// tell the two levels apart.
	ErrPageNotFound = errors.New("page not found")
	// ErrForbidden is returned when the resource exists but the caller is not
	// its owner. Handlers translate this into a 403.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned on signup when the username is already taken.
	ErrConflict = errors.New("user already exists")
	// ErrUnauthorized covers every credential failure: missing/malformed/expired
	// token, unknown user, wrong password. The reason is never disclosed.
	ErrUnauthorized = errors.New("unauthorized")
)

// Response is the error body shared by all endpoints.
type Response struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func statusText(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusRequestEntityTooLarge:
		return "Payload Too Large"
	case http.StatusTooManyRequests:
		return "Too Many Requests"
	default:
		return "Internal Server Error"
	}
}

// Write sends the standard error body with the given status and message.
func Write(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Response{
		Error:      statusText(code),
		Message:    message,
		StatusCode: code,
	})
}

// WriteValidation sends a 400 with the field-level messages joined.
func WriteValidation(w http.ResponseWriter, messages []string) {
	Write(w, http.StatusBadRequest, strings.Join(messages, "; "))
}

// WriteError maps a taxonomy error to its HTTP status. Unknown errors are
// logged server-side and collapsed to an opaque 500.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Write(w, http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrPageNotFound):
		Write(w, http.StatusNotFound, ErrPageNotFound.Error())
	case errors.Is(err, ErrForbidden):
		Write(w, http.StatusForbidden, "you do not own this journal")
	case errors.Is(err, ErrConflict):
		Write(w, http.StatusConflict, "User already exists")
	case errors.Is(err, ErrUnauthorized):
		Write(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		log.Printf("internal error: %v", err)
		Write(w, http.StatusInternalServerError, "Something went wrong")
	}
}

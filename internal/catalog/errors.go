package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized is matched by API errors with status 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is matched by API errors with status 404.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned by Login when the catalog rejects the user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoResponse wraps transport failures where the catalog never answered.
	ErrNoResponse = errors.New("no response from catalog")
	// ErrNotLoggedIn is returned by admin calls made without a token.
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError is a non-2xx answer from the catalog
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog API returned status %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match the sentinel errors by status code
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// newAPIError extracts the server's message from an error body. The catalog
// answers {"error": "..."} or {"message": "..."}; anything else is kept raw.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	}
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &APIError{StatusCode: status, Message: msg}
}

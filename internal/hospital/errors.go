package hospital

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidCredentials is returned when /login succeeds but carries no token.
var ErrInvalidCredentials = errors.New("hospital: invalid credentials")

// NetworkError means the request never completed or came back non-2xx.
// StatusCode is zero for transport failures.
type NetworkError struct {
	Op         string
	StatusCode int
	// Body is the response body cut for display.
	Body string
	Err  error

	raw []byte
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("hospital: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("hospital: %s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("hospital: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("hospital: %s failed", e.Op)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError means the server refused the shape of a request body.
type ValidationError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hospital: %s: rejected with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("hospital: %s: %s", e.Op, e.Message)
}

// ServerRejection is a {"message": ...} payload sent with a success status.
type ServerRejection struct {
	Message string
}

func (e *ServerRejection) Error() string {
	return "hospital: server rejected request: " + e.Message
}

// IsNetworkError reports whether err wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// serverMessage pulls a human readable message out of an error body. Backends
// differ on the field name, so the common ones are tried in order.
func serverMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(truncate(string(body), 300))
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != "" {
		return payload.Error
	}
	var detail string
	if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil {
		return detail
	}
	return ""
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

package sheets

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is the uniform error for non-2xx responses from the values API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets api: status %d: %s", e.Status, e.Message)
}

// decodeAPIError extracts the message from the API's JSON error envelope
// {"error": {"code": ..., "message": ...}}, falling back to the raw body.
func decodeAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{Status: status, Message: envelope.Error.Message}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}

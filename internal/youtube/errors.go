package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-200 response from the YouTube Data API.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube API error (status %d, reason %s): %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube API error (status %d): %s", e.StatusCode, e.Message)
}

// IsQuotaExceeded reports whether err is the API's daily-quota rejection.
// The pipeline treats this as a terminate-now signal rather than a
// per-call failure.
func IsQuotaExceeded(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Reason {
	case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded":
		return true
	}
	return apiErr.StatusCode == 403 && strings.Contains(strings.ToLower(apiErr.Message), "quota")
}

// parseAPIError decodes the API's error envelope. Bodies that don't match
// the envelope still produce an *APIError with the raw text as message.
func parseAPIError(statusCode int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}

	apiErr := &APIError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		if len(envelope.Error.Errors) > 0 {
			apiErr.Reason = envelope.Error.Errors[0].Reason
		}
	}
	return apiErr
}

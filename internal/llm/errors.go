package llm

import (
	"errors"
	"strings"
)

// ErrFatalAPI marks provider errors that no amount of retrying will fix:
// billing problems, revoked keys, provider-side quota cuts. Callers should
// stop issuing calls when they see it.
var ErrFatalAPI = errors.New("fatal API error")

// fatalPatterns are matched case-insensitively against provider error text.
var fatalPatterns = []string{
	"credit balance",
	"rate limit",
	"quota",
	"billing",
	"invalid api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

// isFatalAPIError reports whether err looks like a non-retryable provider error.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range fatalPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// wrapFatalError wraps err with ErrFatalAPI when it matches a fatal
// pattern; otherwise the error is returned unchanged.
func wrapFatalError(err error) error {
	if err == nil {
		return nil
	}
	if isFatalAPIError(err) {
		return errors.Join(ErrFatalAPI, err)
	}
	return err
}

package gatesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error codes carried in ErrorResponse.Error.
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeInvalidToken           = "invalid_token"
	ErrorCodeRateLimited            = "rate_limited"
	ErrorCodeInvalidCode            = "invalid_code"
	ErrorCodeCodeInactive           = "code_inactive"
	ErrorCodeCodeExhausted          = "code_exhausted"
	ErrorCodeEmailAlreadyUsed       = "email_already_used"
	ErrorCodeWalletAlreadyUsed      = "wallet_already_used"
	ErrorCodeInvalidSignature       = "invalid_signature"
	ErrorCodeEligibilityNotMet      = "eligibility_not_met"
	ErrorCodeEligibilityCheckFailed = "eligibility_check_failed"
	ErrorCodeNotFound               = "not_found"
	ErrorCodeServerError            = "server_error"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	// RetryAfter is parsed from the Retry-After header on 429 responses.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gatesdk: %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Retryable reports whether repeating the call could succeed.
func (e *APIError) Retryable() bool {
	switch e.Code {
	case ErrorCodeRateLimited, ErrorCodeEligibilityCheckFailed, ErrorCodeServerError:
		return true
	}
	return e.StatusCode >= 500
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Error
		apiErr.Description = errResp.ErrorDescription
	} else {
		apiErr.Code = ErrorCodeServerError
		apiErr.Description = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}

	return apiErr
}

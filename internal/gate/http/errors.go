package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/aussiebroadwan/invitegate/pkg/gatesdk"
	"github.com/aussiebroadwan/invitegate/pkg/httpx"
	"github.com/aussiebroadwan/invitegate/pkg/slogx"
)

func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
		Error:            gatesdk.ErrorCodeInvalidRequest,
		ErrorDescription: desc,
	})
}

// writeServiceError maps the service taxonomy onto status codes. action
// names the failed operation in logs and in the 500 description.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var (
		status = http.StatusInternalServerError
		code   = gatesdk.ErrorCodeServerError
		desc   = "Failed to " + action
		rl     *service.RateLimitedError
	)

	switch {
	case errors.As(err, &rl):
		httpx.SetRetryAfter(w, rl.RetryAfter)
		status, code, desc = http.StatusTooManyRequests, gatesdk.ErrorCodeRateLimited, "Too many attempts, please try again later"
	case errors.Is(err, service.ErrRateLimited):
		status, code, desc = http.StatusTooManyRequests, gatesdk.ErrorCodeRateLimited, "Too many attempts, please try again later"
	case errors.Is(err, service.ErrInvalidRequest):
		status, code, desc = http.StatusBadRequest, gatesdk.ErrorCodeInvalidRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCode):
		status, code, desc = http.StatusBadRequest, gatesdk.ErrorCodeInvalidCode, "Invalid invite code"
	case errors.Is(err, service.ErrCodeInactive):
		status, code, desc = http.StatusConflict, gatesdk.ErrorCodeCodeInactive, "Invite code is inactive"
	case errors.Is(err, service.ErrCodeExhausted):
		status, code, desc = http.StatusConflict, gatesdk.ErrorCodeCodeExhausted, "Invite code has reached maximum uses"
	case errors.Is(err, service.ErrEmailAlreadyUsed):
		status, code, desc = http.StatusConflict, gatesdk.ErrorCodeEmailAlreadyUsed, "Email already registered"
	case errors.Is(err, service.ErrWalletAlreadyUsed):
		status, code, desc = http.StatusConflict, gatesdk.ErrorCodeWalletAlreadyUsed, "Wallet already registered"
	case errors.Is(err, service.ErrInvalidSignature):
		status, code, desc = http.StatusBadRequest, gatesdk.ErrorCodeInvalidSignature, "Invalid signature"
	case errors.Is(err, service.ErrEligibilityNotMet):
		status, code, desc = http.StatusUnprocessableEntity, gatesdk.ErrorCodeEligibilityNotMet, "NFT staking requirement not met"
	case errors.Is(err, service.ErrEligibilityCheckFailed):
		status, code, desc = http.StatusServiceUnavailable, gatesdk.ErrorCodeEligibilityCheckFailed, "Error checking token eligibility"
	case errors.Is(err, service.ErrNotFound):
		status, code, desc = http.StatusNotFound, gatesdk.ErrorCodeNotFound, "Not found"
	default:
		slogx.FromContext(r.Context()).Error("failed to "+action, "err", err)
	}

	httpx.WriteJSON(w, status, gatesdk.ErrorResponse{Error: code, ErrorDescription: desc})
}

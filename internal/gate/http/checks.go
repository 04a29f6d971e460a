package http

import (
	"net/http"

	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/aussiebroadwan/invitegate/pkg/gatesdk"
	"github.com/aussiebroadwan/invitegate/pkg/httpx"
)

type VerifyCodeHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Verify Invite Code
//	@Description	Reports whether an invite code can currently be redeemed. The answer may be cached for up to an hour.
//	@Tags			Invite Codes
//	@Produce		json
//	@Param			code	query		string					true	"Invite code"
//	@Success		200		{object}	gatesdk.CheckResponse	"success, message"
//	@Failure		400		{object}	gatesdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	gatesdk.ErrorResponse	"error, error_description"
//	@Router			/api/v1/verify-code [get].
func (h *VerifyCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeBadRequest(w, "code is required")
		return
	}

	valid, err := h.InviteService.VerifyInviteCode(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err, "verify invite code")
		return
	}

	resp := gatesdk.CheckResponse{Success: valid}
	if !valid {
		resp.Message = "Code is invalid or already used"
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type EmailUsedHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Check Email
//	@Description	success is true when the email has not been used to register
//	@Tags			Identities
//	@Produce		json
//	@Param			email	query		string					true	"Email address"
//	@Success		200		{object}	gatesdk.CheckResponse	"success, message"
//	@Failure		400		{object}	gatesdk.ErrorResponse	"error, error_description"
//	@Router			/api/v1/email-used [get].
func (h *EmailUsedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	used, err := h.InviteService.IsEmailUsed(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "check email")
		return
	}

	resp := gatesdk.CheckResponse{Success: !used}
	if used {
		resp.Message = "Email already used"
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type WalletUsedHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Check Wallet
//	@Description	success is true when the wallet has not been used to register
//	@Tags			Identities
//	@Produce		json
//	@Param			wallet	query		string					true	"0x-prefixed wallet address"
//	@Success		200		{object}	gatesdk.CheckResponse	"success, message"
//	@Failure		400		{object}	gatesdk.ErrorResponse	"error, error_description"
//	@Router			/api/v1/wallet-used [get].
func (h *WalletUsedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		writeBadRequest(w, "wallet is required")
		return
	}

	used, err := h.InviteService.IsWalletUsed(r.Context(), wallet)
	if err != nil {
		writeServiceError(w, r, err, "check wallet")
		return
	}

	resp := gatesdk.CheckResponse{Success: !used}
	if used {
		resp.Message = "Wallet already used"
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

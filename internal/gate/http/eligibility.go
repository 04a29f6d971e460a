package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/aussiebroadwan/invitegate/pkg/gatesdk"
	"github.com/aussiebroadwan/invitegate/pkg/httpx"
)

type EligibilityHandler struct {
	Oracle *service.EligibilityOracle
}

// ServeHTTP godoc
//
//	@Summary		Check Token Eligibility
//	@Description	Reports whether a token has been staked for seven days. remainingTime (seconds) is only present for staked tokens. Results are cached for five minutes.
//	@Tags			Registrations
//	@Produce		json
//	@Param			tokenId	query		integer							true	"Token ID"
//	@Param			wallet	query		string							true	"0x-prefixed wallet address"
//	@Success		200		{object}	gatesdk.EligibilityResponse		"isEligible, remainingTime"
//	@Failure		400		{object}	gatesdk.ErrorResponse			"error, error_description"
//	@Failure		503		{object}	gatesdk.ErrorResponse			"staking contract unreachable"
//	@Router			/api/v1/eligibility [get].
func (h *EligibilityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tokenID, err := strconv.ParseUint(q.Get("tokenId"), 10, 64)
	if err != nil {
		writeBadRequest(w, "tokenId must be a non-negative integer")
		return
	}
	wallet := q.Get("wallet")
	if wallet == "" {
		writeBadRequest(w, "wallet is required")
		return
	}

	e, err := h.Oracle.CheckEligibility(r.Context(), tokenID, wallet)
	if err != nil {
		writeServiceError(w, r, err, "check token eligibility")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatesdk.EligibilityResponse{
		IsEligible:    e.IsEligible,
		RemainingTime: e.RemainingSeconds(),
	})
}

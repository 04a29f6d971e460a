package http

import (
	"net/http"

	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/aussiebroadwan/invitegate/pkg/gatesdk"
	"github.com/aussiebroadwan/invitegate/pkg/httpx"
)

type ReserveHandler struct {
	Coordinator *service.ReservationCoordinator
}

// ServeHTTP godoc
//
//	@Summary		Reserve With Invite Code
//	@Description	Redeems one use of an invite code. The signature must be a personal_sign of "Register with invite code: {code}" by walletAddress.
//	@Tags			Registrations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.ReserveRequest			true	"Reservation"
//	@Success		201		{object}	gatesdk.ReservationResponse		"success, registrationId"
//	@Failure		400		{object}	gatesdk.ErrorResponse			"invalid request, code or signature"
//	@Failure		409		{object}	gatesdk.ErrorResponse			"code exhausted or inactive, email or wallet already used"
//	@Failure		429		{object}	gatesdk.ErrorResponse			"too many attempts"
//	@Failure		500		{object}	gatesdk.ErrorResponse			"error, error_description"
//	@Router			/api/v1/reserve [post].
func (h *ReserveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.ReserveRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	switch {
	case req.Code == "":
		writeBadRequest(w, "code is required")
		return
	case req.Email == "":
		writeBadRequest(w, "email is required")
		return
	case req.WalletAddress == "":
		writeBadRequest(w, "walletAddress is required")
		return
	case req.Signature == "":
		writeBadRequest(w, "signature is required")
		return
	}

	id, err := h.Coordinator.ReserveByCode(r.Context(), service.CodeReservation{
		Code:          req.Code,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		Signature:     req.Signature,
		IPAddress:     httpx.ClientIP(r),
		DeviceInfo:    req.DeviceInfo,
	})
	if err != nil {
		writeServiceError(w, r, err, "reserve invite code")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, gatesdk.ReservationResponse{
		Success:        true,
		RegistrationID: id.String(),
	})
}

type RegisterNFTHandler struct {
	Coordinator *service.ReservationCoordinator
}

// ServeHTTP godoc
//
//	@Summary		Register With NFT
//	@Description	Registers a wallet whose token has been staked for at least seven days. The signature must be a personal_sign of "Register with NFT token ID: {tokenId}".
//	@Tags			Registrations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.RegisterNFTRequest		true	"Registration"
//	@Success		201		{object}	gatesdk.ReservationResponse		"success, registrationId"
//	@Failure		400		{object}	gatesdk.ErrorResponse			"invalid request or signature"
//	@Failure		409		{object}	gatesdk.ErrorResponse			"email or wallet already used"
//	@Failure		422		{object}	gatesdk.ErrorResponse			"staking requirement not met"
//	@Failure		429		{object}	gatesdk.ErrorResponse			"too many attempts"
//	@Failure		503		{object}	gatesdk.ErrorResponse			"staking contract unreachable"
//	@Router			/api/v1/register-nft [post].
func (h *RegisterNFTHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.RegisterNFTRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	switch {
	case req.Email == "":
		writeBadRequest(w, "email is required")
		return
	case req.WalletAddress == "":
		writeBadRequest(w, "walletAddress is required")
		return
	case req.Signature == "":
		writeBadRequest(w, "signature is required")
		return
	}

	id, err := h.Coordinator.ReserveByNFT(r.Context(), service.NFTReservation{
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		TokenID:       req.TokenID,
		Signature:     req.Signature,
	})
	if err != nil {
		writeServiceError(w, r, err, "register with nft")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, gatesdk.ReservationResponse{
		Success:        true,
		RegistrationID: id.String(),
	})
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/aussiebroadwan/invitegate/pkg/gatesdk"
	"github.com/aussiebroadwan/invitegate/pkg/httpx"
	"github.com/samber/lo"
)

type CreateInviteCodeHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Create Invite Code
//	@Description	Mints an 8 character invite code with 1 to 100 uses. When creator tokens are enabled the creator email comes from the bearer token and creatorEmail is ignored.
//	@Tags			Invite Codes
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		gatesdk.CreateInviteCodeRequest	true	"Invite code"
//	@Success		201		{object}	gatesdk.InviteCodeResponse		"created invite code"
//	@Failure		400		{object}	gatesdk.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	gatesdk.ErrorResponse			"missing or invalid bearer token"
//	@Failure		429		{object}	gatesdk.ErrorResponse			"too many attempts"
//	@Failure		500		{object}	gatesdk.ErrorResponse			"error, error_description"
//	@Router			/api/v1/invite-codes [post].
func (h *CreateInviteCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.CreateInviteCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	creator := req.CreatorEmail
	if claims, ok := httpx.ClaimsFromContext(r.Context()); ok {
		creator = claims.Email
	}
	if creator == "" {
		writeBadRequest(w, "creatorEmail is required")
		return
	}

	c, err := h.InviteService.CreateInviteCode(r.Context(), creator, req.MaxUses)
	if err != nil {
		writeServiceError(w, r, err, "create invite code")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toInviteCodeResponse(c))
}

type InviteCodeStatsHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Invite Code Stats
//	@Description	Usage count, remaining uses and every redemption of a code, oldest first
//	@Tags			Invite Codes
//	@Produce		json
//	@Security		BearerAuth
//	@Param			code	path		string								true	"Invite code"
//	@Success		200		{object}	gatesdk.InviteCodeStatsResponse		"code, usageCount, remainingUses, usages"
//	@Failure		404		{object}	gatesdk.ErrorResponse				"unknown code"
//	@Failure		500		{object}	gatesdk.ErrorResponse				"error, error_description"
//	@Router			/api/v1/invite-codes/{code}/stats [get].
func (h *InviteCodeStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.InviteService.GetInviteCodeStats(r.Context(), r.PathValue("code"))
	if err != nil {
		writeServiceError(w, r, err, "load invite code stats")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatesdk.InviteCodeStatsResponse{
		Code:          stats.Code,
		UsageCount:    stats.UsageCount,
		RemainingUses: stats.RemainingUses,
		Usages: lo.Map(stats.Usages, func(u domain.CodeUsage, _ int) gatesdk.CodeUsageResponse {
			return gatesdk.CodeUsageResponse{
				ID:         u.ID.String(),
				UserEmail:  u.UserEmail,
				IPAddress:  u.IPAddress,
				DeviceInfo: u.DeviceInfo,
				UsedAt:     u.UsedAt,
			}
		}),
	})
}

func toInviteCodeResponse(c domain.InviteCode) gatesdk.InviteCodeResponse {
	return gatesdk.InviteCodeResponse{
		Code:         c.Code,
		CreatorEmail: c.CreatorEmail,
		MaxUses:      c.MaxUses,
		CurrentUses:  c.CurrentUses,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

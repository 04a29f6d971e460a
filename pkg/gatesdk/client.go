package gatesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to an invitegate server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token is sent as a bearer token when creating invite codes.
	Token string
}

// NewClient returns a client with a 10 second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyCode reports whether code can still be redeemed.
func (c *Client) VerifyCode(ctx context.Context, code string) (bool, error) {
	var out CheckResponse
	err := c.get(ctx, "/api/v1/verify-code", url.Values{"code": {code}}, &out, false)
	return out.Success, err
}

// EmailUsed reports whether email is already registered.
func (c *Client) EmailUsed(ctx context.Context, email string) (bool, error) {
	var out CheckResponse
	err := c.get(ctx, "/api/v1/email-used", url.Values{"email": {email}}, &out, false)
	return !out.Success, err
}

// WalletUsed reports whether wallet is already registered.
func (c *Client) WalletUsed(ctx context.Context, wallet string) (bool, error) {
	var out CheckResponse
	err := c.get(ctx, "/api/v1/wallet-used", url.Values{"wallet": {wallet}}, &out, false)
	return !out.Success, err
}

// Reserve redeems an invite code and returns the registration id.
func (c *Client) Reserve(ctx context.Context, req ReserveRequest) (string, error) {
	var out ReservationResponse
	if err := c.post(ctx, "/api/v1/reserve", req, http.StatusCreated, &out, false); err != nil {
		return "", err
	}
	return out.RegistrationID, nil
}

// RegisterNFT registers with a staked token and returns the registration id.
func (c *Client) RegisterNFT(ctx context.Context, req RegisterNFTRequest) (string, error) {
	var out ReservationResponse
	if err := c.post(ctx, "/api/v1/register-nft", req, http.StatusCreated, &out, false); err != nil {
		return "", err
	}
	return out.RegistrationID, nil
}

// Eligibility checks whether tokenID has been staked long enough.
func (c *Client) Eligibility(ctx context.Context, tokenID uint64, wallet string) (*EligibilityResponse, error) {
	var out EligibilityResponse
	q := url.Values{"tokenId": {strconv.FormatUint(tokenID, 10)}, "wallet": {wallet}}
	if err := c.get(ctx, "/api/v1/eligibility", q, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateInviteCode mints a new code.
func (c *Client) CreateInviteCode(ctx context.Context, req CreateInviteCodeRequest) (*InviteCodeResponse, error) {
	var out InviteCodeResponse
	if err := c.post(ctx, "/api/v1/invite-codes", req, http.StatusCreated, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// InviteCodeStats returns usage details for code.
func (c *Client) InviteCodeStats(ctx context.Context, code string) (*InviteCodeStatsResponse, error) {
	var out InviteCodeStatsResponse
	if err := c.get(ctx, "/api/v1/invite-codes/"+url.PathEscape(code)+"/stats", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "/livez", nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service and its dependencies are ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "/readyz", nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any, auth bool) error {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if auth && c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.do(req, http.StatusOK, out)
}

func (c *Client) post(ctx context.Context, path string, body any, want int, out any, auth bool) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if auth && c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.do(req, want, out)
}

func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != want {
		return parseErrorResponse(resp, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

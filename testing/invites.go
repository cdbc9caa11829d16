package e2etesting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// InviteHelper drives the invite endpoints as an administrator and as an
// anonymous registrant.
type InviteHelper struct {
	Admin  *HTTPClient
	Public *HTTPClient
}

type CreatedInvite struct {
	Token   string `json:"token"`
	MaxUses int    `json:"max_uses"`
}

type ValidateResult struct {
	Valid         bool   `json:"valid"`
	IsMasterToken bool   `json:"is_master_token"`
	Error         string `json:"error"`
}

func NewInviteHelper(client *HTTPClient, adminBearer string) *InviteHelper {
	return &InviteHelper{
		Admin:  client.WithBearer(adminBearer),
		Public: client.WithBearer(""),
	}
}

func (h *InviteHelper) Create(t *testing.T, body map[string]any) CreatedInvite {
	t.Helper()

	resp, err := h.Admin.Post("/invite/create", body)
	require.NoError(t, err)
	resp.AssertStatus(t, 201)

	var created CreatedInvite
	require.NoError(t, resp.GetJSON(&created))
	return created
}

func (h *InviteHelper) Validate(t *testing.T, token string) (*Response, ValidateResult) {
	t.Helper()

	resp, err := h.Public.Post("/invite/validate", map[string]string{"token": token})
	require.NoError(t, err)

	var result ValidateResult
	require.NoError(t, resp.GetJSON(&result), resp.GetString())
	return resp, result
}

func (h *InviteHelper) Disable(t *testing.T, token string) *Response {
	t.Helper()

	resp, err := h.Admin.Post("/invite/disable", map[string]string{"token": token})
	require.NoError(t, err)
	return resp
}

func (h *InviteHelper) Raffle(t *testing.T) string {
	t.Helper()

	resp, err := h.Public.Post("/invite/raffle", nil)
	require.NoError(t, err)
	resp.AssertStatus(t, 200)
	return resp.GetString()
}

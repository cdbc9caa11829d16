// Package invite exposes the invite-token lifecycle over HTTP.
package invite

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/invitegate/services/identity"
	"github.com/tech-arch1tect/invitegate/services/invite"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/zap"
)

type Handler struct {
	service *invite.Service
	logger  *logging.Service
}

func NewHandler(service *invite.Service, logger *logging.Service) *Handler {
	return &Handler{service: service, logger: logger}
}

type CreateRequest struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"RFC 3339 expiry; omit for a token that never expires"`
	MaxUses   int        `json:"max_uses,omitempty" doc:"Capacity; defaults to the configured default"`
	Email     string     `json:"email,omitempty" doc:"Send the new token to this address"`
}

type CreateResponse struct {
	Message   string     `json:"message"`
	Token     string     `json:"token"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type TokenRequest struct {
	Token string `json:"token" example:"6F1C2B3A-0000-4000-8000-000000000001"`
}

type DisableResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type ValidateResponse struct {
	Valid         bool       `json:"valid"`
	IsMasterToken bool       `json:"is_master_token,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Error         string     `json:"error,omitempty"`
	Message       string     `json:"message,omitempty"`
}

type ListResponse struct {
	Tokens []invite.InviteToken `json:"tokens"`
	Total  int64                `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Create issues a new standard token.
// POST /invite/create
func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	token, err := h.service.Create(c.Request().Context(), identity.FromContext(c), invite.CreateRequest{
		ExpiresAt: req.ExpiresAt,
		MaxUses:   req.MaxUses,
		Email:     req.Email,
	})
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusCreated, CreateResponse{
		Message:   "Invite token created",
		Token:     token.Token,
		MaxUses:   token.MaxUses,
		ExpiresAt: token.ExpiresAt,
	})
}

// Disable deactivates a still-eligible token.
// POST /invite/disable
func (h *Handler) Disable(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	token, err := h.service.Disable(c.Request().Context(), identity.FromContext(c), req.Token)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, DisableResponse{
		Message: "Invite token disabled",
		Token:   token.Token,
	})
}

// Validate checks a token and, when it is a standard token, consumes one use.
// POST /invite/validate
func (h *Handler) Validate(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.service.ValidateAndConsume(c.Request().Context(), identity.FromContext(c), req.Token)
	if err != nil {
		return h.handleError(c, err)
	}

	if !result.Eligible {
		status, code := reasonStatus(result.Reason)
		return c.JSON(status, ValidateResponse{
			Valid:   false,
			Error:   code,
			Message: result.Reason.Err().Error(),
		})
	}

	return c.JSON(http.StatusOK, ValidateResponse{
		Valid:         true,
		IsMasterToken: result.IsMaster,
		ExpiresAt:     result.ExpiresAt(),
	})
}

// Raffle returns the current raffle token as plain text, or an empty body when
// this period's token has been claimed.
// POST /invite/raffle
func (h *Handler) Raffle(c echo.Context) error {
	token, err := h.service.Draw(c.Request().Context())
	if err != nil {
		h.logger.Error("raffle draw failed", zap.Error(err))
		return c.String(http.StatusInternalServerError, "")
	}
	return c.String(http.StatusOK, token)
}

// List returns tokens newest first.
// GET /invite/list
func (h *Handler) List(c echo.Context) error {
	filter, err := parseListFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	tokens, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}
	if tokens == nil {
		tokens = []invite.InviteToken{}
	}

	return c.JSON(http.StatusOK, ListResponse{Tokens: tokens, Total: total})
}

// Get returns one token row.
// GET /invite/:token
func (h *Handler) Get(c echo.Context) error {
	token, err := h.service.Get(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

func parseListFilter(c echo.Context) (invite.ListFilter, error) {
	var filter invite.ListFilter

	if raw := c.QueryParam("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("active must be a boolean")
		}
		filter.Active = &active
	}
	if raw := c.QueryParam("raffle"); raw != "" {
		raffle, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("raffle must be a boolean")
		}
		filter.Raffle = &raffle
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}
	return filter, nil
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: message})
}

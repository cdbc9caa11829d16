package invite

import (
	"net/http"

	"github.com/tech-arch1tect/invitegate/openapi"
	"github.com/tech-arch1tect/invitegate/services/invite"
)

const (
	docTag      = "invites"
	docSecurity = "bearerAuth"
)

// Document adds the invite endpoints to the API description.
func Document(api *openapi.OpenAPI) {
	api.Tag(docTag, "Invite token lifecycle")

	api.Document(http.MethodPost, "/invite/create").
		Summary("Create an invite token").
		OperationID("createInvite").
		Tags(docTag).
		Security(docSecurity).
		Body(CreateRequest{}, "Token options").
		Response(http.StatusCreated, CreateResponse{}, "Token created").
		Response(http.StatusBadRequest, ErrorResponse{}, "Invalid expiry or max uses").
		Response(http.StatusUnauthorized, ErrorResponse{}, "Missing or invalid bearer token").
		Response(http.StatusForbidden, ErrorResponse{}, "Caller is not an administrator").
		Build()

	api.Document(http.MethodPost, "/invite/disable").
		Summary("Disable an invite token").
		OperationID("disableInvite").
		Tags(docTag).
		Security(docSecurity).
		Body(TokenRequest{}, "Token to disable").
		Response(http.StatusOK, DisableResponse{}, "Token disabled").
		Response(http.StatusBadRequest, ErrorResponse{}, "Token is already disabled, exhausted or expired").
		Response(http.StatusNotFound, ErrorResponse{}, "Unknown token").
		Build()

	api.Document(http.MethodPost, "/invite/validate").
		Summary("Validate and consume an invite token").
		Description("Standard tokens lose one use on success. Master tokens are never consumed.").
		OperationID("validateInvite").
		Tags(docTag).
		Body(TokenRequest{}, "Candidate token").
		Response(http.StatusOK, ValidateResponse{}, "Token accepted").
		Response(http.StatusBadRequest, ValidateResponse{}, "Malformed token").
		Response(http.StatusNotFound, ValidateResponse{}, "Unknown token").
		Response(http.StatusGone, ValidateResponse{}, "Token expired or used up").
		Response(http.StatusTooManyRequests, ErrorResponse{}, "Rate limited").
		Build()

	api.Document(http.MethodPost, "/invite/raffle").
		Summary("Draw the raffle token").
		Description("Returns the current raffle token, or an empty body once this period's token has been claimed.").
		OperationID("drawRaffle").
		Tags(docTag).
		ResponseText(http.StatusOK, "Raffle token or empty").
		ResponseText(http.StatusInternalServerError, "Empty body").
		Build()

	api.Document(http.MethodGet, "/invite/list").
		Summary("List invite tokens").
		OperationID("listInvites").
		Tags(docTag).
		Security(docSecurity).
		QueryParam("active", "boolean", "Only active or inactive tokens").
		QueryParam("raffle", "boolean", "Only raffle or standard tokens").
		QueryParam("limit", "integer", "Page size").
		QueryParam("offset", "integer", "Rows to skip").
		Response(http.StatusOK, ListResponse{}, "Tokens, newest first").
		Build()

	api.Document(http.MethodGet, "/invite/:token").
		Summary("Get an invite token").
		OperationID("getInvite").
		Tags(docTag).
		Security(docSecurity).
		PathParam("token", "Invite token").
		Response(http.StatusOK, invite.InviteToken{}, "Token row").
		Response(http.StatusNotFound, ErrorResponse{}, "Unknown token").
		Build()
}

package openapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sampleRow struct {
	Token     string     `json:"token" example:"6F1C2B3A-0000-4000-8000-000000000001"`
	Uses      int        `json:"uses" doc:"Times consumed"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	secret    string
}

type sampleList struct {
	Rows  []sampleRow `json:"rows"`
	Total int64       `json:"total"`
}

type sampleRequest struct {
	Token string `json:"token"`
}

func newSampleDoc() *OpenAPI {
	doc := New("Invites", "1.0.0").
		Description("Invite tokens").
		Server("http://localhost:8080", "local").
		Tag("invites", "Invite lifecycle").
		BearerAuth("bearerAuth", "Admin JWT")

	doc.Document(http.MethodGet, "/rows/:token").
		Summary("Get a row").
		Tags("invites").
		Security("bearerAuth").
		Response(http.StatusOK, sampleRow{}, "Row").
		Response(http.StatusNotFound, nil, "Missing").
		Build()

	doc.Document(http.MethodGet, "/rows").
		QueryParam("active", "boolean", "Filter by state").
		Response(http.StatusOK, sampleList{}, "Rows").
		Build()

	doc.Document(http.MethodPost, "/draw").
		ResponseText(http.StatusOK, "Token or empty body").
		Build()

	doc.Document(http.MethodPost, "/disable").
		Body(sampleRequest{}, "Token to disable").
		Build()

	return doc
}

func TestOpenAPI_Document(t *testing.T) {
	doc := newSampleDoc()
	spec := doc.Spec()

	t.Run("path params are converted and extracted", func(t *testing.T) {
		item := spec.Paths.Find("/rows/{token}")
		require.NotNil(t, item)
		require.NotNil(t, item.Get)
		require.Len(t, item.Get.Parameters, 1)
		assert.Equal(t, "token", item.Get.Parameters[0].Value.Name)
		assert.True(t, item.Get.Parameters[0].Value.Required)
		require.NotNil(t, item.Get.Security)
	})

	t.Run("named structs become components", func(t *testing.T) {
		row, ok := spec.Components.Schemas["sampleRow"]
		require.True(t, ok)
		assert.Contains(t, row.Value.Properties, "token")
		assert.NotContains(t, row.Value.Properties, "secret")
		assert.ElementsMatch(t, []string{"token", "uses", "active"}, row.Value.Required)
		assert.Equal(t, "Times consumed", row.Value.Properties["uses"].Value.Description)
		assert.True(t, row.Value.Properties["expires_at"].Value.Nullable)
		assert.Equal(t, "date-time", row.Value.Properties["expires_at"].Value.Format)
	})

	t.Run("query params carry their type", func(t *testing.T) {
		op := spec.Paths.Find("/rows").Get
		require.Len(t, op.Parameters, 1)
		assert.Equal(t, "query", op.Parameters[0].Value.In)
		assert.True(t, op.Parameters[0].Value.Schema.Value.Type.Is("boolean"))
	})

	t.Run("text responses", func(t *testing.T) {
		op := spec.Paths.Find("/draw").Post
		response := op.Responses.Value("200")
		require.NotNil(t, response)
		assert.Contains(t, response.Value.Content, "text/plain")
	})

	t.Run("build adds a default response", func(t *testing.T) {
		op := spec.Paths.Find("/disable").Post
		assert.NotNil(t, op.Responses.Value("200"))
		assert.True(t, op.RequestBody.Value.Required)
	})

	t.Run("document validates", func(t *testing.T) {
		assert.NoError(t, doc.Validate())
	})
}

func TestOpenAPI_Handlers(t *testing.T) {
	doc := newSampleDoc()
	e := echo.New()
	doc.Register(e)

	t.Run("json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "3.0.3", body["openapi"])
	})

	t.Run("yaml", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/yaml", rec.Header().Get(echo.HeaderContentType))
		var body map[string]any
		require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["paths"], "/rows/{token}")
	})
}

func TestEchoPathToOpenAPI(t *testing.T) {
	assert.Equal(t, "/invite/{token}", echoPathToOpenAPI("/invite/:token"))
	assert.Equal(t, "/invite/list", echoPathToOpenAPI("/invite/list"))
}

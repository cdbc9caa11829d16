package audit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/invite/validate", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	req.Header.Set("User-Agent", chromeUA)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Client
	var ok bool
	handler := ClientMiddleware()(func(c echo.Context) error {
		got, ok = ClientFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	require.True(t, ok)
	assert.Equal(t, "203.0.113.7", got.IP)
	assert.Equal(t, chromeUA, got.UserAgent)
}

package invite

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	jwtmw "github.com/tech-arch1tect/invitegate/middleware/jwt"
	"github.com/tech-arch1tect/invitegate/services/audit"
	"github.com/tech-arch1tect/invitegate/services/jwt"
)

// RegisterRoutes mounts the invite endpoints. limiter guards the public
// validate and raffle endpoints; pass nil to leave them unthrottled.
func RegisterRoutes(e *echo.Echo, h *Handler, jwtService *jwt.Service, limiter echo.MiddlewareFunc) {
	g := e.Group("/invite", audit.ClientMiddleware())

	public := []echo.MiddlewareFunc{}
	if limiter != nil {
		public = append(public, limiter)
	}

	g.POST("/validate", h.Validate, append(public, jwtmw.OptionalJWT(jwtService))...)
	g.POST("/raffle", h.Raffle, append([]echo.MiddlewareFunc{emptyBodyErrors}, public...)...)

	admin := g.Group("", jwtmw.RequireJWT(jwtService), jwtmw.RequireAdmin())
	admin.POST("/create", h.Create)
	admin.POST("/disable", h.Disable)
	admin.GET("/list", h.List)
	admin.GET("/:token", h.Get)
}

// emptyBodyErrors answers any error from the chain below it with its status and an
// empty plain-text body, so throttled raffle draws look like failed ones.
func emptyBodyErrors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil || c.Response().Committed {
			return err
		}

		status := http.StatusInternalServerError
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
		}
		return c.String(status, "")
	}
}

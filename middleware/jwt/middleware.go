package jwt

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/invitegate/services/identity"
	"github.com/tech-arch1tect/invitegate/services/jwt"
)

const ClaimsKey = "_jwt_claims"

func RequireJWT(jwtService *jwt.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}

			claims, err := authenticate(jwtService, authHeader)
			if err != nil {
				return err
			}

			setClaims(c, claims)
			return next(c)
		}
	}
}

// OptionalJWT attaches the caller's identity when a valid bearer token is present
// and lets anonymous requests through. A token that is present but invalid is
// still rejected.
func OptionalJWT(jwtService *jwt.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			claims, err := authenticate(jwtService, authHeader)
			if err != nil {
				return err
			}

			setClaims(c, claims)
			return next(c)
		}
	}
}

// RequireAdmin must run after RequireJWT.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := identity.FromContext(c)
			if actor == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if !actor.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Administrator access required")
			}
			return next(c)
		}
	}
}

func authenticate(jwtService *jwt.Service, authHeader string) (*jwt.Claims, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "JWT token required")
	}

	claims, err := jwtService.ValidateToken(tokenString)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "JWT token has expired")
		case errors.Is(err, jwt.ErrMalformedToken):
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Malformed JWT token")
		case errors.Is(err, jwt.ErrInvalidSignature):
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid JWT token signature")
		default:
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid JWT token")
		}
	}
	return claims, nil
}

func setClaims(c echo.Context, claims *jwt.Claims) {
	c.Set(ClaimsKey, claims)
	identity.SetActor(c, claims.Actor())
}

func GetClaims(c echo.Context) *jwt.Claims {
	if claims, ok := c.Get(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}

package audit

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/mileusna/useragent"
)

type clientKey struct{}

// Client describes the HTTP caller behind an audited action.
type Client struct {
	IP        string
	UserAgent string
}

func WithClient(ctx context.Context, client Client) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

func ClientFromContext(ctx context.Context) (Client, bool) {
	client, ok := ctx.Value(clientKey{}).(Client)
	return client, ok
}

// ClientMiddleware stores the caller's address and user agent on the request context
// so audit events emitted further down carry them.
func ClientMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := WithClient(req.Context(), Client{
				IP:        c.RealIP(),
				UserAgent: req.UserAgent(),
			})
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func (c Client) metadata() map[string]any {
	info := map[string]any{
		"ip": c.IP,
	}
	if c.UserAgent == "" {
		info["browser"] = "Unknown Browser"
		info["os"] = "Unknown OS"
		info["device_type"] = "Unknown"
		return info
	}

	ua := useragent.Parse(c.UserAgent)

	browser := "Unknown Browser"
	if ua.Name != "" {
		browser = ua.Name
		if ua.Version != "" {
			browser += " " + ua.Version
		}
	}

	os := "Unknown OS"
	if ua.OS != "" {
		os = ua.OS
		if ua.OSVersion != "" {
			os += " " + ua.OSVersion
		}
	}

	deviceType := "Desktop"
	switch {
	case ua.Mobile:
		deviceType = "Mobile"
	case ua.Tablet:
		deviceType = "Tablet"
	case ua.Bot:
		deviceType = "Bot"
	}

	info["browser"] = browser
	info["os"] = os
	info["device_type"] = deviceType
	return info
}

// Package identity carries the already-authenticated caller through a request.
// It performs no authentication itself.
package identity

import (
	"github.com/labstack/echo/v4"
)

const actorKey = "_identity_actor"

type Actor struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

func SetActor(c echo.Context, actor *Actor) {
	c.Set(actorKey, actor)
}

// FromContext returns nil for anonymous callers.
func FromContext(c echo.Context) *Actor {
	if actor, ok := c.Get(actorKey).(*Actor); ok {
		return actor
	}
	return nil
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Admin
}

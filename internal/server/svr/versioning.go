package svr

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/dashsync/internal/pkg/middlewares"
)

// API serves the dashboard host endpoints.
type API struct {
	fiber.Router
}

// Meta serves the service's own endpoints: health and build info.
type Meta struct {
	fiber.Router
}

func CreateEndpointGroups(app *fiber.App) (*API, *Meta) {
	// every endpoint answers in JSON; an empty Accept header is fine
	api := app.Group("/api", middlewares.AcceptsJSON)
	meta := app.Group("/api/_")

	return &API{Router: api}, &Meta{Router: meta}
}

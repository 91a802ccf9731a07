package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires all route groups.
func InstallRouter(app *fiber.App) {
	for _, r := range []Router{
		NewApiRouter(),
		NewWebhookRouter(),
	} {
		r.InstallRouter(app)
	}
}

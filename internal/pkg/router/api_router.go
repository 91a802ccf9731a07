package router

import (
	"time"

	"github.com/HendrikVoss/ChimpRelay/app/controllers"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Storage: redis.New(redis.Config{
			Host: env.GetEnv("CACHE_HOST", "localhost"),
			Port: env.GetEnvInt("CACHE_PORT", 6379),
		}),
	}))

	stripe := api.Group("/stripe")
	stripe.Post("/create", controllers.HandleStripeAccountCreate)
	stripe.Post("/account/mailchimp", controllers.HandleStripeAccountMailchimpCheck)

	oauth := api.Group("/oauth/mailchimp")
	oauth.Post("/start", controllers.HandleMailchimpOAuthStart)
	oauth.Get("/callback", controllers.HandleMailchimpOAuthCallback)

	mailchimp := api.Group("/mailchimp")
	mailchimp.Post("/user/audiences", controllers.HandleMailchimpAudiences)
	mailchimp.Put("/user/audience/select", controllers.HandleMailchimpAudienceSelect)
	mailchimp.Post("/user/audience/selected", controllers.HandleMailchimpAudienceSelected)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

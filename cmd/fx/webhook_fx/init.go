package webhook_fx

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"fiesta/internal/api/controllers"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/services"
)

var Module = fx.Provide(
	provideWebhookService, provideWebhookController,
)

func provideWebhookService(
	gateway payments.Gateway,
	marketplace platform.Client,
	logger *zap.SugaredLogger,
) services.WebhookServiceInterface {
	return services.NewWebhookService(gateway, marketplace, os.Getenv("STRIPE_WEBHOOK_SECRET"), logger)
}

func provideWebhookController(webhookService services.WebhookServiceInterface) *controllers.WebhookController {
	return controllers.NewWebhookController(webhookService)
}

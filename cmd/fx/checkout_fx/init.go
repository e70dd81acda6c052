package checkout_fx

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"fiesta/internal/api/controllers"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/services"
	"fiesta/pkg/utils"
)

var Module = fx.Provide(
	provideCheckoutService, provideCheckoutController,
)

func provideCheckoutService(
	gateway payments.Gateway,
	marketplace platform.Client,
	signer *utils.TokenSigner,
	logger *zap.SugaredLogger,
) services.CheckoutServiceInterface {
	alias := os.Getenv("PURCHASE_PROCESS_ALIAS")
	if alias == "" {
		alias = "party-rental-purchase/release-1"
	}
	return services.NewCheckoutService(gateway, marketplace, signer, alias, logger)
}

func provideCheckoutController(checkoutService services.CheckoutServiceInterface) *controllers.CheckoutController {
	return controllers.NewCheckoutController(checkoutService)
}

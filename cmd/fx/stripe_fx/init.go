package stripe_fx

import (
	"os"
	"strconv"

	"go.uber.org/fx"

	"fiesta/internal/payments"
	"fiesta/pkg/utils"
)

var Module = fx.Provide(
	provideGateway, provideSigner,
)

func provideGateway() payments.Gateway {
	retries, _ := strconv.ParseInt(os.Getenv("STRIPE_MAX_NETWORK_RETRIES"), 10, 64)
	if retries == 0 {
		retries = 2
	}
	return payments.NewStripeGateway(payments.StripeConfig{
		SecretKey:         os.Getenv("STRIPE_SECRET_KEY"),
		MaxNetworkRetries: retries,
	})
}

func provideSigner() *utils.TokenSigner {
	return utils.NewTokenSigner([]byte(os.Getenv("INTENT_SIGNING_SECRET")))
}

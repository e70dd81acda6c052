package deposit_fx

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"fiesta/internal/api/controllers"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/repositories"
	"fiesta/internal/services"
	"fiesta/pkg/utils"
)

var Module = fx.Provide(
	provideClock, provideDepositService, provideDepositController,
)

func provideClock() utils.Clock {
	if url := os.Getenv("TIME_API_URL"); url != "" {
		return utils.NewTrustedClock(url)
	}
	return utils.SystemClock{}
}

func provideDepositService(
	gateway payments.Gateway,
	marketplace platform.Client,
	holds repositories.SecurityPaymentRepositoryInterface,
	payouts repositories.SecurityPayoutRepositoryInterface,
	signer *utils.TokenSigner,
	clock utils.Clock,
	logger *zap.SugaredLogger,
) services.DepositServiceInterface {
	return services.NewDepositService(gateway, marketplace, holds, payouts, signer, clock, logger)
}

func provideDepositController(depositService services.DepositServiceInterface) *controllers.DepositController {
	return controllers.NewDepositController(depositService)
}

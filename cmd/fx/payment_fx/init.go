package payment_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fiesta/internal/api/controllers"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/repositories"
	"fiesta/internal/services"
	"fiesta/pkg/utils"
)

var Module = fx.Provide(
	provideHoldsRepository, providePayoutsRepository,
	providePaymentIntentService, providePaymentController,
)

func provideHoldsRepository(db *gorm.DB) repositories.SecurityPaymentRepositoryInterface {
	return repositories.NewSecurityPaymentRepository(db)
}

func providePayoutsRepository(db *gorm.DB) repositories.SecurityPayoutRepositoryInterface {
	return repositories.NewSecurityPayoutRepository(db)
}

func providePaymentIntentService(
	gateway payments.Gateway,
	marketplace platform.Client,
	holds repositories.SecurityPaymentRepositoryInterface,
	payouts repositories.SecurityPayoutRepositoryInterface,
	signer *utils.TokenSigner,
	logger *zap.SugaredLogger,
) services.PaymentIntentServiceInterface {
	return services.NewPaymentIntentService(gateway, marketplace, holds, payouts, signer, logger)
}

func providePaymentController(paymentService services.PaymentIntentServiceInterface) *controllers.PaymentController {
	return controllers.NewPaymentController(paymentService)
}

package transfer_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fiesta/internal/api/controllers"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/repositories"
	"fiesta/internal/services"
)

var Module = fx.Provide(
	provideLedgerRepository, provideTransferService, provideTransferController,
)

func provideLedgerRepository(db *gorm.DB) repositories.LedgerRepositoryInterface {
	return repositories.NewLedgerRepository(db)
}

func provideTransferService(
	gateway payments.Gateway,
	marketplace platform.Client,
	ledger repositories.LedgerRepositoryInterface,
	metrics *services.Metrics,
	logger *zap.SugaredLogger,
) services.TransferServiceInterface {
	return services.NewTransferService(gateway, marketplace, ledger, metrics, logger)
}

func provideTransferController(transferService services.TransferServiceInterface) *controllers.TransferController {
	return controllers.NewTransferController(transferService)
}

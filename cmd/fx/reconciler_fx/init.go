package reconciler_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fiesta/internal/infra"
	"fiesta/internal/platform"
	"fiesta/internal/repositories"
	"fiesta/internal/services"
)

var Module = fx.Options(
	fx.Provide(provideSequenceRepository, provideReconcilerService),
	fx.Invoke(registerReconciler),
)

func provideSequenceRepository(db *gorm.DB) repositories.SequenceRepositoryInterface {
	return repositories.NewSequenceRepository(db)
}

func provideReconcilerService(
	marketplace platform.Client,
	ledger repositories.LedgerRepositoryInterface,
	sequences repositories.SequenceRepositoryInterface,
	transfers services.TransferServiceInterface,
	lock infra.RunLock,
	metrics *services.Metrics,
	logger *zap.SugaredLogger,
) services.ReconcilerServiceInterface {
	return services.NewReconcilerService(marketplace, ledger, sequences, transfers, lock, metrics, logger)
}

func registerReconciler(lc fx.Lifecycle, reconciler services.ReconcilerServiceInterface) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			reconciler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			reconciler.Stop()
			return nil
		},
	})
}

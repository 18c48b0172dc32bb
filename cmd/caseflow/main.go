package main

import (
	"context"
	"log/slog"
	"os"

	"caseflow/config"
	"caseflow/internal/delivery"
	deliveryhttp "caseflow/internal/delivery/http"
	"caseflow/internal/delivery/http/middleware"
	"caseflow/internal/delivery/http/router/handler"
	"caseflow/internal/delivery/worker"
	workerhandler "caseflow/internal/delivery/worker/handler"
	"caseflow/internal/domain/repository"
	"caseflow/internal/domain/service"
	"caseflow/internal/infra/auth"
	logs "caseflow/internal/infra/log"
	"caseflow/internal/infra/manufacturer"
	"caseflow/internal/infra/notification"
	"caseflow/internal/infra/persistence/memory"
	"caseflow/internal/infra/persistence/model"
	"caseflow/internal/infra/persistence/postgres"
	"caseflow/internal/infra/translation"
	"caseflow/internal/usecase"
	"caseflow/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			ensureAdmin,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

// newTransactionManager picks the persistence backend: PostgreSQL when a
// connection is configured, the in-memory store otherwise. The in-memory
// store keeps single-node deployments and local development free of a
// database while preserving the same transactional contract.
func newTransactionManager(params postgres.Params) (repository.TransactionManager, error) {
	if params.Config.Postgres == nil {
		params.Logger.Info("No database configured, using in-memory store")

		return memory.NewTransactionManager(memory.NewStore()), nil
	}

	db, err := postgres.New(params)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.UserModel{},
		&model.CaseModel{},
		&model.VerificationCodeModel{},
		&model.SessionModel{},
	); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	return postgres.NewTransactionManager(db), nil
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			service.NewSystemClock,
			auth.NewBcryptHasher,
			auth.NewJWTService,
			notification.NewNotifier,
			translation.NewTranslator,
			manufacturer.NewGateway,
			impl.NewApprovalGate,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewCaseService,
			impl.NewReminderService,
			impl.NewVerificationService,
			impl.NewSessionService,
			impl.NewAuthService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewCaseHandler,
			handler.NewAdminHandler,
			workerhandler.NewScanHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				deliveryhttp.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// ensureAdmin provisions the configured admin identity before the servers
// accept traffic.
func ensureAdmin(ctx context.Context, uc usecase.AuthUsecase) error {
	return uc.EnsureAdmin(ctx)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}

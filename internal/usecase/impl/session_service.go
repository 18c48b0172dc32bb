package impl

import (
	"context"
	"log/slog"

	"caseflow/config"
	deliverycontext "caseflow/internal/delivery/context"
	"caseflow/internal/domain/entity"
	"caseflow/internal/domain/repository"
	"caseflow/internal/domain/service"
	"caseflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager repository.TransactionManager
	clock     service.Clock
	cfg       *config.Config
	logger    *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Clock     service.Clock
	Config    *config.Config
	Logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		txManager: params.TxManager,
		clock:     params.Clock,
		cfg:       params.Config,
		logger:    params.Logger,
	}
}

// Start records a fresh authenticated session for the user. Any existing
// session is superseded, which also resets the timeout window.
func (srv *sessionService) Start(ctx context.Context, userID uuid.UUID, isAdmin bool) (*entity.Session, error) {
	session := &entity.Session{
		UserID:        userID,
		Authenticated: true,
		IsAdmin:       isAdmin,
		CreatedAt:     srv.clock.Now(),
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return errors.Wrap(repoFactory.SessionRepo().Save(ctx, session), "failed to save session")
	})
	if err != nil {
		return nil, err
	}

	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Info("Session started",
		slog.Any("user_id", userID), slog.Bool("is_admin", isAdmin))

	return session, nil
}

// Validate reports whether the user currently holds a live session. The
// timeout is enforced here, lazily: an expired session is deleted on sight
// and reported the same way as a missing one.
func (srv *sessionService) Validate(ctx context.Context, userID uuid.UUID) (*entity.Session, bool, error) {
	var (
		session *entity.Session
		valid   bool
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		found, err := sessionRepo.Find(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to find session")
		}

		if !found.Authenticated {
			return nil
		}
		if found.ExpiredAt(srv.clock.Now(), srv.cfg.Workflow.SessionTimeout()) {
			// Clear on sight so the stale record cannot linger.
			return errors.Wrap(sessionRepo.Delete(ctx, userID), "failed to clear expired session")
		}

		session = found
		valid = true

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return session, valid, nil
}

// End clears the user's session. Ending an absent session is a no-op.
func (srv *sessionService) End(ctx context.Context, userID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return errors.Wrap(repoFactory.SessionRepo().Delete(ctx, userID), "failed to delete session")
	})
	if err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Info("Session ended", slog.Any("user_id", userID))

	return nil
}

package impl

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"caseflow/config"
	deliverycontext "caseflow/internal/delivery/context"
	"caseflow/internal/domain/entity"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/repository"
	"caseflow/internal/domain/service"
	"caseflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const codeDigits = 6

// verificationService implements the VerificationUsecase interface.
type verificationService struct {
	txManager repository.TransactionManager
	notifier  service.Notifier
	clock     service.Clock
	cfg       *config.Config
	logger    *slog.Logger
}

// VerificationServiceParams holds dependencies for verificationService,
// injected by Fx.
type VerificationServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Notifier  service.Notifier
	Clock     service.Clock
	Config    *config.Config
	Logger    *slog.Logger
}

// NewVerificationService is the constructor for verificationService.
func NewVerificationService(params VerificationServiceParams) usecase.VerificationUsecase {
	return &verificationService{
		txManager: params.TxManager,
		notifier:  params.Notifier,
		clock:     params.Clock,
		cfg:       params.Config,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *verificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Issue generates a fresh code for (user, purpose), superseding any prior
// one, and emails it to the user.
func (srv *verificationService) Issue(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) (string, error) {
	if !purpose.IsValid() {
		return "", domainerrors.ErrValidation.WithDetails("unknown code purpose: " + purpose.String())
	}

	code, err := generateCode()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate verification code")
	}

	var recipient string
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound.WithDetails("user " + userID.String())
			}

			return errors.Wrap(err, "failed to find user")
		}
		recipient = user.Email

		now := srv.clock.Now()
		record := &entity.VerificationCode{
			UserID:    userID,
			Purpose:   purpose,
			Code:      code,
			CreatedAt: now,
			ExpiresAt: now.Add(srv.cfg.Workflow.CodeExpiry()),
		}

		// Save replaces any existing record for the key: the prior code,
		// expired or not, can never validate again.
		return errors.Wrap(repoFactory.VerificationRepo().Save(ctx, record), "failed to save verification code")
	})
	if err != nil {
		srv.log(ctx).Error("Failed to issue verification code",
			slog.Any("error", err), slog.Any("user_id", userID))

		return "", err
	}

	srv.log(ctx).Info("Verification code issued",
		slog.Any("user_id", userID), slog.String("purpose", purpose.String()))

	sendErr := srv.notifier.Send(ctx, &service.Notification{
		Recipient: recipient,
		Kind:      service.KindVerificationCode,
		Payload: map[string]string{
			"code":           code,
			"expiry_minutes": fmt.Sprintf("%d", srv.cfg.Workflow.CodeExpiryMinutes),
		},
	})
	if sendErr != nil {
		// The code stays valid; the user can request a resend.
		srv.log(ctx).Error("Verification code email failed",
			slog.Any("error", sendErr), slog.Any("user_id", userID))
	}

	return code, nil
}

// Verify checks a submitted code and consumes it on success. The read-check-
// write runs as one transaction, so a code validates exactly once even under
// concurrent submissions.
func (srv *verificationService) Verify(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose, submitted string) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		verificationRepo := repoFactory.VerificationRepo()

		record, err := verificationRepo.Find(ctx, userID, purpose)
		if err != nil {
			if errors.Is(err, repository.ErrCodeNotFound) {
				return domainerrors.ErrNoActiveCode
			}

			return errors.Wrap(err, "failed to find verification code")
		}
		if record.Consumed {
			return domainerrors.ErrNoActiveCode
		}
		if srv.clock.Now().After(record.ExpiresAt) {
			return domainerrors.ErrCodeExpired
		}
		if record.Code != submitted {
			return domainerrors.ErrCodeMismatch
		}

		record.Consumed = true

		return errors.Wrap(verificationRepo.Save(ctx, record), "failed to consume verification code")
	})
	if err != nil {
		srv.log(ctx).Warn("Verification failed",
			slog.Any("error", err),
			slog.Any("user_id", userID),
			slog.String("purpose", purpose.String()))

		return err
	}

	srv.log(ctx).Info("Verification succeeded",
		slog.Any("user_id", userID), slog.String("purpose", purpose.String()))

	return nil
}

// Resend is equivalent to Issue: it explicitly invalidates any unexpired
// prior code so a stale code cannot validate after the resend.
func (srv *verificationService) Resend(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) (string, error) {
	return srv.Issue(ctx, userID, purpose)
}

// generateCode returns a uniformly random 6-digit numeric string,
// zero-padded.
func generateCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

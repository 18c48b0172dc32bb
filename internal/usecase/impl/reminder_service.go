package impl

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"caseflow/config"
	deliverycontext "caseflow/internal/delivery/context"
	"caseflow/internal/domain/businesshours"
	"caseflow/internal/domain/entity"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/repository"
	"caseflow/internal/domain/service"
	"caseflow/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// reminderService implements the ReminderUsecase interface. Flag-then-notify
// policy: the reminder_sent flag is flipped before dispatch; a failed
// dispatch is logged for manual reconciliation and never unsets the flag,
// keeping dispatch at-most-once.
type reminderService struct {
	txManager repository.TransactionManager
	cases     usecase.CaseUsecase
	gateway   service.ManufacturerGateway
	notifier  service.Notifier
	threshold float64
	cfg       *config.Config
	logger    *slog.Logger
}

// ReminderServiceParams holds dependencies for reminderService, injected by Fx.
type ReminderServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Cases     usecase.CaseUsecase
	Gateway   service.ManufacturerGateway
	Notifier  service.Notifier
	Config    *config.Config
	Logger    *slog.Logger
}

// NewReminderService is the constructor for reminderService.
func NewReminderService(params ReminderServiceParams) usecase.ReminderUsecase {
	threshold := float64(24)
	if params.Config != nil && params.Config.Workflow != nil {
		threshold = params.Config.Workflow.ReminderThresholdHours
	}

	return &reminderService{
		txManager: params.TxManager,
		cases:     params.Cases,
		gateway:   params.Gateway,
		notifier:  params.Notifier,
		threshold: threshold,
		cfg:       params.Config,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *reminderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Scan finds overdue cases and dispatches at most one reminder per case.
func (srv *reminderService) Scan(ctx context.Context, now time.Time) ([]*entity.Case, error) {
	candidates, err := srv.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	var reminded []*entity.Case
	for _, c := range candidates {
		if c.ForwardedAt == nil {
			continue
		}
		elapsed := businesshours.Elapsed(*c.ForwardedAt, now)
		if elapsed <= srv.threshold {
			continue
		}

		updated, err := srv.cases.MarkReminderSent(ctx, c.ID)
		if err != nil {
			var appErr domainerrors.AppError
			if errors.As(err, &appErr) && appErr.ErrorCode() == domainerrors.ErrAlreadyReminded.ErrorCode() {
				// A concurrent scan won the flag flip; dispatch is theirs.
				srv.log(ctx).Debug("Reminder already handled", slog.Any("case_id", c.ID))

				continue
			}
			// One case's failure must not abort the batch.
			srv.log(ctx).Error("Failed to mark reminder sent",
				slog.Any("error", err), slog.Any("case_id", c.ID))

			continue
		}

		srv.log(ctx).Info("Case overdue, sending reminder",
			slog.Any("case_id", updated.ID),
			slog.String("task_number", updated.TaskNumber),
			slog.Float64("elapsed_business_hours", elapsed))

		srv.dispatch(ctx, updated)
		reminded = append(reminded, updated)
	}

	return reminded, nil
}

func (srv *reminderService) loadCandidates(ctx context.Context) ([]*entity.Case, error) {
	var candidates []*entity.Case
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		candidates, err = repoFactory.CaseRepo().ListAwaitingReply(ctx)

		return errors.Wrap(err, "failed to list awaiting-reply cases")
	})
	if err != nil {
		srv.log(ctx).Error("Reminder scan failed to load candidates", slog.Any("error", err))

		return nil, err
	}

	return candidates, nil
}

// dispatch sends the reminder through the gateway and the notification
// channel. Failures are logged with the case ID for reconciliation; the
// flag stays flipped either way.
func (srv *reminderService) dispatch(ctx context.Context, c *entity.Case) {
	if err := srv.gateway.SendReminder(ctx, c.ManufacturerID, c.TaskNumber); err != nil {
		srv.log(ctx).Error("Manufacturer reminder failed, flag retained",
			slog.Any("error", err),
			slog.Any("case_id", c.ID),
			slog.String("task_number", c.TaskNumber))
	}

	recipient := srv.manufacturerEmail(c.ManufacturerID)
	if recipient == "" {
		return
	}
	err := srv.notifier.Send(ctx, &service.Notification{
		Recipient: recipient,
		Kind:      service.KindReminder,
		Payload: map[string]string{
			"case_id":         c.ID.String(),
			"task_number":     c.TaskNumber,
			"threshold_hours": strconv.FormatFloat(srv.threshold, 'f', -1, 64),
		},
	})
	if err != nil {
		srv.log(ctx).Error("Reminder notification failed, flag retained",
			slog.Any("error", err),
			slog.Any("case_id", c.ID))
	}
}

func (srv *reminderService) manufacturerEmail(manufacturerID string) string {
	if srv.cfg == nil {
		return ""
	}

	return srv.cfg.Manufacturers[manufacturerID].Email
}

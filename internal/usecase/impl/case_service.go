// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

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

// caseService implements the CaseUsecase interface.
type caseService struct {
	txManager  repository.TransactionManager
	gate       service.ApprovalGate
	translator service.Translator
	gateway    service.ManufacturerGateway
	notifier   service.Notifier
	clock      service.Clock
	cfg        *config.Config
	logger     *slog.Logger
}

// CaseServiceParams holds dependencies for caseService, injected by Fx.
type CaseServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	Gate       service.ApprovalGate
	Translator service.Translator
	Gateway    service.ManufacturerGateway
	Notifier   service.Notifier
	Clock      service.Clock
	Config     *config.Config
	Logger     *slog.Logger
}

// NewCaseService is the constructor for caseService. It receives all
// dependencies as interfaces.
func NewCaseService(params CaseServiceParams) usecase.CaseUsecase {
	return &caseService{
		txManager:  params.TxManager,
		gate:       params.Gate,
		translator: params.Translator,
		gateway:    params.Gateway,
		notifier:   params.Notifier,
		clock:      params.Clock,
		cfg:        params.Config,
		logger:     params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *caseService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// transition moves the case to its immediate successor state or fails with
// InvalidTransition. It never mutates the case on failure.
func transition(c *entity.Case, to entity.CaseStatus) error {
	if !c.Status.CanTransitionTo(to) {
		return domainerrors.NewInvalidTransition(c.Status.String(), to.String())
	}
	c.Status = to

	return nil
}

// Submit validates the input, translates the query when the provider is up,
// and creates the case in submitted state.
func (srv *caseService) Submit(ctx context.Context, input *usecase.SubmitCaseInput) (*entity.Case, error) {
	if err := srv.validateSubmit(input); err != nil {
		return nil, err
	}

	lang := input.Language
	if lang == "" {
		detected, err := srv.translator.DetectLanguage(ctx, input.Query)
		if err != nil {
			// Detection outage falls back to English so submission never
			// blocks on the provider.
			srv.log(ctx).Warn("Language detection unavailable, assuming English",
				slog.Any("error", err))
			detected = service.EnglishLang
		}
		lang = detected
	}

	translated, err := srv.translator.Translate(ctx, input.Query, lang, service.EnglishLang)
	if err != nil {
		// The case proceeds with the original text; an empty
		// translated_query flags it for retry.
		srv.log(ctx).Warn("Translation unavailable, storing query untranslated",
			slog.Any("error", err), slog.String("language", lang))
		translated = ""
	}

	newCase := &entity.Case{
		ID:              uuid.New(),
		OwnerID:         input.OwnerID,
		OriginalQuery:   input.Query,
		Language:        lang,
		ManufacturerID:  input.ManufacturerID,
		TranslatedQuery: translated,
		Status:          entity.CaseStatusSubmitted,
		SubmittedAt:     srv.clock.Now(),
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.CaseRepo().Create(ctx, newCase)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create case", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create case")
	}

	srv.log(ctx).Info("Case submitted",
		slog.Any("case_id", newCase.ID),
		slog.String("language", lang),
		slog.String("manufacturer_id", input.ManufacturerID))

	return newCase, nil
}

func (srv *caseService) validateSubmit(input *usecase.SubmitCaseInput) error {
	if input == nil || strings.TrimSpace(input.Query) == "" {
		return domainerrors.ErrValidation.WithDetails("query must not be empty")
	}
	if input.OwnerID == uuid.Nil {
		return domainerrors.ErrValidation.WithDetails("owner is required")
	}
	if _, ok := srv.cfg.Manufacturers[input.ManufacturerID]; !ok {
		return domainerrors.ErrValidation.WithDetails("unknown manufacturer: " + input.ManufacturerID)
	}
	if input.Language != "" && !srv.languageSupported(input.Language) {
		return domainerrors.ErrValidation.WithDetails("unsupported language: " + input.Language)
	}

	return nil
}

// manufacturerName resolves the catalog display name, falling back to the ID.
func (srv *caseService) manufacturerName(manufacturerID string) string {
	if m, ok := srv.cfg.Manufacturers[manufacturerID]; ok && m.Name != "" {
		return m.Name
	}

	return manufacturerID
}

func (srv *caseService) languageSupported(lang string) bool {
	if srv.cfg.Translation == nil || len(srv.cfg.Translation.SupportedLanguages) == 0 {
		return true
	}
	_, ok := srv.cfg.Translation.SupportedLanguages[lang]

	return ok
}

// Forward submits the case to its manufacturer and records the issued task
// number. The external call happens between two transactions: the first
// verifies the precondition, the second re-checks it and persists, so a
// concurrent forward loses on the status check rather than double-writing.
func (srv *caseService) Forward(ctx context.Context, caseID uuid.UUID) (*entity.Case, error) {
	var description, manufacturerID string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		c, err := findCase(ctx, repoFactory.CaseRepo(), caseID)
		if err != nil {
			return err
		}
		if c.Status != entity.CaseStatusSubmitted {
			return domainerrors.NewInvalidTransition(c.Status.String(), entity.CaseStatusAwaitingReply.String())
		}
		description = c.TranslatedQuery
		if description == "" {
			description = c.OriginalQuery
		}
		manufacturerID = c.ManufacturerID

		return nil
	})
	if err != nil {
		return nil, err
	}

	taskNumber, err := srv.gateway.SubmitCase(ctx, manufacturerID, description)
	if err != nil {
		// The case stays submitted until the gateway recovers.
		srv.log(ctx).Warn("Manufacturer submission failed, case held for retry",
			slog.Any("error", err), slog.Any("case_id", caseID))

		return nil, domainerrors.ErrManufacturerUnavailable.WrapMessage("submit case to manufacturer")
	}

	var forwarded *entity.Case
	var ownerEmail string
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		caseRepo := repoFactory.CaseRepo()

		c, err := findCase(ctx, caseRepo, caseID)
		if err != nil {
			return err
		}
		if err := transition(c, entity.CaseStatusAwaitingReply); err != nil {
			return err
		}

		// Task numbers are unique across all cases once assigned.
		existing, err := caseRepo.FindByTaskNumber(ctx, taskNumber)
		if err != nil && !errors.Is(err, repository.ErrCaseNotFound) {
			return errors.Wrap(err, "failed to check task number uniqueness")
		}
		if existing != nil && existing.ID != c.ID {
			return domainerrors.ErrDuplicateTaskNumber.WithDetails("task number " + taskNumber)
		}

		now := srv.clock.Now()
		c.TaskNumber = taskNumber
		c.ForwardedAt = &now
		if err := caseRepo.Update(ctx, c); err != nil {
			return errors.Wrap(err, "failed to update case")
		}
		forwarded = c

		owner, err := repoFactory.UserRepo().FindByID(ctx, c.OwnerID)
		if err == nil {
			ownerEmail = owner.Email
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to forward case", slog.Any("error", err), slog.Any("case_id", caseID))

		return nil, err
	}

	srv.log(ctx).Info("Case forwarded",
		slog.Any("case_id", forwarded.ID),
		slog.String("task_number", forwarded.TaskNumber))

	srv.notify(ctx, &service.Notification{
		Recipient: ownerEmail,
		Kind:      service.KindCaseSubmitted,
		Payload: map[string]string{
			"case_id":      forwarded.ID.String(),
			"task_number":  forwarded.TaskNumber,
			"manufacturer": srv.manufacturerName(forwarded.ManufacturerID),
		},
	})

	return forwarded, nil
}

// RecordReply stores the manufacturer reply, translates it back to the case
// language, and applies the approval gate decision.
func (srv *caseService) RecordReply(ctx context.Context, input *usecase.RecordReplyInput) (*entity.Case, error) {
	if input == nil || strings.TrimSpace(input.TaskNumber) == "" {
		return nil, domainerrors.ErrValidation.WithDetails("task number must not be empty")
	}

	var caseID uuid.UUID
	var language string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		c, err := repoFactory.CaseRepo().FindByTaskNumber(ctx, input.TaskNumber)
		if err != nil {
			if errors.Is(err, repository.ErrCaseNotFound) {
				return domainerrors.ErrCaseNotFound.WithDetails("no case for task number " + input.TaskNumber)
			}

			return errors.Wrap(err, "failed to find case by task number")
		}
		if c.Status != entity.CaseStatusAwaitingReply {
			return domainerrors.NewInvalidTransition(c.Status.String(), entity.CaseStatusReplyReceived.String())
		}
		caseID = c.ID
		language = c.Language

		return nil
	})
	if err != nil {
		return nil, err
	}

	translatedReply, err := srv.translator.Translate(ctx, input.Reply, service.EnglishLang, language)
	if err != nil {
		// Store the raw reply; translation can be retried before approval.
		srv.log(ctx).Warn("Reply translation unavailable, storing untranslated",
			slog.Any("error", err), slog.Any("case_id", caseID))
		translatedReply = ""
	}

	var updated *entity.Case
	var ownerEmail string
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		caseRepo := repoFactory.CaseRepo()

		c, err := findCase(ctx, caseRepo, caseID)
		if err != nil {
			return err
		}
		if err := transition(c, entity.CaseStatusReplyReceived); err != nil {
			return err
		}

		now := srv.clock.Now()
		c.ManufacturerReply = input.Reply
		c.ReplyTranslated = translatedReply
		c.ReplyReceivedAt = &now

		// The gate is a pure function of case attributes and configuration;
		// its decision is applied here, in the same transaction.
		switch srv.gate.Decide(c) {
		case service.AutoApprove:
			c.NeedsApproval = false
			c.Approved = true
			c.ApprovedAt = &now
			if err := transition(c, entity.CaseStatusApproved); err != nil {
				return err
			}
		case service.PendingApproval:
			c.NeedsApproval = true
			if err := transition(c, entity.CaseStatusPendingApproval); err != nil {
				return err
			}
		}

		if err := caseRepo.Update(ctx, c); err != nil {
			return errors.Wrap(err, "failed to update case")
		}
		updated = c

		owner, err := repoFactory.UserRepo().FindByID(ctx, c.OwnerID)
		if err == nil {
			ownerEmail = owner.Email
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to record reply", slog.Any("error", err), slog.Any("case_id", caseID))

		return nil, err
	}

	srv.log(ctx).Info("Manufacturer reply recorded",
		slog.Any("case_id", updated.ID),
		slog.String("status", updated.Status.String()))

	if updated.Status == entity.CaseStatusApproved {
		srv.notifyReplyAvailable(ctx, updated, ownerEmail)
	} else {
		srv.notifyApprovalRequested(ctx, updated)
	}

	return updated, nil
}

// Approve releases a pending_approval case to the user.
func (srv *caseService) Approve(ctx context.Context, caseID, approverID uuid.UUID) (*entity.Case, error) {
	var updated *entity.Case
	var ownerEmail string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		caseRepo := repoFactory.CaseRepo()

		c, err := findCase(ctx, caseRepo, caseID)
		if err != nil {
			return err
		}
		if c.Status != entity.CaseStatusPendingApproval {
			return domainerrors.NewInvalidTransition(c.Status.String(), entity.CaseStatusApproved.String())
		}
		if err := transition(c, entity.CaseStatusApproved); err != nil {
			return err
		}

		now := srv.clock.Now()
		c.Approved = true
		c.ApprovedAt = &now
		if err := caseRepo.Update(ctx, c); err != nil {
			return errors.Wrap(err, "failed to update case")
		}
		updated = c

		owner, err := repoFactory.UserRepo().FindByID(ctx, c.OwnerID)
		if err == nil {
			ownerEmail = owner.Email
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to approve case", slog.Any("error", err), slog.Any("case_id", caseID))

		return nil, err
	}

	srv.log(ctx).Info("Case approved",
		slog.Any("case_id", updated.ID),
		slog.Any("approver_id", approverID))

	srv.notifyReplyAvailable(ctx, updated, ownerEmail)

	return updated, nil
}

// Close archives an approved case.
func (srv *caseService) Close(ctx context.Context, caseID uuid.UUID) (*entity.Case, error) {
	var updated *entity.Case
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		caseRepo := repoFactory.CaseRepo()

		c, err := findCase(ctx, caseRepo, caseID)
		if err != nil {
			return err
		}
		if err := transition(c, entity.CaseStatusClosed); err != nil {
			return err
		}

		now := srv.clock.Now()
		c.ClosedAt = &now
		if err := caseRepo.Update(ctx, c); err != nil {
			return errors.Wrap(err, "failed to update case")
		}
		updated = c

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Case closed", slog.Any("case_id", updated.ID))

	return updated, nil
}

// MarkReminderSent flips the reminder dispatch lock as a single atomic
// read-check-write. Exactly one of two concurrent calls succeeds; the loser
// gets AlreadyReminded.
func (srv *caseService) MarkReminderSent(ctx context.Context, caseID uuid.UUID) (*entity.Case, error) {
	var updated *entity.Case
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		caseRepo := repoFactory.CaseRepo()

		c, err := findCase(ctx, caseRepo, caseID)
		if err != nil {
			return err
		}
		if c.Status != entity.CaseStatusAwaitingReply {
			return domainerrors.NewInvalidTransition(c.Status.String(), entity.CaseStatusAwaitingReply.String())
		}
		if c.ReminderSent {
			// Surfaced, not swallowed: the scheduler distinguishes
			// "nothing to do" from a race on this error.
			return domainerrors.ErrAlreadyReminded.WithDetails("case " + c.ID.String())
		}

		now := srv.clock.Now()
		c.ReminderSent = true
		c.ReminderSentAt = &now
		if err := caseRepo.Update(ctx, c); err != nil {
			return errors.Wrap(err, "failed to update case")
		}
		updated = c

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// GetCase returns one case, enforcing ownership unless the requester is admin.
func (srv *caseService) GetCase(ctx context.Context, requesterID uuid.UUID, isAdmin bool, caseID uuid.UUID) (*entity.Case, error) {
	var found *entity.Case
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		c, err := findCase(ctx, repoFactory.CaseRepo(), caseID)
		if err != nil {
			return err
		}
		if !isAdmin && c.OwnerID != requesterID {
			return domainerrors.ErrPermissionDenied.WithDetails("case belongs to another user")
		}
		found = c

		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

// ListOwn returns the requester's cases, newest first.
func (srv *caseService) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]*entity.Case, error) {
	var cases []*entity.Case
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		cases, err = repoFactory.CaseRepo().ListByOwner(ctx, ownerID)

		return errors.Wrap(err, "failed to list cases")
	})
	if err != nil {
		return nil, err
	}

	return cases, nil
}

// ListPendingApprovals returns all cases waiting for manual sign-off.
func (srv *caseService) ListPendingApprovals(ctx context.Context) ([]*entity.Case, error) {
	var cases []*entity.Case
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		cases, err = repoFactory.CaseRepo().ListPendingApproval(ctx)

		return errors.Wrap(err, "failed to list pending approvals")
	})
	if err != nil {
		return nil, err
	}

	return cases, nil
}

// findCase loads a case and maps the repository sentinel to the taxonomy error.
func findCase(ctx context.Context, caseRepo repository.CaseRepository, caseID uuid.UUID) (*entity.Case, error) {
	c, err := caseRepo.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			return nil, domainerrors.ErrCaseNotFound.WithDetails("case " + caseID.String())
		}

		return nil, errors.Wrap(err, "failed to find case")
	}

	return c, nil
}

// notify dispatches a notification and logs a failure without surfacing it;
// delivery is never fatal to a committed transition.
func (srv *caseService) notify(ctx context.Context, n *service.Notification) {
	if n.Recipient == "" {
		return
	}
	if err := srv.notifier.Send(ctx, n); err != nil {
		srv.log(ctx).Error("Notification dispatch failed",
			slog.Any("error", err),
			slog.String("kind", string(n.Kind)),
			slog.String("recipient", n.Recipient))
	}
}

func (srv *caseService) notifyReplyAvailable(ctx context.Context, c *entity.Case, ownerEmail string) {
	srv.notify(ctx, &service.Notification{
		Recipient: ownerEmail,
		Kind:      service.KindReplyAvailable,
		Payload: map[string]string{
			"case_id":     c.ID.String(),
			"task_number": c.TaskNumber,
			"reply":       replyForUser(c),
		},
	})
}

func (srv *caseService) notifyApprovalRequested(ctx context.Context, c *entity.Case) {
	if srv.cfg.SMTP == nil || srv.cfg.SMTP.SupportEmail == "" {
		return
	}
	srv.notify(ctx, &service.Notification{
		Recipient: srv.cfg.SMTP.SupportEmail,
		Kind:      service.KindApprovalRequested,
		Payload: map[string]string{
			"case_id":        c.ID.String(),
			"task_number":    c.TaskNumber,
			"original_query": c.OriginalQuery,
			"reply":          replyForUser(c),
		},
	})
}

// replyForUser prefers the translated reply, falling back to the raw one
// when translation is still pending.
func replyForUser(c *entity.Case) string {
	if c.ReplyTranslated != "" {
		return c.ReplyTranslated
	}

	return c.ManufacturerReply
}

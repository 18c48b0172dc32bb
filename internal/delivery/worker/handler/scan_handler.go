// Package handler contains the HTTP handlers for the reminder worker.
package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "caseflow/internal/delivery/context"
	"caseflow/internal/domain/service"
	"caseflow/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ScanHandlerParams holds dependencies for the scan handler
type ScanHandlerParams struct {
	fx.In

	Reminders usecase.ReminderUsecase
	Clock     service.Clock
	Logger    *slog.Logger
}

// ScanHandler triggers a reminder sweep over awaiting-reply cases. The sweep
// is idempotent, so operators and the poll loop can both hit it freely.
type ScanHandler struct {
	reminders usecase.ReminderUsecase
	clock     service.Clock
	logger    *slog.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(params ScanHandlerParams) *ScanHandler {
	return &ScanHandler{
		reminders: params.Reminders,
		clock:     params.Clock,
		logger:    params.Logger,
	}
}

// HandleScan runs one reminder sweep and reports the cases reminded by it.
func (h *ScanHandler) HandleScan(c echo.Context) error {
	ctx := c.Request().Context()
	logger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)

	reminded, err := h.reminders.Scan(ctx, h.clock.Now())
	if err != nil {
		return errors.WithStack(err)
	}

	logger.Info("Reminder scan finished", slog.Int("reminded", len(reminded)))

	return c.JSON(http.StatusOK, map[string]any{
		"reminded": len(reminded),
		"cases":    reminded,
	})
}

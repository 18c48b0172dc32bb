package worker

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"caseflow/config"
	"caseflow/internal/delivery"
	httpmiddleware "caseflow/internal/delivery/http/middleware"
	"caseflow/internal/delivery/middleware"
	"caseflow/internal/delivery/worker/handler"
	"caseflow/internal/domain/lifecycle"
	"caseflow/internal/domain/service"
	"caseflow/internal/usecase"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type workerServer struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *echo.Echo
	reminders usecase.ReminderUsecase
	clock     service.Clock
	stopPoll  chan struct{}
}

// ServerParams holds dependencies for the worker server
type ServerParams struct {
	fx.In

	Lc              fx.Lifecycle
	Cfg             *config.Config
	Logger          *slog.Logger
	ScanHandler     *handler.ScanHandler
	AuthMiddleware  *httpmiddleware.AuthMiddleware
	ErrorMiddleware *httpmiddleware.ErrorMiddleware
	Reminders       usecase.ReminderUsecase
	Clock           service.Clock
}

// NewServer creates the reminder worker HTTP server. Scans are caller-driven:
// POST /scan runs one sweep, and when worker.pollInterval is configured a
// background ticker triggers the same sweep on schedule.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = params.ErrorMiddleware.HandleHTTPError

	// Set up middleware in correct order
	// 1. Recover middleware first (to catch panics early)
	e.Use(echomiddleware.Recover())

	// 2. Request ID middleware (must be before logger to include in logs)
	requestIDMiddleware := middleware.NewRequestIDMiddleware(params.Logger)
	e.Use(requestIDMiddleware.Process)

	// 3. Logger middleware
	loggerMiddleware := middleware.NewLoggerMiddleware(params.Logger, params.Cfg)
	e.Use(loggerMiddleware.Handle)

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Manual reminder sweep trigger, admin-only. The poll loop bypasses HTTP
	// and calls the usecase directly.
	e.POST("/scan", params.ScanHandler.HandleScan,
		params.AuthMiddleware.Authenticate, params.AuthMiddleware.RequireAdmin)

	srv := &workerServer{
		cfg:       params.Cfg,
		logger:    params.Logger,
		server:    e,
		reminders: params.Reminders,
		clock:     params.Clock,
		stopPoll:  make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve starts the worker HTTP server and, when configured, the poll loop.
func (s *workerServer) Serve(ctx context.Context) error {
	if interval := s.cfg.Worker.PollInterval; interval > 0 {
		go s.poll(ctx, interval)
	}

	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.Worker.Port))
	s.logger.Info("Starting Worker HTTP server", slog.String("hostPort", hostPort))
	if err := s.server.Start(hostPort); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// poll runs the reminder sweep on a fixed interval until shutdown. A failed
// sweep is logged and retried on the next tick.
func (s *workerServer) poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting reminder poll loop", slog.Duration("interval", interval))

	for {
		select {
		case <-ticker.C:
			reminded, err := s.reminders.Scan(ctx, s.clock.Now())
			if err != nil {
				s.logger.Error("Reminder scan failed", slog.Any("error", err))

				continue
			}
			if len(reminded) > 0 {
				s.logger.Info("Reminder scan finished", slog.Int("reminded", len(reminded)))
			}
		case <-s.stopPoll:
			return
		case <-ctx.Done():
			return
		}
	}
}

// stop gracefully shuts down the worker server
func (s *workerServer) stop(ctx context.Context) error {
	close(s.stopPoll)

	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down Worker HTTP server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}

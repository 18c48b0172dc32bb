// Package manufacturer implements the manufacturer submission boundary.
package manufacturer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"caseflow/internal/domain/service"
)

// mockGateway fakes the manufacturer API with an in-process task counter
// starting at TASK-1001, like the sandbox environment manufacturers provide.
type mockGateway struct {
	mu      sync.Mutex
	counter int
	logger  *slog.Logger
}

// NewMockGateway creates a ManufacturerGateway that never leaves the process.
func NewMockGateway(logger *slog.Logger) service.ManufacturerGateway {
	return &mockGateway{counter: 1000, logger: logger}
}

func (g *mockGateway) SubmitCase(_ context.Context, manufacturerID, description string) (string, error) {
	g.mu.Lock()
	g.counter++
	taskNumber := fmt.Sprintf("TASK-%d", g.counter)
	g.mu.Unlock()

	g.logger.Info("Mock manufacturer accepted case",
		slog.String("manufacturer_id", manufacturerID),
		slog.String("task_number", taskNumber),
		slog.Int("description_len", len(description)),
	)

	return taskNumber, nil
}

func (g *mockGateway) SendReminder(_ context.Context, manufacturerID, taskNumber string) error {
	g.logger.Info("Mock manufacturer reminded",
		slog.String("manufacturer_id", manufacturerID),
		slog.String("task_number", taskNumber),
	)

	return nil
}

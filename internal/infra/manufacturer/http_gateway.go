package manufacturer

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"caseflow/config"
	domainerrors "caseflow/internal/domain/errors"

	"github.com/pkg/errors"
)

// httpGateway talks to one manufacturer's REST submission API. Each
// manufacturer in the catalog gets its own instance with its own base URL.
type httpGateway struct {
	manufacturerID string
	apiURL         string
	httpClient     *http.Client
	logger         *slog.Logger
}

type submitRequest struct {
	Description string `json:"description"`
}

type submitResponse struct {
	TaskNumber string `json:"task_number"`
}

type reminderRequest struct {
	TaskNumber string `json:"task_number"`
}

// newHTTPGateway creates a gateway for a single manufacturer endpoint.
func newHTTPGateway(manufacturerID string, cfg config.ManufacturerConfig, logger *slog.Logger) *httpGateway {
	return &httpGateway{
		manufacturerID: manufacturerID,
		apiURL:         cfg.APIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (g *httpGateway) SubmitCase(ctx context.Context, description string) (string, error) {
	var out submitResponse
	if err := g.post(ctx, "/cases", submitRequest{Description: description}, &out); err != nil {
		g.logger.Warn("Manufacturer submission failed",
			slog.Any("error", err), slog.String("manufacturer_id", g.manufacturerID))

		return "", domainerrors.ErrManufacturerUnavailable.WithDetails(err.Error())
	}
	if out.TaskNumber == "" {
		return "", domainerrors.ErrManufacturerUnavailable.WithDetails("manufacturer returned no task number")
	}

	return out.TaskNumber, nil
}

func (g *httpGateway) SendReminder(ctx context.Context, taskNumber string) error {
	if err := g.post(ctx, "/reminders", reminderRequest{TaskNumber: taskNumber}, nil); err != nil {
		g.logger.Warn("Manufacturer reminder failed",
			slog.Any("error", err),
			slog.String("manufacturer_id", g.manufacturerID),
			slog.String("task_number", taskNumber),
		)

		return domainerrors.ErrManufacturerUnavailable.WithDetails(err.Error())
	}

	return nil
}

func (g *httpGateway) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("manufacturer returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	return errors.WithStack(json.NewDecoder(resp.Body).Decode(out))
}

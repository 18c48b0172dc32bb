package manufacturer

import (
	"context"
	"log/slog"

	"caseflow/config"
	"caseflow/internal/domain/service"

	"go.uber.org/fx"
)

// routingGateway dispatches per manufacturer: catalog entries with a real API
// URL get an HTTP gateway, the rest share the in-process mock.
type routingGateway struct {
	gateways map[string]*httpGateway
	mock     service.ManufacturerGateway
}

// GatewayParams holds dependencies for the ManufacturerGateway, injected by Fx
type GatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewGateway builds the manufacturer gateway from the configured catalog.
func NewGateway(params GatewayParams) service.ManufacturerGateway {
	gateways := make(map[string]*httpGateway)
	for id, mc := range params.Config.Manufacturers {
		if mc.UseMock || mc.APIURL == "" {
			continue
		}
		gateways[id] = newHTTPGateway(id, mc, params.Logger)
	}

	params.Logger.Info("Manufacturer gateway ready",
		slog.Int("catalog_size", len(params.Config.Manufacturers)),
		slog.Int("live_endpoints", len(gateways)),
	)

	return &routingGateway{
		gateways: gateways,
		mock:     NewMockGateway(params.Logger),
	}
}

func (r *routingGateway) SubmitCase(ctx context.Context, manufacturerID, description string) (string, error) {
	if gw, ok := r.gateways[manufacturerID]; ok {
		return gw.SubmitCase(ctx, description)
	}

	return r.mock.SubmitCase(ctx, manufacturerID, description)
}

func (r *routingGateway) SendReminder(ctx context.Context, manufacturerID, taskNumber string) error {
	if gw, ok := r.gateways[manufacturerID]; ok {
		return gw.SendReminder(ctx, taskNumber)
	}

	return r.mock.SendReminder(ctx, manufacturerID, taskNumber)
}

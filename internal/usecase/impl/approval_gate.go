package impl

import (
	"caseflow/config"
	"caseflow/internal/domain/entity"
	"caseflow/internal/domain/service"
)

// approvalGate is the default ApprovalGate: every reply requires manual
// sign-off unless the case's manufacturer is on the configured
// auto-approve list.
type approvalGate struct {
	autoApprove map[string]struct{}
}

// NewApprovalGate builds the gate from the workflow configuration.
func NewApprovalGate(cfg *config.Config) service.ApprovalGate {
	auto := make(map[string]struct{})
	if cfg.Workflow != nil {
		for _, id := range cfg.Workflow.AutoApproveManufacturers {
			auto[id] = struct{}{}
		}
	}

	return &approvalGate{autoApprove: auto}
}

// Decide is a pure function of case attributes and configuration.
func (g *approvalGate) Decide(c *entity.Case) service.Decision {
	if _, ok := g.autoApprove[c.ManufacturerID]; ok {
		return service.AutoApprove
	}

	return service.PendingApproval
}

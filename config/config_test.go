package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeEnvKey_AlignsWithExistingYAMLKeys(t *testing.T) {
	existing := map[string]any{
		"smtp": map[string]any{
			"senderEmail": "noreply@example.com",
		},
		"workflow": map[string]any{
			"reminderThresholdHours": 24,
		},
	}

	tests := []struct {
		raw  string
		want string
	}{
		{"SMTP_SENDEREMAIL", "smtp.senderEmail"},
		{"WORKFLOW_REMINDERTHRESHOLDHOURS", "workflow.reminderThresholdHours"},
		{"HTTP_PORT", "http.port"}, // unknown keys pass through lowercased
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeEnvKey(tt.raw, existing))
		})
	}
}

func TestApplyDefaults_FillsWorkflowKnobs(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, float64(24), cfg.Workflow.ReminderThresholdHours)
	assert.Equal(t, 24, cfg.Workflow.SessionTimeoutHours)
	assert.Equal(t, 10, cfg.Workflow.CodeExpiryMinutes)
	assert.Empty(t, cfg.Workflow.AutoApproveManufacturers)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{Workflow: &WorkflowConfig{
		ReminderThresholdHours:   48,
		SessionTimeoutHours:      8,
		CodeExpiryMinutes:        5,
		AutoApproveManufacturers: []string{"manufacturer_1"},
	}}
	applyDefaults(cfg)

	assert.Equal(t, float64(48), cfg.Workflow.ReminderThresholdHours)
	assert.Equal(t, 8, cfg.Workflow.SessionTimeoutHours)
	assert.Equal(t, 5, cfg.Workflow.CodeExpiryMinutes)
	assert.Equal(t, []string{"manufacturer_1"}, cfg.Workflow.AutoApproveManufacturers)
}

func TestWorkflowConfig_DerivedDurations(t *testing.T) {
	w := &WorkflowConfig{SessionTimeoutHours: 24, CodeExpiryMinutes: 10}

	assert.Equal(t, "24h0m0s", w.SessionTimeout().String())
	assert.Equal(t, "10m0s", w.CodeExpiry().String())
}

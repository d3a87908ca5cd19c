// Package integration assesses how the tools in an audit inventory exchange
// data today and where the gaps are.
package integration

import (
	"fmt"
	"strings"
	"time"
)

// Status classifies the observed condition of an integration.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusBroken   Status = "broken"
	StatusMissing  Status = "missing"
	StatusUnknown  Status = "unknown"
)

var allStatuses = []Status{StatusHealthy, StatusDegraded, StatusBroken, StatusMissing, StatusUnknown}

// ParseStatus converts a wire string into a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, status := range allStatuses {
		if candidate == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("integration: unknown status %q", raw)
}

// Type classifies the mechanism an integration uses.
type Type string

const (
	TypeAPI          Type = "api"
	TypeWebhook      Type = "webhook"
	TypeDatabase     Type = "database"
	TypeFileSync     Type = "file_sync"
	TypeEmailSync    Type = "email_sync"
	TypeCalendarSync Type = "calendar_sync"
	TypeSSO          Type = "sso"
	TypeManual       Type = "manual"
	TypeNone         Type = "none"
	TypeUnknown      Type = "unknown"
)

var allTypes = []Type{
	TypeAPI, TypeWebhook, TypeDatabase, TypeFileSync, TypeEmailSync,
	TypeCalendarSync, TypeSSO, TypeManual, TypeNone, TypeUnknown,
}

// ParseType converts a wire string into a Type, rejecting unknown values.
func ParseType(raw string) (Type, error) {
	candidate := Type(strings.ToLower(strings.TrimSpace(raw)))
	for _, typ := range allTypes {
		if candidate == typ {
			return typ, nil
		}
	}
	return "", fmt.Errorf("integration: unknown type %q", raw)
}

// Assessment is the result of evaluating one tool pair.
type Assessment struct {
	SourceTool          string    `json:"source_tool"`
	TargetTool          string    `json:"target_tool"`
	IntegrationType     Type      `json:"integration_type"`
	Status              Status    `json:"status"`
	HealthScore         int       `json:"health_score"`
	LastSync            time.Time `json:"last_sync,omitempty"`
	ErrorRate           float64   `json:"error_rate"`
	DataFlowDirection   string    `json:"data_flow_direction"`
	BusinessCriticality string    `json:"business_criticality"`
	Issues              []string  `json:"issues,omitempty"`
	Recommendations     []string  `json:"recommendations,omitempty"`
	AssessedAt          time.Time `json:"assessed_at"`
}

// Observation carries whatever is already known about an existing
// integration when an assessment starts. Zero values mean "not observed".
type Observation struct {
	Status          string
	IntegrationType string
	HealthScore     int
	ErrorRate       float64
	LastSync        time.Time
}

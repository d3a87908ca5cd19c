package audit

import (
	"encoding/json"
	"fmt"
)

// Stage identifies one of the four sequential audit phases. Stages are
// numbered 1-4 and that ordinal is what goes on the wire.
type Stage int

const (
	StageDiscovery     Stage = 1
	StageAssessment    Stage = 2
	StageOpportunities Stage = 3
	StageDelivery      Stage = 4
)

// ParseStage converts a wire ordinal into a Stage, rejecting unknown values.
func ParseStage(ordinal int) (Stage, error) {
	stage := Stage(ordinal)
	if !stage.Valid() {
		return 0, fmt.Errorf("audit: unknown stage ordinal %d", ordinal)
	}
	return stage, nil
}

// Valid reports whether the stage is one of the four defined phases.
func (s Stage) Valid() bool {
	return s >= StageDiscovery && s <= StageDelivery
}

// String returns the display name for the stage.
func (s Stage) String() string {
	switch s {
	case StageDiscovery:
		return "DISCOVERY"
	case StageAssessment:
		return "ASSESSMENT"
	case StageOpportunities:
		return "OPPORTUNITIES"
	case StageDelivery:
		return "DELIVERY"
	default:
		return fmt.Sprintf("STAGE(%d)", int(s))
	}
}

// MarshalJSON encodes the stage as its ordinal number.
func (s Stage) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("audit: cannot encode invalid stage %d", int(s))
	}
	return json.Marshal(int(s))
}

// UnmarshalJSON decodes a stage ordinal, failing on anything outside 1-4.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err != nil {
		return fmt.Errorf("audit: decode stage: %w", err)
	}
	stage, err := ParseStage(ordinal)
	if err != nil {
		return err
	}
	*s = stage
	return nil
}

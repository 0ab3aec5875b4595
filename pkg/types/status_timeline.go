package types

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// StatusEntry records whether a shipment stage has been reached and when.
type StatusEntry struct {
	Status bool   `json:"status"`
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
}

// StatusTimeline is the jsonb status column: one entry per shipment stage.
type StatusTimeline map[enums.ShipmentStage]StatusEntry

// NewStatusTimeline returns a timeline with every stage present and unset.
func NewStatusTimeline() StatusTimeline {
	timeline := make(StatusTimeline, len(enums.ShipmentStages))
	for _, stage := range enums.ShipmentStages {
		timeline[stage] = StatusEntry{}
	}
	return timeline
}

// Merge applies entries from patch for stages that already exist on the
// timeline. Unknown stage keys are dropped, never added.
func (t StatusTimeline) Merge(patch StatusTimeline) StatusTimeline {
	merged := make(StatusTimeline, len(t))
	for stage, entry := range t {
		merged[stage] = entry
	}
	for stage, entry := range patch {
		if _, ok := merged[stage]; ok {
			merged[stage] = entry
		}
	}
	return merged
}

// MarkReached flags a stage as reached, stamping date and time.
func (t StatusTimeline) MarkReached(stage enums.ShipmentStage, at time.Time) {
	if _, ok := t[stage]; !ok {
		return
	}
	t[stage] = StatusEntry{
		Status: true,
		Date:   at.Format("2006-01-02"),
		Time:   at.Format("15:04:05"),
	}
}

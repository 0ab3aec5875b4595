package enums

// ShipmentStage names the fixed delivery milestones tracked on every order.
type ShipmentStage string

const (
	ShipmentStageAwaitingCarrier ShipmentStage = "awaiting-carrier-acceptance"
	ShipmentStageAccepted        ShipmentStage = "accepted"
	ShipmentStageInTransit       ShipmentStage = "in-transit"
	ShipmentStageInDelivery      ShipmentStage = "in-delivery"
	ShipmentStageDelivered       ShipmentStage = "delivered"
)

// ShipmentStages lists every stage in delivery order.
var ShipmentStages = []ShipmentStage{
	ShipmentStageAwaitingCarrier,
	ShipmentStageAccepted,
	ShipmentStageInTransit,
	ShipmentStageInDelivery,
	ShipmentStageDelivered,
}

// String implements fmt.Stringer.
func (s ShipmentStage) String() string {
	return string(s)
}

// IsValid reports whether the stage is one of the tracked milestones.
func (s ShipmentStage) IsValid() bool {
	for _, candidate := range ShipmentStages {
		if candidate == s {
			return true
		}
	}
	return false
}

package model

import (
	"gopkg.in/guregu/null.v3"
)

const (
	ShipmentStatusInTransit = "In Transit"
	ShipmentStatusDelivered = "Delivered"
	ShipmentStatusOngoing   = "Ongoing"
	ShipmentStatusCompleted = "Completed"
	ShipmentStatusRefunded  = "Refunded"
)

// ShipmentRow is one entry of the ongoing-shipments table.
type ShipmentRow struct {
	ID          int64    `json:"contract_id" validate:"required,gt=0"`
	ProductName string   `json:"product_name"`
	Quantity    null.Int `json:"quantity"`
	Temperature Reading  `json:"temperature"`
	Status      string   `json:"status"`
	MinTemp     Reading  `json:"min_temp"`
	MaxTemp     Reading  `json:"max_temp"`
	BuyerName   Text     `json:"buyer_name"`
	SellerName  Text     `json:"seller_name"`
}

// ShipmentList is the payload of the ongoing-shipments feed. A missing
// ongoing_data field decodes to a nil slice and is treated like an empty one.
type ShipmentList struct {
	Shipments []ShipmentRow `json:"ongoing_data"`
}

// ShipmentDetail is the on-demand detail of a single shipment, including contact
// fields that the list feed never carries.
type ShipmentDetail struct {
	ID              int64      `json:"contract_id" validate:"required,gt=0"`
	ProductName     string     `json:"product_name"`
	Quantity        null.Int   `json:"quantity"`
	Price           null.Float `json:"price"`
	Status          string     `json:"status"`
	ContractAddress Text       `json:"contract_address"`
	DeploymentDate  Text       `json:"deployment_date"`

	BuyerName    Text `json:"buyer_name"`
	BuyerEmail   Text `json:"buyer_email"`
	BuyerWallet  Text `json:"buyer_wallet"`
	SellerName   Text `json:"seller_name"`
	SellerEmail  Text `json:"seller_email"`
	SellerWallet Text `json:"seller_wallet"`

	LatestTemp     Reading `json:"latest_temp"`
	BatteryVoltage Reading `json:"battery_voltage"`
	RecordedAt     Text    `json:"recorded_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ShipmentCollection = "shipment"

type ShipmentProvider string

const (
	ProviderShiprocket ShipmentProvider = "shiprocket"
	ProviderDelhivery  ShipmentProvider = "delhivery"
	ProviderBluedart   ShipmentProvider = "bluedart"
	ProviderXpressbees ShipmentProvider = "xpressbees"
	ProviderOther      ShipmentProvider = "other"
)

type ShipmentStatus string

const (
	ShipmentStatusCreated   ShipmentStatus = "created"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusFailed    ShipmentStatus = "failed"
)

// Shipment tracks one fulfillment attempt for an order.
type Shipment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderID    string             `bson:"order_id" json:"order_id"`
	Provider   ShipmentProvider   `bson:"provider" json:"provider"`
	TrackingID string             `bson:"tracking_id,omitempty" json:"tracking_id,omitempty"`
	Status     ShipmentStatus     `bson:"status" json:"status"`
	Meta       map[string]any     `bson:"meta,omitempty" json:"meta,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

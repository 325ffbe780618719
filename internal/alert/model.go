package alert

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FilterAll      = "all"
	FilterActive   = "active"
	FilterInactive = "inactive"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const LocationNotSpecified = "Location not specified"

type Alert struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Type          string             `bson:"type" json:"type"`
	Severity      string             `bson:"severity" json:"severity"`
	Active        bool               `bson:"active" json:"active"`
	Location      string             `bson:"location" json:"location"`
	CreatedBy     string             `bson:"created_by" json:"created_by"`
	CreatedByName string             `bson:"created_by_name" json:"created_by_name"`
	ShelterID     string             `bson:"shelter_id,omitempty" json:"shelter_id,omitempty"`
	ShelterName   string             `bson:"shelter_name,omitempty" json:"shelter_name,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Creator identifies the admin issuing an alert.
type Creator struct {
	UID  string
	Name string
}

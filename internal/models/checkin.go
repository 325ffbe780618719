package models

import (
	"time"
)

// CheckInRecord is one entry of a user's check-in history. The same shape is
// embedded on the shelter side as an occupant entry.
type CheckInRecord struct {
	UserID       string     `bson:"user_id" json:"user_id"`
	UserName     string     `bson:"user_name,omitempty" json:"user_name,omitempty"`
	UserEmail    string     `bson:"user_email,omitempty" json:"user_email,omitempty"`
	ShelterID    string     `bson:"shelter_id" json:"shelter_id"`
	ShelterName  string     `bson:"shelter_name" json:"shelter_name"`
	Status       string     `bson:"status" json:"status"`
	CheckInTime  time.Time  `bson:"check_in_time" json:"check_in_time"`
	CheckOutTime *time.Time `bson:"check_out_time,omitempty" json:"check_out_time,omitempty"`
}

type CurrentShelter struct {
	ShelterID   string    `bson:"shelter_id" json:"shelter_id"`
	ShelterName string    `bson:"shelter_name" json:"shelter_name"`
	CheckInTime time.Time `bson:"check_in_time" json:"check_in_time"`
}

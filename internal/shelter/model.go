package shelter

import (
	"time"

	"resiliencehub/internal/models"
	"resiliencehub/internal/user"
	"resiliencehub/pkg/constants"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Shelter struct {
	ID               primitive.ObjectID     `bson:"_id" json:"id"`
	Name             string                 `bson:"name" json:"name"`
	Address          string                 `bson:"address" json:"address"`
	Active           bool                   `bson:"active" json:"active"`
	Capacity         int                    `bson:"capacity" json:"capacity"`
	CurrentOccupancy int                    `bson:"current_occupancy" json:"current_occupancy"`
	AdminID          string                 `bson:"admin_id" json:"admin_id"`
	Occupants        []models.CheckInRecord `bson:"occupants" json:"occupants"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (s *Shelter) IsFull() bool {
	return s.CurrentOccupancy >= s.Capacity
}

// CheckedInCount counts occupant entries still marked checked-in. It is
// tracked separately from CurrentOccupancy and the two can disagree.
func (s *Shelter) CheckedInCount() int {
	n := 0
	for _, o := range s.Occupants {
		if o.Status == constants.StatusCheckedIn {
			n++
		}
	}
	return n
}

type OccupantDetail struct {
	Occupant models.CheckInRecord `json:"occupant"`
	Profile  *user.Profile        `json:"profile"`
}

type Drift struct {
	ShelterID string `json:"shelter_id"`
	Name      string `json:"name"`
	Counter   int    `json:"counter"`
	CheckedIn int    `json:"checked_in"`
}

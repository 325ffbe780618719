package user

import (
	"time"

	"resiliencehub/internal/models"
)

type Profile struct {
	UID              string                 `bson:"_id" json:"uid"`
	Name             string                 `bson:"name" json:"name"`
	Email            string                 `bson:"email" json:"email"`
	Phone            string                 `bson:"phone,omitempty" json:"phone,omitempty"`
	Address          string                 `bson:"address,omitempty" json:"address,omitempty"`
	EmergencyContact string                 `bson:"emergency_contact,omitempty" json:"emergency_contact,omitempty"`
	UserType         string                 `bson:"user_type" json:"user_type"`
	CheckInHistory   []models.CheckInRecord `bson:"check_in_history" json:"check_in_history"`
	CurrentShelter   *models.CurrentShelter `bson:"current_shelter" json:"current_shelter"`
	CreatedAt        time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time              `bson:"updated_at" json:"updated_at"`
}

// DisplayName falls back to a generic label for profiles saved without a name.
func (p *Profile) DisplayName() string {
	if p == nil || p.Name == "" {
		return "User"
	}
	return p.Name
}

package resource

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var Categories = []string{"food", "water", "medicine", "clothing", "hygiene", "bedding", "tools"}

const (
	DefaultCategory = "food"
	DefaultUnit     = "units"
)

type Resource struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ShelterID   string             `bson:"shelter_id" json:"shelter_id"`
	ShelterName string             `bson:"shelter_name" json:"shelter_name"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Unit        string             `bson:"unit" json:"unit"`
	Description string             `bson:"description" json:"description"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

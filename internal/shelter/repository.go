package shelter

import (
	"context"
	"errors"
	"time"

	"resiliencehub/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ShelterRepository interface {
	Create(ctx context.Context, shelter *Shelter) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Shelter, error)
	FindByAdmin(ctx context.Context, adminID string) (*Shelter, error)
	FindFirstActive(ctx context.Context) (*Shelter, error)
	FindAll(ctx context.Context) ([]*Shelter, error)
	AddOccupant(ctx context.Context, id primitive.ObjectID, occupant models.CheckInRecord) (bool, error)
	ReplaceOccupants(ctx context.Context, id primitive.ObjectID, occupants []models.CheckInRecord, occupancy int) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
}

type shelterRepository struct {
	collection *mongo.Collection
}

func NewShelterRepository(collection *mongo.Collection) ShelterRepository {
	_ = EnsureShelterIndexes(context.Background(), collection)
	return &shelterRepository{
		collection: collection,
	}
}

func (r *shelterRepository) Create(ctx context.Context, shelter *Shelter) error {

	_, err := r.collection.InsertOne(ctx, shelter)
	if err != nil {
		return err
	}

	return nil

}

func (r *shelterRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Shelter, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByAdmin returns the oldest shelter run by adminID. Further shelters of
// the same admin are never looked at.
func (r *shelterRepository) FindByAdmin(ctx context.Context, adminID string) (*Shelter, error) {
	return r.findOne(ctx, bson.M{"admin_id": adminID}, options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *shelterRepository) FindFirstActive(ctx context.Context) (*Shelter, error) {
	return r.findOne(ctx, bson.M{"active": true}, options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *shelterRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*Shelter, error) {

	var shelter Shelter

	err := r.collection.FindOne(ctx, filter, opts...).Decode(&shelter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &shelter, nil

}

func (r *shelterRepository) FindAll(ctx context.Context) ([]*Shelter, error) {

	var shelters []*Shelter

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	if err := cursor.All(ctx, &shelters); err != nil {
		return nil, err
	}

	return shelters, nil

}

// AddOccupant appends the occupant and bumps the counter in one write, only
// while the shelter is active and below capacity. It reports whether the
// guard matched.
func (r *shelterRepository) AddOccupant(ctx context.Context, id primitive.ObjectID, occupant models.CheckInRecord) (bool, error) {

	res, err := r.collection.UpdateOne(ctx, checkInFilter(id), checkInUpdate(occupant, time.Now()))
	if err != nil {
		return false, err
	}

	return res.MatchedCount == 1, nil

}

func (r *shelterRepository) ReplaceOccupants(ctx context.Context, id primitive.ObjectID, occupants []models.CheckInRecord, occupancy int) error {

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, checkOutUpdate(occupants, occupancy, time.Now()))
	return err

}

func (r *shelterRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"active":     active,
			"updated_at": time.Now(),
		},
	})
	return err

}

func checkInFilter(id primitive.ObjectID) bson.M {
	return bson.M{
		"_id":    id,
		"active": true,
		"$expr": bson.M{
			"$lt": bson.A{"$current_occupancy", "$capacity"},
		},
	}
}

func checkInUpdate(occupant models.CheckInRecord, now time.Time) bson.M {
	return bson.M{
		"$push": bson.M{"occupants": occupant},
		"$inc":  bson.M{"current_occupancy": 1},
		"$set":  bson.M{"updated_at": now},
	}
}

func checkOutUpdate(occupants []models.CheckInRecord, occupancy int, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"occupants":         occupants,
			"current_occupancy": occupancy,
			"updated_at":        now,
		},
	}
}

func EnsureShelterIndexes(ctx context.Context, coll *mongo.Collection) error {

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "admin_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().
				SetName("by_admin_created"),
		},
		{
			Keys: bson.D{
				{Key: "active", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().
				SetName("active_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

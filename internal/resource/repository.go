package resource

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *Resource) error
	FindByShelter(ctx context.Context, shelterID string) ([]*Resource, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Resource, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type resourceRepository struct {
	collection *mongo.Collection
}

func NewResourceRepository(collection *mongo.Collection) ResourceRepository {
	_ = EnsureResourceIndexes(context.Background(), collection)
	return &resourceRepository{
		collection: collection,
	}
}

func (r *resourceRepository) Create(ctx context.Context, resource *Resource) error {

	_, err := r.collection.InsertOne(ctx, resource)
	if err != nil {
		return err
	}

	return nil

}

func (r *resourceRepository) FindByShelter(ctx context.Context, shelterID string) ([]*Resource, error) {

	resources := []*Resource{}

	cursor, err := r.collection.Find(ctx, bson.M{"shelter_id": shelterID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}

	if err := cursor.All(ctx, &resources); err != nil {
		return nil, err
	}

	return resources, nil

}

func (r *resourceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Resource, error) {

	var resource Resource

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&resource)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &resource, nil

}

func (r *resourceRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (bool, error) {

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, updateDocument(fields, time.Now()))
	if err != nil {
		return false, err
	}

	return res.MatchedCount == 1, nil

}

func (r *resourceRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	return res.DeletedCount == 1, nil

}

func updateDocument(fields bson.M, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	for k, v := range fields {
		set[k] = v
	}
	return bson.M{"$set": set}
}

func EnsureResourceIndexes(ctx context.Context, coll *mongo.Collection) error {

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "shelter_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().
				SetName("by_shelter_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

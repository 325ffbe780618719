package alert

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	List(ctx context.Context, filter string, limit int64) ([]*Alert, error)
}

type alertRepository struct {
	collection *mongo.Collection
}

func NewAlertRepository(collection *mongo.Collection) AlertRepository {
	_ = EnsureAlertIndexes(context.Background(), collection)
	return &alertRepository{
		collection: collection,
	}
}

func (r *alertRepository) Create(ctx context.Context, alert *Alert) error {

	_, err := r.collection.InsertOne(ctx, alert)
	if err != nil {
		return err
	}

	return nil

}

// List returns alerts newest first. A limit of 0 returns all of them.
func (r *alertRepository) List(ctx context.Context, filter string, limit int64) ([]*Alert, error) {

	query, err := listFilter(filter)
	if err != nil {
		return nil, err
	}

	alerts := []*Alert{}

	cursor, err := r.collection.Find(ctx, query, listOptions(limit))
	if err != nil {
		return nil, err
	}

	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}

	return alerts, nil

}

func listFilter(filter string) (bson.M, error) {
	switch filter {
	case "", FilterAll:
		return bson.M{}, nil
	case FilterActive:
		return bson.M{"active": true}, nil
	case FilterInactive:
		return bson.M{"active": false}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}
}

func listOptions(limit int64) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return opts
}

func EnsureAlertIndexes(ctx context.Context, coll *mongo.Collection) error {

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "active", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().
				SetName("active_created"),
		},
		{
			Keys: bson.D{
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().
				SetName("by_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

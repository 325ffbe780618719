package user

import (
	"context"
	"errors"
	"time"

	"resiliencehub/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrProfileNotFound is returned by writes that expect an existing profile.
var ErrProfileNotFound = errors.New("user profile not found")

type UserRepository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, uid string) (*Profile, error)
	FindByIDs(ctx context.Context, uids []string) ([]*Profile, error)
	Merge(ctx context.Context, uid string, fields map[string]interface{}) error
	RecordCheckIn(ctx context.Context, uid string, record models.CheckInRecord, current *models.CurrentShelter) error
	RecordCheckOut(ctx context.Context, uid string, record models.CheckInRecord) error
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(collection *mongo.Collection) UserRepository {
	_ = EnsureUserIndexes(context.Background(), collection)
	return &userRepository{
		collection: collection,
	}
}

func (r *userRepository) Create(ctx context.Context, profile *Profile) error {

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return err
	}

	return nil

}

func (r *userRepository) FindByID(ctx context.Context, uid string) (*Profile, error) {

	var profile Profile

	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil

}

func (r *userRepository) FindByIDs(ctx context.Context, uids []string) ([]*Profile, error) {

	profiles := make([]*Profile, 0, len(uids))
	if len(uids) == 0 {
		return profiles, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": uids}})
	if err != nil {
		return nil, err
	}

	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}

	return profiles, nil

}

// Merge writes the given fields onto the profile, creating the document when
// it does not exist yet.
func (r *userRepository) Merge(ctx context.Context, uid string, fields map[string]interface{}) error {

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": uid},
		mergeUpdate(fields, time.Now()),
		options.Update().SetUpsert(true),
	)

	return err

}

func (r *userRepository) RecordCheckIn(ctx context.Context, uid string, record models.CheckInRecord, current *models.CurrentShelter) error {

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, checkInUpdate(record, current, time.Now()))
	return requireMatch(res, err)

}

func (r *userRepository) RecordCheckOut(ctx context.Context, uid string, record models.CheckInRecord) error {

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, checkInUpdate(record, nil, time.Now()))
	return requireMatch(res, err)

}

func requireMatch(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res == nil || res.MatchedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func mergeUpdate(fields map[string]interface{}, now time.Time) bson.M {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	set["updated_at"] = now
	return bson.M{"$set": set}
}

// checkInUpdate appends to the history and replaces current_shelter; a nil
// current clears it, which is what a check-out does.
func checkInUpdate(record models.CheckInRecord, current *models.CurrentShelter, now time.Time) bson.M {
	return bson.M{
		"$push": bson.M{"check_in_history": record},
		"$set": bson.M{
			"current_shelter": current,
			"updated_at":      now,
		},
	}
}

func EnsureUserIndexes(ctx context.Context, coll *mongo.Collection) error {

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "email", Value: 1},
			},
			Options: options.Index().
				SetName("by_email"),
		},
		{
			Keys: bson.D{
				{Key: "current_shelter.shelter_id", Value: 1},
			},
			Options: options.Index().
				SetName("by_current_shelter"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

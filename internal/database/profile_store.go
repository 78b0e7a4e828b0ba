package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/code-sharad/e-com-sub000/internal/customers"
	"github.com/code-sharad/e-com-sub000/internal/models"
)

// profileProjection keeps credentials out of the engine's reads.
var profileProjection = bson.M{"passwordHash": 0}

// ProfileStore reads user profiles from the users collection.
type ProfileStore struct {
	coll *mongo.Collection
}

func NewProfileStore(db *mongo.Database) *ProfileStore {
	return &ProfileStore{coll: db.Collection(UsersCollection)}
}

func (s *ProfileStore) ListUserProfiles(ctx context.Context, filter customers.ProfileFilter) ([]models.UserProfile, error) {
	query := bson.M{}
	if filter.Email != "" {
		query["email"] = emailMatch(filter.Email)
	}

	cursor, err := s.coll.Find(ctx, query, options.Find().SetProjection(profileProjection))
	if err != nil {
		return nil, classifyError("find users", err)
	}
	defer cursor.Close(ctx)

	profiles := make([]models.UserProfile, 0)
	for cursor.Next(ctx) {
		var profile models.UserProfile
		if err := cursor.Decode(&profile); err != nil {
			log.Printf("[DB] [WARN] skipping user %v: %v: %v", cursor.Current.Lookup("_id"), customers.ErrMalformedRecord, err)
			continue
		}
		profiles = append(profiles, profile)
	}
	if err := cursor.Err(); err != nil {
		return nil, classifyError("iterate users", err)
	}
	return profiles, nil
}

// SetStatusOverride stores or, for an empty status, removes the profile's
// administrative status.
func (s *ProfileStore) SetStatusOverride(ctx context.Context, id string, status models.CustomerStatus) error {
	userID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid id %q", customers.ErrProfileNotFound, id)
	}

	update := bson.M{
		"$set": bson.M{"statusOverride": status, "updatedAt": time.Now()},
	}
	if status == "" {
		update = bson.M{
			"$unset": bson.M{"statusOverride": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return classifyError("update user status", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", customers.ErrProfileNotFound, id)
	}
	return nil
}

package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// OrderEmailIndex serves per-customer order history, newest first.
	OrderEmailIndex = "customerEmail_createdAt"
	// OrderRecencyIndex serves the full order listing, newest first.
	OrderRecencyIndex = "createdAt_desc"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(UsersCollection).Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("[DB] [INFO] EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("[DB] [ERROR] EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("[DB] [INFO] EnsureUserIndexes: email_unique index created")
	return nil
}

// EnsureOrderIndexes requests the two indexes the order store hints. Builds
// on a large collection finish in the background; until then sorted queries
// fail and the customer engine sorts in memory.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(OrdersCollection).Indexes()

	models := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "customerEmail", Value: 1},
				{Key: "createdAt", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName(OrderEmailIndex),
		},
		{
			Keys: bson.D{
				{Key: "createdAt", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName(OrderRecencyIndex),
		},
	}

	log.Printf("[DB] [INFO] EnsureOrderIndexes: creating %s and %s indexes", OrderEmailIndex, OrderRecencyIndex)
	_, err := indexes.CreateMany(ctx, models)
	if err != nil {
		log.Println("[DB] [ERROR] EnsureOrderIndexes: order index error:", err)
		return err
	}
	log.Println("[DB] [INFO] EnsureOrderIndexes: order indexes created")
	return nil
}

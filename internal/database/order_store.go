package database

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/code-sharad/e-com-sub000/internal/customers"
	"github.com/code-sharad/e-com-sub000/internal/models"
)

// OrderStore reads orders. Sorted queries are hinted to the matching index
// so a missing or building index fails fast with ErrIndexNotReady instead of
// degrading into a collection scan the planner cannot see.
type OrderStore struct {
	coll *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{coll: db.Collection(OrdersCollection)}
}

func (s *OrderStore) ListOrders(ctx context.Context, query customers.OrderQuery) ([]models.Order, error) {
	filter := bson.M{}
	if query.Email != "" {
		filter["customerEmail"] = emailMatch(query.Email)
	}

	opts := options.Find()
	if query.SortNewestFirst {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
		if query.Email != "" {
			opts.SetHint(OrderEmailIndex)
		} else {
			opts.SetHint(OrderRecencyIndex)
		}
	}
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classifyError("find orders", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			log.Printf("[DB] [WARN] skipping order %v: %v: %v", cursor.Current.Lookup("_id"), customers.ErrMalformedRecord, err)
			continue
		}
		orders = append(orders, order)
	}
	if err := cursor.Err(); err != nil {
		return nil, classifyError("iterate orders", err)
	}
	return orders, nil
}

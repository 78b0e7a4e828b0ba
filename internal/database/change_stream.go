package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/time/rate"

	"github.com/code-sharad/e-com-sub000/internal/customers"
)

const defaultRestartInterval = time.Second

// ChangeStreamFeed turns collection change streams into change notifications.
// Change streams need a replica set or sharded cluster.
type ChangeStreamFeed struct {
	db      *mongo.Database
	restart time.Duration
}

func NewChangeStreamFeed(db *mongo.Database) *ChangeStreamFeed {
	return &ChangeStreamFeed{db: db, restart: defaultRestartInterval}
}

// Subscribe opens a change stream on collection. The stream is reopened after
// errors, at most once per restart interval, resuming after the last event
// seen. onChange runs on the stream's goroutine and must not block.
func (f *ChangeStreamFeed) Subscribe(collection customers.Collection, filter customers.ChangeFilter, onChange func()) (customers.CancelFunc, error) {
	coll := f.db.Collection(string(collection))
	pipeline := changePipeline(collection, filter)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := coll.Watch(ctx, pipeline, streamOptions(nil))
	if err != nil {
		cancel()
		return nil, classifyError("watch "+string(collection), err)
	}

	done := make(chan struct{})
	go f.watch(ctx, coll, pipeline, stream, onChange, done)

	return func() {
		cancel()
		<-done
	}, nil
}

func (f *ChangeStreamFeed) watch(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, stream *mongo.ChangeStream, onChange func(), done chan struct{}) {
	defer close(done)

	limiter := rate.NewLimiter(rate.Every(f.restart), 1)
	var token bson.Raw
	for {
		for stream.Next(ctx) {
			token = stream.ResumeToken()
			onChange()
		}
		streamErr := stream.Err()
		_ = stream.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
		log.Printf("[FEED] [WARN] %s change stream interrupted: %v", coll.Name(), streamErr)

		for {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			var err error
			stream, err = coll.Watch(ctx, pipeline, streamOptions(token))
			if err == nil {
				break
			}
			log.Printf("[FEED] [ERROR] %s change stream reopen failed: %v", coll.Name(), err)
			// The resume point may have rolled off the oplog.
			token = nil
		}
		if token == nil {
			// Events between the failure and the reopen are lost.
			onChange()
		}
		log.Printf("[FEED] [INFO] %s change stream reopened", coll.Name())
	}
}

func streamOptions(resumeAfter bson.Raw) *options.ChangeStreamOptions {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if resumeAfter != nil {
		opts.SetResumeAfter(resumeAfter)
	}
	return opts
}

// changePipeline scopes a stream to one identity. Deletes carry no document,
// so they always pass.
func changePipeline(collection customers.Collection, filter customers.ChangeFilter) mongo.Pipeline {
	if filter.Email == "" {
		return mongo.Pipeline{}
	}
	field := "fullDocument.email"
	if collection == customers.CollectionOrders {
		field = "fullDocument.customerEmail"
	}
	email := emailMatch(filter.Email)
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or": bson.A{
				bson.M{field: email},
				bson.M{"operationType": "delete"},
			},
		}}},
	}
}

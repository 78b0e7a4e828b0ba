// Package notify carries change notifications between processes over Redis
// pub/sub, for deployments whose MongoDB cannot serve change streams.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/code-sharad/e-com-sub000/internal/customers"
)

const channelPrefix = "customers:changes:"

// RedisFeed is both a customers.ChangeFeed and a customers.Notifier. Writers
// publish the affected email on customers:changes:<collection>; an empty
// payload means "anything may have changed".
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func Channel(collection customers.Collection) string {
	return channelPrefix + string(collection)
}

func (f *RedisFeed) Subscribe(collection customers.Collection, filter customers.ChangeFilter, onChange func()) (customers.CancelFunc, error) {
	channel := Channel(collection)
	pubsub := f.client.Subscribe(context.Background(), channel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w: %w", channel, customers.ErrSourceUnavailable, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			email := customers.NormalizeEmail(msg.Payload)
			if filter.Email != "" && email != "" && !strings.EqualFold(email, filter.Email) {
				continue
			}
			onChange()
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("[FEED] [WARN] closing %s: %v", channel, err)
		}
		<-done
	}, nil
}

// Notify publishes a change of email's records in collection.
func (f *RedisFeed) Notify(ctx context.Context, collection customers.Collection, email string) error {
	if err := f.client.Publish(ctx, Channel(collection), customers.NormalizeEmail(email)).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", Channel(collection), err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (f *RedisFeed) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

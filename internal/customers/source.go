package customers

import (
	"context"

	"github.com/code-sharad/e-com-sub000/internal/models"
)

// Collection names a source collection a change feed can watch.
type Collection string

const (
	CollectionProfiles Collection = "users"
	CollectionOrders   Collection = "orders"
)

type ProfileFilter struct {
	Email string
}

// OrderQuery filters orders by customer email. SortNewestFirst asks for
// createdAt descending, which a source may reject with ErrIndexNotReady.
type OrderQuery struct {
	Email           string
	SortNewestFirst bool
	Limit           int
}

// ChangeFilter scopes a listener to one customer email. Empty means all.
type ChangeFilter struct {
	Email string
}

// CancelFunc stops a listener or subscription. It returns only once the
// callback it guards can no longer be invoked.
type CancelFunc func()

// ProfileStore reads user profiles and persists administrative status
// overrides on them.
type ProfileStore interface {
	ListUserProfiles(ctx context.Context, filter ProfileFilter) ([]models.UserProfile, error)
	// SetStatusOverride stores status on the profile with the given id. An
	// empty status removes the override.
	SetStatusOverride(ctx context.Context, id string, status models.CustomerStatus) error
}

type OrderSource interface {
	ListOrders(ctx context.Context, query OrderQuery) ([]models.Order, error)
}

// ChangeFeed invokes onChange whenever the collection is written. Listeners
// may fire concurrently with each other.
type ChangeFeed interface {
	Subscribe(collection Collection, filter ChangeFilter, onChange func()) (CancelFunc, error)
}

// Notifier announces writes the engine itself made, for feeds that do not
// observe the database directly.
type Notifier interface {
	Notify(ctx context.Context, collection Collection, email string) error
}

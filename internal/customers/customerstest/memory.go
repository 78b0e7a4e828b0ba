// Package customerstest provides an in-memory profile store, order source and
// change feed for exercising the customer engine without MongoDB.
package customerstest

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/code-sharad/e-com-sub000/internal/customers"
	"github.com/code-sharad/e-com-sub000/internal/models"
)

type listener struct {
	collection customers.Collection
	email      string
	onChange   func()
}

// Store implements customers.ProfileStore, customers.OrderSource,
// customers.ChangeFeed and customers.Notifier over slices.
type Store struct {
	mu        sync.Mutex
	profiles  []models.UserProfile
	orders    []models.Order
	listeners map[int]*listener
	nextID    int

	sortErr      error
	listErr      error
	subscribeErr map[customers.Collection]error
	gate         chan struct{}
	waiting      int

	sortedCalls   int
	unsortedCalls int
}

func NewStore() *Store {
	return &Store{listeners: make(map[int]*listener)}
}

// AddProfile inserts a profile, assigns an id when missing and notifies
// profile listeners.
func (s *Store) AddProfile(p models.UserProfile) models.UserProfile {
	s.mu.Lock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.profiles = append(s.profiles, p)
	s.mu.Unlock()
	s.fire(customers.CollectionProfiles, p.Email)
	return p
}

// AddOrder inserts an order and notifies order listeners.
func (s *Store) AddOrder(o models.Order) models.Order {
	s.mu.Lock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.orders = append(s.orders, o)
	s.mu.Unlock()
	s.fire(customers.CollectionOrders, o.CustomerEmail)
	return o
}

func (s *Store) Profile(id string) (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ID.Hex() == id {
			return p, true
		}
	}
	return models.UserProfile{}, false
}

// SetSortErr makes every sorted order query fail with err.
func (s *Store) SetSortErr(err error) {
	s.mu.Lock()
	s.sortErr = err
	s.mu.Unlock()
}

// SetListErr makes every read fail with err.
func (s *Store) SetListErr(err error) {
	s.mu.Lock()
	s.listErr = err
	s.mu.Unlock()
}

// SetSubscribeErr makes listeners on collection fail to open.
func (s *Store) SetSubscribeErr(collection customers.Collection, err error) {
	s.mu.Lock()
	if s.subscribeErr == nil {
		s.subscribeErr = make(map[customers.Collection]error)
	}
	s.subscribeErr[collection] = err
	s.mu.Unlock()
}

// Block holds every read started from now on until release is called, even
// if the read's context is cancelled first, the way a source that ignores
// cancellation behaves.
func (s *Store) Block() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == gate {
				s.gate = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *Store) Calls() (sorted, unsorted int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedCalls, s.unsortedCalls
}

func (s *Store) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Waiting is the number of reads currently held by Block.
func (s *Store) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}

func (s *Store) wait() {
	s.mu.Lock()
	gate := s.gate
	if gate != nil {
		s.waiting++
	}
	s.mu.Unlock()
	if gate == nil {
		return
	}
	<-gate
	s.mu.Lock()
	s.waiting--
	s.mu.Unlock()
}

func (s *Store) ListUserProfiles(ctx context.Context, filter customers.ProfileFilter) ([]models.UserProfile, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if filter.Email != "" && customers.NormalizeEmail(p.Email) != customers.NormalizeEmail(filter.Email) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) SetStatusOverride(ctx context.Context, id string, status models.CustomerStatus) error {
	s.mu.Lock()
	var email string
	found := false
	for i := range s.profiles {
		if s.profiles[i].ID.Hex() == id {
			s.profiles[i].StatusOverride = status
			email = s.profiles[i].Email
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %s", customers.ErrProfileNotFound, id)
	}
	s.fire(customers.CollectionProfiles, email)
	return nil
}

// ListOrders returns orders in insertion order when unsorted, which is what
// an unindexed scan looks like, and newest first when sorted.
func (s *Store) ListOrders(ctx context.Context, query customers.OrderQuery) ([]models.Order, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if query.SortNewestFirst {
		s.sortedCalls++
	} else {
		s.unsortedCalls++
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	if query.SortNewestFirst && s.sortErr != nil {
		return nil, s.sortErr
	}
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if query.Email != "" && customers.NormalizeEmail(o.CustomerEmail) != customers.NormalizeEmail(query.Email) {
			continue
		}
		out = append(out, o)
	}
	if query.SortNewestFirst {
		customers.SortNewestFirst(out)
	}
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (s *Store) Subscribe(collection customers.Collection, filter customers.ChangeFilter, onChange func()) (customers.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.subscribeErr[collection]; err != nil {
		return nil, err
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = &listener{collection: collection, email: filter.Email, onChange: onChange}
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}, nil
}

func (s *Store) Notify(ctx context.Context, collection customers.Collection, email string) error {
	s.fire(collection, email)
	return nil
}

// Fire notifies listeners on collection as if email's records changed.
func (s *Store) Fire(collection customers.Collection, email string) {
	s.fire(collection, email)
}

func (s *Store) fire(collection customers.Collection, email string) {
	s.mu.Lock()
	targets := make([]func(), 0, len(s.listeners))
	for _, l := range s.listeners {
		if l.collection != collection {
			continue
		}
		if l.email != "" && email != "" && customers.NormalizeEmail(l.email) != customers.NormalizeEmail(email) {
			continue
		}
		targets = append(targets, l.onChange)
	}
	s.mu.Unlock()
	for _, fn := range targets {
		fn()
	}
}

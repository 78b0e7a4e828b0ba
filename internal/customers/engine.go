package customers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/code-sharad/e-com-sub000/internal/models"
)

// StatusAuto clears an administrative override in UpdateCustomerStatus.
const StatusAuto models.CustomerStatus = "auto"

type Options struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Location is the reference zone for "new today". Defaults to UTC.
	Location *time.Location
	// Debounce collapses change bursts into one rebuild. Zero disables it.
	Debounce time.Duration
	// RefreshSchedule is a cron spec on which every subscription rebuilds so
	// time-based status changes reach subscribers. Empty disables it.
	RefreshSchedule string
	// Notifier is told about overrides written by UpdateCustomerStatus.
	Notifier Notifier
}

// Engine derives customers from the profile and order sources.
type Engine struct {
	profiles ProfileStore
	orders   *Planner
	feed     ChangeFeed
	notifier Notifier
	validate *validator.Validate

	now      func() time.Time
	loc      *time.Location
	debounce time.Duration
	schedule string
	cron     *cron.Cron

	mu   sync.Mutex
	live map[*Subscription]struct{}
}

func NewEngine(profiles ProfileStore, orders OrderSource, feed ChangeFeed, opts Options) (*Engine, error) {
	if profiles == nil || orders == nil {
		return nil, errors.New("customers: profile and order sources are required")
	}
	e := &Engine{
		profiles: profiles,
		orders:   NewPlanner(orders),
		feed:     feed,
		notifier: opts.Notifier,
		validate: validator.New(),
		now:      opts.Now,
		loc:      opts.Location,
		debounce: opts.Debounce,
		schedule: strings.TrimSpace(opts.RefreshSchedule),
		live:     make(map[*Subscription]struct{}),
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.schedule != "" {
		if _, err := cron.ParseStandard(e.schedule); err != nil {
			return nil, fmt.Errorf("customers: invalid refresh schedule %q: %w", e.schedule, err)
		}
		e.cron = cron.New(cron.WithLocation(e.loc))
	}
	return e, nil
}

// Start runs the scheduled status refresh.
func (e *Engine) Start() {
	if e.cron != nil {
		e.cron.Start()
		log.Printf("[CUSTOMERS] [INFO] status refresh scheduled (%s)", e.schedule)
	}
}

// Stop closes every live subscription and the refresh scheduler.
func (e *Engine) Stop() {
	e.mu.Lock()
	subs := make([]*Subscription, 0, len(e.live))
	for s := range e.live {
		subs = append(subs, s)
	}
	e.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
	if e.cron != nil {
		<-e.cron.Stop().Done()
	}
}

// GetAllCustomers rebuilds the full customer set, newest join date first.
func (e *Engine) GetAllCustomers(ctx context.Context) ([]models.Customer, error) {
	entries, err := e.load(ctx, "")
	if err != nil {
		return nil, err
	}
	now := e.now()
	list := make([]models.Customer, 0, len(entries))
	for _, entry := range entries {
		list = append(list, Build(entry, now, ListView))
	}
	SortByJoinDate(list)
	return list, nil
}

// GetCustomerByEmail returns nil, nil when neither a profile nor an order
// exists for email.
func (e *Engine) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	key := NormalizeEmail(email)
	if key == "" {
		return nil, nil
	}
	entries, err := e.load(ctx, key)
	if err != nil {
		return nil, err
	}
	entry, ok := entries[key]
	if !ok {
		return nil, nil
	}
	customer := Build(entry, e.now(), DetailView)
	return &customer, nil
}

func (e *Engine) GetCustomerStats(ctx context.Context) (models.CustomerStats, error) {
	list, err := e.GetAllCustomers(ctx)
	if err != nil {
		return models.CustomerStats{}, err
	}
	return Aggregate(list, e.now(), e.loc), nil
}

// UpdateCustomerStatus stores an administrative status on the customer's
// profile. The override survives rebuilds until it is reset with StatusAuto.
// id is a profile id or, for convenience, the customer's email.
func (e *Engine) UpdateCustomerStatus(ctx context.Context, id string, status models.CustomerStatus) error {
	if status != StatusAuto && !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	override := status
	if status == StatusAuto {
		override = ""
	}

	id = strings.TrimSpace(id)
	profileID, email := id, ""
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		profiles, err := e.profiles.ListUserProfiles(ctx, ProfileFilter{Email: NormalizeEmail(id)})
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		profileID = profiles[len(profiles)-1].ID.Hex()
		email = NormalizeEmail(profiles[len(profiles)-1].Email)
	}

	if err := e.profiles.SetStatusOverride(ctx, profileID, override); err != nil {
		return err
	}
	log.Printf("[CUSTOMERS] [INFO] status override for %s set to %q", profileID, override)

	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, CollectionProfiles, email); err != nil {
			log.Printf("[CUSTOMERS] [WARN] change notification for %s failed: %v", profileID, err)
		}
	}
	return nil
}

// SubscribeToCustomers delivers the full customer list after every change.
func (e *Engine) SubscribeToCustomers(callback func([]models.Customer)) *Subscription {
	return e.subscribe("customers", ChangeFilter{}, func(ctx context.Context) (func(), error) {
		list, err := e.GetAllCustomers(ctx)
		if err != nil {
			return nil, err
		}
		return func() { callback(list) }, nil
	}, func() { callback([]models.Customer{}) })
}

// SubscribeToCustomer delivers one customer, or nil while it does not exist.
func (e *Engine) SubscribeToCustomer(email string, callback func(*models.Customer)) *Subscription {
	key := NormalizeEmail(email)
	return e.subscribe("customer:"+key, ChangeFilter{Email: key}, func(ctx context.Context) (func(), error) {
		customer, err := e.GetCustomerByEmail(ctx, key)
		if err != nil {
			return nil, err
		}
		return func() { callback(customer) }, nil
	}, func() { callback(nil) })
}

func (e *Engine) SubscribeToCustomerStats(callback func(models.CustomerStats)) *Subscription {
	return e.subscribe("stats", ChangeFilter{}, func(ctx context.Context) (func(), error) {
		stats, err := e.GetCustomerStats(ctx)
		if err != nil {
			return nil, err
		}
		return func() { callback(stats) }, nil
	}, func() { callback(models.CustomerStats{}) })
}

func (e *Engine) subscribe(scope string, filter ChangeFilter, rebuild rebuildFunc, emitEmpty func()) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		id:        uuid.NewString(),
		scope:     scope,
		engine:    e,
		ctx:       ctx,
		cancel:    cancel,
		rebuild:   rebuild,
		emitEmpty: emitEmpty,
	}
	s.coalescer = newCoalescer(e.debounce, s.startRebuild)

	s.setState(StateSubscribing)
	if e.feed != nil {
		for _, collection := range []Collection{CollectionProfiles, CollectionOrders} {
			stop, err := e.feed.Subscribe(collection, filter, s.Refresh)
			if err != nil {
				log.Printf("[CUSTOMERS] [WARN] subscription %s (%s): %s listener unavailable: %v", s.id, scope, collection, err)
				continue
			}
			s.listeners = append(s.listeners, stop)
		}
	}
	if e.cron != nil {
		entry, err := e.cron.AddFunc(e.schedule, s.Refresh)
		if err != nil {
			log.Printf("[CUSTOMERS] [WARN] subscription %s (%s): refresh not scheduled: %v", s.id, scope, err)
		} else {
			s.cronEntry, s.scheduled = entry, true
		}
	}

	e.mu.Lock()
	e.live[s] = struct{}{}
	e.mu.Unlock()

	s.setState(StateActive)
	log.Printf("[CUSTOMERS] [INFO] subscription %s (%s) active with %d listeners", s.id, scope, len(s.listeners))
	s.Refresh()
	return s
}

func (e *Engine) release(s *Subscription) {
	if s.scheduled {
		e.cron.Remove(s.cronEntry)
	}
	e.mu.Lock()
	delete(e.live, s)
	e.mu.Unlock()
}

// load fetches both sources concurrently and resolves them. A non-empty email
// restricts both reads to that identity.
func (e *Engine) load(ctx context.Context, email string) (map[string]*Entry, error) {
	var (
		profiles []models.UserProfile
		orders   []models.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = e.profiles.ListUserProfiles(gctx, ProfileFilter{Email: email})
		if err != nil {
			return fmt.Errorf("list profiles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		orders, err = e.orders.ListOrders(gctx, OrderQuery{Email: email, SortNewestFirst: true})
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Resolve(e.validProfiles(profiles), e.validOrders(orders)), nil
}

// validProfiles drops profiles whose normalized email is missing or invalid.
func (e *Engine) validProfiles(profiles []models.UserProfile) []models.UserProfile {
	valid := profiles[:0:0]
	for _, p := range profiles {
		p.Email = NormalizeEmail(p.Email)
		if err := e.validate.Struct(p); err != nil {
			log.Printf("[CUSTOMERS] [WARN] skipping profile %s: %v: %v", p.ID.Hex(), ErrMalformedRecord, err)
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

func (e *Engine) validOrders(orders []models.Order) []models.Order {
	valid := orders[:0:0]
	for _, o := range orders {
		o.CustomerEmail = NormalizeEmail(o.CustomerEmail)
		if err := e.validate.Struct(o); err != nil {
			log.Printf("[CUSTOMERS] [WARN] skipping order %s: %v: %v", o.ID.Hex(), ErrMalformedRecord, err)
			continue
		}
		valid = append(valid, o)
	}
	return valid
}

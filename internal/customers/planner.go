package customers

import (
	"context"
	"errors"
	"log"

	"github.com/code-sharad/e-com-sub000/internal/models"
)

// Planner runs order queries and degrades sorted queries to an unsorted read
// plus an in-memory sort when the source reports ErrIndexNotReady. Every
// other error is returned as is.
type Planner struct {
	source OrderSource
}

func NewPlanner(source OrderSource) *Planner {
	return &Planner{source: source}
}

func (p *Planner) ListOrders(ctx context.Context, query OrderQuery) ([]models.Order, error) {
	orders, err := p.source.ListOrders(ctx, query)
	if err == nil || !query.SortNewestFirst || !errors.Is(err, ErrIndexNotReady) {
		return orders, err
	}

	log.Printf("[CUSTOMERS] [WARN] order index not ready (email=%q), sorting in memory: %v", query.Email, err)

	fallback := query
	fallback.SortNewestFirst = false
	fallback.Limit = 0
	orders, err = p.source.ListOrders(ctx, fallback)
	if err != nil {
		return nil, err
	}

	SortNewestFirst(orders)
	if query.Limit > 0 && len(orders) > query.Limit {
		orders = orders[:query.Limit]
	}
	return orders, nil
}

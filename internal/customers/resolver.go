package customers

import (
	"log"
	"strings"

	"github.com/code-sharad/e-com-sub000/internal/models"
)

// Entry is everything known about one identity key: at most one profile and
// every order placed with that email.
type Entry struct {
	Email   string
	Profile *models.UserProfile
	Orders  []models.Order
}

// Orphan reports whether the entry only exists because of orders.
func (e *Entry) Orphan() bool {
	return e.Profile == nil
}

// NormalizeEmail is the join key used for profiles and orders.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Resolve joins profiles and orders on email. Map iteration order is not
// meaningful; callers sort the projections they build from it. Two profiles
// sharing an email resolve to the later one in input order.
func Resolve(profiles []models.UserProfile, orders []models.Order) map[string]*Entry {
	entries := make(map[string]*Entry, len(profiles))

	for i := range profiles {
		key := NormalizeEmail(profiles[i].Email)
		if key == "" {
			continue
		}
		profile := profiles[i]
		if existing, ok := entries[key]; ok {
			log.Printf("[CUSTOMERS] [WARN] duplicate profile email %s: %s replaces %s", key, profile.ID.Hex(), existing.Profile.ID.Hex())
			existing.Profile = &profile
			continue
		}
		entries[key] = &Entry{Email: key, Profile: &profile}
	}

	for i := range orders {
		key := NormalizeEmail(orders[i].CustomerEmail)
		if key == "" {
			continue
		}
		entry, ok := entries[key]
		if !ok {
			entry = &Entry{Email: key}
			entries[key] = entry
		}
		entry.Orders = append(entry.Orders, orders[i])
	}

	return entries
}

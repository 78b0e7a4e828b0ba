package customers

import (
	"time"

	"github.com/code-sharad/e-com-sub000/internal/models"
)

// Aggregate reduces a customer build to dashboard counters. The average order
// value is revenue over all orders, not the mean of per-customer averages.
// "Today" starts at midnight in loc; "this week" is the trailing seven days.
func Aggregate(list []models.Customer, now time.Time, loc *time.Location) models.CustomerStats {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	var stats models.CustomerStats
	var orders int
	for _, c := range list {
		stats.Total++
		switch c.Status {
		case models.StatusActive:
			stats.Active++
		case models.StatusBlocked:
			stats.Blocked++
		default:
			stats.Inactive++
		}
		stats.TotalRevenue += c.TotalSpent
		orders += c.TotalOrders

		if c.JoinDate.IsZero() {
			continue
		}
		if !c.JoinDate.Before(startOfDay) {
			stats.NewToday++
		}
		if !c.JoinDate.Before(weekAgo) {
			stats.NewThisWeek++
		}
	}
	if orders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(orders)
	}
	return stats
}

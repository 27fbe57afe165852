// Package analytics computes the back-office dashboard figures from the
// order list.
package analytics

import (
	"sort"
	"time"

	"github.com/rjpc/storefront/internal/models"
)

const chartDays = 7

type DailyRevenue struct {
	Date    string  `json:"date"` // e.g. "Jan 2"
	Revenue float64 `json:"revenue"`
}

type Summary struct {
	TotalRevenue float64        `json:"totalRevenue"`
	PendingCount int            `json:"pendingCount"`
	TopProduct   string         `json:"topProduct"`
	Daily        []DailyRevenue `json:"daily"`
	OrderCount   int            `json:"orderCount"`
}

// earns reports whether an order's total counts as revenue.
func earns(s models.OrderStatus) bool {
	st, err := models.ParseOrderStatus(string(s))
	return err == nil && (st == models.OrderStatusShipped || st == models.OrderStatusCompleted)
}

// Summarize builds the dashboard. Days are bucketed in now's location; every
// day with at least one order gets a bar, and only the latest seven are kept,
// oldest first.
func Summarize(orders []models.Order, now time.Time) Summary {
	loc := now.Location()
	sum := Summary{TopProduct: "None", Daily: []DailyRevenue{}, OrderCount: len(orders)}

	type day struct {
		key     time.Time
		revenue float64
	}
	days := map[time.Time]*day{}

	counts := map[string]int{}
	var names []string

	for _, o := range orders {
		st, _ := models.ParseOrderStatus(string(o.Status))
		if st == models.OrderStatusPending {
			sum.PendingCount++
		}

		var amount float64
		if earns(o.Status) {
			amount = o.TotalAmount
			sum.TotalRevenue += amount
		}

		t := o.CreatedAt.In(loc)
		k := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		d, ok := days[k]
		if !ok {
			d = &day{key: k}
			days[k] = d
		}
		d.revenue += amount

		for _, it := range o.Items {
			if it.ProductName == "" {
				continue
			}
			if _, seen := counts[it.ProductName]; !seen {
				names = append(names, it.ProductName)
			}
			counts[it.ProductName] += it.Quantity
		}
	}

	// Ties go to the product seen later.
	best := 0
	for _, n := range names {
		if counts[n] >= best {
			best = counts[n]
			sum.TopProduct = n
		}
	}

	ordered := make([]*day, 0, len(days))
	for _, d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key.Before(ordered[j].key) })
	if len(ordered) > chartDays {
		ordered = ordered[len(ordered)-chartDays:]
	}
	for _, d := range ordered {
		sum.Daily = append(sum.Daily, DailyRevenue{Date: d.key.Format("Jan 2"), Revenue: d.revenue})
	}
	return sum
}

// Package report aggregates orders into the reporting figures shown on the reports page.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/pkg/money"
)

const dateLayout = "2006-01-02"

// Options tune Build. Zero values fall back to the defaults used by the service.
type Options struct {
	Now         time.Time
	Location    *time.Location
	TopProducts int
	Months      int
	SavingsRate money.Money
}

// Stats are the headline figures.
type Stats struct {
	TotalOrders  int         `json:"totalOrders"`
	TotalAmount  money.Money `json:"totalAmount"`
	AverageOrder money.Money `json:"averageOrder"`
	Savings      money.Money `json:"savings"`
}

// Month is one bucket of the monthly series.
type Month struct {
	Month  string      `json:"month"`
	Label  string      `json:"label"`
	Orders int         `json:"orders"`
	Amount money.Money `json:"amount"`
}

// ProductLine is the ordered volume of a single product.
type ProductLine struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Total     money.Money `json:"total"`
}

// BranchLine is the ordering volume of a single branch.
type BranchLine struct {
	BranchID int64       `json:"branchId"`
	Name     string      `json:"name"`
	Orders   int         `json:"orders"`
	Total    money.Money `json:"total"`
	Average  money.Money `json:"average"`
}

// Result is the full report.
type Result struct {
	Stats            Stats                      `json:"stats"`
	ByStatus         map[entity.OrderStatus]int `json:"byStatus"`
	MonthlyData      []Month                    `json:"monthlyData"`
	TopProducts      []ProductLine              `json:"topProducts"`
	HotelPerformance []BranchLine               `json:"hotelPerformance"`
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.TopProducts <= 0 {
		o.TopProducts = 10
	}
	if o.Months <= 0 {
		o.Months = 6
	}
	return o
}

// Build aggregates orders. Items are expected to carry their offer and product, and orders
// their branch; lines without them are grouped under id 0.
func Build(orders []*entity.Order, opts Options) Result {
	opts = opts.withDefaults()

	res := Result{
		ByStatus: make(map[entity.OrderStatus]int),
	}

	total := money.Zero()
	for _, o := range orders {
		total = money.Add(total, o.TotalAmount)
		res.ByStatus[o.Status]++
	}
	res.Stats = Stats{
		TotalOrders:  len(orders),
		TotalAmount:  total,
		AverageOrder: total.DivInt(len(orders)),
		Savings:      money.MulTrunc(total, opts.SavingsRate),
	}
	res.MonthlyData = monthly(orders, opts)
	res.TopProducts = topProducts(orders, opts.TopProducts)
	res.HotelPerformance = hotelPerformance(orders)
	return res
}

func monthly(orders []*entity.Order, opts Options) []Month {
	now := opts.Now.In(opts.Location)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, opts.Location)

	months := make([]Month, 0, opts.Months)
	for i := opts.Months - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		m := Month{
			Month:  fmt.Sprintf("%d/%d", int(start.Month()), start.Year()),
			Label:  start.Format("Jan 2006"),
			Amount: money.Zero(),
		}
		for _, o := range orders {
			created := o.CreatedAt.In(opts.Location)
			if created.Before(start) || !created.Before(end) {
				continue
			}
			m.Orders++
			m.Amount = money.Add(m.Amount, o.TotalAmount)
		}
		months = append(months, m)
	}
	return months
}

func topProducts(orders []*entity.Order, limit int) []ProductLine {
	index := make(map[int64]int)
	lines := make([]ProductLine, 0)
	for _, o := range orders {
		for _, item := range o.Items {
			var id int64
			name := ""
			if item.ProductOffer != nil {
				id = item.ProductOffer.ProductID
				if item.ProductOffer.Product != nil {
					name = item.ProductOffer.Product.Name
				}
			}
			i, ok := index[id]
			if !ok {
				i = len(lines)
				index[id] = i
				lines = append(lines, ProductLine{ProductID: id, Name: name, Total: money.Zero()})
			}
			lines[i].Quantity += item.Quantity
			lines[i].Total = money.Add(lines[i].Total, item.TotalPrice)
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Quantity > lines[j].Quantity
	})
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return lines
}

func hotelPerformance(orders []*entity.Order) []BranchLine {
	index := make(map[int64]int)
	lines := make([]BranchLine, 0)
	for _, o := range orders {
		i, ok := index[o.BranchID]
		if !ok {
			i = len(lines)
			index[o.BranchID] = i
			name := ""
			if o.Branch != nil {
				name = o.Branch.Name
			}
			lines = append(lines, BranchLine{BranchID: o.BranchID, Name: name, Total: money.Zero()})
		}
		lines[i].Orders++
		lines[i].Total = money.Add(lines[i].Total, o.TotalAmount)
	}
	for i := range lines {
		lines[i].Average = lines[i].Total.DivInt(lines[i].Orders)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Total.Cmp(lines[j].Total) > 0
	})
	return lines
}

// Window parses optional YYYY-MM-DD bounds in loc. The upper bound covers the whole day.
// A nil bound means unbounded.
func Window(from, to string, loc *time.Location) (start, end *time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date %q: expected YYYY-MM-DD", from)
		}
		start = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date %q: expected YYYY-MM-DD", to)
		}
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, fmt.Errorf("date range is inverted: %s is after %s", from, to)
	}
	return start, end, nil
}

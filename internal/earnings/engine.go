// Package earnings derives homemaker and delivery-partner earnings from
// delivered orders and decides payout eligibility. The engine functions are
// pure; Service wires them to the document store.
package earnings

import (
	"sort"
	"time"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	"github.com/dibba-app/dibba-backend/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	HistoryDays    = 30
	ChartDays      = 7
	PayoutCooldown = 7 * 24 * time.Hour
)

var (
	BaseDelivery = decimal.NewFromInt(30)
	PerKm        = decimal.NewFromInt(10)
	PlatformFee  = decimal.RequireFromString("0.10")
	MinPayout    = decimal.NewFromInt(500)
)

// Input is everything a projection is computed from.
type Input struct {
	Orders  []models.Order
	Payouts []models.Payout
	UserID  string
	Role    enums.Role
	Now     time.Time
}

type DayStats struct {
	Orders   int     `json:"orders"`
	Earnings float64 `json:"earnings"`
}

type Summary struct {
	TotalEarnings  float64    `json:"totalEarnings"`
	TotalOrders    int        `json:"totalOrders"`
	TodayStats     DayStats   `json:"todayStats"`
	PendingPayout  float64    `json:"pendingPayout"`
	LastPayoutDate *time.Time `json:"lastPayoutDate"`
}

type HistoryEntry struct {
	Date   string  `json:"date"`
	Orders int     `json:"orders"`
	Amount float64 `json:"amount"`
}

type ChartPoint struct {
	Name     string  `json:"name"`
	Earnings float64 `json:"earnings"`
	Orders   int     `json:"orders"`
}

// Earn returns what role earns for one delivered order. Homemaker earnings
// come from the order's own price snapshot.
func Earn(order models.Order, role enums.Role) decimal.Decimal {
	switch role {
	case enums.RoleDelivery:
		return BaseDelivery.Add(PerKm.Mul(money.FromFloat(order.Distance())))
	case enums.RoleHomemaker:
		gross := decimal.Zero
		for _, item := range order.Items {
			gross = gross.Add(money.Line(item.Price, item.Quantity))
		}
		return gross.Mul(decimal.NewFromInt(1).Sub(PlatformFee))
	}
	return decimal.Zero
}

// Earning reports whether the order counts toward the user's earnings.
func Earning(order models.Order, userID string, role enums.Role) bool {
	if order.Status != enums.OrderStatusDelivered {
		return false
	}
	switch role {
	case enums.RoleDelivery:
		return order.DeliveryPartnerID == userID
	case enums.RoleHomemaker:
		return order.HomemakerID == userID
	}
	return false
}

func earningOrders(in Input) []models.Order {
	var out []models.Order
	for _, o := range in.Orders {
		if Earning(o, in.UserID, in.Role) {
			out = append(out, o)
		}
	}
	return out
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// bucket returns per-day earnings for days [today-(days-1), today], oldest first.
func bucket(in Input, days int) ([]time.Time, []DayStats) {
	loc := in.Now.Location()
	today := startOfDay(in.Now, loc)
	first := today.AddDate(0, 0, -(days - 1))

	starts := make([]time.Time, days)
	for i := range starts {
		starts[i] = first.AddDate(0, 0, i)
	}
	stats := make([]DayStats, days)
	amounts := make([]decimal.Decimal, days)
	for i := range amounts {
		amounts[i] = decimal.Zero
	}

	for _, o := range earningOrders(in) {
		day := startOfDay(o.OrderDate, loc)
		if day.Before(first) || day.After(today) {
			continue
		}
		for i, start := range starts {
			if start.Equal(day) {
				stats[i].Orders++
				amounts[i] = amounts[i].Add(Earn(o, in.Role))
				break
			}
		}
	}
	for i := range stats {
		stats[i].Earnings = money.Float(amounts[i])
	}
	return starts, stats
}

func countedPayouts(in Input) []models.Payout {
	var out []models.Payout
	for _, p := range in.Payouts {
		if p.UserID == in.UserID && p.Status.Counts() {
			out = append(out, p)
		}
	}
	return out
}

func totals(in Input) (decimal.Decimal, int, decimal.Decimal, *time.Time) {
	total := decimal.Zero
	orders := earningOrders(in)
	for _, o := range orders {
		total = total.Add(Earn(o, in.Role))
	}

	paid := decimal.Zero
	var last *time.Time
	for _, p := range countedPayouts(in) {
		paid = paid.Add(money.FromFloat(p.Amount))
		if last == nil || p.Date.After(*last) {
			date := p.Date
			last = &date
		}
	}

	pending := total.Sub(paid)
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	return total, len(orders), pending, last
}

// Summarize computes the all-time totals, today's stats and the payout balance.
func Summarize(in Input) Summary {
	total, count, pending, last := totals(in)
	_, today := bucket(in, 1)
	return Summary{
		TotalEarnings:  money.Float(total),
		TotalOrders:    count,
		TodayStats:     today[0],
		PendingPayout:  money.Float(pending),
		LastPayoutDate: last,
	}
}

// History lists the days of the last 30 with at least one delivered order,
// newest first.
func History(in Input) []HistoryEntry {
	starts, stats := bucket(in, HistoryDays)
	out := []HistoryEntry{}
	for i := range starts {
		if stats[i].Orders == 0 {
			continue
		}
		out = append(out, HistoryEntry{
			Date:   starts[i].Format(time.DateOnly),
			Orders: stats[i].Orders,
			Amount: stats[i].Earnings,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Chart returns the last seven days oldest first, zero-filled.
func Chart(in Input) []ChartPoint {
	starts, stats := bucket(in, ChartDays)
	out := make([]ChartPoint, len(starts))
	for i, start := range starts {
		out[i] = ChartPoint{
			Name:     start.Format("Mon"),
			Earnings: stats[i].Earnings,
			Orders:   stats[i].Orders,
		}
	}
	return out
}

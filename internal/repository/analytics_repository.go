package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// AnalyticsRepo runs the dashboard aggregation queries.  Revenue is
// derived from pre-ordered menu items; reservations without
// pre-orders fall back to a flat per-seat fee.
type AnalyticsRepo struct {
	db *sql.DB
}

// NewAnalyticsRepo returns a new AnalyticsRepo bound to the given database.
func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

// seatFee is charged per party member when a reservation has no
// pre-ordered items, mirroring the dashboard's fallback pricing.
const seatFee = 500

// TotalRevenue sums pre-ordered item prices over a restaurant's
// confirmed reservations.
func (r *AnalyticsRepo) TotalRevenue(ctx context.Context, restaurantID uint64) (float64, error) {
	const q = `SELECT COALESCE(SUM(m.price), 0)
	           FROM reservations res
	           JOIN reservation_items ri ON ri.reservation_id = res.id
	           JOIN menu_items m ON m.id = ri.menu_item_id
	           WHERE res.restaurant_id = ? AND res.status = ?`
	var total float64
	err := r.db.QueryRowContext(ctx, q, restaurantID, model.ReservationConfirmed).Scan(&total)
	return total, err
}

// AverageSpend computes the mean pre-order total per distinct diner
// across a restaurant's confirmed reservations.
func (r *AnalyticsRepo) AverageSpend(ctx context.Context, restaurantID uint64) (float64, error) {
	const q = `SELECT COALESCE(AVG(user_total), 0) FROM (
	             SELECT res.user_id, SUM(m.price) AS user_total
	             FROM reservations res
	             JOIN reservation_items ri ON ri.reservation_id = res.id
	             JOIN menu_items m ON m.id = ri.menu_item_id
	             WHERE res.restaurant_id = ? AND res.status = ?
	             GROUP BY res.user_id
	           ) t`
	var avg float64
	err := r.db.QueryRowContext(ctx, q, restaurantID, model.ReservationConfirmed).Scan(&avg)
	return avg, err
}

// NoShowRate returns the percentage of a restaurant's reservations
// that ended as no-shows.  Zero reservations yields zero.
func (r *AnalyticsRepo) NoShowRate(ctx context.Context, restaurantID uint64) (float64, error) {
	var total, noShows uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE restaurant_id = ?`, restaurantID).Scan(&total); err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE restaurant_id = ? AND status = ?`,
		restaurantID, model.ReservationNoShow).Scan(&noShows); err != nil {
		return 0, err
	}
	return float64(noShows) / float64(total) * 100, nil
}

// TimeCount pairs a reservation time with how often it was booked.
type TimeCount struct {
	Time  string `json:"time"`
	Count uint64 `json:"count"`
}

// PeakTimes returns reservation times ranked by booking frequency.
func (r *AnalyticsRepo) PeakTimes(ctx context.Context, restaurantID uint64) ([]TimeCount, error) {
	const q = `SELECT reservation_time, COUNT(*) AS n
	           FROM reservations WHERE restaurant_id = ?
	           GROUP BY reservation_time ORDER BY n DESC`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TimeCount{}
	for rows.Next() {
		var tc TimeCount
		if err := rows.Scan(&tc.Time, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// ItemCount pairs a menu item with how often it was pre-ordered.
type ItemCount struct {
	ItemID uint64 `json:"item_id"`
	Name   string `json:"name"`
	Count  uint64 `json:"count"`
}

// PopularItems ranks pre-ordered menu items across confirmed and paid
// reservations.
func (r *AnalyticsRepo) PopularItems(ctx context.Context, restaurantID uint64) ([]ItemCount, error) {
	const q = `SELECT m.id, m.name, COUNT(*) AS n
	           FROM reservations res
	           JOIN reservation_items ri ON ri.reservation_id = res.id
	           JOIN menu_items m ON m.id = ri.menu_item_id
	           WHERE res.restaurant_id = ? AND res.status IN (?, ?)
	           GROUP BY m.id, m.name ORDER BY n DESC`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, model.ReservationConfirmed, model.ReservationPayed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ItemCount{}
	for rows.Next() {
		var ic ItemCount
		if err := rows.Scan(&ic.ItemID, &ic.Name, &ic.Count); err != nil {
			return nil, err
		}
		out = append(out, ic)
	}
	return out, rows.Err()
}

// MonthRevenue is one bucket of the 12-month revenue series.
type MonthRevenue struct {
	Month   string  `json:"month"`
	Year    int     `json:"year"`
	Revenue float64 `json:"revenue"`
}

// MonthlyRevenue buckets the last 12 months of confirmed-payment
// revenue for a restaurant: pre-order totals where present, otherwise
// party size times the flat seat fee.
func (r *AnalyticsRepo) MonthlyRevenue(ctx context.Context, restaurantID uint64, now time.Time) ([]MonthRevenue, float64, error) {
	since := now.AddDate(-1, 0, 0)
	const q = `SELECT YEAR(p.created_at), MONTH(p.created_at),
	                  COALESCE(SUM(m.price), 0),
	                  res.party_size,
	                  COUNT(DISTINCT ri.id)
	           FROM payments p
	           JOIN reservations res ON res.id = p.reservation_id
	           LEFT JOIN reservation_items ri ON ri.reservation_id = res.id
	           LEFT JOIN menu_items m ON m.id = ri.menu_item_id
	           WHERE p.status = ? AND res.restaurant_id = ? AND p.created_at >= ?
	           GROUP BY p.id, YEAR(p.created_at), MONTH(p.created_at), res.party_size`
	rows, err := r.db.QueryContext(ctx, q, model.PaymentConfirmed, restaurantID, since)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	type key struct{ y, m int }
	buckets := map[key]float64{}
	for rows.Next() {
		var y, m int
		var revenue float64
		var partySize uint32
		var itemCount uint64
		if err := rows.Scan(&y, &m, &revenue, &partySize, &itemCount); err != nil {
			return nil, 0, err
		}
		if itemCount == 0 {
			revenue = float64(partySize) * seatFee
		}
		buckets[key{y, m}] += revenue
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	out := make([]MonthRevenue, 0, 12)
	total := 0.0
	for i := 11; i >= 0; i-- {
		d := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		rev := buckets[key{d.Year(), int(d.Month())}]
		out = append(out, MonthRevenue{Month: d.Month().String()[:3], Year: d.Year(), Revenue: rev})
		total += rev
	}
	return out, total, nil
}

// PreOrderRevenue sums pre-ordered item prices across ALL
// reservations, for the admin "revenue processed" figure.
// BookingRevenue sums the flat per-seat fee over every paid
// reservation on the platform, for the admin dashboard.
func (r *AnalyticsRepo) BookingRevenue(ctx context.Context) (float64, error) {
	const q = `SELECT COALESCE(SUM(party_size), 0) FROM reservations WHERE status = ?`
	var seats float64
	if err := r.db.QueryRowContext(ctx, q, model.ReservationPayed).Scan(&seats); err != nil {
		return 0, err
	}
	return seats * seatFee, nil
}

func (r *AnalyticsRepo) PreOrderRevenue(ctx context.Context) (float64, error) {
	const q = `SELECT COALESCE(SUM(m.price), 0)
	           FROM reservation_items ri
	           JOIN menu_items m ON m.id = ri.menu_item_id`
	var total float64
	err := r.db.QueryRowContext(ctx, q).Scan(&total)
	return total, err
}

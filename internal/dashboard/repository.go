package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGRepository reads aggregates from the order tables.
type PGRepository struct {
	db Querier
}

// NewRepository constructs a PGRepository.
func NewRepository(db Querier) *PGRepository {
	return &PGRepository{db: db}
}

const monthlyRevenueSQL = `
SELECT date_trunc('month', created_at)::date AS month,
       COALESCE(SUM(total_amount), 0)::float8 AS total
FROM orders_order
WHERE status = 'completed'
  AND created_at >= $1
  AND created_at < $2
GROUP BY 1
ORDER BY 1`

// MonthlyRevenue sums completed orders per month in [from, to).
func (r *PGRepository) MonthlyRevenue(ctx context.Context, from, to time.Time) ([]MonthlyRevenue, error) {
	rows, err := r.db.Query(ctx, monthlyRevenueSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("dashboard: monthly revenue: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MonthlyRevenue, error) {
		var m MonthlyRevenue
		err := row.Scan(&m.Month, &m.Total)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: monthly revenue: %w", err)
	}
	return out, nil
}

const statusCountsSQL = `
SELECT status, COUNT(id) AS count
FROM orders_order
GROUP BY status
ORDER BY count DESC, status`

// StatusCounts counts orders per status, largest first.
func (r *PGRepository) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.db.Query(ctx, statusCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("dashboard: status counts: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[StatusCount])
	if err != nil {
		return nil, fmt.Errorf("dashboard: status counts: %w", err)
	}
	return out, nil
}

const topProductsSQL = `
SELECT p.name, SUM(d.quantity)::float8 AS total_quantity
FROM orders_orderdetail d
JOIN products_product p ON p.id = d.product_id
GROUP BY p.name
ORDER BY total_quantity DESC, p.name
LIMIT $1`

// TopProducts returns the best-selling products by quantity.
func (r *PGRepository) TopProducts(ctx context.Context, limit int) ([]ProductQuantity, error) {
	if limit <= 0 {
		limit = TopProductsLimit
	}
	rows, err := r.db.Query(ctx, topProductsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard: top products: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[ProductQuantity])
	if err != nil {
		return nil, fmt.Errorf("dashboard: top products: %w", err)
	}
	return out, nil
}

// Ping checks the database is reachable.
func (r *PGRepository) Ping(ctx context.Context) error {
	_, err := r.db.Exec(ctx, "SELECT 1")
	return err
}

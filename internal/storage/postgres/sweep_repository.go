package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SweepRepository struct {
	pool *pgxpool.Pool
}

func NewSweepRepository(pool *pgxpool.Pool) *SweepRepository {
	return &SweepRepository{pool: pool}
}

func (r *SweepRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// FindExpiredReservations returns unresolved reservations past their
// expiry whose order is still PENDING, locking both the reservation and
// the order rows. Run inside a transaction, the lock pins the predicate
// until the sweep commits: a racing pay or cancel waits on the order
// row and then sees it CANCELLED, while a reservation resolved first is
// excluded here and cannot be double-returned.
func (r *SweepRepository) FindExpiredReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	const query = `
SELECT r.id, r.order_id, r.product_id, r.quantity, r.expires_at, r.is_expired, r.created_at
FROM reservations r
JOIN orders o ON o.id = r.order_id
WHERE r.expires_at < $1 AND r.is_expired = FALSE AND o.status = 'PENDING'
ORDER BY r.product_id
FOR UPDATE OF r, o`

	rows, err := r.query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("find expired reservations: %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.OrderID, &res.ProductID, &res.Quantity, &res.ExpiresAt, &res.IsExpired, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read reservations: %w", err)
	}
	return reservations, nil
}

func (r *SweepRepository) IncrementStock(ctx context.Context, productID string, qty int) error {
	const stmt = `UPDATE products SET stock = stock + $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, qty)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// CancelPendingOrder flips a PENDING order to CANCELLED. Orders that
// already left PENDING are left alone; several expired reservations may
// point at the same order, so zero rows affected is not an error.
func (r *SweepRepository) CancelPendingOrder(ctx context.Context, orderID string) error {
	const stmt = `
UPDATE orders SET status = $2, updated_at = NOW()
WHERE id = $1 AND status = $3`

	if _, err := r.exec(ctx, stmt, orderID, domain.OrderStatusCancelled, domain.OrderStatusPending); err != nil {
		return fmt.Errorf("cancel pending order: %w", err)
	}
	return nil
}

func (r *SweepRepository) MarkReservationExpired(ctx context.Context, reservationID string) error {
	const stmt = `UPDATE reservations SET is_expired = TRUE WHERE id = $1 AND is_expired = FALSE`

	tag, err := r.exec(ctx, stmt, reservationID)
	if err != nil {
		return fmt.Errorf("mark reservation expired: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reservation %s already resolved", reservationID)
	}
	return nil
}

func (r *SweepRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *SweepRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CheckoutRepository struct {
	pool *pgxpool.Pool
}

func NewCheckoutRepository(pool *pgxpool.Pool) *CheckoutRepository {
	return &CheckoutRepository{pool: pool}
}

func (r *CheckoutRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CheckoutRepository) GetActiveCart(ctx context.Context, userID string) (*domain.Cart, error) {
	const query = `
SELECT id, user_id, is_guest, created_at
FROM carts
WHERE user_id = $1 AND is_guest = FALSE`

	var c domain.Cart
	err := r.queryRow(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.IsGuest, &c.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active cart: %w", err)
	}
	return &c, nil
}

// GetCartLinesForUpdate reads the cart's line items with current stock,
// locking the product rows for the rest of the transaction. Rows come
// back ordered by product id so concurrent checkouts acquire locks in
// the same order.
func (r *CheckoutRepository) GetCartLinesForUpdate(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	const query = `
SELECT ci.id, ci.product_id, p.name, p.price, ci.quantity, p.stock
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.product_id
FOR UPDATE OF p`

	rows, err := r.query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ItemID, &line.ProductID, &line.ProductName, &line.Price, &line.Quantity, &line.Stock); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cart lines: %w", err)
	}
	return lines, nil
}

// DecrementStock subtracts qty from the product's stock. The guard in
// the WHERE clause keeps stock non-negative even if a caller skipped
// the capacity check.
func (r *CheckoutRepository) DecrementStock(ctx context.Context, productID string, qty int) error {
	const stmt = `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`

	tag, err := r.exec(ctx, stmt, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.InsufficientStockError{ProductID: productID}
	}
	return nil
}

func (r *CheckoutRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, user_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, stmt, order.ID, order.UserID, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *CheckoutRepository) CreateOrderItems(ctx context.Context, items []domain.OrderItem) error {
	const stmt = `
INSERT INTO order_items (id, order_id, product_id, quantity)
VALUES ($1, $2, $3, $4)`

	for _, item := range items {
		if _, err := r.exec(ctx, stmt, item.ID, item.OrderID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

func (r *CheckoutRepository) CreateReservations(ctx context.Context, reservations []domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, order_id, product_id, quantity, expires_at, is_expired, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, res := range reservations {
		_, err := r.exec(ctx, stmt,
			res.ID,
			res.OrderID,
			res.ProductID,
			res.Quantity,
			res.ExpiresAt,
			res.IsExpired,
			res.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
	}
	return nil
}

func (r *CheckoutRepository) ClearCart(ctx context.Context, cartID string) error {
	const stmt = `DELETE FROM cart_items WHERE cart_id = $1`

	if _, err := r.exec(ctx, stmt, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *CheckoutRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CheckoutRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *CheckoutRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CartRepository) FindCartByUser(ctx context.Context, userID string) (*domain.Cart, error) {
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
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return &c, nil
}

func (r *CartRepository) CreateCart(ctx context.Context, cart domain.Cart) error {
	const stmt = `
INSERT INTO carts (id, user_id, is_guest, created_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, cart.ID, cart.UserID, cart.IsGuest, cart.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

func (r *CartRepository) GetCartLines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	const query = `
SELECT ci.id, ci.product_id, p.name, p.price, ci.quantity, p.stock
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.product_id`

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

func (r *CartRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	const query = `
SELECT id, name, description, price, stock, image, category, rating, created_at
FROM products
WHERE id = $1`

	var p domain.Product
	err := r.queryRow(ctx, query, productID).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Image, &p.Category, &p.Rating, &p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *CartRepository) FindCartItem(ctx context.Context, cartID, productID string) (*domain.CartItem, error) {
	const query = `
SELECT id, cart_id, product_id, quantity
FROM cart_items
WHERE cart_id = $1 AND product_id = $2`

	var item domain.CartItem
	err := r.queryRow(ctx, query, cartID, productID).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart item: %w", err)
	}
	return &item, nil
}

func (r *CartRepository) InsertCartItem(ctx context.Context, item domain.CartItem) error {
	const stmt = `
INSERT INTO cart_items (id, cart_id, product_id, quantity)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, item.ID, item.CartID, item.ProductID, item.Quantity)
	if err != nil {
		if isUniqueViolation(err) {
			// Concurrent add of the same product; safe to retry.
			return fmt.Errorf("%w: duplicate cart item", domain.ErrTransient)
		}
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateCartItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	const stmt = `UPDATE cart_items SET quantity = $3 WHERE id = $2 AND cart_id = $1`

	tag, err := r.exec(ctx, stmt, cartID, itemID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) DeleteCartItem(ctx context.Context, cartID, itemID string) error {
	const stmt = `DELETE FROM cart_items WHERE id = $2 AND cart_id = $1`

	tag, err := r.exec(ctx, stmt, cartID, itemID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CartRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *CartRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/storefront/backoffice/internal/core/domain"
)

// OrderRepository writes orders, their items and the stock decrements in one
// transaction.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order, policy domain.StockPolicy) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items := append([]domain.OrderItem(nil), order.Items...)
	var orderID int64

	err := RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (order_date, customer_name, digital_signature, total_amount)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			order.OrderDate, order.CustomerName, order.DigitalSignature, order.TotalAmount,
		).Scan(&orderID); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, d := range order.StockDemands() {
			if err := decrementStock(ctx, tx, d.ProductID, d.Quantity, policy); err != nil {
				return err
			}
		}

		for i := range items {
			if err := tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
				 VALUES ($1, $2, $3, $4) RETURNING id`,
				orderID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice,
			).Scan(&items[i].ID); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.ID = orderID
	order.Items = items
	return nil
}

// decrementStock applies policy to one product. Rows matching no product are
// left alone.
func decrementStock(ctx context.Context, tx DBTX, productID int64, qty int, policy domain.StockPolicy) error {
	if policy != domain.StockPolicyReject {
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = GREATEST(0, stock - $1) WHERE id = $2`, qty, productID,
		); err != nil {
			return fmt.Errorf("decrement stock %d: %w", productID, err)
		}
		return nil
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`, qty, productID,
	)
	if err != nil {
		return fmt.Errorf("decrement stock %d: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock %d: %w", productID, err)
	}
	if n > 0 {
		return nil
	}
	exists, err := productExists(ctx, tx, productID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrInsufficientStock
	}
	return nil
}

const orderSelect = `
SELECT o.id, o.order_date, o.customer_name, o.digital_signature, o.total_amount,
       i.id, i.product_id, i.quantity, i.unit_price,
       p.id, p.name, p.price, p.stock, p.image_url
FROM orders o
LEFT JOIN order_items i ON i.order_id = o.id
LEFT JOIN products p ON p.id = i.product_id`

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	orders, err := r.query(ctx, orderSelect+` WHERE o.id = $1 ORDER BY i.id`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return orders[0], nil
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.query(ctx, orderSelect+` ORDER BY o.order_date DESC, o.id DESC, i.id`)
}

// query folds the joined rows back into orders, preserving row order.
func (r *OrderRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []*domain.Order
	byID := make(map[int64]*domain.Order)
	for rows.Next() {
		var (
			o         domain.Order
			itemID    sql.NullInt64
			productID sql.NullInt64
			quantity  sql.NullInt32
			unitPrice decimal.NullDecimal
			pID       sql.NullInt64
			pName     sql.NullString
			pPrice    decimal.NullDecimal
			pStock    sql.NullInt32
			pImage    sql.NullString
		)
		if err := rows.Scan(
			&o.ID, &o.OrderDate, &o.CustomerName, &o.DigitalSignature, &o.TotalAmount,
			&itemID, &productID, &quantity, &unitPrice,
			&pID, &pName, &pPrice, &pStock, &pImage,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		current, ok := byID[o.ID]
		if !ok {
			o.OrderDate = o.OrderDate.UTC()
			current = &o
			byID[o.ID] = current
			out = append(out, current)
		}
		if !itemID.Valid {
			continue
		}

		item := domain.OrderItem{
			ID:        itemID.Int64,
			ProductID: productID.Int64,
			Quantity:  int(quantity.Int32),
			UnitPrice: unitPrice.Decimal,
		}
		if pID.Valid {
			item.Product = &domain.Product{
				ID:       pID.Int64,
				Name:     pName.String,
				Price:    pPrice.Decimal,
				Stock:    int(pStock.Int32),
				ImageURL: pImage.String,
			}
		}
		current.Items = append(current.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}
